package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jcastell/obratrack/internal/budget"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBudget(s scanner) (*budget.Budget, error) {
	var b budget.Budget

	var stateStr string

	if err := s.Scan(&b.ID, &b.ProjectID, &b.Version, &b.TotalAmount, &stateStr, &b.ResponsibleID, &b.CreatedAt); err != nil {
		return nil, err
	}

	b.State = budget.State(stateStr)

	return &b, nil
}

const selectBudgetColumns = `b.id, b.project_id, b.version, b.total_amount, b.state, b.responsible_id, b.created_at`

// CreateBudget supersedes the currently active budget of the project and
// inserts the new version, all in one transaction. The partial unique index
// on (project_id) WHERE state='active' backs the single-active invariant.
func (s *Store) CreateBudget(ctx context.Context, b *budget.Budget) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	var exists bool
	if err := dbTx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, b.ProjectID).Scan(&exists); err != nil {
		return fmt.Errorf("checking project existence: %w", err)
	}

	if !exists {
		return budget.ErrNotFound
	}

	supersedeQuery := `UPDATE budgets SET state = 'superseded' WHERE project_id = $1 AND state = 'active'`
	if _, err := dbTx.ExecContext(ctx, supersedeQuery, b.ProjectID); err != nil {
		return fmt.Errorf("superseding active budget: %w", err)
	}

	insertQuery := `
		INSERT INTO budgets (project_id, version, total_amount, state, responsible_id, created_at)
		VALUES ($1, (SELECT COALESCE(MAX(version), 0) + 1 FROM budgets WHERE project_id = $1), $2, 'active', $3, NOW())
		RETURNING id, version, created_at
	`

	err = dbTx.QueryRowContext(ctx, insertQuery, b.ProjectID, b.TotalAmount, b.ResponsibleID).
		Scan(&b.ID, &b.Version, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating budget: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetBudget(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	query := `SELECT ` + selectBudgetColumns + ` FROM budgets b WHERE b.id = $1`

	b, err := scanBudget(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, budget.ErrNotFound
		}

		return nil, fmt.Errorf("getting budget: %w", err)
	}

	return b, nil
}

func (s *Store) GetActiveBudget(ctx context.Context, projectID uuid.UUID) (*budget.Budget, error) {
	query := `SELECT ` + selectBudgetColumns + ` FROM budgets b WHERE b.project_id = $1 AND b.state = 'active'`

	b, err := scanBudget(s.db.QueryRowContext(ctx, query, projectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, budget.ErrNotFound
		}

		return nil, fmt.Errorf("getting active budget: %w", err)
	}

	return b, nil
}

func (s *Store) CreateLine(ctx context.Context, l *budget.Line) error {
	query := `
		INSERT INTO budget_lines (budget_id, name, assigned_amount, executed_amount, created_at)
		VALUES ($1, $2, $3, 0, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, l.BudgetID, l.Name, l.AssignedAmount).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating budget line: %w", err)
	}

	return nil
}

const selectLineColumns = `l.id, l.budget_id, l.name, l.assigned_amount, l.executed_amount, l.created_at, l.updated_at`

func scanLine(s scanner) (*budget.Line, error) {
	var l budget.Line

	if err := s.Scan(&l.ID, &l.BudgetID, &l.Name, &l.AssignedAmount, &l.ExecutedAmount, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}

	return &l, nil
}

func (s *Store) GetLine(ctx context.Context, id uuid.UUID) (*budget.Line, error) {
	query := `SELECT ` + selectLineColumns + ` FROM budget_lines l WHERE l.id = $1`

	l, err := scanLine(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, budget.ErrNotFound
		}

		return nil, fmt.Errorf("getting budget line: %w", err)
	}

	return l, nil
}

func (s *Store) ListLines(ctx context.Context, budgetID uuid.UUID) ([]*budget.Line, error) {
	query := `SELECT ` + selectLineColumns + ` FROM budget_lines l WHERE l.budget_id = $1 ORDER BY l.created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, budgetID)
	if err != nil {
		return nil, fmt.Errorf("listing budget lines: %w", err)
	}
	defer rows.Close()

	var lines []*budget.Line

	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning budget line: %w", err)
		}

		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating line rows: %w", err)
	}

	return lines, nil
}

func (s *Store) DeleteLine(ctx context.Context, id uuid.UUID) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	var owned int
	if err := dbTx.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses WHERE line_id = $1`, id).Scan(&owned); err != nil {
		return fmt.Errorf("counting line expenses: %w", err)
	}

	if owned > 0 {
		return fmt.Errorf("%w: line still owns %d expenses", budget.ErrConflict, owned)
	}

	res, err := dbTx.ExecContext(ctx, `DELETE FROM budget_lines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting budget line: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting budget line: %w", err)
	}

	if affected == 0 {
		return budget.ErrNotFound
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// InsertExpense writes the expense and re-derives the owning line's executed
// amount from the full expense set in the same transaction.
func (s *Store) InsertExpense(ctx context.Context, e *budget.Expense) (*budget.Line, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO expenses (line_id, amount, description, expense_date, document_ref, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		e.LineID,
		e.Amount,
		e.Description,
		e.Date,
		e.DocumentRef,
		e.ActorID,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, budget.ErrNotFound
		}

		return nil, fmt.Errorf("creating expense: %w", err)
	}

	line, err := recomputeLine(ctx, dbTx, e.LineID)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return line, nil
}

func (s *Store) UpdateExpense(ctx context.Context, e *budget.Expense) (*budget.Line, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		UPDATE expenses
		SET amount = $1, description = $2, expense_date = $3, document_ref = $4, updated_at = NOW()
		WHERE id = $5
	`

	res, err := dbTx.ExecContext(ctx, query, e.Amount, e.Description, e.Date, e.DocumentRef, e.ID)
	if err != nil {
		return nil, fmt.Errorf("updating expense: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating expense: %w", err)
	}

	if affected == 0 {
		return nil, budget.ErrNotFound
	}

	line, err := recomputeLine(ctx, dbTx, e.LineID)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return line, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id uuid.UUID) (*budget.Line, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	var lineID uuid.UUID

	err = dbTx.QueryRowContext(ctx, `DELETE FROM expenses WHERE id = $1 RETURNING line_id`, id).Scan(&lineID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, budget.ErrNotFound
		}

		return nil, fmt.Errorf("deleting expense: %w", err)
	}

	line, err := recomputeLine(ctx, dbTx, lineID)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return line, nil
}

const selectExpenseColumns = `e.id, e.line_id, e.amount, e.description, e.expense_date, e.document_ref, e.actor_id, e.created_at, e.updated_at`

func scanExpense(s scanner) (*budget.Expense, error) {
	var e budget.Expense

	if err := s.Scan(&e.ID, &e.LineID, &e.Amount, &e.Description, &e.Date, &e.DocumentRef, &e.ActorID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}

	return &e, nil
}

func (s *Store) GetExpense(ctx context.Context, id uuid.UUID) (*budget.Expense, error) {
	query := `SELECT ` + selectExpenseColumns + ` FROM expenses e WHERE e.id = $1`

	e, err := scanExpense(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, budget.ErrNotFound
		}

		return nil, fmt.Errorf("getting expense: %w", err)
	}

	return e, nil
}

func (s *Store) ListExpenses(ctx context.Context, lineID uuid.UUID) ([]*budget.Expense, error) {
	query := `SELECT ` + selectExpenseColumns + ` FROM expenses e WHERE e.line_id = $1 ORDER BY e.expense_date ASC, e.created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, lineID)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*budget.Expense

	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}

		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expense rows: %w", err)
	}

	return expenses, nil
}

// recomputeLine refreshes the cached executed amount as the full sum over the
// line's current expenses and returns the updated line. Always a
// re-aggregation, never an incremental patch.
func recomputeLine(ctx context.Context, dbTx *sql.Tx, lineID uuid.UUID) (*budget.Line, error) {
	query := `
		UPDATE budget_lines
		SET executed_amount = (SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE line_id = $1),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, budget_id, name, assigned_amount, executed_amount, created_at, updated_at
	`

	l, err := scanLine(dbTx.QueryRowContext(ctx, query, lineID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, budget.ErrNotFound
		}

		return nil, fmt.Errorf("recomputing executed amount: %w", err)
	}

	return l, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23503"
	}

	return false
}
