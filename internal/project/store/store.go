package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jcastell/obratrack/internal/project"
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

const selectProjectColumns = `
	p.id, p.name, p.location, p.initial_amount, p.planned_start, p.planned_end,
	p.status, p.responsible_id, p.created_at, p.updated_at
`

func scanProject(s scanner) (*project.Project, error) {
	var p project.Project

	var statusStr string

	if err := s.Scan(
		&p.ID, &p.Name, &p.Location, &p.InitialAmount, &p.PlannedStart, &p.PlannedEnd,
		&statusStr, &p.ResponsibleID, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Status = project.Status(statusStr)

	return &p, nil
}

// CreateProject inserts the project, its version-1 active budget and the
// initial history entry in one transaction, so a project never exists
// without a budget.
func (s *Store) CreateProject(ctx context.Context, p *project.Project, entry *project.HistoryEntry) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	projectQuery := `
		INSERT INTO projects (name, location, initial_amount, planned_start, planned_end, status, responsible_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	err = dbTx.QueryRowContext(ctx, projectQuery,
		p.Name,
		p.Location,
		p.InitialAmount,
		p.PlannedStart,
		p.PlannedEnd,
		p.Status,
		p.ResponsibleID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating project: %w", err)
	}

	budgetQuery := `
		INSERT INTO budgets (project_id, version, total_amount, state, responsible_id, created_at)
		VALUES ($1, 1, $2, 'active', $3, NOW())
	`
	if _, err := dbTx.ExecContext(ctx, budgetQuery, p.ID, p.InitialAmount, entry.ActorID); err != nil {
		return fmt.Errorf("creating initial budget: %w", err)
	}

	entry.ProjectID = p.ID
	if err := appendHistory(ctx, dbTx, entry); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	query := `SELECT ` + selectProjectColumns + ` FROM projects p WHERE p.id = $1`

	p, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, project.ErrNotFound
		}

		return nil, fmt.Errorf("getting project: %w", err)
	}

	return p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]*project.Project, error) {
	query := `SELECT ` + selectProjectColumns + ` FROM projects p ORDER BY p.created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*project.Project

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}

		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project rows: %w", err)
	}

	return projects, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *project.Project) error {
	query := `
		UPDATE projects
		SET name = $1, location = $2, planned_start = $3, planned_end = $4, responsible_id = $5, updated_at = NOW()
		WHERE id = $6
	`

	res, err := s.db.ExecContext(ctx, query,
		p.Name,
		p.Location,
		p.PlannedStart,
		p.PlannedEnd,
		p.ResponsibleID,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}

	if affected == 0 {
		return project.ErrNotFound
	}

	return nil
}

// UpdateStatus performs a compare-and-swap on the project status and appends
// the history entry in the same transaction. A lost race surfaces as
// ErrConflict so the caller can re-read and retry.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, from project.Status, entry *project.HistoryEntry) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		UPDATE projects
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	res, err := dbTx.ExecContext(ctx, query, entry.Status, id, from)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	if affected == 0 {
		var exists bool
		if err := dbTx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("checking project existence: %w", err)
		}

		if !exists {
			return project.ErrNotFound
		}

		return fmt.Errorf("%w: status changed concurrently", project.ErrConflict)
	}

	if err := appendHistory(ctx, dbTx, entry); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM projects WHERE id = $1 AND status = $2`

	res, err := s.db.ExecContext(ctx, query, id, project.StatusPlanned)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	if affected == 0 {
		return project.ErrNotFound
	}

	return nil
}

func (s *Store) ListHistory(ctx context.Context, projectID uuid.UUID) ([]*project.HistoryEntry, error) {
	query := `
		SELECT id, project_id, status, actor_id, justification, created_at
		FROM status_history
		WHERE project_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var entries []*project.HistoryEntry

	for rows.Next() {
		var e project.HistoryEntry

		var statusStr string

		if err := rows.Scan(&e.ID, &e.ProjectID, &statusStr, &e.ActorID, &e.Justification, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}

		e.Status = project.Status(statusStr)
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history rows: %w", err)
	}

	return entries, nil
}

func appendHistory(ctx context.Context, dbTx *sql.Tx, entry *project.HistoryEntry) error {
	query := `
		INSERT INTO status_history (project_id, status, actor_id, justification, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := dbTx.QueryRowContext(ctx, query,
		entry.ProjectID,
		entry.Status,
		entry.ActorID,
		entry.Justification,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending history entry: %w", err)
	}

	return nil
}
