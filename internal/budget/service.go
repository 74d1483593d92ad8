package budget

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=budget
type Repository interface {
	// CreateBudget inserts b as the active budget of its project, superseding
	// the previously active version in the same transaction. The version
	// number is assigned by the store.
	CreateBudget(ctx context.Context, b *Budget) error
	GetBudget(ctx context.Context, id uuid.UUID) (*Budget, error)
	GetActiveBudget(ctx context.Context, projectID uuid.UUID) (*Budget, error)

	CreateLine(ctx context.Context, l *Line) error
	GetLine(ctx context.Context, id uuid.UUID) (*Line, error)
	ListLines(ctx context.Context, budgetID uuid.UUID) ([]*Line, error)
	// DeleteLine removes a line that owns no expenses; ErrConflict otherwise.
	DeleteLine(ctx context.Context, id uuid.UUID) error

	// InsertExpense, UpdateExpense and DeleteExpense each recompute the owning
	// line's executed amount from the full expense set inside the same
	// transaction as the mutation, and return the recomputed line.
	InsertExpense(ctx context.Context, e *Expense) (*Line, error)
	UpdateExpense(ctx context.Context, e *Expense) (*Line, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) (*Line, error)
	GetExpense(ctx context.Context, id uuid.UUID) (*Expense, error)
	ListExpenses(ctx context.Context, lineID uuid.UUID) ([]*Expense, error)
}

// CompletionChecker receives lines whose execution reached 100% so derived
// alerts can be issued. Evaluation happens after the primary write committed
// and is best-effort.
type CompletionChecker interface {
	CheckLineComplete(ctx context.Context, line *Line) error
}

type Service struct {
	repo   Repository
	alerts CompletionChecker
}

func NewService(repo Repository, alerts CompletionChecker) *Service {
	return &Service{repo: repo, alerts: alerts}
}

// CreateBudget opens a new budget version for the project. The prior active
// version is superseded atomically; there is never more than one active
// budget per project.
func (s *Service) CreateBudget(ctx context.Context, projectID uuid.UUID, totalAmount int64, actorID string) (*Budget, error) {
	if totalAmount <= 0 {
		return nil, fmt.Errorf("%w: total amount must be positive", ErrInvalidInput)
	}

	b := &Budget{
		ProjectID:     projectID,
		TotalAmount:   totalAmount,
		State:         StateActive,
		ResponsibleID: actorID,
	}

	if err := s.repo.CreateBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) GetBudget(ctx context.Context, id uuid.UUID) (*Budget, error) {
	return s.repo.GetBudget(ctx, id)
}

func (s *Service) ActiveBudget(ctx context.Context, projectID uuid.UUID) (*Budget, error) {
	return s.repo.GetActiveBudget(ctx, projectID)
}

// AddLine creates a line on the budget. A zero assigned amount is allowed;
// such a line reports 0% execution and never completes.
func (s *Service) AddLine(ctx context.Context, budgetID uuid.UUID, name string, assignedAmount int64) (*Line, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: line name is required", ErrInvalidInput)
	}

	if assignedAmount < 0 {
		return nil, fmt.Errorf("%w: assigned amount must not be negative", ErrInvalidInput)
	}

	l := &Line{
		BudgetID:       budgetID,
		Name:           name,
		AssignedAmount: assignedAmount,
	}

	if err := s.repo.CreateLine(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

func (s *Service) GetLine(ctx context.Context, id uuid.UUID) (*Line, error) {
	return s.repo.GetLine(ctx, id)
}

func (s *Service) Lines(ctx context.Context, budgetID uuid.UUID) ([]*Line, error) {
	return s.repo.ListLines(ctx, budgetID)
}

func (s *Service) DeleteLine(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteLine(ctx, id)
}

type ExpenseParams struct {
	Amount      int64
	Description string
	Date        time.Time
	DocumentRef string
}

// RecordExpense writes the expense and recomputes the owning line's executed
// amount from the full expense set. Re-aggregation instead of an incremental
// delta keeps the cached total convergent under concurrent edits and deletes
// on the same line. Future-dated expenses are accepted.
func (s *Service) RecordExpense(ctx context.Context, lineID uuid.UUID, params ExpenseParams, actorID string) (*Expense, *Line, error) {
	if err := validateExpense(params); err != nil {
		return nil, nil, err
	}

	e := &Expense{
		LineID:      lineID,
		Amount:      params.Amount,
		Description: params.Description,
		Date:        params.Date,
		DocumentRef: params.DocumentRef,
		ActorID:     actorID,
	}

	line, err := s.repo.InsertExpense(ctx, e)
	if err != nil {
		return nil, nil, err
	}

	s.evaluateThreshold(ctx, line)

	return e, line, nil
}

// UpdateExpense edits an expense in place and re-derives the line total, so
// raising an amount can complete a line just like recording a new expense.
func (s *Service) UpdateExpense(ctx context.Context, id uuid.UUID, params ExpenseParams) (*Expense, *Line, error) {
	if err := validateExpense(params); err != nil {
		return nil, nil, err
	}

	e, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	e.Amount = params.Amount
	e.Description = params.Description
	e.Date = params.Date
	e.DocumentRef = params.DocumentRef

	line, err := s.repo.UpdateExpense(ctx, e)
	if err != nil {
		return nil, nil, err
	}

	s.evaluateThreshold(ctx, line)

	return e, line, nil
}

// DeleteExpense removes the expense and re-derives the line total. Deletion
// only lowers execution, so no completion check runs; an already issued
// alert is not retracted.
func (s *Service) DeleteExpense(ctx context.Context, id uuid.UUID) (*Line, error) {
	return s.repo.DeleteExpense(ctx, id)
}

func (s *Service) GetExpense(ctx context.Context, id uuid.UUID) (*Expense, error) {
	return s.repo.GetExpense(ctx, id)
}

func (s *Service) Expenses(ctx context.Context, lineID uuid.UUID) ([]*Expense, error) {
	return s.repo.ListExpenses(ctx, lineID)
}

// evaluateThreshold runs the completion check after the primary write
// committed. Failures are logged, never propagated: the expense is recorded
// regardless of alert evaluation.
func (s *Service) evaluateThreshold(ctx context.Context, line *Line) {
	if s.alerts == nil || !line.Complete() {
		return
	}

	if err := s.alerts.CheckLineComplete(ctx, line); err != nil {
		slog.Error("alert evaluation failed", "line_id", line.ID, "error", err)
	}
}

func validateExpense(params ExpenseParams) error {
	if params.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	if params.Date.IsZero() {
		return fmt.Errorf("%w: expense date is required", ErrInvalidInput)
	}

	return nil
}
