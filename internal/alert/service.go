package alert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jcastell/obratrack/internal/budget"
)

// Roles the derived alerts are addressed to.
const (
	recipientSupervisor = "supervisor"
	recipientDirector   = "director"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=alert
type Repository interface {
	// CreateIfAbsent inserts a unless an active alert with the same
	// (type, correlation key) already exists, and reports whether a row was
	// written. The store backs this with the partial unique index, so
	// concurrent triggers of the same condition cannot double-insert.
	CreateIfAbsent(ctx context.Context, a *Alert) (bool, error)
	GetAlert(ctx context.Context, id uuid.UUID) (*Alert, error)
	ListAlerts(ctx context.Context, filter ListFilter) ([]*Alert, error)
	Acknowledge(ctx context.Context, id uuid.UUID, actorID string) (*Alert, error)
}

// LedgerReader is the read access the engine needs to escalate a completed
// line to a project-level condition.
type LedgerReader interface {
	GetBudget(ctx context.Context, id uuid.UUID) (*budget.Budget, error)
	ListLines(ctx context.Context, budgetID uuid.UUID) ([]*budget.Line, error)
}

type ListFilter struct {
	State *State
	Type  *Type
}

// Engine issues derived alerts for threshold conditions. Issuance is
// idempotent per (type, correlation key) while the alert stays active.
type Engine struct {
	repo   Repository
	ledger LedgerReader
}

func NewEngine(repo Repository, ledger LedgerReader) *Engine {
	return &Engine{repo: repo, ledger: ledger}
}

// CheckLineComplete issues a line-complete alert for a fully executed line,
// then evaluates whether every line of the owning budget is complete and, if
// so, escalates to a project-level alert. Lines below the threshold are
// ignored, so the check is safe to call redundantly.
func (e *Engine) CheckLineComplete(ctx context.Context, line *budget.Line) error {
	if !line.Complete() {
		return nil
	}

	a := &Alert{
		Type:           TypeLineComplete,
		CorrelationKey: line.ID.String(),
		Description:    fmt.Sprintf("budget line %q is fully executed", line.Name),
		Severity:       SeverityHigh,
		RecipientRole:  recipientSupervisor,
	}

	created, err := e.repo.CreateIfAbsent(ctx, a)
	if err != nil {
		return fmt.Errorf("issuing line alert: %w", err)
	}

	if created {
		slog.Info("line complete alert issued", "line_id", line.ID, "alert_id", a.ID)
	}

	return e.checkBudgetComplete(ctx, line.BudgetID)
}

// checkBudgetComplete re-reads all lines of the budget; when every line has a
// positive assignment and is fully executed, the project may move toward
// completion and a critical project-level alert is issued.
func (e *Engine) checkBudgetComplete(ctx context.Context, budgetID uuid.UUID) error {
	b, err := e.ledger.GetBudget(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("loading budget: %w", err)
	}

	lines, err := e.ledger.ListLines(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("loading budget lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	for _, l := range lines {
		if !l.Complete() {
			return nil
		}
	}

	a := &Alert{
		Type:           TypeProjectCompletable,
		CorrelationKey: b.ProjectID.String(),
		Description:    fmt.Sprintf("all lines of budget v%d are fully executed; the project may be completed", b.Version),
		Severity:       SeverityCritical,
		RecipientRole:  recipientDirector,
	}

	created, err := e.repo.CreateIfAbsent(ctx, a)
	if err != nil {
		return fmt.Errorf("issuing project alert: %w", err)
	}

	if created {
		slog.Info("project completable alert issued", "project_id", b.ProjectID, "alert_id", a.ID)
	}

	return nil
}

// Raise issues a generic alert, deduplicated on the given correlation key.
// The second return reports whether a new alert was created or an active one
// already covered the key.
func (e *Engine) Raise(ctx context.Context, key, description string, severity Severity, recipientRole string) (*Alert, bool, error) {
	a := &Alert{
		Type:           TypeGeneric,
		CorrelationKey: key,
		Description:    description,
		Severity:       severity,
		RecipientRole:  recipientRole,
	}

	created, err := e.repo.CreateIfAbsent(ctx, a)
	if err != nil {
		return nil, false, err
	}

	return a, created, nil
}

func (e *Engine) Get(ctx context.Context, id uuid.UUID) (*Alert, error) {
	return e.repo.GetAlert(ctx, id)
}

func (e *Engine) List(ctx context.Context, filter ListFilter) ([]*Alert, error) {
	return e.repo.ListAlerts(ctx, filter)
}

// Acknowledge transitions an active alert to acknowledged, freeing its
// (type, correlation key) slot for future occurrences of the condition.
func (e *Engine) Acknowledge(ctx context.Context, id uuid.UUID, actorID string) (*Alert, error) {
	return e.repo.Acknowledge(ctx, id, actorID)
}
