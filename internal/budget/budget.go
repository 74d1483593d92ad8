package budget

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// State represents the lifecycle state of a budget version.
type State string

const (
	StateActive     State = "active"
	StateSuperseded State = "superseded"
)

// Budget is the top-level funding envelope of a project. Versions are
// monotonically increasing per project; at most one version is active.
type Budget struct {
	ID            uuid.UUID
	ProjectID     uuid.UUID
	Version       int
	TotalAmount   int64 // Amount in cents
	State         State
	ResponsibleID string
	CreatedAt     time.Time
}

// Line is a named allocation within a budget (a "partida").
// ExecutedAmount is a cached derived value: after every expense mutation it
// is recomputed as the full sum over the line's current expenses, never
// patched incrementally.
type Line struct {
	ID             uuid.UUID
	BudgetID       uuid.UUID
	Name           string
	AssignedAmount int64
	ExecutedAmount int64
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// Complete reports whether the line's execution reached 100%. A line with
// nothing assigned never completes.
func (l *Line) Complete() bool {
	return l.AssignedAmount > 0 && l.ExecutedAmount >= l.AssignedAmount
}

// Expense is a single spend event (a "gasto") attributed to a line.
type Expense struct {
	ID          uuid.UUID
	LineID      uuid.UUID
	Amount      int64
	Description string
	Date        time.Time
	DocumentRef string // opaque reference owned by the document storage collaborator
	ActorID     string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

var (
	ErrNotFound     = errors.New("budget record not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict covers structurally rejected mutations, like deleting a
	// line that still owns expenses.
	ErrConflict = errors.New("budget state conflict")
)
