package budget

import (
	"time"

	"github.com/google/uuid"

	"github.com/jcastell/obratrack/internal/budget"
)

type budgetResponse struct {
	ID            uuid.UUID    `json:"id"`
	ProjectID     uuid.UUID    `json:"project_id"`
	Version       int          `json:"version"`
	TotalAmount   int64        `json:"total_amount"`
	State         budget.State `json:"state"`
	ResponsibleID string       `json:"responsible_id"`
	CreatedAt     time.Time    `json:"created_at"`
}

func toBudgetResponse(b *budget.Budget) budgetResponse {
	return budgetResponse{
		ID:            b.ID,
		ProjectID:     b.ProjectID,
		Version:       b.Version,
		TotalAmount:   b.TotalAmount,
		State:         b.State,
		ResponsibleID: b.ResponsibleID,
		CreatedAt:     b.CreatedAt,
	}
}

type lineResponse struct {
	ID             uuid.UUID  `json:"id"`
	BudgetID       uuid.UUID  `json:"budget_id"`
	Name           string     `json:"name"`
	AssignedAmount int64      `json:"assigned_amount"`
	ExecutedAmount int64      `json:"executed_amount"`
	Complete       bool       `json:"complete"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

func toLineResponse(l *budget.Line) lineResponse {
	return lineResponse{
		ID:             l.ID,
		BudgetID:       l.BudgetID,
		Name:           l.Name,
		AssignedAmount: l.AssignedAmount,
		ExecutedAmount: l.ExecutedAmount,
		Complete:       l.Complete(),
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

func toLineResponseList(lines []*budget.Line) []lineResponse {
	resp := make([]lineResponse, len(lines))
	for i, l := range lines {
		resp[i] = toLineResponse(l)
	}

	return resp
}

type expenseResponse struct {
	ID          uuid.UUID  `json:"id"`
	LineID      uuid.UUID  `json:"line_id"`
	Amount      int64      `json:"amount"`
	Description string     `json:"description"`
	Date        time.Time  `json:"date"`
	DocumentRef string     `json:"document_ref,omitempty"`
	ActorID     string     `json:"actor_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func toExpenseResponse(e *budget.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		LineID:      e.LineID,
		Amount:      e.Amount,
		Description: e.Description,
		Date:        e.Date,
		DocumentRef: e.DocumentRef,
		ActorID:     e.ActorID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toExpenseResponseList(expenses []*budget.Expense) []expenseResponse {
	resp := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = toExpenseResponse(e)
	}

	return resp
}

// expenseResultResponse pairs a mutated expense with the recomputed line so
// the client sees the fresh executed amount in one round trip.
type expenseResultResponse struct {
	Expense expenseResponse `json:"expense"`
	Line    lineResponse    `json:"line"`
}

func toExpenseResultResponse(e *budget.Expense, l *budget.Line) expenseResultResponse {
	return expenseResultResponse{
		Expense: toExpenseResponse(e),
		Line:    toLineResponse(l),
	}
}
