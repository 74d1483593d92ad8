package budget_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcastell/obratrack/internal/budget"
)

// fakeLedger is an in-memory Repository honoring the store contract: every
// expense mutation re-derives the line's executed amount from the full
// expense set before returning.
type fakeLedger struct {
	line     *budget.Line
	expenses map[uuid.UUID]*budget.Expense
}

func newFakeLedger(assigned int64) *fakeLedger {
	return &fakeLedger{
		line:     &budget.Line{ID: uuid.New(), BudgetID: uuid.New(), Name: "Paving", AssignedAmount: assigned},
		expenses: make(map[uuid.UUID]*budget.Expense),
	}
}

func (f *fakeLedger) recompute() *budget.Line {
	var sum int64
	for _, e := range f.expenses {
		sum += e.Amount
	}

	f.line.ExecutedAmount = sum
	snapshot := *f.line

	return &snapshot
}

func (f *fakeLedger) InsertExpense(_ context.Context, e *budget.Expense) (*budget.Line, error) {
	e.ID = uuid.New()
	f.expenses[e.ID] = e

	return f.recompute(), nil
}

func (f *fakeLedger) UpdateExpense(_ context.Context, e *budget.Expense) (*budget.Line, error) {
	if _, ok := f.expenses[e.ID]; !ok {
		return nil, budget.ErrNotFound
	}

	f.expenses[e.ID] = e

	return f.recompute(), nil
}

func (f *fakeLedger) DeleteExpense(_ context.Context, id uuid.UUID) (*budget.Line, error) {
	if _, ok := f.expenses[id]; !ok {
		return nil, budget.ErrNotFound
	}

	delete(f.expenses, id)

	return f.recompute(), nil
}

func (f *fakeLedger) GetExpense(_ context.Context, id uuid.UUID) (*budget.Expense, error) {
	e, ok := f.expenses[id]
	if !ok {
		return nil, budget.ErrNotFound
	}

	copied := *e

	return &copied, nil
}

func (f *fakeLedger) CreateBudget(context.Context, *budget.Budget) error { return nil }
func (f *fakeLedger) GetBudget(context.Context, uuid.UUID) (*budget.Budget, error) {
	return nil, budget.ErrNotFound
}
func (f *fakeLedger) GetActiveBudget(context.Context, uuid.UUID) (*budget.Budget, error) {
	return nil, budget.ErrNotFound
}
func (f *fakeLedger) CreateLine(context.Context, *budget.Line) error { return nil }
func (f *fakeLedger) GetLine(context.Context, uuid.UUID) (*budget.Line, error) {
	return f.recompute(), nil
}
func (f *fakeLedger) ListLines(context.Context, uuid.UUID) ([]*budget.Line, error) {
	return []*budget.Line{f.recompute()}, nil
}
func (f *fakeLedger) DeleteLine(context.Context, uuid.UUID) error { return nil }
func (f *fakeLedger) ListExpenses(context.Context, uuid.UUID) ([]*budget.Expense, error) {
	out := make([]*budget.Expense, 0, len(f.expenses))
	for _, e := range f.expenses {
		copied := *e
		out = append(out, &copied)
	}

	return out, nil
}

func (f *fakeLedger) currentSum() int64 {
	var sum int64
	for _, e := range f.expenses {
		sum += e.Amount
	}

	return sum
}

// The executed amount must equal the sum of the line's current expenses
// after any sequence of inserts, updates and deletes.
func TestExecutedAmountConverges(t *testing.T) {
	ledger := newFakeLedger(10_000)
	svc := budget.NewService(ledger, nil)
	ctx := context.Background()

	var ids []uuid.UUID

	for _, amount := range []int64{1200, 300, 4500, 77, 900} {
		e, line, err := svc.RecordExpense(ctx, ledger.line.ID, budget.ExpenseParams{
			Amount: amount,
			Date:   expenseDate,
		}, "actor-1")
		require.NoError(t, err)

		ids = append(ids, e.ID)
		assert.Equal(t, ledger.currentSum(), line.ExecutedAmount)
	}

	// Edit one up, one down.
	_, line, err := svc.UpdateExpense(ctx, ids[0], budget.ExpenseParams{Amount: 5000, Date: expenseDate})
	require.NoError(t, err)
	assert.Equal(t, ledger.currentSum(), line.ExecutedAmount)

	_, line, err = svc.UpdateExpense(ctx, ids[2], budget.ExpenseParams{Amount: 1, Date: expenseDate})
	require.NoError(t, err)
	assert.Equal(t, ledger.currentSum(), line.ExecutedAmount)

	// Delete two.
	line, err = svc.DeleteExpense(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, ledger.currentSum(), line.ExecutedAmount)

	line, err = svc.DeleteExpense(ctx, ids[4])
	require.NoError(t, err)
	assert.Equal(t, ledger.currentSum(), line.ExecutedAmount)

	// Delete the rest; the line must land back on zero.
	for _, id := range []uuid.UUID{ids[0], ids[2], ids[3]} {
		line, err = svc.DeleteExpense(ctx, id)
		require.NoError(t, err)
	}

	assert.Equal(t, int64(0), line.ExecutedAmount)
}
