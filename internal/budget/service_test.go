package budget_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jcastell/obratrack/internal/budget"
)

var expenseDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func TestService_CreateBudget(t *testing.T) {
	projectID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := budget.NewMockRepository(ctrl)

		repo.EXPECT().
			CreateBudget(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, b *budget.Budget) error {
				assert.Equal(t, projectID, b.ProjectID)
				assert.Equal(t, budget.StateActive, b.State)
				b.ID = uuid.New()
				b.Version = 2
				return nil
			})

		svc := budget.NewService(repo, nil)
		got, err := svc.CreateBudget(context.Background(), projectID, 500_000, "actor-1")

		require.NoError(t, err)
		assert.Equal(t, 2, got.Version)
	})

	t.Run("NonPositiveTotal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := budget.NewService(budget.NewMockRepository(ctrl), nil)
		_, err := svc.CreateBudget(context.Background(), projectID, 0, "actor-1")

		assert.ErrorIs(t, err, budget.ErrInvalidInput)
	})
}

func TestService_AddLine(t *testing.T) {
	budgetID := uuid.New()

	type testCase struct {
		name      string
		lineName  string
		assigned  int64
		setupMock func(m *budget.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:     "Success",
			lineName: "Earthworks",
			assigned: 50_000,
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().
					CreateLine(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, l *budget.Line) error {
						l.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name:     "ZeroAssignedAllowed",
			lineName: "Contingency",
			assigned: 0,
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().
					CreateLine(gomock.Any(), gomock.Any()).
					Return(nil)
			},
		},
		{
			name:     "BlankName",
			lineName: "",
			assigned: 100,
			wantErr:  budget.ErrInvalidInput,
		},
		{
			name:     "NegativeAssigned",
			lineName: "Paving",
			assigned: -1,
			wantErr:  budget.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := budget.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := budget.NewService(repo, nil)
			got, err := svc.AddLine(context.Background(), budgetID, tt.lineName, tt.assigned)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, budgetID, got.BudgetID)
		})
	}
}

func TestService_RecordExpense(t *testing.T) {
	lineID := uuid.New()

	t.Run("InvalidAmount", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := budget.NewService(budget.NewMockRepository(ctrl), nil)
		_, _, err := svc.RecordExpense(context.Background(), lineID, budget.ExpenseParams{
			Amount: 0,
			Date:   expenseDate,
		}, "actor-1")

		assert.ErrorIs(t, err, budget.ErrInvalidInput)
	})

	t.Run("MissingDate", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := budget.NewService(budget.NewMockRepository(ctrl), nil)
		_, _, err := svc.RecordExpense(context.Background(), lineID, budget.ExpenseParams{
			Amount: 100,
		}, "actor-1")

		assert.ErrorIs(t, err, budget.ErrInvalidInput)
	})

	t.Run("BelowThresholdNoAlertCheck", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := budget.NewMockRepository(ctrl)
		checker := budget.NewMockCompletionChecker(ctrl)

		repo.EXPECT().
			InsertExpense(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e *budget.Expense) (*budget.Line, error) {
				e.ID = uuid.New()
				return &budget.Line{ID: lineID, AssignedAmount: 500, ExecutedAmount: 200}, nil
			})
		// Checker must not be called while below 100%.

		svc := budget.NewService(repo, checker)
		e, line, err := svc.RecordExpense(context.Background(), lineID, budget.ExpenseParams{
			Amount: 200,
			Date:   expenseDate,
		}, "actor-1")

		require.NoError(t, err)
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, int64(200), line.ExecutedAmount)
	})

	t.Run("ThresholdReachedTriggersAlertCheck", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := budget.NewMockRepository(ctrl)
		checker := budget.NewMockCompletionChecker(ctrl)

		full := &budget.Line{ID: lineID, AssignedAmount: 500, ExecutedAmount: 500}

		repo.EXPECT().
			InsertExpense(gomock.Any(), gomock.Any()).
			Return(full, nil)
		checker.EXPECT().
			CheckLineComplete(gomock.Any(), full).
			Return(nil)

		svc := budget.NewService(repo, checker)
		_, line, err := svc.RecordExpense(context.Background(), lineID, budget.ExpenseParams{
			Amount: 300,
			Date:   expenseDate,
		}, "actor-1")

		require.NoError(t, err)
		assert.True(t, line.Complete())
	})

	t.Run("ZeroAssignedNeverCompletes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := budget.NewMockRepository(ctrl)
		checker := budget.NewMockCompletionChecker(ctrl)

		repo.EXPECT().
			InsertExpense(gomock.Any(), gomock.Any()).
			Return(&budget.Line{ID: lineID, AssignedAmount: 0, ExecutedAmount: 900}, nil)
		// No completion check for a zero-assignment line.

		svc := budget.NewService(repo, checker)
		_, line, err := svc.RecordExpense(context.Background(), lineID, budget.ExpenseParams{
			Amount: 900,
			Date:   expenseDate,
		}, "actor-1")

		require.NoError(t, err)
		assert.False(t, line.Complete())
	})

	t.Run("AlertCheckFailureDoesNotFailRecord", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := budget.NewMockRepository(ctrl)
		checker := budget.NewMockCompletionChecker(ctrl)

		repo.EXPECT().
			InsertExpense(gomock.Any(), gomock.Any()).
			Return(&budget.Line{ID: lineID, AssignedAmount: 100, ExecutedAmount: 100}, nil)
		checker.EXPECT().
			CheckLineComplete(gomock.Any(), gomock.Any()).
			Return(errors.New("alert store down"))

		svc := budget.NewService(repo, checker)
		e, _, err := svc.RecordExpense(context.Background(), lineID, budget.ExpenseParams{
			Amount: 100,
			Date:   expenseDate,
		}, "actor-1")

		require.NoError(t, err)
		assert.NotNil(t, e)
	})

	t.Run("FutureDateAccepted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := budget.NewMockRepository(ctrl)

		repo.EXPECT().
			InsertExpense(gomock.Any(), gomock.Any()).
			Return(&budget.Line{ID: lineID, AssignedAmount: 1000, ExecutedAmount: 10}, nil)

		svc := budget.NewService(repo, nil)
		_, _, err := svc.RecordExpense(context.Background(), lineID, budget.ExpenseParams{
			Amount: 10,
			Date:   time.Now().AddDate(1, 0, 0),
		}, "actor-1")

		assert.NoError(t, err)
	})
}

func TestService_UpdateExpense(t *testing.T) {
	expenseID := uuid.New()
	lineID := uuid.New()

	t.Run("RaisingAmountCanCompleteLine", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := budget.NewMockRepository(ctrl)
		checker := budget.NewMockCompletionChecker(ctrl)

		repo.EXPECT().
			GetExpense(gomock.Any(), expenseID).
			Return(&budget.Expense{ID: expenseID, LineID: lineID, Amount: 100}, nil)
		repo.EXPECT().
			UpdateExpense(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e *budget.Expense) (*budget.Line, error) {
				assert.Equal(t, int64(500), e.Amount)
				return &budget.Line{ID: lineID, AssignedAmount: 500, ExecutedAmount: 500}, nil
			})
		checker.EXPECT().
			CheckLineComplete(gomock.Any(), gomock.Any()).
			Return(nil)

		svc := budget.NewService(repo, checker)
		_, line, err := svc.UpdateExpense(context.Background(), expenseID, budget.ExpenseParams{
			Amount: 500,
			Date:   expenseDate,
		})

		require.NoError(t, err)
		assert.True(t, line.Complete())
	})

	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := budget.NewMockRepository(ctrl)

		repo.EXPECT().
			GetExpense(gomock.Any(), expenseID).
			Return(nil, budget.ErrNotFound)

		svc := budget.NewService(repo, nil)
		_, _, err := svc.UpdateExpense(context.Background(), expenseID, budget.ExpenseParams{
			Amount: 10,
			Date:   expenseDate,
		})

		assert.ErrorIs(t, err, budget.ErrNotFound)
	})
}

func TestService_DeleteExpense(t *testing.T) {
	expenseID := uuid.New()
	lineID := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	checker := budget.NewMockCompletionChecker(ctrl)

	// Deletion drops the line back below the threshold; no alert evaluation
	// runs and no retraction happens.
	repo.EXPECT().
		DeleteExpense(gomock.Any(), expenseID).
		Return(&budget.Line{ID: lineID, AssignedAmount: 500, ExecutedAmount: 200}, nil)

	svc := budget.NewService(repo, checker)
	line, err := svc.DeleteExpense(context.Background(), expenseID)

	require.NoError(t, err)
	assert.Equal(t, int64(200), line.ExecutedAmount)
	assert.False(t, line.Complete())
}

func TestService_DeleteLine(t *testing.T) {
	lineID := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)

	repo.EXPECT().
		DeleteLine(gomock.Any(), lineID).
		Return(budget.ErrConflict)

	svc := budget.NewService(repo, nil)
	assert.ErrorIs(t, svc.DeleteLine(context.Background(), lineID), budget.ErrConflict)
}

func TestLine_Complete(t *testing.T) {
	tests := []struct {
		name     string
		assigned int64
		executed int64
		want     bool
	}{
		{"Exact", 500, 500, true},
		{"Over", 500, 600, true},
		{"Under", 500, 499, false},
		{"ZeroAssigned", 0, 0, false},
		{"ZeroAssignedWithSpend", 0, 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := budget.Line{AssignedAmount: tt.assigned, ExecutedAmount: tt.executed}
			assert.Equal(t, tt.want, l.Complete())
		})
	}
}
