package project_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jcastell/obratrack/internal/project"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    project.CreateParams
		setupMock func(m *project.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			params: project.CreateParams{
				Name:          "Av. Libertad resurfacing",
				Location:      "District 4",
				InitialAmount: 100_000,
				PlannedStart:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
				PlannedEnd:    time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC),
				ResponsibleID: "eng-17",
			},
			setupMock: func(m *project.MockRepository) {
				m.EXPECT().
					CreateProject(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *project.Project, entry *project.HistoryEntry) error {
						assert.Equal(t, project.StatusPlanned, p.Status)
						assert.Equal(t, project.StatusPlanned, entry.Status)
						assert.Equal(t, "creation", entry.Justification)
						p.ID = uuid.New()
						p.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name:    "EmptyName",
			params:  project.CreateParams{InitialAmount: 1000},
			wantErr: project.ErrInvalidInput,
		},
		{
			name:    "NonPositiveAmount",
			params:  project.CreateParams{Name: "Bridge repair", InitialAmount: 0},
			wantErr: project.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := project.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := project.NewService(repo, nil)
			got, err := svc.Create(context.Background(), tt.params, "actor-1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, project.StatusPlanned, got.Status)
		})
	}
}

func TestService_ChangeStatus(t *testing.T) {
	id := uuid.New()

	t.Run("ValidTransition", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := project.NewMockRepository(ctrl)
		notifier := project.NewMockNotifier(ctrl)

		repo.EXPECT().
			GetProject(gomock.Any(), id).
			Return(&project.Project{ID: id, Status: project.StatusPlanned}, nil)
		repo.EXPECT().
			UpdateStatus(gomock.Any(), id, project.StatusPlanned, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, _ project.Status, entry *project.HistoryEntry) error {
				assert.Equal(t, project.StatusInExecution, entry.Status)
				assert.Equal(t, "actor-1", entry.ActorID)
				assert.Equal(t, "work started", entry.Justification)
				return nil
			})
		notifier.EXPECT().
			NotifyStatusChange(id, project.StatusPlanned, project.StatusInExecution, "actor-1")

		svc := project.NewService(repo, notifier)
		got, err := svc.ChangeStatus(context.Background(), id, project.StatusInExecution, "actor-1", "work started")

		require.NoError(t, err)
		assert.Equal(t, project.StatusInExecution, got.Status)
	})

	t.Run("SameStatusIsNoOp", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := project.NewMockRepository(ctrl)
		notifier := project.NewMockNotifier(ctrl)

		repo.EXPECT().
			GetProject(gomock.Any(), id).
			Return(&project.Project{ID: id, Status: project.StatusInExecution}, nil)
		// No UpdateStatus, no history entry, no notification.

		svc := project.NewService(repo, notifier)
		got, err := svc.ChangeStatus(context.Background(), id, project.StatusInExecution, "actor-1", "")

		require.NoError(t, err)
		assert.Equal(t, project.StatusInExecution, got.Status)
	})

	t.Run("InvalidTransitionCarriesAllowed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := project.NewMockRepository(ctrl)

		repo.EXPECT().
			GetProject(gomock.Any(), id).
			Return(&project.Project{ID: id, Status: project.StatusPlanned}, nil)

		svc := project.NewService(repo, nil)
		got, err := svc.ChangeStatus(context.Background(), id, project.StatusCompleted, "actor-1", "")

		assert.Nil(t, got)

		var transitionErr *project.InvalidTransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, project.StatusPlanned, transitionErr.From)
		assert.Equal(t, project.StatusCompleted, transitionErr.To)
		assert.Equal(t, []project.Status{project.StatusInExecution}, transitionErr.Allowed)
	})

	t.Run("TerminalStatusHasNoDestinations", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := project.NewMockRepository(ctrl)

		repo.EXPECT().
			GetProject(gomock.Any(), id).
			Return(&project.Project{ID: id, Status: project.StatusSettled}, nil)

		svc := project.NewService(repo, nil)
		_, err := svc.ChangeStatus(context.Background(), id, project.StatusPlanned, "actor-1", "")

		var transitionErr *project.InvalidTransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Empty(t, transitionErr.Allowed)
	})

	t.Run("UnknownStatusRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := project.NewMockRepository(ctrl)

		svc := project.NewService(repo, nil)
		_, err := svc.ChangeStatus(context.Background(), id, "archived", "actor-1", "")

		assert.ErrorIs(t, err, project.ErrInvalidInput)
	})

	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := project.NewMockRepository(ctrl)

		repo.EXPECT().
			GetProject(gomock.Any(), id).
			Return(nil, project.ErrNotFound)

		svc := project.NewService(repo, nil)
		_, err := svc.ChangeStatus(context.Background(), id, project.StatusInExecution, "actor-1", "")

		assert.ErrorIs(t, err, project.ErrNotFound)
	})

	t.Run("LostRaceSurfacesConflict", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := project.NewMockRepository(ctrl)

		repo.EXPECT().
			GetProject(gomock.Any(), id).
			Return(&project.Project{ID: id, Status: project.StatusPlanned}, nil)
		repo.EXPECT().
			UpdateStatus(gomock.Any(), id, project.StatusPlanned, gomock.Any()).
			Return(project.ErrConflict)

		svc := project.NewService(repo, nil)
		_, err := svc.ChangeStatus(context.Background(), id, project.StatusInExecution, "actor-1", "")

		assert.ErrorIs(t, err, project.ErrConflict)
	})
}

func TestService_Delete(t *testing.T) {
	id := uuid.New()

	t.Run("PlannedProjectDeletable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := project.NewMockRepository(ctrl)

		repo.EXPECT().
			GetProject(gomock.Any(), id).
			Return(&project.Project{ID: id, Status: project.StatusPlanned}, nil)
		repo.EXPECT().
			DeleteProject(gomock.Any(), id).
			Return(nil)

		svc := project.NewService(repo, nil)
		assert.NoError(t, svc.Delete(context.Background(), id))
	})

	t.Run("StartedProjectNotDeletable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := project.NewMockRepository(ctrl)

		repo.EXPECT().
			GetProject(gomock.Any(), id).
			Return(&project.Project{ID: id, Status: project.StatusInExecution}, nil)

		svc := project.NewService(repo, nil)
		assert.ErrorIs(t, svc.Delete(context.Background(), id), project.ErrConflict)
	})
}

func TestService_Update(t *testing.T) {
	id := uuid.New()

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := project.NewMockRepository(ctrl)

		repo.EXPECT().
			GetProject(gomock.Any(), id).
			Return(&project.Project{ID: id, Status: project.StatusInExecution, Name: "old"}, nil)
		repo.EXPECT().
			UpdateProject(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p *project.Project) error {
				assert.Equal(t, "new name", p.Name)
				// Status is untouched by generic edits.
				assert.Equal(t, project.StatusInExecution, p.Status)
				return nil
			})

		svc := project.NewService(repo, nil)
		got, err := svc.Update(context.Background(), id, project.UpdateParams{Name: "new name"})

		require.NoError(t, err)
		assert.Equal(t, "new name", got.Name)
	})

	t.Run("RepoError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := project.NewMockRepository(ctrl)

		repo.EXPECT().
			GetProject(gomock.Any(), id).
			Return(&project.Project{ID: id}, nil)
		repo.EXPECT().
			UpdateProject(gomock.Any(), gomock.Any()).
			Return(errors.New("db error"))

		svc := project.NewService(repo, nil)
		_, err := svc.Update(context.Background(), id, project.UpdateParams{Name: "x"})

		assert.Error(t, err)
	})
}
