package project

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=project
type Repository interface {
	// CreateProject persists the project, its version-1 active budget and the
	// initial history entry as one unit. No partial writes survive a failure.
	CreateProject(ctx context.Context, p *Project, entry *HistoryEntry) error
	GetProject(ctx context.Context, id uuid.UUID) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	UpdateProject(ctx context.Context, p *Project) error

	// UpdateStatus sets the status to entry.Status only if the stored status
	// still equals from, and appends entry in the same transaction. Returns
	// ErrConflict when the compare-and-swap loses a race.
	UpdateStatus(ctx context.Context, id uuid.UUID, from Status, entry *HistoryEntry) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
	ListHistory(ctx context.Context, projectID uuid.UUID) ([]*HistoryEntry, error)
}

// Notifier receives status-change notifications after a successful
// transition. Delivery is fire-and-forget; implementations must not block.
type Notifier interface {
	NotifyStatusChange(projectID uuid.UUID, from, to Status, actorID string)
}

type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

type CreateParams struct {
	Name          string
	Location      string
	InitialAmount int64
	PlannedStart  time.Time
	PlannedEnd    time.Time
	ResponsibleID string
}

// Create persists a new project in status planned, together with its first
// budget (version 1, active, total equal to the initial amount) and the
// initial history entry.
func (s *Service) Create(ctx context.Context, params CreateParams, actorID string) (*Project, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	if params.InitialAmount <= 0 {
		return nil, fmt.Errorf("%w: initial amount must be positive", ErrInvalidInput)
	}

	p := &Project{
		Name:          params.Name,
		Location:      params.Location,
		InitialAmount: params.InitialAmount,
		PlannedStart:  params.PlannedStart,
		PlannedEnd:    params.PlannedEnd,
		Status:        StatusPlanned,
		ResponsibleID: params.ResponsibleID,
	}

	entry := &HistoryEntry{
		Status:        StatusPlanned,
		ActorID:       actorID,
		Justification: "creation",
	}

	if err := s.repo.CreateProject(ctx, p, entry); err != nil {
		return nil, err
	}

	return p, nil
}

// ChangeStatus moves the project to the requested status after validating the
// transition. Requesting the current status is a no-op. The history entry is
// written in the same transaction as the status, guarded by a
// compare-and-swap on the status read here.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, to Status, actorID, justification string) (*Project, error) {
	if !ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}

	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Status == to {
		return p, nil
	}

	if !CanTransition(p.Status, to) {
		return nil, &InvalidTransitionError{From: p.Status, To: to, Allowed: AllowedTransitions(p.Status)}
	}

	entry := &HistoryEntry{
		ProjectID:     id,
		Status:        to,
		ActorID:       actorID,
		Justification: justification,
	}

	if err := s.repo.UpdateStatus(ctx, id, p.Status, entry); err != nil {
		return nil, err
	}

	from := p.Status
	p.Status = to

	if s.notifier != nil {
		s.notifier.NotifyStatusChange(id, from, to, actorID)
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.repo.GetProject(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Project, error) {
	return s.repo.ListProjects(ctx)
}

type UpdateParams struct {
	Name          string
	Location      string
	PlannedStart  time.Time
	PlannedEnd    time.Time
	ResponsibleID string
}

// Update applies generic edits. The status field is only reachable through
// ChangeStatus.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Project, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = params.Name
	p.Location = params.Location
	p.PlannedStart = params.PlannedStart
	p.PlannedEnd = params.PlannedEnd
	p.ResponsibleID = params.ResponsibleID

	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// Delete removes a project. Only projects still in planned are deletable.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return err
	}

	if p.Status != StatusPlanned {
		return fmt.Errorf("%w: only planned projects can be deleted", ErrConflict)
	}

	return s.repo.DeleteProject(ctx, id)
}

func (s *Service) History(ctx context.Context, projectID uuid.UUID) ([]*HistoryEntry, error) {
	return s.repo.ListHistory(ctx, projectID)
}
