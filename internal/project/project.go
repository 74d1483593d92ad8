package project

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a project.
type Status string

const (
	StatusPlanned     Status = "planned"
	StatusInExecution Status = "in_execution"
	StatusCompleted   Status = "completed"
	StatusSettled     Status = "settled"
)

// Project represents a tracked construction work item.
type Project struct {
	ID            uuid.UUID
	Name          string
	Location      string
	InitialAmount int64 // Amount in cents
	PlannedStart  time.Time
	PlannedEnd    time.Time
	Status        Status
	ResponsibleID string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// HistoryEntry is one row of a project's append-only status trail.
// Entries are never updated or deleted.
type HistoryEntry struct {
	ID            uuid.UUID
	ProjectID     uuid.UUID
	Status        Status
	ActorID       string
	Justification string
	CreatedAt     time.Time
}
