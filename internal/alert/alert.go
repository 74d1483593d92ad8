package alert

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type classifies what condition an alert is derived from.
type Type string

const (
	TypeLineComplete       Type = "line_complete"
	TypeProjectCompletable Type = "project_completable"
	TypeGeneric            Type = "generic"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// State represents the lifecycle state of an alert. Alerts are acknowledged,
// never deleted, so the trail of past conditions survives.
type State string

const (
	StateActive       State = "active"
	StateAcknowledged State = "acknowledged"
)

// Alert is a derived, deduplicated notification of a threshold condition.
// CorrelationKey identifies the condition instance (the line id or project
// id); while an alert for a (type, key) pair is active, re-triggering the
// condition creates nothing new.
type Alert struct {
	ID             uuid.UUID
	Type           Type
	CorrelationKey string
	Description    string
	Severity       Severity
	RecipientRole  string
	State          State
	CreatedAt      time.Time
	AcknowledgedAt *time.Time
	AcknowledgedBy *string
}

var (
	ErrNotFound = errors.New("alert not found")

	// ErrConflict marks an acknowledgement of an already acknowledged alert.
	ErrConflict = errors.New("alert state conflict")
)
