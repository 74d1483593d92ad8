package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jcastell/obratrack/internal/alert"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectAlertColumns = `
	a.id, a.type, a.correlation_key, a.description, a.severity, a.recipient_role,
	a.state, a.created_at, a.acknowledged_at, a.acknowledged_by
`

func scanAlert(s scanner) (*alert.Alert, error) {
	var a alert.Alert

	var typeStr, severityStr, stateStr string

	if err := s.Scan(
		&a.ID, &typeStr, &a.CorrelationKey, &a.Description, &severityStr, &a.RecipientRole,
		&stateStr, &a.CreatedAt, &a.AcknowledgedAt, &a.AcknowledgedBy,
	); err != nil {
		return nil, err
	}

	a.Type = alert.Type(typeStr)
	a.Severity = alert.Severity(severityStr)
	a.State = alert.State(stateStr)

	return &a, nil
}

// CreateIfAbsent inserts the alert unless an active one already covers the
// same (type, correlation key). The ON CONFLICT clause targets the partial
// unique index alerts_one_active, so the dedup check and the insert are one
// atomic statement.
func (s *Store) CreateIfAbsent(ctx context.Context, a *alert.Alert) (bool, error) {
	query := `
		INSERT INTO alerts (type, correlation_key, description, severity, recipient_role, state, created_at)
		VALUES ($1, $2, $3, $4, $5, 'active', NOW())
		ON CONFLICT (type, correlation_key) WHERE state = 'active' DO NOTHING
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		a.Type,
		a.CorrelationKey,
		a.Description,
		a.Severity,
		a.RecipientRole,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("creating alert: %w", err)
	}

	a.State = alert.StateActive

	return true, nil
}

func (s *Store) GetAlert(ctx context.Context, id uuid.UUID) (*alert.Alert, error) {
	query := `SELECT ` + selectAlertColumns + ` FROM alerts a WHERE a.id = $1`

	a, err := scanAlert(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, alert.ErrNotFound
		}

		return nil, fmt.Errorf("getting alert: %w", err)
	}

	return a, nil
}

func (s *Store) ListAlerts(ctx context.Context, filter alert.ListFilter) ([]*alert.Alert, error) {
	query := `SELECT ` + selectAlertColumns + ` FROM alerts a WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.State != nil {
		query += fmt.Sprintf(" AND a.state = $%d", argIdx)

		args = append(args, *filter.State)
		argIdx++
	}

	if filter.Type != nil {
		query += fmt.Sprintf(" AND a.type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	query += " ORDER BY a.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*alert.Alert

	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}

		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alert rows: %w", err)
	}

	return alerts, nil
}

// Acknowledge flips an active alert to acknowledged. Alerts are never hard
// deleted; the acknowledged row stays as audit trail.
func (s *Store) Acknowledge(ctx context.Context, id uuid.UUID, actorID string) (*alert.Alert, error) {
	query := `
		UPDATE alerts
		SET state = 'acknowledged', acknowledged_at = NOW(), acknowledged_by = $1
		WHERE id = $2 AND state = 'active'
		RETURNING id, type, correlation_key, description, severity, recipient_role,
		          state, created_at, acknowledged_at, acknowledged_by
	`

	a, err := scanAlert(s.db.QueryRowContext(ctx, query, actorID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM alerts WHERE id = $1)`, id).Scan(&exists); err != nil {
				return nil, fmt.Errorf("checking alert existence: %w", err)
			}

			if !exists {
				return nil, alert.ErrNotFound
			}

			return nil, fmt.Errorf("%w: alert already acknowledged", alert.ErrConflict)
		}

		return nil, fmt.Errorf("acknowledging alert: %w", err)
	}

	return a, nil
}
