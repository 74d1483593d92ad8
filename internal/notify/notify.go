package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcastell/obratrack/internal/project"
)

// Notifier delivers a status-change notification to the outside world.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, projectID uuid.UUID, from, to project.Status, actorID string) error
}

// Dispatcher invokes a Notifier without blocking the caller. Each dispatch
// runs in its own goroutine under a bounded timeout; failures are logged and
// never reach the lifecycle operation that triggered them.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(notifier Notifier, timeout time.Duration) *Dispatcher {
	return &Dispatcher{notifier: notifier, timeout: timeout}
}

func (d *Dispatcher) NotifyStatusChange(projectID uuid.UUID, from, to project.Status, actorID string) {
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.notifier.NotifyStatusChange(ctx, projectID, from, to, actorID); err != nil {
			slog.Error("status change notification failed",
				"project_id", projectID, "from", from, "to", to, "error", err)
		}
	}()
}

// Wait blocks until all in-flight dispatches finished. Used on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// LogNotifier is the fallback delivery used when no webhook is configured.
type LogNotifier struct{}

func (LogNotifier) NotifyStatusChange(_ context.Context, projectID uuid.UUID, from, to project.Status, actorID string) error {
	slog.Info("project status changed",
		"project_id", projectID, "from", from, "to", to, "actor_id", actorID)

	return nil
}
