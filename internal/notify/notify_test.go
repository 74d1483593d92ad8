package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcastell/obratrack/internal/project"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []project.Status
	err   error
	block chan struct{}
}

func (r *recordingNotifier) NotifyStatusChange(ctx context.Context, _ uuid.UUID, _, to project.Status, _ string) error {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, to)

	return r.err
}

func (r *recordingNotifier) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.calls)
}

func TestDispatcher_DeliversWithoutBlocking(t *testing.T) {
	inner := &recordingNotifier{}
	d := NewDispatcher(inner, time.Second)

	d.NotifyStatusChange(uuid.New(), project.StatusPlanned, project.StatusInExecution, "actor-1")
	d.Wait()

	assert.Equal(t, 1, inner.callCount())
}

func TestDispatcher_SwallowsNotifierErrors(t *testing.T) {
	inner := &recordingNotifier{err: errors.New("endpoint down")}
	d := NewDispatcher(inner, time.Second)

	// Must not panic or surface anywhere; the transition already succeeded.
	d.NotifyStatusChange(uuid.New(), project.StatusInExecution, project.StatusCompleted, "actor-1")
	d.Wait()

	assert.Equal(t, 1, inner.callCount())
}

func TestDispatcher_BoundsSlowDeliveries(t *testing.T) {
	inner := &recordingNotifier{block: make(chan struct{})}
	defer close(inner.block)

	d := NewDispatcher(inner, 20*time.Millisecond)

	done := make(chan struct{})

	go func() {
		d.NotifyStatusChange(uuid.New(), project.StatusPlanned, project.StatusInExecution, "actor-1")
		d.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not time out a stuck delivery")
	}

	require.Equal(t, 0, inner.callCount())
}
