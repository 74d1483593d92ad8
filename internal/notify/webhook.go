package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jcastell/obratrack/internal/project"
)

// WebhookNotifier posts status changes to an external notification service.
type WebhookNotifier struct {
	client   *http.Client
	url      string
	apiToken string
}

func NewWebhookNotifier(url, apiToken string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		client:   &http.Client{Timeout: timeout},
		url:      url,
		apiToken: apiToken,
	}
}

type statusChangePayload struct {
	ProjectID  uuid.UUID `json:"project_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (n *WebhookNotifier) NotifyStatusChange(ctx context.Context, projectID uuid.UUID, from, to project.Status, actorID string) error {
	payload := statusChangePayload{
		ProjectID:  projectID,
		FromStatus: string(from),
		ToStatus:   string(to),
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if n.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+n.apiToken)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned status %d", resp.StatusCode)
	}

	return nil
}
