package alert

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jcastell/obratrack/internal/actor"
	"github.com/jcastell/obratrack/internal/alert"
)

type Handler struct {
	engine *alert.Engine
}

func NewHandler(engine *alert.Engine) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/{id}/ack", h.acknowledge)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := alert.ListFilter{}

	if s := r.URL.Query().Get("state"); s != "" {
		state := alert.State(s)
		filter.State = &state
	}

	if s := r.URL.Query().Get("type"); s != "" {
		alertType := alert.Type(s)
		filter.Type = &alertType
	}

	alerts, err := h.engine.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(alerts))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	a, err := h.engine.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(a))
}

func (h *Handler) acknowledge(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	act, _ := actor.FromContext(r.Context())

	a, err := h.engine.Acknowledge(r.Context(), id, act.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(a))
}

type alertResponse struct {
	ID             uuid.UUID      `json:"id"`
	Type           alert.Type     `json:"type"`
	CorrelationKey string         `json:"correlation_key"`
	Description    string         `json:"description"`
	Severity       alert.Severity `json:"severity"`
	RecipientRole  string         `json:"recipient_role"`
	State          alert.State    `json:"state"`
	CreatedAt      time.Time      `json:"created_at"`
	AcknowledgedAt *time.Time     `json:"acknowledged_at,omitempty"`
	AcknowledgedBy *string        `json:"acknowledged_by,omitempty"`
}

func toResponse(a *alert.Alert) alertResponse {
	return alertResponse{
		ID:             a.ID,
		Type:           a.Type,
		CorrelationKey: a.CorrelationKey,
		Description:    a.Description,
		Severity:       a.Severity,
		RecipientRole:  a.RecipientRole,
		State:          a.State,
		CreatedAt:      a.CreatedAt,
		AcknowledgedAt: a.AcknowledgedAt,
		AcknowledgedBy: a.AcknowledgedBy,
	}
}

func toResponseList(alerts []*alert.Alert) []alertResponse {
	resp := make([]alertResponse, len(alerts))
	for i, a := range alerts {
		resp[i] = toResponse(a)
	}

	return resp
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, alert.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "alert not found"})
	case errors.Is(err, alert.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
