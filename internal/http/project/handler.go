package project

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jcastell/obratrack/internal/actor"
	"github.com/jcastell/obratrack/internal/project"
)

type Handler struct {
	svc *project.Service
}

func NewHandler(svc *project.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/status", h.changeStatus)
	r.Get("/{id}/history", h.history)
}

type createProjectRequest struct {
	Name          string    `json:"name"`
	Location      string    `json:"location"`
	InitialAmount int64     `json:"initial_amount"`
	PlannedStart  time.Time `json:"planned_start"`
	PlannedEnd    time.Time `json:"planned_end"`
	ResponsibleID string    `json:"responsible_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a, _ := actor.FromContext(r.Context())

	responsible := req.ResponsibleID
	if responsible == "" {
		responsible = a.ID
	}

	p, err := h.svc.Create(r.Context(), project.CreateParams{
		Name:          req.Name,
		Location:      req.Location,
		InitialAmount: req.InitialAmount,
		PlannedStart:  req.PlannedStart,
		PlannedEnd:    req.PlannedEnd,
		ResponsibleID: responsible,
	}, a.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(projects))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(p))
}

type updateProjectRequest struct {
	Name          string    `json:"name"`
	Location      string    `json:"location"`
	PlannedStart  time.Time `json:"planned_start"`
	PlannedEnd    time.Time `json:"planned_end"`
	ResponsibleID string    `json:"responsible_id"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.svc.Update(r.Context(), id, project.UpdateParams{
		Name:          req.Name,
		Location:      req.Location,
		PlannedStart:  req.PlannedStart,
		PlannedEnd:    req.PlannedEnd,
		ResponsibleID: req.ResponsibleID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type changeStatusRequest struct {
	Status        project.Status `json:"status"`
	Justification string         `json:"justification"`
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a, _ := actor.FromContext(r.Context())

	p, err := h.svc.ChangeStatus(r.Context(), id, req.Status, a.ID, req.Justification)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	entries, err := h.svc.History(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toHistoryResponseList(entries))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error   string           `json:"error"`
	Allowed []project.Status `json:"allowed_destinations,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	var transitionErr *project.InvalidTransitionError

	switch {
	case errors.Is(err, project.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "project not found"})
	case errors.As(err, &transitionErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   transitionErr.Error(),
			Allowed: transitionErr.Allowed,
		})
	case errors.Is(err, project.ErrInvalidInput):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, project.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
