package budget

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jcastell/obratrack/internal/actor"
	"github.com/jcastell/obratrack/internal/budget"
)

type Handler struct {
	svc *budget.Service
}

func NewHandler(svc *budget.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) BudgetRoutes(r chi.Router) {
	r.Post("/", h.createBudget)
	r.Get("/", h.getActiveBudget)
	r.Get("/{id}", h.getBudget)
	r.Post("/{id}/lines", h.addLine)
	r.Get("/{id}/lines", h.listLines)
}

func (h *Handler) LineRoutes(r chi.Router) {
	r.Get("/{id}", h.getLine)
	r.Delete("/{id}", h.deleteLine)
	r.Post("/{id}/expenses", h.recordExpense)
	r.Get("/{id}/expenses", h.listExpenses)
}

func (h *Handler) ExpenseRoutes(r chi.Router) {
	r.Patch("/{id}", h.updateExpense)
	r.Delete("/{id}", h.deleteExpense)
}

type createBudgetRequest struct {
	ProjectID   uuid.UUID `json:"project_id"`
	TotalAmount int64     `json:"total_amount"`
}

func (h *Handler) createBudget(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a, _ := actor.FromContext(r.Context())

	b, err := h.svc.CreateBudget(r.Context(), req.ProjectID, req.TotalAmount, a.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBudgetResponse(b))
}

// getActiveBudget resolves the currently active budget version of a project,
// identified by the required project_id query parameter.
func (h *Handler) getActiveBudget(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.URL.Query().Get("project_id"))
	if err != nil {
		http.Error(w, "invalid project_id", http.StatusBadRequest)
		return
	}

	b, err := h.svc.ActiveBudget(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBudgetResponse(b))
}

func (h *Handler) getBudget(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	b, err := h.svc.GetBudget(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBudgetResponse(b))
}

type addLineRequest struct {
	Name           string `json:"name"`
	AssignedAmount int64  `json:"assigned_amount"`
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	budgetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req addLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	l, err := h.svc.AddLine(r.Context(), budgetID, req.Name, req.AssignedAmount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toLineResponse(l))
}

func (h *Handler) listLines(w http.ResponseWriter, r *http.Request) {
	budgetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	lines, err := h.svc.Lines(r.Context(), budgetID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLineResponseList(lines))
}

func (h *Handler) getLine(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	l, err := h.svc.GetLine(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLineResponse(l))
}

func (h *Handler) deleteLine(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteLine(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type expenseRequest struct {
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	DocumentRef string    `json:"document_ref"`
}

func (h *Handler) recordExpense(w http.ResponseWriter, r *http.Request) {
	lineID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a, _ := actor.FromContext(r.Context())

	e, line, err := h.svc.RecordExpense(r.Context(), lineID, budget.ExpenseParams{
		Amount:      req.Amount,
		Description: req.Description,
		Date:        req.Date,
		DocumentRef: req.DocumentRef,
	}, a.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseResultResponse(e, line))
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	lineID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	expenses, err := h.svc.Expenses(r.Context(), lineID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toExpenseResponseList(expenses))
}

func (h *Handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, line, err := h.svc.UpdateExpense(r.Context(), id, budget.ExpenseParams{
		Amount:      req.Amount,
		Description: req.Description,
		Date:        req.Date,
		DocumentRef: req.DocumentRef,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toExpenseResultResponse(e, line))
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	line, err := h.svc.DeleteExpense(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLineResponse(line))
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
	case errors.Is(err, budget.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "budget record not found"})
	case errors.Is(err, budget.ErrInvalidInput):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, budget.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
