package handlers

import (
	"net/http"

	"github.com/finbook-app/finbook/internal/api/httpx"
	"github.com/finbook-app/finbook/internal/api/middleware"
	"github.com/finbook-app/finbook/internal/domain/shared"
	"github.com/finbook-app/finbook/internal/service"
	"github.com/finbook-app/finbook/internal/store"
	"github.com/finbook-app/finbook/pkg/logger"
)

// FinanceHandler exposes revenue and expense CRUD over HTTP. All
// endpoints require auth; documents are always scoped to the
// authenticated user.
type FinanceHandler struct {
	logger   *logger.Logger
	revenues *service.RevenueService
	expenses *service.ExpenseService
}

// NewFinanceHandler creates a finance handler
func NewFinanceHandler(log *logger.Logger, revenues *service.RevenueService, expenses *service.ExpenseService) *FinanceHandler {
	return &FinanceHandler{
		logger:   log.WithComponent("finance-handler"),
		revenues: revenues,
		expenses: expenses,
	}
}

// HandleListRevenues handles GET /api/v1/revenues
func (h *FinanceHandler) HandleListRevenues(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, shared.ErrInvalidInput("missing authenticated user"))
		return
	}

	docs, err := h.revenues.GetRevenues(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, docs)
}

// HandleGetRevenue handles GET /api/v1/revenues/{id}
func (h *FinanceHandler) HandleGetRevenue(w http.ResponseWriter, r *http.Request) {
	doc, err := h.revenues.GetRevenueByID(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if doc == nil {
		httpx.WriteError(w, shared.ErrNotFound("revenue"))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, doc)
}

// HandleAddRevenue handles POST /api/v1/revenues
func (h *FinanceHandler) HandleAddRevenue(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, shared.ErrInvalidInput("missing authenticated user"))
		return
	}

	var doc store.Document
	if err := httpx.Decode(r, &doc); err != nil {
		httpx.WriteError(w, shared.ErrInvalidInput("invalid request body"))
		return
	}
	doc["user_id"] = userID

	result, err := h.revenues.AddRevenue(r.Context(), doc)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, result)
}

// HandleUpdateRevenue handles PUT /api/v1/revenues/{id}
func (h *FinanceHandler) HandleUpdateRevenue(w http.ResponseWriter, r *http.Request) {
	var patch store.Document
	if err := httpx.Decode(r, &patch); err != nil {
		httpx.WriteError(w, shared.ErrInvalidInput("invalid request body"))
		return
	}

	result, err := h.revenues.UpdateRevenue(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

// HandleDeleteRevenue handles DELETE /api/v1/revenues/{id}
func (h *FinanceHandler) HandleDeleteRevenue(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, shared.ErrInvalidInput("missing authenticated user"))
		return
	}

	deleted, err := h.revenues.DeleteRevenue(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, deleted)
}

// HandleListExpenses handles GET /api/v1/expenses
func (h *FinanceHandler) HandleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, shared.ErrInvalidInput("missing authenticated user"))
		return
	}

	docs, err := h.expenses.GetExpenses(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, docs)
}

// HandleGetExpense handles GET /api/v1/expenses/{id}
func (h *FinanceHandler) HandleGetExpense(w http.ResponseWriter, r *http.Request) {
	doc, err := h.expenses.GetExpenseByID(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if doc == nil {
		httpx.WriteError(w, shared.ErrNotFound("expense"))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, doc)
}

// HandleAddExpense handles POST /api/v1/expenses
func (h *FinanceHandler) HandleAddExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, shared.ErrInvalidInput("missing authenticated user"))
		return
	}

	var doc store.Document
	if err := httpx.Decode(r, &doc); err != nil {
		httpx.WriteError(w, shared.ErrInvalidInput("invalid request body"))
		return
	}
	doc["user_id"] = userID

	result, err := h.expenses.AddExpense(r.Context(), doc)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, result)
}

// HandleUpdateExpense handles PUT /api/v1/expenses/{id}
func (h *FinanceHandler) HandleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var patch store.Document
	if err := httpx.Decode(r, &patch); err != nil {
		httpx.WriteError(w, shared.ErrInvalidInput("invalid request body"))
		return
	}

	result, err := h.expenses.UpdateExpense(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

// HandleDeleteExpense handles DELETE /api/v1/expenses/{id}
func (h *FinanceHandler) HandleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, shared.ErrInvalidInput("missing authenticated user"))
		return
	}

	deleted, err := h.expenses.DeleteExpense(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, deleted)
}
