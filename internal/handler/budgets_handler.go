package handler

import (
	"encoding/json"
	"net/http"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Budget Handlers
// ============================================================

func listBudgetsHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/budgets")
		defer span.End()

		userID := UserIDFromContext(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		resp, err := svc.List(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func upsertBudgetHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/budgets")
		defer span.End()

		userID := UserIDFromContext(ctx)

		var req domain.UpsertBudgetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		budget, err := svc.Upsert(ctx, userID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, budget)
	}
}

func deleteBudgetHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/budgets/{category}")
		defer span.End()

		userID := UserIDFromContext(ctx)
		category := chi.URLParam(r, "category")
		if category == "" {
			category = r.URL.Query().Get("category")
		}
		if category == "" {
			writeError(w, http.StatusBadRequest, "category is required")
			return
		}

		if err := svc.Delete(ctx, userID, category); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "budget deleted", ID: category})
	}
}
