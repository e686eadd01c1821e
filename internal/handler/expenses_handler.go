package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Expense Handlers
// ============================================================

func listExpensesHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/expenses")
		defer span.End()

		userID := UserIDFromContext(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		filter, err := parseExpenseFilter(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		resp, err := svc.List(ctx, userID, filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// parseExpenseFilter reads list filters from the query string.
func parseExpenseFilter(r *http.Request) (*domain.ExpenseFilter, error) {
	q := r.URL.Query()
	f := &domain.ExpenseFilter{
		Category:  q.Get("category"),
		Status:    q.Get("status"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
	f.Page, f.PageSize = parsePagination(r)

	if v := q.Get("start_date"); v != "" {
		t, err := parseDateParam(v)
		if err != nil {
			return nil, &domain.ErrValidation{Field: "start_date", Message: "must be YYYY-MM-DD or RFC3339"}
		}
		f.StartDate = t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := parseDateParam(v)
		if err != nil {
			return nil, &domain.ErrValidation{Field: "end_date", Message: "must be YYYY-MM-DD or RFC3339"}
		}
		// A bare end date means "through that whole day".
		if len(v) == len("2006-01-02") {
			t = t.AddDate(0, 0, 1)
		}
		f.EndDate = t
	}
	if v := q.Get("min_amount"); v != "" {
		a, err := strconv.ParseFloat(v, 64)
		if err != nil || a < 0 {
			return nil, &domain.ErrValidation{Field: "min_amount", Message: "must be a non-negative number"}
		}
		f.MinAmount = a
	}
	if v := q.Get("max_amount"); v != "" {
		a, err := strconv.ParseFloat(v, 64)
		if err != nil || a < 0 {
			return nil, &domain.ErrValidation{Field: "max_amount", Message: "must be a non-negative number"}
		}
		f.MaxAmount = a
	}
	return f, nil
}

func parseDateParam(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

func getExpenseHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/expenses/{expenseId}")
		defer span.End()

		userID := UserIDFromContext(ctx)
		expenseID := chi.URLParam(r, "expenseId")

		expense, err := svc.Get(ctx, userID, expenseID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, expense)
	}
}

func createExpenseHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/expenses")
		defer span.End()

		userID := UserIDFromContext(ctx)

		var req domain.CreateExpenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		created, err := svc.Create(ctx, userID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateExpenseHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/expenses/{expenseId}")
		defer span.End()

		userID := UserIDFromContext(ctx)
		expenseID := chi.URLParam(r, "expenseId")

		var req domain.UpdateExpenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		updated, err := svc.Update(ctx, userID, expenseID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteExpenseHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/expenses/{expenseId}")
		defer span.End()

		userID := UserIDFromContext(ctx)
		expenseID := chi.URLParam(r, "expenseId")

		if err := svc.Delete(ctx, userID, expenseID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "expense deleted", ID: expenseID})
	}
}
