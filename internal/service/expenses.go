package service

import (
	"context"
	"fmt"
	"time"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/infra/observability"
	"github.com/expensesink/expensesink-api/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var expenseTracer = otel.Tracer("service/expenses")

// Expense validation bounds.
const (
	MinExpenseAmount     = 0.01
	MaxExpenseAmount     = 1_000_000.0
	maxVendorLength      = 120
	maxDescriptionLength = 500
)

// ExpenseService owns the expense CRUD surface.
type ExpenseService struct {
	store   port.ExpenseStore
	cache   port.Cache[any]
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewExpenseService creates the expense service.
func NewExpenseService(store port.ExpenseStore, cache port.Cache[any], metrics *observability.Metrics, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// List returns a filtered, paginated expense page.
func (s *ExpenseService) List(ctx context.Context, userID string, filter *domain.ExpenseFilter) (*domain.ListResponse[domain.Expense], error) {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.List")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if filter != nil {
		if filter.Category != "" && !domain.IsValidCategory(filter.Category) {
			return nil, &domain.ErrValidation{Field: "category", Message: "unknown category"}
		}
		if filter.Status != "" && !domain.IsValidStatus(filter.Status) {
			return nil, &domain.ErrValidation{Field: "status", Message: "unknown status"}
		}
	}

	rows, total, err := s.store.ListExpenses(ctx, userID, filter)
	if err != nil {
		s.metrics.IncrExternalError("expenses")
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	page, pageSize := 1, 20
	if filter != nil && filter.Page > 0 {
		page = filter.Page
	}
	if filter != nil && filter.PageSize > 0 {
		pageSize = filter.PageSize
	}

	return &domain.ListResponse[domain.Expense]{
		Data:     rows,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  page*pageSize < total,
	}, nil
}

// Get returns one expense owned by the user.
func (s *ExpenseService) Get(ctx context.Context, userID, expenseID string) (*domain.Expense, error) {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.Get")
	defer span.End()

	return s.store.GetExpense(ctx, userID, expenseID)
}

// Create validates and persists a new expense, then evicts the user's
// cached budget views so the next dashboard read reflects it.
func (s *ExpenseService) Create(ctx context.Context, userID string, req *domain.CreateExpenseRequest) (*domain.Expense, error) {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.Create")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if err := validateExpenseInput(req.Amount, req.Category, req.Vendor, req.Description); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = domain.StatusPending
	}
	if !domain.IsValidStatus(status) {
		return nil, &domain.ErrValidation{Field: "status", Message: "unknown status"}
	}

	createdAt := s.now().UTC()
	if req.CreatedAt != "" {
		t, err := time.Parse(time.RFC3339, req.CreatedAt)
		if err != nil {
			return nil, &domain.ErrValidation{Field: "created_at", Message: "must be RFC3339"}
		}
		if t.After(s.now()) {
			return nil, &domain.ErrValidation{Field: "created_at", Message: "must not be in the future"}
		}
		createdAt = t.UTC()
	}

	expense := &domain.Expense{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      req.Amount,
		Category:    req.Category,
		Vendor:      req.Vendor,
		Description: req.Description,
		Status:      status,
		CreatedAt:   createdAt,
	}

	created, err := s.store.CreateExpense(ctx, expense)
	if err != nil {
		s.metrics.IncrExternalError("expenses")
		return nil, fmt.Errorf("create expense: %w", err)
	}

	s.invalidateViews(userID)
	s.logger.Info("expense created",
		zap.String("user_id", userID),
		zap.String("expense_id", created.ID),
		zap.String("category", created.Category),
		zap.Float64("amount", created.Amount),
	)

	return created, nil
}

// Update applies a partial update to an owned expense.
func (s *ExpenseService) Update(ctx context.Context, userID, expenseID string, req *domain.UpdateExpenseRequest) (*domain.Expense, error) {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.Update")
	defer span.End()

	updates := make(map[string]any)
	if req.Amount != nil {
		if *req.Amount < MinExpenseAmount || *req.Amount > MaxExpenseAmount {
			return nil, &domain.ErrValidation{Field: "amount", Message: fmt.Sprintf("must be between %.2f and %.0f", MinExpenseAmount, MaxExpenseAmount)}
		}
		updates["amount"] = *req.Amount
	}
	if req.Category != nil {
		if !domain.IsValidCategory(*req.Category) {
			return nil, &domain.ErrValidation{Field: "category", Message: "unknown category"}
		}
		updates["category"] = *req.Category
	}
	if req.Vendor != nil {
		if len(*req.Vendor) > maxVendorLength {
			return nil, &domain.ErrValidation{Field: "vendor", Message: "too long"}
		}
		updates["vendor"] = *req.Vendor
	}
	if req.Description != nil {
		if len(*req.Description) > maxDescriptionLength {
			return nil, &domain.ErrValidation{Field: "description", Message: "too long"}
		}
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		if !domain.IsValidStatus(*req.Status) {
			return nil, &domain.ErrValidation{Field: "status", Message: "unknown status"}
		}
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no updatable fields provided"}
	}
	updates["updated_at"] = s.now().UTC().Format(time.RFC3339)

	updated, err := s.store.UpdateExpense(ctx, userID, expenseID, updates)
	if err != nil {
		return nil, err
	}

	s.invalidateViews(userID)
	return updated, nil
}

// Delete removes an owned expense.
func (s *ExpenseService) Delete(ctx context.Context, userID, expenseID string) error {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.Delete")
	defer span.End()

	if err := s.store.DeleteExpense(ctx, userID, expenseID); err != nil {
		return err
	}

	s.invalidateViews(userID)
	s.logger.Info("expense deleted",
		zap.String("user_id", userID),
		zap.String("expense_id", expenseID),
	)
	return nil
}

func (s *ExpenseService) invalidateViews(userID string) {
	for _, prefix := range viewCachePrefixes {
		s.cache.DeletePrefix(prefix + userID)
	}
}

func validateExpenseInput(amount float64, category, vendor, description string) error {
	if amount < MinExpenseAmount || amount > MaxExpenseAmount {
		return &domain.ErrValidation{Field: "amount", Message: fmt.Sprintf("must be between %.2f and %.0f", MinExpenseAmount, MaxExpenseAmount)}
	}
	if !domain.IsValidCategory(category) {
		return &domain.ErrValidation{Field: "category", Message: "unknown category"}
	}
	if vendor == "" {
		return &domain.ErrValidation{Field: "vendor", Message: "required"}
	}
	if len(vendor) > maxVendorLength {
		return &domain.ErrValidation{Field: "vendor", Message: "too long"}
	}
	if len(description) > maxDescriptionLength {
		return &domain.ErrValidation{Field: "description", Message: "too long"}
	}
	return nil
}
