package service

import (
	"context"
	"fmt"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/engine"
	"github.com/expensesink/expensesink-api/internal/infra/observability"
	"github.com/expensesink/expensesink-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var onboardingTracer = otel.Tracer("service/onboarding")

const maxFixedCosts = 50

// OnboardingService owns the onboarding profile.
type OnboardingService struct {
	store   port.OnboardingStore
	cache   port.Cache[any]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewOnboardingService creates the onboarding service.
func NewOnboardingService(store port.OnboardingStore, cache port.Cache[any], metrics *observability.Metrics, logger *zap.Logger) *OnboardingService {
	return &OnboardingService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Get returns the user's profile. Missing profiles surface as 404; the
// budget views handle that state themselves via default inputs.
func (s *OnboardingService) Get(ctx context.Context, userID string) (*domain.OnboardingProfile, error) {
	ctx, span := onboardingTracer.Start(ctx, "OnboardingService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		s.metrics.IncrExternalError("onboarding")
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if p == nil {
		return nil, &domain.ErrNotFound{Resource: "onboarding profile", ID: userID}
	}
	return p, nil
}

// Save validates and stores the profile wholesale. Saving marks
// onboarding complete and personalizes every budget view.
func (s *OnboardingService) Save(ctx context.Context, userID string, p *domain.OnboardingProfile) (*domain.OnboardingProfile, error) {
	ctx, span := onboardingTracer.Start(ctx, "OnboardingService.Save")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if p.MonthlyBudget <= 0 || p.MonthlyBudget > MaxExpenseAmount {
		return nil, &domain.ErrValidation{Field: "monthly_budget", Message: "must be positive"}
	}
	if len(p.FixedCosts) > maxFixedCosts {
		return nil, &domain.ErrValidation{Field: "fixed_costs", Message: "too many entries"}
	}
	for i, fc := range p.FixedCosts {
		if fc.Name == "" {
			return nil, &domain.ErrValidation{Field: fmt.Sprintf("fixed_costs[%d].name", i), Message: "required"}
		}
		if fc.Amount < 0 {
			return nil, &domain.ErrValidation{Field: fmt.Sprintf("fixed_costs[%d].amount", i), Message: "must not be negative"}
		}
	}
	for cat, amount := range p.SpendingCategories {
		if !domain.IsValidCategory(cat) {
			return nil, &domain.ErrValidation{Field: "spending_categories", Message: "unknown category: " + cat}
		}
		if amount < 0 {
			return nil, &domain.ErrValidation{Field: "spending_categories", Message: "must not be negative"}
		}
	}

	p.UserID = userID
	p.IsComplete = true
	if p.Currency == "" {
		p.Currency = engine.DefaultCurrency
	}

	saved, err := s.store.UpsertProfile(ctx, p)
	if err != nil {
		s.metrics.IncrExternalError("onboarding")
		return nil, fmt.Errorf("save profile: %w", err)
	}

	// The profile feeds every computed view; drop them all.
	s.cache.Delete("profile:" + userID)
	for _, prefix := range viewCachePrefixes {
		s.cache.DeletePrefix(prefix + userID)
	}

	s.logger.Info("onboarding profile saved",
		zap.String("user_id", userID),
		zap.Float64("monthly_budget", saved.MonthlyBudget),
		zap.Int("fixed_costs", len(saved.FixedCosts)),
	)
	return saved, nil
}
