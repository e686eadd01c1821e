package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Onboarding profile store — get, upsert
// ============================================================

// GetProfile fetches the onboarding profile. A missing profile returns
// (nil, nil): every budget view must keep working for users who never
// finished onboarding.
func (c *Client) GetProfile(ctx context.Context, userID string) (*domain.OnboardingProfile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var profile *domain.OnboardingProfile

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("onboarding_profiles?user_id=eq.%s&limit=1", userID)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				profile = nil
				return nil
			}

			var rows []domain.OnboardingProfile
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode onboarding_profiles: %w", err)
			}
			if len(rows) > 0 {
				profile = &rows[0]
			}
			return nil
		})
	})

	if err != nil {
		return nil, wrapStoreErr("supabase/onboarding", "get profile", err)
	}

	return profile, nil
}

// UpsertProfile replaces the profile wholesale, keyed by user_id.
func (c *Client) UpsertProfile(ctx context.Context, p *domain.OnboardingProfile) (*domain.OnboardingProfile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertProfile")
	defer span.End()

	data := map[string]any{
		"user_id":             p.UserID,
		"monthly_budget":      p.MonthlyBudget,
		"currency":            p.Currency,
		"has_meal_plan":       p.HasMealPlan,
		"fixed_costs":         p.FixedCosts,
		"spending_categories": p.SpendingCategories,
		"is_complete":         p.IsComplete,
	}

	body, err := c.doUpsert(ctx, "onboarding_profiles?on_conflict=user_id", data)
	if err != nil {
		return nil, err
	}

	var rows []domain.OnboardingProfile
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode upserted profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("supabase returned empty representation for upserted profile")
	}
	return &rows[0], nil
}
