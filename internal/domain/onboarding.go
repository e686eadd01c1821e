package domain

// FixedCost is a recurring non-discretionary monthly cost (rent, meal
// plan, phone bill). Order is preserved as entered during onboarding.
type FixedCost struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category,omitempty"`
}

// OnboardingProfile holds the answers collected by the onboarding wizard.
// Created once, replaced wholesale on re-save (upsert keyed by user),
// never partially patched.
type OnboardingProfile struct {
	UserID            string             `json:"user_id"`
	MonthlyBudget     float64            `json:"monthly_budget"`
	Currency          string             `json:"currency"`
	HasMealPlan       bool               `json:"has_meal_plan"`
	FixedCosts        []FixedCost        `json:"fixed_costs"`
	SpendingCategories map[string]float64 `json:"spending_categories"`
	IsComplete        bool               `json:"is_complete"`
}
