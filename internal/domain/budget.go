package domain

// CategoryBudget is a monthly spending limit for one category.
// One active budget per (user, category) — enforced by upsert-by-category.
type CategoryBudget struct {
	ID                string  `json:"id"`
	UserID            string  `json:"user_id"`
	Category          string  `json:"category"`
	MonthlyLimit      float64 `json:"monthly_limit"`
	AlertThresholdPct float64 `json:"alert_threshold"`
	IsActive          bool    `json:"is_active"`
}

// UpsertBudgetRequest is the PUT /v1/budgets payload.
type UpsertBudgetRequest struct {
	Category       string  `json:"category"`
	MonthlyLimit   float64 `json:"monthly_limit"`
	AlertThreshold float64 `json:"alert_threshold,omitempty"`
}

// BudgetDetail is a budget joined with its current-month health,
// returned by GET /v1/budgets.
type BudgetDetail struct {
	ID             string  `json:"id"`
	Category       string  `json:"category"`
	MonthlyLimit   float64 `json:"monthlyLimit"`
	Spent          float64 `json:"spent"`
	Remaining      float64 `json:"remaining"`
	PercentageUsed float64 `json:"percentage"`
	Status         string  `json:"status"`
	IsOverBudget   bool    `json:"isOverBudget"`
}

// BudgetListResponse is the full GET /v1/budgets payload.
type BudgetListResponse struct {
	Budgets []BudgetDetail `json:"budgets"`
	Summary BudgetSummary  `json:"summary"`
}

// BudgetSummary aggregates all category budgets.
type BudgetSummary struct {
	TotalBudget          float64 `json:"totalBudget"`
	TotalSpent           float64 `json:"totalSpent"`
	TotalRemaining       float64 `json:"totalRemaining"`
	OverallHealth        float64 `json:"overallHealth"`
	HealthyCategories    int     `json:"healthyCategories"`
	WarningCategories    int     `json:"warningCategories"`
	OverBudgetCategories int     `json:"overBudgetCategories"`
}
