package engine

import "github.com/expensesink/expensesink-api/internal/domain"

// Budget health statuses.
const (
	StatusGood    = "good"
	StatusWarning = "warning"
	StatusOver    = "over"
)

// DefaultAlertThresholdPercent applies when a budget does not set its
// own alert threshold.
const DefaultAlertThresholdPercent = 80.0

// CategoryHealth is one category's spend measured against its budget.
type CategoryHealth struct {
	Spent          float64
	Limit          float64
	Remaining      float64
	PercentageUsed float64
	Status         string
}

// HealthStatus classifies percentageUsed against an alert threshold.
// Pure function of its inputs: no hysteresis, recomputed fresh every
// call.
func HealthStatus(percentageUsed, alertThreshold float64) string {
	if alertThreshold <= 0 {
		alertThreshold = DefaultAlertThresholdPercent
	}
	switch {
	case percentageUsed > 100:
		return StatusOver
	case percentageUsed > alertThreshold:
		return StatusWarning
	default:
		return StatusGood
	}
}

// EvaluateBudgets computes health for every active category budget
// using spend from the aggregation. Inactive budgets are skipped.
// A zero limit yields 0% used rather than a division error.
func EvaluateBudgets(budgets []domain.CategoryBudget, agg *Aggregation) map[string]CategoryHealth {
	health := make(map[string]CategoryHealth, len(budgets))

	for _, b := range budgets {
		if !b.IsActive {
			continue
		}
		spent := agg.Categories[b.Category].Amount()
		pct := 0.0
		if b.MonthlyLimit > 0 {
			pct = spent / b.MonthlyLimit * 100
		}
		health[b.Category] = CategoryHealth{
			Spent:          spent,
			Limit:          b.MonthlyLimit,
			Remaining:      b.MonthlyLimit - spent,
			PercentageUsed: pct,
			Status:         HealthStatus(pct, b.AlertThresholdPct),
		}
	}

	return health
}
