package domain

// ============================================================
// Analytics API response types (match the frontend contract)
// ============================================================

// Insight is a single qualitative observation derived from the
// aggregation result. Type is one of: warning, alert, info.
type Insight struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// CategoryHealth is per-category budget health inside dashboard
// and budget responses.
type CategoryHealth struct {
	Limit          float64 `json:"limit"`
	Spent          float64 `json:"spent"`
	Remaining      float64 `json:"remaining"`
	PercentageUsed float64 `json:"percentage"`
	Status         string  `json:"status"` // good, warning, over
}

// DashboardSummary is returned by GET /v1/dashboard.
type DashboardSummary struct {
	Summary            DashboardTotals           `json:"summary"`
	SpendingByCategory map[string]float64        `json:"spendingByCategory"`
	BudgetHealth       map[string]CategoryHealth `json:"budgetHealth"`
	RecentExpenses     []Expense                 `json:"recentExpenses"`
	Insights           []Insight                 `json:"insights"`
	Stats              DashboardStats            `json:"stats"`
	IsPersonalized     bool                      `json:"isPersonalized"`
	Timestamp          string                    `json:"timestamp"`
}

// DashboardTotals is the headline numbers block of the dashboard.
type DashboardTotals struct {
	TotalSpent          float64 `json:"totalSpent"`
	DiscretionaryBudget float64 `json:"discretionaryBudget"`
	AvailableAmount     float64 `json:"availableAmount"`
	DailySafeAmount     float64 `json:"dailySafeAmount"`
	SpendingTrend       float64 `json:"spendingTrend"`
}

// DashboardStats holds secondary dashboard statistics.
type DashboardStats struct {
	TotalTransactions    int     `json:"totalTransactions"`
	AverageTransaction   float64 `json:"averageTransaction"`
	Last7DaysSpending    float64 `json:"last7DaysSpending"`
	Previous7DaysSpending float64 `json:"previous7DaysSpending"`
}

// SafeToSpendResponse is returned by GET /v1/safe-to-spend.
type SafeToSpendResponse struct {
	MonthlyBudget       float64 `json:"monthlyBudget"`
	FixedCosts          float64 `json:"fixedCosts"`
	DiscretionaryBudget float64 `json:"discretionaryBudget"`
	TotalSpent          float64 `json:"totalSpent"`
	AvailableAmount     float64 `json:"availableAmount"`

	DailySafeAmount  float64 `json:"dailySafeAmount"`
	WeeklySafeAmount float64 `json:"weeklySafeAmount"`

	DaysLeftInMonth  int `json:"daysLeftInMonth"`
	WeeksLeftInMonth int `json:"weeksLeftInMonth"`
	CurrentDay       int `json:"currentDay"`
	DaysInMonth      int `json:"daysInMonth"`

	Status        string  `json:"status"` // on-track, overspending, underspending
	StatusMessage string  `json:"statusMessage"`
	SpendingPace  float64 `json:"spendingPace"`

	ProjectedMonthlyTotal float64 `json:"projectedMonthlyTotal"`
	CurrentDailyAverage   float64 `json:"currentDailyAverage"`

	Breakdown       SafeToSpendBreakdown `json:"breakdown"`
	Recommendations []Insight            `json:"recommendations"`

	IsPersonalized bool   `json:"isPersonalized"`
	Currency       string `json:"currency"`
	LastUpdated    string `json:"lastUpdated"`
}

// SafeToSpendBreakdown is the safe amount per timeframe.
type SafeToSpendBreakdown struct {
	Today     float64 `json:"today"`
	ThisWeek  float64 `json:"thisWeek"`
	ThisMonth float64 `json:"thisMonth"`
}

// AnalyticsResponse is returned by GET /v1/analytics.
type AnalyticsResponse struct {
	Summary           AnalyticsSummary    `json:"summary"`
	SpendingBreakdown []CategoryBreakdown `json:"spendingBreakdown"`
	BudgetComparison  BudgetComparison    `json:"budgetComparison"`
	MonthlyMetrics    MonthlyMetrics      `json:"monthlyMetrics"`
	TopCategories     []CategoryBreakdown `json:"topCategories"`
	Insights          []Insight           `json:"insights"`
	IsPersonalized    bool                `json:"isPersonalized"`
	LastUpdated       string              `json:"lastUpdated"`
}

// AnalyticsSummary is the headline block of the analytics response.
type AnalyticsSummary struct {
	TotalSpending  float64 `json:"totalSpending"`
	Transactions   int     `json:"transactions"`
	AvgTransaction float64 `json:"avgTransaction"`
	CategoriesUsed int     `json:"categoriesUsed"`
	MonthlyTrend   float64 `json:"monthlyTrend"`
}

// CategoryBreakdown is one category's share of total spend.
type CategoryBreakdown struct {
	Category     string  `json:"category"`
	Amount       float64 `json:"amount"`
	Percentage   float64 `json:"percentage"`
	Transactions int     `json:"transactions"`
}

// BudgetComparison compares total spend against the discretionary budget.
type BudgetComparison struct {
	DiscretionaryBudget float64 `json:"discretionaryBudget"`
	TotalSpent          float64 `json:"totalSpent"`
	Remaining           float64 `json:"remaining"`
	PercentageUsed      float64 `json:"percentageUsed"`
}

// MonthlyMetrics compares this month against last month.
type MonthlyMetrics struct {
	ThisMonth      float64 `json:"thisMonth"`
	LastMonth      float64 `json:"lastMonth"`
	DailyAverage   float64 `json:"dailyAverage"`
	ProjectedTotal float64 `json:"projectedTotal"`
}

// WeeklyComparisonResponse is returned by GET /v1/weekly-comparison.
type WeeklyComparisonResponse struct {
	WeeklyData    []WeeklyDay    `json:"weeklyData"`
	ThisWeekTotal float64        `json:"thisWeekTotal"`
	LastWeekTotal float64        `json:"lastWeekTotal"`
	WeeklyChange  float64        `json:"weeklyChange"`
	Analysis      WeeklyAnalysis `json:"analysis"`
	Metadata      WeeklyMetadata `json:"metadata"`
}

// WeeklyDay is one weekday's spend in both compared weeks.
type WeeklyDay struct {
	Day      string  `json:"day"` // YYYY-MM-DD of this week's date
	DayName  string  `json:"dayName"`
	ThisWeek float64 `json:"thisWeek"`
	LastWeek float64 `json:"lastWeek"`
}

// WeeklyAnalysis holds derived weekly statistics.
type WeeklyAnalysis struct {
	TotalChange         float64   `json:"totalChange"`
	AverageDailyThisWeek float64  `json:"averageDailyThisWeek"`
	AverageDailyLastWeek float64  `json:"averageDailyLastWeek"`
	HighestDayThisWeek  WeeklyDay `json:"highestDayThisWeek"`
	HighestDayLastWeek  WeeklyDay `json:"highestDayLastWeek"`
}

// WeeklyMetadata describes the compared windows.
type WeeklyMetadata struct {
	ThisWeekStart         string `json:"thisWeekStart"`
	LastWeekStart         string `json:"lastWeekStart"`
	CalculatedAt          string `json:"calculatedAt"`
	TotalExpensesAnalyzed int    `json:"totalExpensesAnalyzed"`
}
