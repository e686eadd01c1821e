package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/engine"
	"github.com/expensesink/expensesink-api/internal/infra/observability"
	"github.com/expensesink/expensesink-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var trackerTracer = otel.Tracer("service/tracker")

// viewCachePrefixes are the cache key prefixes of computed budget
// views. Any write to expenses, budgets, or the onboarding profile
// evicts all of them for the affected user.
var viewCachePrefixes = []string{
	"dashboard:", "safe_to_spend:", "analytics:", "weekly:", "budgets:",
}

// TrackerService serves every budget view. All four operations run the
// same aggregation pipeline over the same inputs, so the dashboard,
// safe-to-spend, analytics, and weekly views can never disagree.
type TrackerService struct {
	expenses port.ExpenseStore
	budgets  port.BudgetStore
	profiles port.OnboardingStore
	cache    port.Cache[any]
	metrics  *observability.Metrics
	logger   *zap.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewTrackerService creates the tracker service. All month and week
// windows evaluate in loc.
func NewTrackerService(
	expenses port.ExpenseStore,
	budgets port.BudgetStore,
	profiles port.OnboardingStore,
	cache port.Cache[any],
	metrics *observability.Metrics,
	logger *zap.Logger,
	loc *time.Location,
) *TrackerService {
	if loc == nil {
		loc = time.UTC
	}
	return &TrackerService{
		expenses: expenses,
		budgets:  budgets,
		profiles: profiles,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Tests pin the reference date.
func (s *TrackerService) WithClock(now func() time.Time) *TrackerService {
	s.now = now
	return s
}

// monthInputs is everything one aggregation run needs.
type monthInputs struct {
	profile  *domain.OnboardingProfile
	budgets  []domain.CategoryBudget
	expenses []domain.Expense
}

// fetchMonth loads profile, budgets, and the window's expenses
// concurrently. Store errors cancel the whole group.
func (s *TrackerService) fetchMonth(ctx context.Context, userID string, w engine.Window) (*monthInputs, error) {
	in := &monthInputs{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cacheKey := "profile:" + userID
		if cached, ok := s.cache.Get(cacheKey); ok {
			if p, ok := cached.(*domain.OnboardingProfile); ok {
				in.profile = p
				s.metrics.IncrCacheHit("profile")
				return nil
			}
		}
		s.metrics.IncrCacheMiss("profile")

		p, err := s.profiles.GetProfile(gCtx, userID)
		if err != nil {
			s.metrics.IncrExternalError("onboarding")
			return fmt.Errorf("profile fetch: %w", err)
		}
		in.profile = p
		if p != nil {
			s.cache.Set(cacheKey, p)
		}
		return nil
	})

	g.Go(func() error {
		b, err := s.budgets.ListBudgets(gCtx, userID)
		if err != nil {
			s.metrics.IncrExternalError("budgets")
			return fmt.Errorf("budgets fetch: %w", err)
		}
		in.budgets = b
		return nil
	})

	g.Go(func() error {
		e, err := s.expenses.ListExpensesBetween(gCtx, userID,
			storeTime(w.StartOfMonth), storeTime(w.EndOfMonth.Add(time.Nanosecond)))
		if err != nil {
			s.metrics.IncrExternalError("expenses")
			return fmt.Errorf("expenses fetch: %w", err)
		}
		in.expenses = e
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

// Dashboard builds the GET /v1/dashboard view.
func (s *TrackerService) Dashboard(ctx context.Context, userID string) (*domain.DashboardSummary, error) {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.Dashboard")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("dashboard", time.Since(start)) }()

	cacheKey := "dashboard:" + userID
	if cached, ok := s.cache.Get(cacheKey); ok {
		if d, ok := cached.(*domain.DashboardSummary); ok {
			s.metrics.IncrCacheHit("dashboard")
			return d, nil
		}
	}
	s.metrics.IncrCacheMiss("dashboard")

	ref := s.now()
	w := engine.MonthWindow(ref, s.loc)

	in, err := s.fetchMonth(ctx, userID, w)
	if err != nil {
		return nil, err
	}

	// Last 14 local days for the 7-day trend; may cross a month edge.
	refMidnight := time.Date(ref.In(s.loc).Year(), ref.In(s.loc).Month(), ref.In(s.loc).Day(), 0, 0, 0, 0, s.loc)
	recent, err := s.expenses.ListExpensesBetween(ctx, userID,
		storeTime(refMidnight.AddDate(0, 0, -13)), storeTime(refMidnight.AddDate(0, 0, 1)))
	if err != nil {
		s.metrics.IncrExternalError("expenses")
		return nil, fmt.Errorf("recent expenses fetch: %w", err)
	}

	res, err := engine.Compute(in.profile, in.budgets, in.expenses, w)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrEngineCompute("dashboard")

	last7, prev7 := splitRecent(recent, refMidnight)

	dash := &domain.DashboardSummary{
		Summary: domain.DashboardTotals{
			TotalSpent:          engine.Round2(res.TotalSpent()),
			DiscretionaryBudget: engine.Round2(res.Projection.DiscretionaryBudget),
			AvailableAmount:     engine.Round2(res.Projection.AvailableAmount),
			DailySafeAmount:     engine.Round2(res.Projection.DailySafeAmount),
			SpendingTrend:       percentChange(last7, prev7),
		},
		SpendingByCategory: categoryAmounts(res.Aggregation),
		BudgetHealth:       healthMap(res.PerCategory),
		RecentExpenses:     firstN(in.expenses, 5),
		Insights:           insightList(res.Insights),
		Stats: domain.DashboardStats{
			TotalTransactions:     res.Aggregation.Count(),
			AverageTransaction:    averageTransaction(res.Aggregation),
			Last7DaysSpending:     engine.Round2(last7),
			Previous7DaysSpending: engine.Round2(prev7),
		},
		IsPersonalized: res.Inputs.Personalized,
		Timestamp:      ref.UTC().Format(time.RFC3339),
	}

	s.cache.Set(cacheKey, dash)
	return dash, nil
}

// SafeToSpend builds the GET /v1/safe-to-spend view.
func (s *TrackerService) SafeToSpend(ctx context.Context, userID string) (*domain.SafeToSpendResponse, error) {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.SafeToSpend")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("safe_to_spend", time.Since(start)) }()

	cacheKey := "safe_to_spend:" + userID
	if cached, ok := s.cache.Get(cacheKey); ok {
		if r, ok := cached.(*domain.SafeToSpendResponse); ok {
			s.metrics.IncrCacheHit("safe_to_spend")
			return r, nil
		}
	}
	s.metrics.IncrCacheMiss("safe_to_spend")

	ref := s.now()
	w := engine.MonthWindow(ref, s.loc)

	in, err := s.fetchMonth(ctx, userID, w)
	if err != nil {
		return nil, err
	}

	res, err := engine.Compute(in.profile, in.budgets, in.expenses, w)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrEngineCompute("safe_to_spend")

	status, message := paceStatus(res.Projection)
	p := res.Projection

	resp := &domain.SafeToSpendResponse{
		MonthlyBudget:       engine.Round2(res.Inputs.MonthlyBudget),
		FixedCosts:          engine.Round2(res.Inputs.TotalFixedCosts),
		DiscretionaryBudget: engine.Round2(p.DiscretionaryBudget),
		TotalSpent:          engine.Round2(res.TotalSpent()),
		AvailableAmount:     engine.Round2(p.AvailableAmount),

		DailySafeAmount:  engine.Round2(p.DailySafeAmount),
		WeeklySafeAmount: engine.Round2(p.WeeklySafeAmount),

		DaysLeftInMonth:  w.DaysRemaining,
		WeeksLeftInMonth: p.WeeksRemaining,
		CurrentDay:       w.DaysElapsed,
		DaysInMonth:      w.DaysInMonth,

		Status:        status,
		StatusMessage: message,
		SpendingPace:  engine.Round1(p.SpendingPace),

		ProjectedMonthlyTotal: engine.Round2(p.ProjectedMonthlyTotal),
		CurrentDailyAverage:   engine.Round2(p.CurrentDailyAverage),

		Breakdown: domain.SafeToSpendBreakdown{
			Today:     engine.Round2(p.DailySafeAmount),
			ThisWeek:  engine.Round2(p.WeeklySafeAmount),
			ThisMonth: engine.Round2(p.AvailableAmount),
		},
		Recommendations: insightList(res.Insights),

		IsPersonalized: res.Inputs.Personalized,
		Currency:       res.Inputs.Currency,
		LastUpdated:    ref.UTC().Format(time.RFC3339),
	}

	s.cache.Set(cacheKey, resp)
	return resp, nil
}

// Analytics builds the GET /v1/analytics view. It compares against the
// previous month, so it fetches two expense windows.
func (s *TrackerService) Analytics(ctx context.Context, userID string) (*domain.AnalyticsResponse, error) {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.Analytics")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("analytics", time.Since(start)) }()

	cacheKey := "analytics:" + userID
	if cached, ok := s.cache.Get(cacheKey); ok {
		if r, ok := cached.(*domain.AnalyticsResponse); ok {
			s.metrics.IncrCacheHit("analytics")
			return r, nil
		}
	}
	s.metrics.IncrCacheMiss("analytics")

	ref := s.now()
	w := engine.MonthWindow(ref, s.loc)
	lastMonth := engine.MonthWindow(w.StartOfMonth.AddDate(0, 0, -1), s.loc)

	in, err := s.fetchMonth(ctx, userID, w)
	if err != nil {
		return nil, err
	}

	prevExpenses, err := s.expenses.ListExpensesBetween(ctx, userID,
		storeTime(lastMonth.StartOfMonth), storeTime(w.StartOfMonth))
	if err != nil {
		s.metrics.IncrExternalError("expenses")
		return nil, fmt.Errorf("previous month fetch: %w", err)
	}

	res, err := engine.Compute(in.profile, in.budgets, in.expenses, w)
	if err != nil {
		return nil, err
	}
	prevAgg, err := engine.Aggregate(prevExpenses, lastMonth.StartOfMonth, w.StartOfMonth)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrEngineCompute("analytics")

	breakdown := categoryBreakdown(res.Aggregation)
	p := res.Projection

	pctUsed := 0.0
	if p.DiscretionaryBudget > 0 {
		pctUsed = engine.Round1(res.TotalSpent() / p.DiscretionaryBudget * 100)
	}

	resp := &domain.AnalyticsResponse{
		Summary: domain.AnalyticsSummary{
			TotalSpending:  engine.Round2(res.TotalSpent()),
			Transactions:   res.Aggregation.Count(),
			AvgTransaction: averageTransaction(res.Aggregation),
			CategoriesUsed: len(res.Aggregation.Categories),
			MonthlyTrend:   percentChange(res.TotalSpent(), prevAgg.Total()),
		},
		SpendingBreakdown: breakdown,
		BudgetComparison: domain.BudgetComparison{
			DiscretionaryBudget: engine.Round2(p.DiscretionaryBudget),
			TotalSpent:          engine.Round2(res.TotalSpent()),
			Remaining:           engine.Round2(p.AvailableAmount),
			PercentageUsed:      pctUsed,
		},
		MonthlyMetrics: domain.MonthlyMetrics{
			ThisMonth:      engine.Round2(res.TotalSpent()),
			LastMonth:      engine.Round2(prevAgg.Total()),
			DailyAverage:   engine.Round2(p.CurrentDailyAverage),
			ProjectedTotal: engine.Round2(p.ProjectedMonthlyTotal),
		},
		TopCategories:  firstNBreakdown(breakdown, 3),
		Insights:       insightList(res.Insights),
		IsPersonalized: res.Inputs.Personalized,
		LastUpdated:    ref.UTC().Format(time.RFC3339),
	}

	s.cache.Set(cacheKey, resp)
	return resp, nil
}

// WeeklyComparison builds the GET /v1/weekly-comparison view.
func (s *TrackerService) WeeklyComparison(ctx context.Context, userID string) (*domain.WeeklyComparisonResponse, error) {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.WeeklyComparison")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("weekly_comparison", time.Since(start)) }()

	cacheKey := "weekly:" + userID
	if cached, ok := s.cache.Get(cacheKey); ok {
		if r, ok := cached.(*domain.WeeklyComparisonResponse); ok {
			s.metrics.IncrCacheHit("weekly")
			return r, nil
		}
	}
	s.metrics.IncrCacheMiss("weekly")

	ref := s.now()
	span2 := engine.WeekBounds(ref, s.loc)

	expenses, err := s.expenses.ListExpensesBetween(ctx, userID,
		storeTime(span2.LastWeekStart), storeTime(span2.ThisWeekStart.AddDate(0, 0, 7)))
	if err != nil {
		s.metrics.IncrExternalError("expenses")
		return nil, fmt.Errorf("weekly expenses fetch: %w", err)
	}

	cmp := engine.CompareWeeks(expenses, ref, s.loc)
	s.metrics.IncrEngineCompute("weekly_comparison")

	days := make([]domain.WeeklyDay, 7)
	highThis, highLast := 0, 0
	for i, d := range cmp.Days {
		days[i] = domain.WeeklyDay{
			Day:      d.Date.Format("2006-01-02"),
			DayName:  d.DayName,
			ThisWeek: engine.Round2(d.ThisWeek),
			LastWeek: engine.Round2(d.LastWeek),
		}
		if d.ThisWeek > cmp.Days[highThis].ThisWeek {
			highThis = i
		}
		if d.LastWeek > cmp.Days[highLast].LastWeek {
			highLast = i
		}
	}

	resp := &domain.WeeklyComparisonResponse{
		WeeklyData:    days,
		ThisWeekTotal: engine.Round2(cmp.ThisWeekTotal),
		LastWeekTotal: engine.Round2(cmp.LastWeekTotal),
		WeeklyChange:  engine.Round1(cmp.PercentageChange),
		Analysis: domain.WeeklyAnalysis{
			TotalChange:          engine.Round2(cmp.ThisWeekTotal - cmp.LastWeekTotal),
			AverageDailyThisWeek: engine.Round2(cmp.ThisWeekTotal / 7),
			AverageDailyLastWeek: engine.Round2(cmp.LastWeekTotal / 7),
			HighestDayThisWeek:   days[highThis],
			HighestDayLastWeek:   days[highLast],
		},
		Metadata: domain.WeeklyMetadata{
			ThisWeekStart:         cmp.Span.ThisWeekStart.Format("2006-01-02"),
			LastWeekStart:         cmp.Span.LastWeekStart.Format("2006-01-02"),
			CalculatedAt:          ref.UTC().Format(time.RFC3339),
			TotalExpensesAnalyzed: cmp.ExpensesAnalyzed,
		},
	}

	s.cache.Set(cacheKey, resp)
	return resp, nil
}

// ============================================================
// Shaping helpers
// ============================================================

// storeTime formats a bound for PostgREST timestamp filters.
func storeTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// percentChange returns the rounded percent change from prev to cur.
// A zero previous value maps to 0, not a division error.
func percentChange(cur, prev float64) float64 {
	if prev <= 0 {
		return 0
	}
	return engine.Round1((cur - prev) / prev * 100)
}

func categoryAmounts(agg *engine.Aggregation) map[string]float64 {
	out := make(map[string]float64, len(agg.Categories))
	for cat, s := range agg.Categories {
		out[cat] = engine.Round2(s.Amount())
	}
	return out
}

func healthMap(per map[string]engine.CategoryHealth) map[string]domain.CategoryHealth {
	out := make(map[string]domain.CategoryHealth, len(per))
	for cat, h := range per {
		out[cat] = domain.CategoryHealth{
			Limit:          engine.Round2(h.Limit),
			Spent:          engine.Round2(h.Spent),
			Remaining:      engine.Round2(h.Remaining),
			PercentageUsed: engine.Round1(h.PercentageUsed),
			Status:         h.Status,
		}
	}
	return out
}

func insightList(insights []engine.Insight) []domain.Insight {
	out := make([]domain.Insight, len(insights))
	for i, ins := range insights {
		out[i] = domain.Insight{Type: ins.Type, Message: ins.Message}
	}
	return out
}

// categoryBreakdown sorts categories by amount descending, ties by
// name, so repeated calls produce identical output.
func categoryBreakdown(agg *engine.Aggregation) []domain.CategoryBreakdown {
	out := make([]domain.CategoryBreakdown, 0, len(agg.Categories))
	for cat, s := range agg.Categories {
		out = append(out, domain.CategoryBreakdown{
			Category:     cat,
			Amount:       engine.Round2(s.Amount()),
			Percentage:   agg.PercentOfTotal(cat),
			Transactions: s.Count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func firstNBreakdown(b []domain.CategoryBreakdown, n int) []domain.CategoryBreakdown {
	if len(b) < n {
		n = len(b)
	}
	return b[:n]
}

func firstN(expenses []domain.Expense, n int) []domain.Expense {
	if len(expenses) < n {
		n = len(expenses)
	}
	return expenses[:n]
}

func averageTransaction(agg *engine.Aggregation) float64 {
	n := agg.Count()
	if n == 0 {
		return 0
	}
	return engine.Round2(agg.Total() / float64(n))
}

// splitRecent sums the last 7 local days (ending at refMidnight's day)
// and the 7 days before that.
func splitRecent(expenses []domain.Expense, refMidnight time.Time) (last7, prev7 float64) {
	sevenAgo := refMidnight.AddDate(0, 0, -6)
	fourteenAgo := refMidnight.AddDate(0, 0, -13)
	end := refMidnight.AddDate(0, 0, 1)

	var lastCents, prevCents int64
	for i := range expenses {
		t := expenses[i].CreatedAt.In(refMidnight.Location())
		cents := engine.Cents(expenses[i].Amount)
		switch {
		case !t.Before(sevenAgo) && t.Before(end):
			lastCents += cents
		case !t.Before(fourteenAgo) && t.Before(sevenAgo):
			prevCents += cents
		}
	}
	return float64(lastCents) / 100, float64(prevCents) / 100
}

// paceStatus classifies the spending pace for the safe-to-spend view,
// using the same bands the insight rules use. A pace of 0 with a real
// expected spend is underspending, not on-track.
func paceStatus(p engine.Projection) (string, string) {
	switch {
	case p.SpendingPace > engine.OverspendingPace:
		return "overspending", "You are spending faster than planned"
	case p.ExpectedSpendByNow > 0 && p.SpendingPace < engine.UnderspendingPace:
		return "underspending", "You have room to spend more"
	default:
		return "on-track", "Your spending is on track for this month"
	}
}
