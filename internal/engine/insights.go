package engine

import (
	"fmt"
	"sort"
)

// Insight types.
const (
	InsightWarning = "warning"
	InsightAlert   = "alert"
	InsightInfo    = "info"
)

// Insight rule thresholds. These are product decisions shared by every
// endpoint; changing one here changes it everywhere at once.
const (
	// LowFundsFloor is the absolute currency amount below which the
	// remaining discretionary budget counts as "low".
	LowFundsFloor = 100.0
	// TightDailyFloor is the daily safe amount below which daily
	// spending counts as "tight".
	TightDailyFloor = 10.0
	// DominantSharePercent is the share of total spend above which a
	// single category counts as dominant.
	DominantSharePercent = 40.0
	// OverspendingPace and UnderspendingPace bound the "on track"
	// band of the spending pace percentage.
	OverspendingPace  = 110.0
	UnderspendingPace = 90.0
)

// Insight is one qualitative observation about the aggregated numbers.
type Insight struct {
	Type    string
	Message string
}

// EvaluateInsights applies the insight rules in fixed priority order,
// so identical input always produces the identical ordered list:
//
//  1. over discretionary budget (warning), else low remaining funds
//     (warning)
//  2. tight daily allowance (alert)
//  3. dominant spending category (info)
//  4. spending pace out of band (warning / info)
func EvaluateInsights(proj Projection, agg *Aggregation) []Insight {
	insights := make([]Insight, 0, 4)

	if proj.AvailableAmount < 0 {
		insights = append(insights, Insight{
			Type:    InsightWarning,
			Message: fmt.Sprintf("Over discretionary budget by $%.2f", -proj.AvailableAmount),
		})
	} else if proj.AvailableAmount < LowFundsFloor {
		insights = append(insights, Insight{
			Type:    InsightWarning,
			Message: fmt.Sprintf("Only $%.2f left in your discretionary budget", proj.AvailableAmount),
		})
	}

	if proj.DailySafeAmount > 0 && proj.DailySafeAmount < TightDailyFloor {
		insights = append(insights, Insight{
			Type:    InsightAlert,
			Message: fmt.Sprintf("Only $%.2f per day remaining this month", proj.DailySafeAmount),
		})
	}

	if cat, pct, ok := dominantCategory(agg); ok {
		insights = append(insights, Insight{
			Type:    InsightInfo,
			Message: fmt.Sprintf("%s accounts for %.1f%% of your spending", cat, pct),
		})
	}

	// Pace is meaningless until there is an expected spend to compare
	// against (no budget configured, or day one of the month). With a
	// real expectation, a pace of exactly 0 still counts: zero spend
	// against a configured budget is the strongest underspending signal.
	if proj.SpendingPace > OverspendingPace {
		insights = append(insights, Insight{
			Type:    InsightWarning,
			Message: "You are spending faster than planned",
		})
	} else if proj.ExpectedSpendByNow > 0 && proj.SpendingPace < UnderspendingPace {
		insights = append(insights, Insight{
			Type:    InsightInfo,
			Message: "You have room to spend more",
		})
	}

	return insights
}

// dominantCategory returns the largest category by share of total
// spend when that share exceeds DominantSharePercent. Ties break by
// name so output stays deterministic.
func dominantCategory(agg *Aggregation) (string, float64, bool) {
	if agg == nil || agg.TotalCents == 0 {
		return "", 0, false
	}

	names := make([]string, 0, len(agg.Categories))
	for name := range agg.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	var top string
	var topCents int64 = -1
	for _, name := range names {
		if c := agg.Categories[name].Cents; c > topCents {
			top, topCents = name, c
		}
	}

	pct := agg.PercentOfTotal(top)
	if pct > DominantSharePercent {
		return top, pct, true
	}
	return "", 0, false
}
