package aggregate

import (
	"sort"

	"financeos/pkg/models"
)

// Monthly groups records by period key and sums the five monetary fields.
// Output is sorted by key ascending, so chronological months come first and
// raw-fallback keys sort among themselves lexically. The result depends only
// on the multiset of records, not on their order.
//
// Grouping by the stored key is equivalent to re-deriving it from the label:
// keys are only ever written by normalize.ParseMonthKey, which maps its own
// label output back to the same key.
func Monthly(records []models.FinancialRecord) []models.MonthlyAggregate {
	byKey := make(map[string]*models.MonthlyAggregate)
	for _, r := range records {
		agg, ok := byKey[r.PeriodKey]
		if !ok {
			agg = &models.MonthlyAggregate{PeriodKey: r.PeriodKey, PeriodLabel: r.PeriodLabel}
			byKey[r.PeriodKey] = agg
		}
		agg.Revenue += r.Revenue
		agg.COGS += r.COGS
		agg.GrossProfit += r.GrossProfit
		agg.Expenses += r.Expenses
		agg.NetProfit += r.NetProfit
	}

	out := make([]models.MonthlyAggregate, 0, len(byKey))
	for _, agg := range byKey {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodKey < out[j].PeriodKey })
	return out
}

// Window returns the trailing n months of a sorted series. n <= 0 means the
// whole series.
func Window(months []models.MonthlyAggregate, n int) []models.MonthlyAggregate {
	if n <= 0 || n >= len(months) {
		return months
	}
	return months[len(months)-n:]
}
