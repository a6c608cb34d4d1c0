package metrics

import (
	"fmt"
	"sort"

	"financeos/pkg/models"
)

// Summary holds the headline KPIs for one displayed window of months.
type Summary struct {
	TotalRevenue  float64 `json:"total_revenue"`
	TotalCOGS     float64 `json:"total_cogs"`
	GrossProfit   float64 `json:"gross_profit"`
	TotalExpenses float64 `json:"total_expenses"`
	NetProfit     float64 `json:"net_profit"`

	// Percentages. Zero when revenue is zero, never NaN.
	GrossMargin float64 `json:"gross_margin"`
	NetMargin   float64 `json:"net_margin"`

	// Revenue / (COGS + Expenses), formatted to two decimals. "N/A" when the
	// denominator is zero.
	LiquidityRatio string `json:"liquidity_ratio"`

	// Percent change of total spend (COGS + expenses) against the
	// equal-length window immediately preceding the displayed one. Zero
	// when no prior window exists or its spend was zero.
	ExpenseGrowth float64 `json:"expense_growth"`
}

// Compute derives the KPI summary for window, which must be a trailing slice
// of full. full provides the look-back months for expense growth.
func Compute(window, full []models.MonthlyAggregate) Summary {
	var s Summary
	for _, m := range window {
		s.TotalRevenue += m.Revenue
		s.TotalCOGS += m.COGS
		s.GrossProfit += m.GrossProfit
		s.TotalExpenses += m.Expenses
		s.NetProfit += m.NetProfit
	}

	if s.TotalRevenue != 0 {
		s.GrossMargin = s.GrossProfit / s.TotalRevenue * 100
		s.NetMargin = s.NetProfit / s.TotalRevenue * 100
	}

	if denom := s.TotalCOGS + s.TotalExpenses; denom != 0 {
		s.LiquidityRatio = fmt.Sprintf("%.2f", s.TotalRevenue/denom)
	} else {
		s.LiquidityRatio = "N/A"
	}

	s.ExpenseGrowth = expenseGrowth(window, full)
	return s
}

// expenseGrowth compares the window's total spend, COGS plus operating
// expenses, to the same-length stretch of months directly before it in the
// full series.
func expenseGrowth(window, full []models.MonthlyAggregate) float64 {
	n := len(window)
	if n == 0 || len(full) < 2*n {
		return 0
	}

	// Locate the window's start inside the full series by period key.
	start := -1
	for i := range full {
		if full[i].PeriodKey == window[0].PeriodKey {
			start = i
			break
		}
	}
	if start < n {
		return 0
	}

	var prior float64
	for _, m := range full[start-n : start] {
		prior += m.COGS + m.Expenses
	}
	if prior == 0 {
		return 0
	}

	var current float64
	for _, m := range window {
		current += m.COGS + m.Expenses
	}
	return (current - prior) / prior * 100
}

// CategorySpend is one slice of the expense breakdown.
type CategorySpend struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// TopCategories sums operating expenses per category across the records
// falling inside the displayed window and returns the largest limit buckets.
// COGS stays out: it belongs to the gross-margin line, not the spend
// breakdown. The "General" default surfaces as "Uncategorized" since that is
// what it means to a reader.
func TopCategories(records []models.FinancialRecord, window []models.MonthlyAggregate, limit int) []CategorySpend {
	return topByAmount(records, window, limit, func(r models.FinancialRecord) float64 {
		return r.Expenses
	})
}

// TopIncomeCategories is the revenue-side counterpart of TopCategories.
func TopIncomeCategories(records []models.FinancialRecord, window []models.MonthlyAggregate, limit int) []CategorySpend {
	return topByAmount(records, window, limit, func(r models.FinancialRecord) float64 {
		return r.Revenue
	})
}

func topByAmount(records []models.FinancialRecord, window []models.MonthlyAggregate, limit int, amount func(models.FinancialRecord) float64) []CategorySpend {
	inWindow := make(map[string]bool, len(window))
	for _, m := range window {
		inWindow[m.PeriodKey] = true
	}

	byCategory := make(map[string]float64)
	for _, r := range records {
		if !inWindow[r.PeriodKey] {
			continue
		}
		v := amount(r)
		if v == 0 {
			continue
		}
		name := r.Category
		if name == "General" {
			name = "Uncategorized"
		}
		byCategory[name] += v
	}

	out := make([]CategorySpend, 0, len(byCategory))
	for name, amount := range byCategory {
		out = append(out, CategorySpend{Category: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// BestMonth returns the month with the highest revenue, or false for an
// empty series. Ties keep the earlier month.
func BestMonth(months []models.MonthlyAggregate) (models.MonthlyAggregate, bool) {
	if len(months) == 0 {
		return models.MonthlyAggregate{}, false
	}
	best := months[0]
	for _, m := range months[1:] {
		if m.Revenue > best.Revenue {
			best = m
		}
	}
	return best, true
}
