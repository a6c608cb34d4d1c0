package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"

	"financeos/pkg/core/aggregate"
	"financeos/pkg/core/currency"
	"financeos/pkg/core/ingest"
	"financeos/pkg/core/metrics"
	"financeos/pkg/core/rates"
	"financeos/pkg/models"
)

// Handler serves the aggregated dashboard dataset.
type Handler struct {
	Pipeline *ingest.Pipeline
	Rates    *rates.Service
}

func NewHandler(p *ingest.Pipeline, r *rates.Service) *Handler {
	return &Handler{Pipeline: p, Rates: r}
}

type response struct {
	Filename      string                    `json:"filename"`
	Demo          bool                      `json:"demo"`
	Months        []models.MonthlyAggregate `json:"months"`
	Summary       metrics.Summary           `json:"summary"`
	TopCategories []metrics.CategorySpend   `json:"top_categories"`
	TopIncome     []metrics.CategorySpend   `json:"top_income_categories"`
	Display       map[string]string         `json:"display"`
	Rate          rates.Quote               `json:"rate"`
}

// HandleDashboard returns the windowed months, KPI summary and category
// breakdown for the current dataset. Query params: months (3, 6, 12; 0 or
// absent means all), from/to (inclusive "YYYY-MM" period keys) and currency
// (USD or MMK, default USD).
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")

	snap, ok := h.Pipeline.Current()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "No data uploaded yet"})
		return
	}

	window := snap.Months
	q := r.URL.Query()
	switch {
	case q.Get("from") != "" || q.Get("to") != "":
		window = rangeFilter(window, q.Get("from"), q.Get("to"))
	case q.Get("quick") != "":
		window = quickFilter(window, q.Get("quick"))
	default:
		if n, err := strconv.Atoi(q.Get("months")); err == nil && n > 0 {
			window = aggregate.Window(snap.Months, n)
		}
	}

	code := r.URL.Query().Get("currency")
	if code != "MMK" {
		code = "USD"
	}

	summary := metrics.Compute(window, snap.Months)
	quote := h.Rates.Get(r.Context())

	// Record amounts are kyat. The USD view converts at the fetched rate
	// here, at the formatting boundary; the numeric payload stays native.
	scale := 1.0
	if code == "USD" && quote.Rate > 0 {
		scale = 1 / quote.Rate
	}

	json.NewEncoder(w).Encode(response{
		Filename:      snap.Filename,
		Demo:          snap.Demo,
		Months:        window,
		Summary:       summary,
		TopCategories: metrics.TopCategories(snap.Records, window, 5),
		TopIncome:     metrics.TopIncomeCategories(snap.Records, window, 5),
		Display: map[string]string{
			"total_revenue":  currency.FormatCompact(summary.TotalRevenue*scale, code),
			"gross_profit":   currency.FormatCompact(summary.GrossProfit*scale, code),
			"total_expenses": currency.FormatCompact(summary.TotalExpenses*scale, code),
			"net_profit":     currency.FormatCompact(summary.NetProfit*scale, code),
		},
		Rate: quote,
	})
}

// quickFilter maps the dashboard's one-click ranges onto the sorted series.
// "This month" and "this year" are relative to the newest month present, not
// the wall clock, so old exports still filter sensibly.
func quickFilter(months []models.MonthlyAggregate, quick string) []models.MonthlyAggregate {
	if len(months) == 0 {
		return months
	}
	switch quick {
	case "this_month":
		return months[len(months)-1:]
	case "last_month":
		if len(months) < 2 {
			return nil
		}
		return months[len(months)-2 : len(months)-1]
	case "3m":
		return aggregate.Window(months, 3)
	case "6m":
		return aggregate.Window(months, 6)
	case "this_year":
		year := months[len(months)-1].PeriodKey
		if len(year) >= 4 {
			return rangeFilter(months, year[:4]+"-01", year[:4]+"-12")
		}
		return months
	default:
		return months
	}
}

// rangeFilter keeps the contiguous stretch of months whose period keys fall
// inside [from, to]. Period keys sort lexically, so plain string comparison
// works for "YYYY-MM".
func rangeFilter(months []models.MonthlyAggregate, from, to string) []models.MonthlyAggregate {
	out := months[:0:0]
	for _, m := range months {
		if from != "" && m.PeriodKey < from {
			continue
		}
		if to != "" && m.PeriodKey > to {
			continue
		}
		out = append(out, m)
	}
	return out
}

// HandleRecords returns the normalized records in sheet order.
func (h *Handler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")

	snap, ok := h.Pipeline.Current()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "No data uploaded yet"})
		return
	}
	json.NewEncoder(w).Encode(snap.Records)
}
