package normalize

import (
	"strings"

	"financeos/pkg/core/schema"
	"financeos/pkg/core/sheet"
	"financeos/pkg/models"
)

// Summary-row markers, matched case-insensitively. The date cell tolerates the
// looser list; the first cell only matches "total"/"grand" so that ordinary
// descriptions ("Summer sale") survive.
var (
	dateMarkers  = []string{"total", "subtotal", "sum"}
	firstMarkers = []string{"total", "grand"}
)

// Normalizer converts schema-keyed raw rows into canonical records using an
// AI-resolved column mapping.
type Normalizer struct {
	cfg *schema.Config
}

func New(cfg *schema.Config) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// Apply normalizes every row, dropping summary rows and rows whose monetary
// fields are all zero. It never fails on a single row: bad cells degrade to
// zeros and the row then falls out through the all-zero filter.
func (n *Normalizer) Apply(rows []sheet.RawRow) []models.FinancialRecord {
	out := make([]models.FinancialRecord, 0, len(rows))
	for _, row := range rows {
		rec, ok := n.record(row)
		if !ok {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (n *Normalizer) record(row sheet.RawRow) (models.FinancialRecord, bool) {
	dateRaw := "N/A"
	if v, ok := row.Get(n.cfg.DateCol); ok {
		dateRaw = v
	}
	if containsMarker(dateRaw, dateMarkers) || containsMarker(row.First(), firstMarkers) {
		return models.FinancialRecord{}, false
	}

	category := "General"
	if v, ok := row.Get(n.cfg.CategoryCol); ok && strings.TrimSpace(v) != "" {
		category = strings.TrimSpace(v)
	}
	description := category
	if v, ok := row.Get(n.cfg.DescriptionCol); ok && strings.TrimSpace(v) != "" {
		description = strings.TrimSpace(v)
	} else if description == "General" {
		description = "Transaction"
	}

	var revenue, cogs, expenses float64
	switch n.cfg.Strategy {
	case schema.StrategySeparateCols:
		if v, ok := row.Get(n.cfg.RevenueCol); ok {
			revenue = ParseAmount(v)
		}
		// Expense and cost cells often carry accounting negatives, "(500)"
		// or "-500". The column already says which direction the money
		// flows, so magnitude is what counts.
		if v, ok := row.Get(n.cfg.ExpenseCol); ok {
			expenses = abs(ParseAmount(v))
		}
		if v, ok := row.Get(n.cfg.COGSCol); ok {
			cogs = abs(ParseAmount(v))
		}

	case schema.StrategyTypeCol:
		var amount float64
		if v, ok := row.Get(n.cfg.AmountCol); ok {
			amount = ParseAmount(v)
		}
		typeVal := ""
		if v, ok := row.Get(n.cfg.TypeCol); ok {
			typeVal = v
		}
		// Rows whose type matches neither list keep both fields at zero
		// and fall out through the all-zero filter below.
		switch {
		case matchesAny(typeVal, n.cfg.RevenueValues):
			revenue = abs(amount)
		case matchesAny(typeVal, n.cfg.ExpenseValues):
			expenses = abs(amount)
		}

	case schema.StrategySignedAmount:
		var amount float64
		if v, ok := row.Get(n.cfg.AmountCol); ok {
			amount = ParseAmount(v)
		}
		if n.cfg.NegativeIsExpense {
			if amount >= 0 {
				revenue = amount
			} else {
				expenses = -amount
			}
		} else {
			if amount >= 0 {
				expenses = amount
			} else {
				revenue = -amount
			}
		}
	}

	if revenue == 0 && cogs == 0 && expenses == 0 {
		return models.FinancialRecord{}, false
	}

	label, key := ParseMonthKey(dateRaw)
	gross := revenue - cogs
	return models.FinancialRecord{
		PeriodLabel: label,
		PeriodKey:   key,
		Description: description,
		Category:    category,
		Revenue:     revenue,
		COGS:        cogs,
		GrossProfit: gross,
		Expenses:    expenses,
		NetProfit:   gross - expenses,
	}, true
}

func containsMarker(cell string, markers []string) bool {
	c := strings.ToLower(strings.TrimSpace(cell))
	if c == "" {
		return false
	}
	for _, m := range markers {
		if strings.Contains(c, m) {
			return true
		}
	}
	return false
}

// matchesAny compares a type-column value against the classifier's expected
// values, case-insensitively, tolerating partial matches in either direction.
func matchesAny(val string, candidates []string) bool {
	v := strings.ToLower(strings.TrimSpace(val))
	if v == "" {
		return false
	}
	for _, c := range candidates {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if v == c || strings.Contains(v, c) || strings.Contains(c, v) {
			return true
		}
	}
	return false
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
