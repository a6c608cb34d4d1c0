package models

// FinancialRecord is the canonical, schema-independent representation of one
// transaction row after normalization. Records are immutable once created.
//
// Two identities hold for every record and for every aggregate built from it:
//
//	GrossProfit = Revenue - COGS
//	NetProfit   = GrossProfit - Expenses
type FinancialRecord struct {
	PeriodLabel string  `json:"period_label"` // raw date value or "Jan '24" style label
	PeriodKey   string  `json:"period_key"`   // "YYYY-MM", or the raw string when unparseable
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Revenue     float64 `json:"revenue"`
	COGS        float64 `json:"cogs"`
	GrossProfit float64 `json:"gross_profit"`
	Expenses    float64 `json:"expenses"`
	NetProfit   float64 `json:"net_profit"`
}

// MonthlyAggregate sums all records sharing one period key. The five monetary
// fields are additive, so the record-level identities carry over unchanged.
type MonthlyAggregate struct {
	PeriodKey   string  `json:"period_key"`
	PeriodLabel string  `json:"period_label"`
	Revenue     float64 `json:"revenue"`
	COGS        float64 `json:"cogs"`
	GrossProfit float64 `json:"gross_profit"`
	Expenses    float64 `json:"expenses"`
	NetProfit   float64 `json:"net_profit"`
}
