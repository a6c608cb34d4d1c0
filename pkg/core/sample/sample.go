package sample

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"financeos/pkg/core/normalize"
	"financeos/pkg/models"
)

// CSVTemplate is the downloadable starting sheet for users who do not have an
// export yet. Its layout matches the separate-columns strategy exactly.
var csvRows = [][]string{
	{"Date", "Description", "Category", "Revenue", "COGS", "Expense"},
	{"2024-01-05", "Retail sales", "Sales", "5200", "2100", "0"},
	{"2024-01-12", "Office rent", "Rent", "0", "0", "800"},
	{"2024-01-20", "Online orders", "Sales", "1800", "700", "0"},
	{"2024-01-28", "Staff wages", "Payroll", "0", "0", "1500"},
	{"2024-02-03", "Retail sales", "Sales", "6100", "2500", "0"},
	{"2024-02-10", "Office rent", "Rent", "0", "0", "800"},
	{"2024-02-15", "Ad campaign", "Marketing", "0", "0", "450"},
	{"2024-02-22", "Staff wages", "Payroll", "0", "0", "1500"},
}

// CSV renders the sample sheet as CSV bytes for download.
func CSV() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.WriteAll(csvRows)
	w.Flush()
	return buf.Bytes()
}

// demo seed: six months of plausible small-retail activity. Amounts are
// chosen so revenue trends up while expenses stay roughly flat.
var demoMonths = []struct {
	date    string
	revenue float64
	cogs    float64
	rent    float64
	payroll float64
	other   float64
}{
	{"2024-01-15", 12400, 4900, 800, 3000, 620},
	{"2024-02-15", 13100, 5200, 800, 3000, 540},
	{"2024-03-15", 14800, 5900, 800, 3200, 710},
	{"2024-04-15", 13900, 5500, 800, 3200, 480},
	{"2024-05-15", 16200, 6400, 800, 3200, 900},
	{"2024-06-15", 17500, 6900, 800, 3400, 760},
}

// DemoRecords builds the built-in demo dataset. Every record carries the
// profit identities by construction, so the dashboard numbers reconcile no
// matter how they are sliced.
func DemoRecords() []models.FinancialRecord {
	var out []models.FinancialRecord
	for _, m := range demoMonths {
		out = append(out,
			record(m.date, "Retail sales", "Sales", m.revenue, m.cogs, 0),
			record(m.date, "Shop rent", "Rent", 0, 0, m.rent),
			record(m.date, "Staff wages", "Payroll", 0, 0, m.payroll),
			record(m.date, "Utilities and supplies", "Operations", 0, 0, m.other),
		)
	}
	return out
}

func record(date, desc, category string, revenue, cogs, expenses float64) models.FinancialRecord {
	label, key := normalize.ParseMonthKey(date)
	gross := revenue - cogs
	return models.FinancialRecord{
		PeriodLabel: label,
		PeriodKey:   key,
		Description: desc,
		Category:    category,
		Revenue:     revenue,
		COGS:        cogs,
		GrossProfit: gross,
		Expenses:    expenses,
		NetProfit:   gross - expenses,
	}
}

// Filename labels the demo snapshot in the dashboard header.
func Filename() string {
	return fmt.Sprintf("demo-%d-months.dataset", len(demoMonths))
}
