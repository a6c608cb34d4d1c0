package normalize

import (
	"testing"

	"financeos/pkg/core/schema"
	"financeos/pkg/core/sheet"
)

func rowsFrom(t *testing.T, raw [][]string) []sheet.RawRow {
	t.Helper()
	_, rows := sheet.RowsToRecords(raw, 0)
	return rows
}

func TestNormalizerSeparateCols(t *testing.T) {
	rows := rowsFrom(t, [][]string{
		{"Date", "Description", "Category", "Revenue", "COGS", "Expense"},
		{"2024-01-05", "Retail sales", "Sales", "5,200", "2,100", ""},
		{"2024-01-12", "Office rent", "Rent", "", "", "800"},
	})
	cfg := &schema.Config{
		Strategy:       schema.StrategySeparateCols,
		DateCol:        "Date",
		DescriptionCol: "Description",
		CategoryCol:    "Category",
		RevenueCol:     "Revenue",
		ExpenseCol:     "Expense",
		COGSCol:        "COGS",
	}

	recs := New(cfg).Apply(rows)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}

	first := recs[0]
	if first.Revenue != 5200 || first.COGS != 2100 || first.Expenses != 0 {
		t.Errorf("first record amounts wrong: %+v", first)
	}
	if first.GrossProfit != 3100 || first.NetProfit != 3100 {
		t.Errorf("profit identities violated: %+v", first)
	}
	if first.PeriodKey != "2024-01" || first.PeriodLabel != "Jan '24" {
		t.Errorf("period wrong: %+v", first)
	}

	second := recs[1]
	if second.Revenue != 0 || second.Expenses != 800 || second.NetProfit != -800 {
		t.Errorf("second record wrong: %+v", second)
	}
}

func TestNormalizerTypeCol(t *testing.T) {
	rows := rowsFrom(t, [][]string{
		{"Date", "Detail", "Type", "Amount"},
		{"2024-02-01", "Invoice 14", "Income", "3000"},
		{"2024-02-03", "Supplies", "Expense", "-250"},
		{"2024-02-05", "Mystery positive", "???", "400"},
		{"2024-02-06", "Mystery negative", "???", "-90"},
	})
	cfg := &schema.Config{
		Strategy:       schema.StrategyTypeCol,
		DateCol:        "Date",
		DescriptionCol: "Detail",
		AmountCol:      "Amount",
		TypeCol:        "Type",
		RevenueValues:  []string{"Income"},
		ExpenseValues:  []string{"Expense"},
	}

	recs := New(cfg).Apply(rows)
	// The two "???" rows match neither label list, so they carry no amount
	// and fall out through the all-zero filter.
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(recs), recs)
	}
	if recs[0].Revenue != 3000 {
		t.Errorf("income row: %+v", recs[0])
	}
	// Expense amounts are stored positive regardless of the sheet's sign.
	if recs[1].Expenses != 250 {
		t.Errorf("expense row: %+v", recs[1])
	}
}

func TestNormalizerTypeColUnmatchedDropped(t *testing.T) {
	rows := rowsFrom(t, [][]string{
		{"Date", "Type", "Amount"},
		{"2024-02-05", "Unknown", "500"},
	})
	cfg := &schema.Config{
		Strategy:      schema.StrategyTypeCol,
		DateCol:       "Date",
		AmountCol:     "Amount",
		TypeCol:       "Type",
		RevenueValues: []string{"credit"},
		ExpenseValues: []string{"debit"},
	}

	if recs := New(cfg).Apply(rows); len(recs) != 0 {
		t.Errorf("unmatched type must not carry an amount: %+v", recs)
	}
}

func TestNormalizerExpenseColumnSigns(t *testing.T) {
	rows := rowsFrom(t, [][]string{
		{"Date", "Revenue", "COGS", "Expense"},
		{"2024-01-05", "", "", "(500)"},
		{"2024-01-12", "", "-300", ""},
	})
	cfg := &schema.Config{
		Strategy:   schema.StrategySeparateCols,
		DateCol:    "Date",
		RevenueCol: "Revenue",
		ExpenseCol: "Expense",
		COGSCol:    "COGS",
	}

	recs := New(cfg).Apply(rows)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Expenses != 500 || recs[0].NetProfit != -500 {
		t.Errorf("accounting-negative expense: %+v", recs[0])
	}
	if recs[1].COGS != 300 || recs[1].GrossProfit != -300 {
		t.Errorf("negative cost cell: %+v", recs[1])
	}
}

func TestNormalizerSignedAmount(t *testing.T) {
	rows := rowsFrom(t, [][]string{
		{"Date", "Description", "Amount"},
		{"2024-03-01", "Sales week 1", "4100"},
		{"2024-03-08", "Rent", "-800"},
	})
	cfg := &schema.Config{
		Strategy:          schema.StrategySignedAmount,
		DateCol:           "Date",
		DescriptionCol:    "Description",
		AmountCol:         "Amount",
		NegativeIsExpense: true,
	}

	recs := New(cfg).Apply(rows)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Revenue != 4100 || recs[1].Expenses != 800 {
		t.Errorf("signed split wrong: %+v / %+v", recs[0], recs[1])
	}
}

func TestNormalizerFiltersSummaryAndZeroRows(t *testing.T) {
	rows := rowsFrom(t, [][]string{
		{"Date", "Description", "Revenue", "Expense"},
		{"2024-01-05", "Sales", "1000", ""},
		{"Total", "", "1000", ""},
		{"Subtotal", "January subtotal", "1000", ""},
		{"Grand Total", "", "2000", ""},
		{"2024-01-20", "Zero row", "", ""},
		{"2024-01-21", "Summer sale", "500", ""},
	})
	cfg := &schema.Config{
		Strategy:       schema.StrategySeparateCols,
		DateCol:        "Date",
		DescriptionCol: "Description",
		RevenueCol:     "Revenue",
		ExpenseCol:     "Expense",
	}

	recs := New(cfg).Apply(rows)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(recs), recs)
	}
	if recs[0].Revenue != 1000 || recs[1].Revenue != 500 {
		t.Errorf("wrong survivors: %+v", recs)
	}
}

func TestNormalizerDefaults(t *testing.T) {
	rows := rowsFrom(t, [][]string{
		{"Date", "Revenue"},
		{"2024-04-02", "100"},
	})
	cfg := &schema.Config{
		Strategy:   schema.StrategySeparateCols,
		DateCol:    "Date",
		RevenueCol: "Revenue",
		ExpenseCol: "Expense", // column does not exist in the sheet
	}

	recs := New(cfg).Apply(rows)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].Category != "General" {
		t.Errorf("category default: %q", recs[0].Category)
	}
	if recs[0].Description != "Transaction" {
		t.Errorf("description default: %q", recs[0].Description)
	}
}
