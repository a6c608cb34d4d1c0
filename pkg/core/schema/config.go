package schema

import (
	"errors"
	"fmt"
)

// Strategy identifies how a sheet encodes money-in vs money-out. Exactly one
// strategy's fields are meaningful on a Config; the rest are ignored.
type Strategy string

const (
	// StrategySeparateCols: distinct columns for revenue and expense
	// (optionally COGS).
	StrategySeparateCols Strategy = "separate_cols"
	// StrategyTypeCol: one amount column plus a discriminator column
	// ("Income" vs "Expense").
	StrategyTypeCol Strategy = "type_col"
	// StrategySignedAmount: one amount column where sign carries direction.
	StrategySignedAmount Strategy = "signed_amount"
)

// Sentinel errors for the ingestion taxonomy. Handlers map these to
// user-visible messages.
var (
	// ErrMissingCredential: no usable AI credential; refused before any
	// network call.
	ErrMissingCredential = errors.New("no AI credential available")
	// ErrMalformed: the classification response was not a single JSON object
	// matching the expected shape. Fatal to the ingestion attempt, no retry.
	ErrMalformed = errors.New("cannot interpret file structure")
	// ErrTransport: the classification call itself failed.
	ErrTransport = errors.New("schema classification call failed")
)

// Config is the AI-resolved column mapping for one uploaded file. It is
// produced once per upload, consumed immediately, and never persisted.
type Config struct {
	Strategy       Strategy `json:"strategy"`
	DateCol        string   `json:"date_col"`
	DescriptionCol string   `json:"description_col"`
	CategoryCol    string   `json:"category_col"`

	// separate_cols
	RevenueCol string `json:"revenue_col"`
	ExpenseCol string `json:"expense_col"`
	COGSCol    string `json:"cogs_col"`

	// type_col and signed_amount
	AmountCol string `json:"amount_col"`

	// type_col
	TypeCol       string   `json:"type_col"`
	RevenueValues []string `json:"revenue_values"`
	ExpenseValues []string `json:"expense_values"`

	// signed_amount
	NegativeIsExpense bool `json:"negative_is_expense"`
}

// Validate checks the strategy tag and the fields that strategy requires.
// Unknown tags and missing required fields are malformed-schema conditions.
func (c *Config) Validate() error {
	switch c.Strategy {
	case StrategySeparateCols:
		if c.RevenueCol == "" || c.ExpenseCol == "" {
			return fmt.Errorf("%w: separate_cols needs revenue_col and expense_col", ErrMalformed)
		}
	case StrategyTypeCol:
		if c.AmountCol == "" || c.TypeCol == "" {
			return fmt.Errorf("%w: type_col needs amount_col and type_col", ErrMalformed)
		}
	case StrategySignedAmount:
		if c.AmountCol == "" {
			return fmt.Errorf("%w: signed_amount needs amount_col", ErrMalformed)
		}
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrMalformed, c.Strategy)
	}
	return nil
}
