package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"financeos/pkg/core/agent"
	"financeos/pkg/core/llm"
	"financeos/pkg/core/utils"
)

// sampleRowLimit caps how many rows go into the classification prompt. Ten
// rows is enough to disambiguate the three strategies and keeps the prompt
// within a few hundred tokens regardless of file size.
const sampleRowLimit = 10

const classifierSystem = `You are a financial data classification engine.
You receive spreadsheet headers and sample rows from a small-business bookkeeping file.
Classify how the sheet encodes money flowing in and out, then map its columns.

Reply with a single JSON object and nothing else. No prose, no code fences.

The object must have a "strategy" field with one of three values:

1. "separate_cols" - distinct columns hold revenue and expense amounts.
   Also set: date_col, description_col, category_col, revenue_col, expense_col, cogs_col.
2. "type_col" - one amount column plus a type column saying income vs expense.
   Also set: date_col, description_col, category_col, amount_col, type_col,
   revenue_values (array of type values meaning income),
   expense_values (array of type values meaning expense).
3. "signed_amount" - one amount column where the sign carries direction.
   Also set: date_col, description_col, category_col, amount_col,
   negative_is_expense (boolean, true when negative numbers are expenses).

Use the exact header strings from the input as column values. Use "" for any
column the sheet does not have.`

// Resolver classifies an uploaded sheet's column layout.
type Resolver interface {
	Resolve(ctx context.Context, headers []string, sampleRows []map[string]string) (*Config, error)
}

// LLMResolver asks the configured model to classify the sheet. One call per
// upload, JSON mode, tolerant decode, strict validation.
type LLMResolver struct {
	Agents *agent.Manager
}

func NewLLMResolver(agents *agent.Manager) *LLMResolver {
	return &LLMResolver{Agents: agents}
}

// Resolve builds the classification prompt from headers plus up to ten sample
// rows and decodes the reply into a validated Config. Transport problems wrap
// ErrTransport; replies that survive tolerant decoding but fail validation
// wrap ErrMalformed.
func (r *LLMResolver) Resolve(ctx context.Context, headers []string, sampleRows []map[string]string) (*Config, error) {
	// Refuse before any network traffic when the active provider clearly has
	// no usable credential. Placeholder keys from .env templates count as
	// missing.
	if r.Agents.GetActiveProvider() == "openai" && !llm.ValidOpenAIKey(os.Getenv("OPENAI_API_KEY")) {
		return nil, ErrMissingCredential
	}

	if len(sampleRows) > sampleRowLimit {
		sampleRows = sampleRows[:sampleRowLimit]
	}

	prompt, err := buildPrompt(headers, sampleRows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	raw, err := r.Agents.ExecutePrompt(ctx, "classifier", prompt, classifierSystem, map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
		"temperature":     0.0,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	var cfg Config
	if err := utils.SmartParse(raw, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func buildPrompt(headers []string, sampleRows []map[string]string) (string, error) {
	headerJSON, err := json.Marshal(headers)
	if err != nil {
		return "", err
	}
	rowsJSON, err := json.Marshal(sampleRows)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Headers:\n")
	b.Write(headerJSON)
	b.WriteString("\n\nSample rows:\n")
	b.Write(rowsJSON)
	b.WriteString("\n\nClassify this sheet.")
	return b.String(), nil
}
