package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"financeos/pkg/core/agent"
	"financeos/pkg/core/ingest"
	"financeos/pkg/core/metrics"
	"financeos/pkg/core/utils"
	"financeos/pkg/models"
)

const (
	// chatMonthLimit caps how much of the series goes into the prompt. Two
	// years is enough context for trend questions; longer histories just
	// inflate the prompt.
	chatMonthLimit = 24
	// insightMonthLimit: the automatic insight looks at the recent window
	// only, where the numbers are still actionable.
	insightMonthLimit = 6
	insightBullets    = 3
)

const chatSystem = `You are a finance assistant for a small business owner.
You are given their real bookkeeping numbers below. Answer questions using
only these numbers. Be concrete: cite months and amounts. If the data cannot
answer the question, say so plainly. Keep answers short.`

const insightSystem = `You are a finance analyst reviewing a small business's
recent months. Produce exactly three short observations as a markdown bullet
list. Each bullet: one sentence, grounded in the numbers given, naming the
month and amount it relies on. No preamble, no closing remarks.`

// ChatMessage is one turn of the assistant conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Assistant answers questions about the current dataset and produces the
// automatic insight bullets.
type Assistant struct {
	Agents *agent.Manager
}

func NewAssistant(agents *agent.Manager) *Assistant {
	return &Assistant{Agents: agents}
}

// Chat answers one question against the snapshot, folding recent history into
// the prompt so follow-ups resolve naturally.
func (a *Assistant) Chat(ctx context.Context, snap *ingest.Snapshot, question string, history []ChatMessage) (ChatMessage, error) {
	var b strings.Builder
	b.WriteString(dataBlock(snap, chatMonthLimit))

	if len(history) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, m := range history {
			b.WriteString(fmt.Sprintf("%s: %s\n", m.Role, m.Content))
		}
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)

	reply, err := a.Agents.ExecutePrompt(ctx, "assistant", b.String(), chatSystem, nil)
	if err != nil {
		return ChatMessage{}, err
	}

	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      "assistant",
		Content:   utils.CleanMarkdown(reply),
		CreatedAt: time.Now(),
	}, nil
}

// Insights generates three observation bullets from the trailing six months.
func (a *Assistant) Insights(ctx context.Context, snap *ingest.Snapshot) ([]string, error) {
	reply, err := a.Agents.ExecutePrompt(ctx, "assistant", dataBlock(snap, insightMonthLimit), insightSystem, nil)
	if err != nil {
		return nil, err
	}

	bullets := utils.ExtractBullets(reply, insightBullets)
	if len(bullets) == 0 {
		return nil, fmt.Errorf("INSIGHT_EMPTY: model returned no observations")
	}
	return bullets, nil
}

// dataBlock renders the snapshot as the prompt's data section: headline
// totals followed by a month-by-month table, trailing limit months.
func dataBlock(snap *ingest.Snapshot, limit int) string {
	months := snap.Months
	if limit > 0 && len(months) > limit {
		months = months[len(months)-limit:]
	}
	summary := metrics.Compute(months, snap.Months)

	var b strings.Builder
	fmt.Fprintf(&b, "Dataset: %s, %d transactions.\n", snap.Filename, len(snap.Records))
	fmt.Fprintf(&b, "Totals over shown months: revenue %.2f, COGS %.2f, gross profit %.2f, expenses %.2f, net profit %.2f.\n",
		summary.TotalRevenue, summary.TotalCOGS, summary.GrossProfit, summary.TotalExpenses, summary.NetProfit)
	fmt.Fprintf(&b, "Gross margin %.1f%%, net margin %.1f%%, liquidity ratio %s.\n",
		summary.GrossMargin, summary.NetMargin, summary.LiquidityRatio)
	if best, ok := metrics.BestMonth(months); ok {
		fmt.Fprintf(&b, "Best revenue month: %s (%.2f).\n", best.PeriodLabel, best.Revenue)
	}
	b.WriteString("\n")

	b.WriteString("Month | Revenue | COGS | Gross | Expenses | Net\n")
	for _, m := range months {
		fmt.Fprintf(&b, "%s | %.2f | %.2f | %.2f | %.2f | %.2f\n",
			m.PeriodLabel, m.Revenue, m.COGS, m.GrossProfit, m.Expenses, m.NetProfit)
	}
	return b.String()
}

// RangeLabel describes the analyzed span for response metadata, e.g.
// "Jan '24 to Jun '24".
func RangeLabel(months []models.MonthlyAggregate) string {
	if len(months) == 0 {
		return "no data"
	}
	if len(months) > insightMonthLimit {
		months = months[len(months)-insightMonthLimit:]
	}
	return fmt.Sprintf("%s to %s", months[0].PeriodLabel, months[len(months)-1].PeriodLabel)
}
