package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"financeos/pkg/core/agent"
	"financeos/pkg/core/ingest"
	"financeos/pkg/core/metrics"
	"financeos/pkg/core/schema"
)

// Command-line runner for the ingestion pipeline. Useful for checking how a
// bookkeeping export classifies without starting the API server.
func main() {
	configPath := flag.String("config", "config/models.yaml", "model roles config")
	months := flag.Int("months", 0, "trailing months for the KPI summary (0 = all)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ingest [-config path] [-months n] <file.csv|file.xlsx|file.xls>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	godotenv.Load()

	agentCfg, err := agent.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("[WARNING] %v, using defaults\n", err)
		agentCfg = agent.Config{ActiveProvider: "openai"}
	}
	agentMgr := agent.NewManager(agentCfg)
	pipeline := ingest.New(schema.NewLLMResolver(agentMgr))

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("[FATAL] read %s: %v\n", path, err)
		os.Exit(1)
	}

	snap, err := pipeline.Ingest(context.Background(), filepath.Base(path), content)
	if err != nil {
		fmt.Printf("[FATAL] ingestion failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nStrategy: %s\n", snap.Schema.Strategy)
	fmt.Printf("Records:  %d\n", len(snap.Records))
	fmt.Printf("Months:   %d\n\n", len(snap.Months))

	window := snap.Months
	if *months > 0 && *months < len(window) {
		window = window[len(window)-*months:]
	}

	fmt.Println("Month    | Revenue      | COGS         | Gross        | Expenses     | Net")
	for _, m := range window {
		fmt.Printf("%-8s | %12.2f | %12.2f | %12.2f | %12.2f | %12.2f\n",
			m.PeriodLabel, m.Revenue, m.COGS, m.GrossProfit, m.Expenses, m.NetProfit)
	}

	s := metrics.Compute(window, snap.Months)
	fmt.Printf("\nGross margin: %.1f%%   Net margin: %.1f%%   Liquidity: %s   Expense growth: %.1f%%\n",
		s.GrossMargin, s.NetMargin, s.LiquidityRatio, s.ExpenseGrowth)
}
