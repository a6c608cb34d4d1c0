package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	apiAssistant "financeos/pkg/api/assistant"
	apiConfig "financeos/pkg/api/config"
	apiDashboard "financeos/pkg/api/dashboard"
	apiRates "financeos/pkg/api/rates"
	apiUpload "financeos/pkg/api/upload"
	"financeos/pkg/core/agent"
	"financeos/pkg/core/ingest"
	"financeos/pkg/core/insight"
	"financeos/pkg/core/rates"
	"financeos/pkg/core/schema"
)

func main() {
	// Load environment variables
	godotenv.Load()

	agentCfg, err := agent.LoadConfig("config/models.yaml")
	if err != nil {
		fmt.Printf("[WARNING] Failed to load model config: %v\n", err)
		fmt.Println("  Falling back to defaults (openai)")
		agentCfg = agent.Config{ActiveProvider: "openai"}
	}
	agentMgr := agent.NewManager(agentCfg)
	fmt.Printf("[CONFIG] Active provider: %s\n", agentMgr.GetActiveProvider())

	pipeline := ingest.New(schema.NewLLMResolver(agentMgr))

	mirrorPath := os.Getenv("RATES_MIRROR_PATH")
	if mirrorPath == "" {
		mirrorPath = "rates-mirror.json"
	}
	rateSvc := rates.NewService(mirrorPath)
	if err := rateSvc.StartAutoRefresh(); err != nil {
		fmt.Printf("[WARNING] Rate auto-refresh disabled: %v\n", err)
	}
	defer rateSvc.Stop()

	// Config endpoints
	configHandler := apiConfig.NewHandler(agentMgr)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	// Upload lifecycle endpoints
	uploadHandler := apiUpload.NewHandler(pipeline)
	http.HandleFunc("/api/upload", uploadHandler.HandleUpload)
	http.HandleFunc("/api/upload/status", uploadHandler.HandleStatus)
	http.HandleFunc("/api/sample.csv", uploadHandler.HandleSampleCSV)
	http.HandleFunc("/api/demo", uploadHandler.HandleDemo)
	http.HandleFunc("/api/reset", uploadHandler.HandleReset)

	// Dashboard endpoints
	dashboardHandler := apiDashboard.NewHandler(pipeline, rateSvc)
	http.HandleFunc("/api/dashboard", dashboardHandler.HandleDashboard)
	http.HandleFunc("/api/records", dashboardHandler.HandleRecords)

	// AI Assistant endpoints
	assistantHandler := apiAssistant.NewHandler(insight.NewAssistant(agentMgr), pipeline)
	http.HandleFunc("/api/assistant/chat", assistantHandler.HandleChat)
	http.HandleFunc("/api/assistant/insight", assistantHandler.HandleInsight)

	// Exchange rate endpoints
	ratesHandler := apiRates.NewHandler(rateSvc)
	http.HandleFunc("/api/rates", ratesHandler.HandleRates)
	http.HandleFunc("/api/rates/refresh", ratesHandler.HandleRefresh)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("API server starting on :%s...\n", port)
	fmt.Println("  - POST /api/upload")
	fmt.Println("  - GET  /api/upload/status")
	fmt.Println("  - GET  /api/sample.csv")
	fmt.Println("  - POST /api/demo")
	fmt.Println("  - POST /api/reset")
	fmt.Println("  - GET  /api/dashboard")
	fmt.Println("  - GET  /api/records")
	fmt.Println("  - POST /api/assistant/chat")
	fmt.Println("  - GET  /api/assistant/insight")
	fmt.Println("  - GET  /api/rates")
	fmt.Println("  - POST /api/rates/refresh")
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/config/switch")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
