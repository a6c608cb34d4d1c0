package assistant

import (
	"encoding/json"
	"errors"
	"net/http"

	"financeos/pkg/core/ingest"
	"financeos/pkg/core/insight"
	"financeos/pkg/core/llm"
)

// Handler provides HTTP handlers for the AI finance assistant.
type Handler struct {
	Assistant *insight.Assistant
	Pipeline  *ingest.Pipeline
}

func NewHandler(a *insight.Assistant, p *ingest.Pipeline) *Handler {
	return &Handler{Assistant: a, Pipeline: p}
}

type chatRequest struct {
	Message string                `json:"message"`
	History []insight.ChatMessage `json:"history,omitempty"`
}

type insightResponse struct {
	Bullets []string `json:"bullets"`
	Range   string   `json:"range"`
}

// HandleChat answers one user question against the current dataset.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	snap, ok := h.Pipeline.Current()
	if !ok {
		writeError(w, http.StatusNotFound, "Upload a file or load the demo before chatting")
		return
	}

	msg, err := h.Assistant.Chat(r.Context(), snap, req.Message, req.History)
	if err != nil {
		status, text := classifyLLMError(err)
		writeError(w, status, text)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(msg)
}

// HandleInsight returns three auto-generated observations about the trailing
// months.
func (h *Handler) HandleInsight(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	snap, ok := h.Pipeline.Current()
	if !ok {
		writeError(w, http.StatusNotFound, "Upload a file or load the demo first")
		return
	}

	bullets, err := h.Assistant.Insights(r.Context(), snap)
	if err != nil {
		status, text := classifyLLMError(err)
		writeError(w, status, text)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(insightResponse{
		Bullets: bullets,
		Range:   insight.RangeLabel(snap.Months),
	})
}

func classifyLLMError(err error) (int, string) {
	switch {
	case errors.Is(err, llm.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "AI quota exceeded. Check your plan and billing, then retry."
	case errors.Is(err, llm.ErrUnauthorized):
		return http.StatusUnauthorized, "The configured AI API key was rejected."
	default:
		return http.StatusBadGateway, "AI request failed: " + err.Error()
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
