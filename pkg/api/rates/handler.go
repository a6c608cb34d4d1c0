package rates

import (
	"encoding/json"
	"net/http"

	"financeos/pkg/core/rates"
)

// Handler exposes the USD/MMK exchange rate.
type Handler struct {
	Service *rates.Service
}

func NewHandler(s *rates.Service) *Handler {
	return &Handler{Service: s}
}

// HandleRates returns the current quote, serving from cache when fresh.
func (h *Handler) HandleRates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(h.Service.Get(r.Context()))
}

// HandleRefresh forces a fetch through the source chain.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.Refresh(r.Context()))
}
