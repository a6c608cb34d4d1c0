package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"financeos/pkg/core/ingest"
	"financeos/pkg/core/sample"
	"financeos/pkg/core/schema"
)

// maxUploadBytes caps uploads at 10 MB. SME bookkeeping exports are far
// smaller; anything bigger is a wrong file.
const maxUploadBytes = 10 << 20

// Handler owns the upload lifecycle endpoints.
type Handler struct {
	Pipeline *ingest.Pipeline
}

func NewHandler(p *ingest.Pipeline) *Handler {
	return &Handler{Pipeline: p}
}

type uploadResponse struct {
	Filename string `json:"filename"`
	Records  int    `json:"records"`
	Months   int    `json:"months"`
	Strategy string `json:"strategy,omitempty"`
	State    string `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleUpload ingests one multipart file upload end to end. The response
// tells the client how much data survived; failures map onto the ingestion
// error taxonomy.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
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

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Could not parse upload: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing 'file' form field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read upload: "+err.Error())
		return
	}

	fmt.Printf("[UPLOAD] Received %s (%d bytes)\n", header.Filename, len(content))
	snap, err := h.Pipeline.Ingest(r.Context(), header.Filename, content)
	if err != nil {
		status, msg := classify(err)
		writeError(w, status, msg)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(uploadResponse{
		Filename: snap.Filename,
		Records:  len(snap.Records),
		Months:   len(snap.Months),
		Strategy: string(snap.Schema.Strategy),
		State:    string(h.Pipeline.State()),
	})
}

// classify maps pipeline errors to HTTP statuses and messages a non-technical
// user can act on.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ingest.ErrInFlight):
		return http.StatusConflict, "Another file is still being processed. Try again in a moment."
	case errors.Is(err, schema.ErrMissingCredential):
		return http.StatusBadRequest, "No AI API key is configured. Set OPENAI_API_KEY and try again."
	case errors.Is(err, schema.ErrMalformed):
		return http.StatusUnprocessableEntity, "The AI could not understand this file's structure. Try the sample CSV layout."
	case errors.Is(err, ingest.ErrEmptyResult):
		return http.StatusUnprocessableEntity, "No usable transactions were found in this file."
	case errors.Is(err, schema.ErrTransport):
		return http.StatusBadGateway, "The AI service could not be reached. Check your connection and try again."
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// HandleStatus reports the pipeline phase for upload progress polling.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")

	_, hasData := h.Pipeline.Current()
	json.NewEncoder(w).Encode(map[string]interface{}{
		"state":    string(h.Pipeline.State()),
		"has_data": hasData,
	})
}

// HandleSampleCSV serves the downloadable template sheet.
func (h *Handler) HandleSampleCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="sample-bookkeeping.csv"`)
	w.Write(sample.CSV())
}

// HandleDemo loads the built-in demo dataset, replacing whatever is current.
func (h *Handler) HandleDemo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	snap := h.Pipeline.Publish(sample.Filename(), sample.DemoRecords(), true)
	fmt.Printf("[UPLOAD] Demo dataset loaded: %d records\n", len(snap.Records))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(uploadResponse{
		Filename: snap.Filename,
		Records:  len(snap.Records),
		Months:   len(snap.Months),
		State:    string(h.Pipeline.State()),
	})
}

// HandleReset discards the current dataset.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	h.Pipeline.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
