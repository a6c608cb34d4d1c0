package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"financeos/pkg/core/ingest"
	"financeos/pkg/core/schema"
)

type stubResolver struct {
	cfg *schema.Config
	err error
}

func (s *stubResolver) Resolve(ctx context.Context, headers []string, sampleRows []map[string]string) (*schema.Config, error) {
	return s.cfg, s.err
}

var testCfg = &schema.Config{
	Strategy:       schema.StrategySeparateCols,
	DateCol:        "Date",
	DescriptionCol: "Description",
	RevenueCol:     "Revenue",
	ExpenseCol:     "Expense",
}

const testCSV = "Date,Description,Revenue,Expense\n2024-01-05,Sales,1200,\n2024-02-05,Rent,,800\n"

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestHandleUpload(t *testing.T) {
	h := NewHandler(ingest.New(&stubResolver{cfg: testCfg}))

	body, contentType := multipartBody(t, "book.csv", testCSV)
	req := httptest.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.HandleUpload(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp uploadResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Records != 2 || resp.Months != 2 || resp.Strategy != "separate_cols" {
		t.Errorf("response = %+v", resp)
	}
	if resp.State != "ready" {
		t.Errorf("state = %q", resp.State)
	}
}

func TestHandleUploadMissingFile(t *testing.T) {
	h := NewHandler(ingest.New(&stubResolver{cfg: testCfg}))

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("other", "value")
	w.Close()

	req := httptest.NewRequest("POST", "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rr := httptest.NewRecorder()

	h.HandleUpload(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestHandleUploadErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		resolver   *stubResolver
		csv        string
		wantStatus int
	}{
		{"missing credential", &stubResolver{err: schema.ErrMissingCredential}, testCSV, http.StatusBadRequest},
		{"malformed schema", &stubResolver{err: schema.ErrMalformed}, testCSV, http.StatusUnprocessableEntity},
		{"transport", &stubResolver{err: schema.ErrTransport}, testCSV, http.StatusBadGateway},
		{"empty result", &stubResolver{cfg: testCfg}, "Date,Revenue\nTotal,500\n", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(ingest.New(tt.resolver))
			body, contentType := multipartBody(t, "book.csv", tt.csv)
			req := httptest.NewRequest("POST", "/api/upload", body)
			req.Header.Set("Content-Type", contentType)
			rr := httptest.NewRecorder()

			h.HandleUpload(rr, req)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			var e errorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil || e.Error == "" {
				t.Errorf("error body missing: %s", rr.Body.String())
			}
		})
	}
}

func TestHandleUploadMethodNotAllowed(t *testing.T) {
	h := NewHandler(ingest.New(&stubResolver{cfg: testCfg}))
	rr := httptest.NewRecorder()

	h.HandleUpload(rr, httptest.NewRequest("GET", "/api/upload", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestHandleSampleCSV(t *testing.T) {
	h := NewHandler(ingest.New(&stubResolver{cfg: testCfg}))
	rr := httptest.NewRecorder()

	h.HandleSampleCSV(rr, httptest.NewRequest("GET", "/api/sample.csv", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.HasPrefix(rr.Body.String(), "Date,Description,Category,Revenue,COGS,Expense") {
		t.Errorf("unexpected body: %s", rr.Body.String()[:40])
	}
}

func TestHandleDemoAndStatus(t *testing.T) {
	pipeline := ingest.New(&stubResolver{cfg: testCfg})
	h := NewHandler(pipeline)

	rr := httptest.NewRecorder()
	h.HandleStatus(rr, httptest.NewRequest("GET", "/api/upload/status", nil))
	var status map[string]interface{}
	json.Unmarshal(rr.Body.Bytes(), &status)
	if status["has_data"] != false {
		t.Errorf("status before demo: %v", status)
	}

	rr = httptest.NewRecorder()
	h.HandleDemo(rr, httptest.NewRequest("POST", "/api/demo", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("demo status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.HandleStatus(rr, httptest.NewRequest("GET", "/api/upload/status", nil))
	json.Unmarshal(rr.Body.Bytes(), &status)
	if status["has_data"] != true || status["state"] != "ready" {
		t.Errorf("status after demo: %v", status)
	}

	rr = httptest.NewRecorder()
	h.HandleReset(rr, httptest.NewRequest("POST", "/api/reset", nil))
	if rr.Code != http.StatusNoContent {
		t.Errorf("reset status = %d", rr.Code)
	}
	if _, ok := pipeline.Current(); ok {
		t.Error("reset must clear the dataset")
	}
}
