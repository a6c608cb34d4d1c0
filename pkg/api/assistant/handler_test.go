package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"financeos/pkg/core/agent"
	"financeos/pkg/core/ingest"
	"financeos/pkg/core/insight"
	"financeos/pkg/core/llm"
	"financeos/pkg/core/sample"
)

type mockProvider struct {
	generate func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error)
}

func (m *mockProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	return m.generate(ctx, prompt, systemPrompt, options)
}

func (m *mockProvider) AdaptInstructions(raw string) string { return raw }

func handlerWith(t *testing.T, loadDemo bool, generate func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error)) *Handler {
	t.Helper()
	mgr := agent.NewManager(agent.Config{ActiveProvider: "mock"})
	mgr.RegisterProvider("mock", &mockProvider{generate: generate})

	pipeline := ingest.New(nil)
	if loadDemo {
		pipeline.Publish(sample.Filename(), sample.DemoRecords(), true)
	}
	return NewHandler(insight.NewAssistant(mgr), pipeline)
}

func postChat(t *testing.T, h *Handler, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/assistant/chat", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.HandleChat(rr, req)
	return rr
}

func TestHandleChat(t *testing.T) {
	h := handlerWith(t, true, func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
		return "June was your best month.", nil
	})

	rr := postChat(t, h, `{"message":"Which month was best?"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var msg insight.ChatMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Role != "assistant" || msg.ID == "" || msg.Content == "" {
		t.Errorf("message = %+v", msg)
	}
}

func TestHandleChatNoData(t *testing.T) {
	h := handlerWith(t, false, func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
		return "unused", nil
	})

	rr := postChat(t, h, `{"message":"hi"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestHandleChatEmptyMessage(t *testing.T) {
	h := handlerWith(t, true, func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
		return "unused", nil
	})

	rr := postChat(t, h, `{"message":""}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestHandleChatQuotaExceeded(t *testing.T) {
	h := handlerWith(t, true, func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
		return "", llm.ErrQuotaExceeded
	})

	rr := postChat(t, h, `{"message":"hi"}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestHandleChatUnauthorized(t *testing.T) {
	h := handlerWith(t, true, func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
		return "", llm.ErrUnauthorized
	})

	rr := postChat(t, h, `{"message":"hi"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestHandleInsight(t *testing.T) {
	h := handlerWith(t, true, func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
		return "- Revenue climbed steadily.\n- Expenses held flat.\n- June set the profit record.", nil
	})

	rr := httptest.NewRecorder()
	h.HandleInsight(rr, httptest.NewRequest("GET", "/api/assistant/insight", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var resp insightResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Bullets) != 3 {
		t.Errorf("bullets = %v", resp.Bullets)
	}
	if resp.Range != "Jan '24 to Jun '24" {
		t.Errorf("range = %q", resp.Range)
	}
}
