package config

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"financeos/pkg/core/agent"
)

type mockProvider struct{}

func (m *mockProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	return "", nil
}

func (m *mockProvider) AdaptInstructions(raw string) string { return raw }

func TestHandleConfigListsRegisteredProviders(t *testing.T) {
	mgr := agent.NewManager(agent.Config{ActiveProvider: "openai"})
	mgr.RegisterProvider("local", &mockProvider{})
	h := NewHandler(mgr)

	rr := httptest.NewRecorder()
	h.HandleConfig(rr, httptest.NewRequest("GET", "/api/config", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var resp Response
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ActiveProvider != "openai" {
		t.Errorf("active = %q", resp.ActiveProvider)
	}
	// The list comes from the manager's registry, sorted, so a registered
	// provider shows up without any handler change.
	want := []string{"deepseek", "gemini", "local", "openai"}
	if len(resp.Available) != len(want) {
		t.Fatalf("available = %v, want %v", resp.Available, want)
	}
	for i, name := range want {
		if resp.Available[i] != name {
			t.Fatalf("available = %v, want %v", resp.Available, want)
		}
	}
}

func TestHandleSwitch(t *testing.T) {
	mgr := agent.NewManager(agent.Config{ActiveProvider: "openai"})
	h := NewHandler(mgr)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/config/switch", strings.NewReader(`{"provider":"gemini"}`))
	h.HandleSwitch(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if mgr.GetActiveProvider() != "gemini" {
		t.Errorf("active = %q after switch", mgr.GetActiveProvider())
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/config/switch", strings.NewReader(`{"provider":"nope"}`))
	h.HandleSwitch(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown provider: status = %d", rr.Code)
	}
}
