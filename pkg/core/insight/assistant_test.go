package insight

import (
	"context"
	"errors"
	"strings"
	"testing"

	"financeos/pkg/core/agent"
	"financeos/pkg/core/ingest"
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

func assistantWith(generate func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error)) *Assistant {
	mgr := agent.NewManager(agent.Config{ActiveProvider: "mock"})
	mgr.RegisterProvider("mock", &mockProvider{generate: generate})
	return NewAssistant(mgr)
}

func demoSnapshot() *ingest.Snapshot {
	p := ingest.New(nil)
	return p.Publish(sample.Filename(), sample.DemoRecords(), true)
}

func TestChatCarriesDataAndHistory(t *testing.T) {
	var gotPrompt string
	a := assistantWith(func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
		gotPrompt = prompt
		return "Revenue peaked in June.", nil
	})

	history := []ChatMessage{
		{Role: "user", Content: "How was May?"},
		{Role: "assistant", Content: "May revenue was 16200."},
	}
	msg, err := a.Chat(context.Background(), demoSnapshot(), "And June?", history)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if msg.ID == "" || msg.Role != "assistant" {
		t.Errorf("message metadata: %+v", msg)
	}
	if msg.Content != "Revenue peaked in June." {
		t.Errorf("content = %q", msg.Content)
	}
	for _, want := range []string{"Jun '24", "17500.00", "How was May?", "And June?"} {
		if !strings.Contains(gotPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestChatPropagatesProviderErrors(t *testing.T) {
	a := assistantWith(func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
		return "", llm.ErrQuotaExceeded
	})

	_, err := a.Chat(context.Background(), demoSnapshot(), "hi", nil)
	if !errors.Is(err, llm.ErrQuotaExceeded) {
		t.Errorf("want quota error, got %v", err)
	}
}

func TestInsightsReturnsThreeBullets(t *testing.T) {
	a := assistantWith(func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
		return "- Revenue rose through June.\n- Expenses held steady.\n- April dipped slightly.\n- Extra observation.", nil
	})

	bullets, err := a.Insights(context.Background(), demoSnapshot())
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}
	if len(bullets) != 3 {
		t.Fatalf("got %d bullets: %v", len(bullets), bullets)
	}
}

func TestInsightsEmptyReply(t *testing.T) {
	a := assistantWith(func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
		return "   ", nil
	})

	if _, err := a.Insights(context.Background(), demoSnapshot()); err == nil {
		t.Error("expected error for empty reply")
	}
}

func TestRangeLabel(t *testing.T) {
	snap := demoSnapshot()
	if got := RangeLabel(snap.Months); got != "Jan '24 to Jun '24" {
		t.Errorf("RangeLabel = %q", got)
	}
	if got := RangeLabel(nil); got != "no data" {
		t.Errorf("RangeLabel(nil) = %q", got)
	}
}
