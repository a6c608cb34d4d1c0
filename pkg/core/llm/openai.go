package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const openAIDefaultModel = "gpt-4-turbo-preview"

// OpenAIProvider calls the OpenAI chat completions API. It is the default
// provider for schema classification and the finance assistant.
type OpenAIProvider struct {
	Model string
	// BaseURL overrides the API endpoint, used by tests.
	BaseURL string
}

var _ Provider = (*OpenAIProvider)(nil)

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ValidOpenAIKey reports whether a key looks like a real OpenAI secret.
// Placeholder values from .env templates fail this check and are treated as
// no credential at all.
func ValidOpenAIKey(key string) bool {
	return strings.HasPrefix(key, "sk-")
}

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if val, ok := options["api_key"].(string); ok && val != "" {
		apiKey = val
	}
	if !ValidOpenAIKey(apiKey) {
		return "", fmt.Errorf("OPENAI_API_KEY_MISSING: Please set a valid OPENAI_API_KEY env var")
	}

	model := p.Model
	if model == "" {
		model = openAIDefaultModel
	}
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}

	temperature := 0.7
	if val, ok := options["temperature"].(float64); ok {
		temperature = val
	}

	reqBody := openAIRequest{
		Model: model,
		Messages: []Message{
			{Content: systemPrompt, Role: "system"},
			{Content: prompt, Role: "user"},
		},
		Temperature: temperature,
	}
	if val, ok := options["response_format"].(map[string]interface{}); ok {
		if val["type"] == "json_object" {
			reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
		}
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("OPENAI_MARSHAL_ERROR: %v", err)
	}

	url := p.BaseURL
	if url == "" {
		url = "https://api.openai.com/v1/chat/completions"
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("OPENAI_REQ_CREATE_ERROR: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("OPENAI_API_CALL_ERROR: %v", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("OPENAI_READ_BODY_ERROR: %v", err)
	}

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: %s", ErrQuotaExceeded, string(body))
	case http.StatusUnauthorized:
		return "", fmt.Errorf("%w: %s", ErrUnauthorized, string(body))
	default:
		return "", fmt.Errorf("OPENAI_API_ERROR: status=%d body=%s", res.StatusCode, string(body))
	}

	var response openAIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("OPENAI_UNMARSHAL_ERROR: %v", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("OPENAI_NO_CHOICES: %s", string(body))
	}

	return response.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) AdaptInstructions(raw string) string {
	return raw
}
