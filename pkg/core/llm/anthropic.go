package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

// AnthropicProvider calls the Anthropic Messages API.
type AnthropicProvider struct {
	BaseURL     string
	Model       string
	APIKeyEnv   string
	MaxTokens   int
	Temperature float64
	Retry       RetryPolicy

	HTTPClient *http.Client
}

var _ Provider = (*AnthropicProvider)(nil)

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (p *AnthropicProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv(p.APIKeyEnv)
	if val, ok := options["api_key"].(string); ok && val != "" {
		apiKey = val
	}
	if apiKey == "" {
		return "", fmt.Errorf("API key not set (env %s)", p.APIKeyEnv)
	}

	maxTokens := p.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	reqBody := anthropicRequest{
		Model:       p.Model,
		MaxTokens:   maxTokens,
		Temperature: p.Temperature,
		System:      systemPrompt,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	retry := p.Retry.withDefaults()
	client := p.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: retry.Timeout}
	}

	var lastErr error
	for attempt := 1; attempt <= retry.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/messages", bytes.NewReader(jsonBytes))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("content-type", "application/json")
		req.Header.Set("x-api-key", apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")

		res, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(res.Body)
		res.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if res.StatusCode != http.StatusOK {
			if res.StatusCode >= 400 && res.StatusCode < 500 {
				return "", fmt.Errorf("API error: status=%d body=%s", res.StatusCode, string(body))
			}
			lastErr = fmt.Errorf("API error: status=%d body=%s", res.StatusCode, string(body))
			continue
		}

		var response anthropicResponse
		if err := json.Unmarshal(body, &response); err != nil {
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
		if len(response.Content) == 0 {
			return "", fmt.Errorf("response contained no content blocks")
		}
		return response.Content[0].Text, nil
	}

	return "", fmt.Errorf("request failed after %d attempts: %w", retry.MaxRetries, lastErr)
}
