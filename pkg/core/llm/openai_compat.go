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

// OpenAICompatProvider speaks the /v1/chat/completions protocol shared by
// OpenRouter, DeepSeek and most self-hosted gateways.
type OpenAICompatProvider struct {
	BaseURL     string
	Model       string
	APIKeyEnv   string // environment variable holding the key
	MaxTokens   int
	Temperature float64
	Retry       RetryPolicy

	// HTTPClient overrides the default client; tests inject one pointed at
	// a local server.
	HTTPClient *http.Client
}

var _ Provider = (*OpenAICompatProvider)(nil)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *OpenAICompatProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv(p.APIKeyEnv)
	if val, ok := options["api_key"].(string); ok && val != "" {
		apiKey = val
	}
	if apiKey == "" {
		return "", fmt.Errorf("API key not set (env %s)", p.APIKeyEnv)
	}

	model := p.Model
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}

	maxTokens := p.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	reqBody := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: p.Temperature,
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err := p.post(ctx, p.BaseURL+"/v1/chat/completions", apiKey, jsonBytes)
	if err != nil {
		return "", err
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("response contained no choices: %s", string(body))
	}
	return response.Choices[0].Message.Content, nil
}

// post sends the request with the provider's retry policy: a fixed number
// of attempts, each under the fixed timeout, no backoff between them.
func (p *OpenAICompatProvider) post(ctx context.Context, url, apiKey string, payload []byte) ([]byte, error) {
	retry := p.Retry.withDefaults()
	client := p.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: retry.Timeout}
	}

	var lastErr error
	for attempt := 1; attempt <= retry.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+apiKey)

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
			// Client errors will not improve on retry.
			if res.StatusCode >= 400 && res.StatusCode < 500 {
				return nil, fmt.Errorf("API error: status=%d body=%s", res.StatusCode, string(body))
			}
			lastErr = fmt.Errorf("API error: status=%d body=%s", res.StatusCode, string(body))
			continue
		}
		return body, nil
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", retry.MaxRetries, lastErr)
}
