package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func chatCompletion(content string) string {
	return `{"choices":[{"message":{"content":` + mustQuote(content) + `}}]}`
}

func mustQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func newProvider(t *testing.T, handler http.HandlerFunc) (*OpenAICompatProvider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("TEST_LLM_KEY", "test-key")
	return &OpenAICompatProvider{
		BaseURL:    srv.URL,
		Model:      "test-model",
		APIKeyEnv:  "TEST_LLM_KEY",
		HTTPClient: srv.Client(),
	}, srv
}

func TestGenerateResponse(t *testing.T) {
	var gotReq chatRequest
	p, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(chatCompletion(`{"column_map":{}}`)))
	})

	got, err := p.GenerateResponse(context.Background(), "classify this row", "you are an analyst", nil)
	if err != nil {
		t.Fatalf("GenerateResponse: %v", err)
	}
	if got != `{"column_map":{}}` {
		t.Errorf("content = %q", got)
	}

	if gotReq.Model != "test-model" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if gotReq.MaxTokens != DefaultMaxTokens {
		t.Errorf("max_tokens = %d, want default %d", gotReq.MaxTokens, DefaultMaxTokens)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestGenerateResponseRetriesServerErrors(t *testing.T) {
	attempts := 0
	p, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "upstream overloaded", http.StatusBadGateway)
			return
		}
		w.Write([]byte(chatCompletion("ok")))
	})
	p.Retry = RetryPolicy{MaxRetries: 3}

	got, err := p.GenerateResponse(context.Background(), "p", "s", nil)
	if err != nil {
		t.Fatalf("GenerateResponse: %v", err)
	}
	if got != "ok" || attempts != 3 {
		t.Errorf("got %q after %d attempts, want ok after 3", got, attempts)
	}
}

func TestGenerateResponseExhaustsRetries(t *testing.T) {
	attempts := 0
	p, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	p.Retry = RetryPolicy{MaxRetries: 2}

	_, err := p.GenerateResponse(context.Background(), "p", "s", nil)
	if err == nil {
		t.Fatal("expected error after retry exhaustion")
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if !strings.Contains(err.Error(), "after 2 attempts") {
		t.Errorf("error = %v", err)
	}
}

func TestGenerateResponseDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	p, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "bad key", http.StatusUnauthorized)
	})
	p.Retry = RetryPolicy{MaxRetries: 3}

	_, err := p.GenerateResponse(context.Background(), "p", "s", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (client errors are final)", attempts)
	}
}

func TestGenerateResponseMissingKey(t *testing.T) {
	p := &OpenAICompatProvider{BaseURL: "http://unused", APIKeyEnv: "FINSTRUCT_ABSENT_KEY"}
	if _, err := p.GenerateResponse(context.Background(), "p", "s", nil); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestGenerateResponseOptionOverrides(t *testing.T) {
	var gotReq chatRequest
	p, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(chatCompletion("ok")))
	})

	_, err := p.GenerateResponse(context.Background(), "p", "s", map[string]interface{}{"model": "override-model"})
	if err != nil {
		t.Fatalf("GenerateResponse: %v", err)
	}
	if gotReq.Model != "override-model" {
		t.Errorf("model = %q, want override-model", gotReq.Model)
	}
}
