// Package llm provides the language-model providers used as the second
// opinion on column classification. All providers share a fixed request
// timeout and a bounded retry count with no backoff: the caller treats
// exhaustion as a hard oracle failure and falls back to rule results.
package llm

import (
	"context"
	"time"
)

// Provider is the interface every LLM backend implements.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultMaxTokens  = 1024
)

// RetryPolicy bounds a provider's network attempts.
type RetryPolicy struct {
	Timeout    time.Duration
	MaxRetries int
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if p.MaxRetries <= 0 {
		p.MaxRetries = DefaultMaxRetries
	}
	return p
}
