// Package oracle obtains a second, independent column classification from a
// language model. The rule classifier stays authoritative; the oracle
// exists so disagreements can be detected, recorded and resolved.
package oracle

import (
	"context"
	"errors"
	"fmt"

	"finstruct/pkg/core/columns"
	"finstruct/pkg/core/llm"
)

// Failure classes. Both are recovered identically by the reconciliation
// layer (fall back to the rule result or report total row failure).
var (
	ErrUnavailable = errors.New("oracle unavailable")
	ErrMalformed   = errors.New("oracle response malformed")
)

// Opinion is the oracle's classification of one row.
type Opinion struct {
	Roles      columns.RoleMap
	Confidence float64
	Reasoning  string
	Raw        string // repaired payload, kept for the audit trail
}

// Classifier is implemented by anything able to produce an Opinion for a
// row. Both the stateless Agent and the per-stream SessionOracle satisfy it.
type Classifier interface {
	ClassifyRow(ctx context.Context, row []string) (*Opinion, error)
}

// Agent asks a configured provider for a one-shot classification. It keeps
// no state between rows and may serve multiple sequential streams.
type Agent struct {
	provider llm.Provider
}

var _ Classifier = (*Agent)(nil)

// NewAgent wraps a provider. A nil provider yields ErrUnavailable on use.
func NewAgent(provider llm.Provider) *Agent {
	return &Agent{provider: provider}
}

// ClassifyRow sends the row to the model and parses the structured verdict.
func (a *Agent) ClassifyRow(ctx context.Context, row []string) (*Opinion, error) {
	if a.provider == nil {
		return nil, fmt.Errorf("%w: no provider configured", ErrUnavailable)
	}

	systemPrompt, userPrompt, err := buildClassificationPrompt(row)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	response, err := a.provider.GenerateResponse(ctx, userPrompt, systemPrompt, map[string]interface{}{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return ParseOpinion(response)
}
