package oracle

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"finstruct/pkg/core/columns"
)

type stubProvider struct {
	response string
	err      error
}

func (s *stubProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	return s.response, s.err
}

func TestParseOpinion(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     columns.RoleMap
		wantConf float64
	}{
		{
			name:     "clean json",
			response: `{"column_map": {"item_name": 0, "note": 1, "current_period": 2, "previous_period": 3}, "confidence": 0.95, "reasoning": "standard layout"}`,
			want:     columns.RoleMap{columns.RoleItemName: 0, columns.RoleNote: 1, columns.RoleCurrentPeriod: 2, columns.RolePreviousPeriod: 3},
			wantConf: 0.95,
		},
		{
			name:     "fenced json",
			response: "```json\n{\"column_map\": {\"item_name\": 0}, \"confidence\": 0.8, \"reasoning\": \"r\"}\n```",
			want:     columns.RoleMap{columns.RoleItemName: 0},
			wantConf: 0.8,
		},
		{
			name:     "truncated reasoning salvaged",
			response: `{"column_map": {"item_name": 0, "current_period": 1}, "confidence": 0.9, "reasoning": "cut off mid sent`,
			want:     columns.RoleMap{columns.RoleItemName: 0, columns.RoleCurrentPeriod: 1},
			wantConf: 0.9,
		},
		{
			name:     "unknown role key dropped",
			response: `{"column_map": {"item_name": 0, "percentage": 4}, "confidence": 1, "reasoning": "r"}`,
			want:     columns.RoleMap{columns.RoleItemName: 0},
			wantConf: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := ParseOpinion(tt.response)
			if err != nil {
				t.Fatalf("ParseOpinion() error = %v", err)
			}
			if !op.Roles.Equal(tt.want) {
				t.Errorf("Roles = %v, want %v", op.Roles, tt.want)
			}
			if op.Confidence != tt.wantConf {
				t.Errorf("Confidence = %v, want %v", op.Confidence, tt.wantConf)
			}
		})
	}
}

func TestParseOpinionMalformed(t *testing.T) {
	_, err := ParseOpinion("I could not classify this row, sorry.")
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("error = %v, want ErrMalformed", err)
	}
}

func TestAgentClassifyRow(t *testing.T) {
	provider := &stubProvider{
		response: `{"column_map": {"item_name": 0, "current_period": 2}, "confidence": 0.9, "reasoning": "r"}`,
	}
	agent := NewAgent(provider)

	op, err := agent.ClassifyRow(context.Background(), []string{"货币资金", "", "1,000.00"})
	if err != nil {
		t.Fatalf("ClassifyRow() error = %v", err)
	}
	want := columns.RoleMap{columns.RoleItemName: 0, columns.RoleCurrentPeriod: 2}
	if !op.Roles.Equal(want) {
		t.Errorf("Roles = %v, want %v", op.Roles, want)
	}
}

func TestAgentProviderFailure(t *testing.T) {
	agent := NewAgent(&stubProvider{err: fmt.Errorf("connection refused")})
	_, err := agent.ClassifyRow(context.Background(), []string{"货币资金"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestAgentNoProvider(t *testing.T) {
	agent := NewAgent(nil)
	_, err := agent.ClassifyRow(context.Background(), []string{"货币资金"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}
