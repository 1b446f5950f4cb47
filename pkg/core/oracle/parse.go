package oracle

import (
	"encoding/json"
	"fmt"
	"log"

	"finstruct/pkg/core/columns"
	"finstruct/pkg/core/utils"
)

// rawOpinion is the wire contract the classification prompt demands.
type rawOpinion struct {
	ColumnMap  map[string]int `json:"column_map"`
	Confidence float64        `json:"confidence"`
	Reasoning  string         `json:"reasoning"`
}

// ParseOpinion decodes a model response into an Opinion. The payload goes
// through the salvage pipeline first: code fences stripped, truncation
// repaired, then progressively more lenient parsers. A payload that
// survives none of it is ErrMalformed.
func ParseOpinion(response string) (*Opinion, error) {
	content := utils.StripCodeFence(response)
	content = utils.CompleteTruncated(content)

	var raw rawOpinion
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		if err := utils.SmartParse(content, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	// Translate the oracle's string keys into the closed role type before
	// anyone compares maps; unknown keys are dropped, not guessed at.
	roles := make(columns.RoleMap, len(raw.ColumnMap))
	for key, idx := range raw.ColumnMap {
		role := columns.RoleFromString(key)
		if role == columns.RoleUnknown {
			log.Printf("[oracle] ignoring unknown column role %q in response", key)
			continue
		}
		roles[role] = idx
	}

	return &Opinion{
		Roles:      roles,
		Confidence: raw.Confidence,
		Reasoning:  raw.Reasoning,
		Raw:        content,
	}, nil
}
