// Package utils holds the JSON salvage pipeline for LLM oracle responses.
// Models wrap payloads in code fences, truncate long reasoning fields and
// emit lenient JSON; the helpers here recover a parseable object before the
// caller gives up on a response.
package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// StripCodeFence removes a wrapping markdown code block (```json ... ``` or
// plain ``` ... ```) if present.
func StripCodeFence(input string) string {
	cleaned := strings.TrimSpace(input)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// CompleteTruncated performs a bounded salvage on a payload that lost its
// closing brace to response truncation: trailing partial fragments are
// trimmed and a closing brace appended. The result is not guaranteed to
// parse; it only restores the common truncation cases.
func CompleteTruncated(input string) string {
	content := strings.TrimSpace(input)
	if content == "" || strings.HasSuffix(content, "}") {
		return content
	}

	content = strings.TrimRight(content, ",\n\t ")

	// A truncated reasoning string is the usual culprit: close the string
	// before closing the object.
	if idx := strings.LastIndex(content, `"reasoning"`); idx >= 0 {
		tail := content[idx+len(`"reasoning"`):]
		if strings.Count(tail, `"`)%2 == 1 {
			content += `"`
		}
	}
	return content + "\n}"
}

// RepairJSON fixes common LLM JSON defects (unquoted keys, single quotes,
// unclosed containers, trailing commas) via json-repair.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// SmartParse unmarshals input into schema, escalating through repair
// strategies: standard JSON, then json-repair, then Hjson. Returns an error
// only when every strategy fails.
func SmartParse(input string, schema interface{}) error {
	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return nil
		}
	}

	if err := hjson.Unmarshal([]byte(input), schema); err == nil {
		return nil
	}

	return fmt.Errorf("all parsing strategies failed")
}
