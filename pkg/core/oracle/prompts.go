package oracle

import (
	"encoding/json"
	"fmt"

	"finstruct/pkg/core/prompt"
)

// Prompt library IDs. The registry is consulted first so prompt wording can
// be tuned without a rebuild; the hardcoded fallback keeps the agent usable
// when no library is loaded.
const (
	promptIDColumns = "classification.columns"
)

const fallbackSystemPrompt = `You are an expert analyst of Chinese A-share annual report financial statements.

Your task is to classify each column of a table row into one of these roles:
- item_name: the line item / account label (usually the first column)
- current_period: the period-end / current-year amount (often carries the current year or 期末)
- previous_period: the period-begin / prior-year amount (often carries the prior year or 期初)
- note: the footnote reference number (often carries 附注 or 注)

Important conventions:
1. Date headers may contain spaces, e.g. "2024 年12月 31日".
2. The current-period column sits left of the previous-period column.
3. The item label is usually column 0. Column indices are 0-based.
4. Omit a role from column_map when no column carries it.`

const fallbackUserPromptFmt = `Classify the columns of this table row (%d columns):

%s

Return only a JSON object, no other text:
{
  "column_map": {
    "item_name": <column index>,
    "current_period": <column index>,
    "previous_period": <column index>,
    "note": <column index>
  },
  "confidence": <0.0-1.0>,
  "reasoning": "<why you classified the columns this way>"
}`

// buildClassificationPrompt renders the system and user prompts for one
// row. Library prompt first, hardcoded fallback otherwise.
func buildClassificationPrompt(row []string) (string, string, error) {
	cells, err := json.Marshal(row)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode row: %w", err)
	}

	if pt, err := prompt.Get().GetPrompt(promptIDColumns); err == nil {
		ctx := prompt.NewContext().
			Set("ColumnCount", len(row)).
			Set("RowJSON", string(cells))
		if userPrompt, err := prompt.RenderUserPrompt(pt, ctx); err == nil {
			return pt.SystemPrompt, userPrompt, nil
		}
	}

	return fallbackSystemPrompt, fmt.Sprintf(fallbackUserPromptFmt, len(row), string(cells)), nil
}
