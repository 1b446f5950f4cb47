package columns

import "strings"

// valueKind is the shape a cell must satisfy during offset-tolerant lookup.
type valueKind int

const (
	anyValue valueKind = iota
	amountValue
	noteValue
)

// searchOffsets is the probe order around the mapped index. Unevenly merged
// table cells shift values by a column or two; probing neighbors recovers
// them without re-running full classification.
var searchOffsets = []int{0, -1, 1, -2, 2, -3, 3}

// ExtractFields resolves each mapped role to a cell value. Lookup tries the
// mapped index first, then nearby columns, accepting the first non-empty
// cell whose shape matches the role. Amount values are normalized.
func ExtractFields(row []string, roleMap RoleMap) Fields {
	var fields Fields

	if idx, ok := roleMap[RoleItemName]; ok {
		if v := findWithOffset(row, idx, anyValue); v != "" {
			fields.ItemName = v
		}
	}
	if idx, ok := roleMap[RoleCurrentPeriod]; ok {
		if v := findWithOffset(row, idx, amountValue); v != "" {
			fields.CurrentPeriod = NormalizeAmount(v)
		}
	}
	if idx, ok := roleMap[RolePreviousPeriod]; ok {
		if v := findWithOffset(row, idx, amountValue); v != "" {
			fields.PreviousPeriod = NormalizeAmount(v)
		}
	}
	if idx, ok := roleMap[RoleNote]; ok {
		if v := findWithOffset(row, idx, noteValue); v != "" {
			fields.Note = v
		}
	}

	return fields
}

func findWithOffset(row []string, baseIdx int, kind valueKind) string {
	for _, offset := range searchOffsets {
		idx := baseIdx + offset
		if idx < 0 || idx >= len(row) {
			continue
		}
		text := strings.TrimSpace(row[idx])
		if text == "" {
			continue
		}
		switch kind {
		case anyValue:
			return text
		case amountValue:
			if IsAmountShaped(text) {
				return text
			}
		case noteValue:
			if IsNoteShaped(text) {
				return text
			}
		}
	}
	return ""
}
