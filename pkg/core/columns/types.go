// Package columns assigns semantic roles to the columns of financial
// statement table rows. Column count, order and header vocabulary drift
// between pages of the same filing, so classification runs row by row
// with a single-slot cache of the last accepted layout.
package columns

// ColumnRole is the semantic meaning of one table column.
type ColumnRole string

const (
	RoleItemName       ColumnRole = "item_name"       // line item / account label
	RoleCurrentPeriod  ColumnRole = "current_period"  // period-end / current-year amount
	RolePreviousPeriod ColumnRole = "previous_period" // period-begin / prior-year amount
	RoleNote           ColumnRole = "note"            // footnote reference
	RoleUnknown        ColumnRole = "unknown"
)

// roleOrder fixes the inference priority. Keyword matching claims roles in
// this order, so the mapping is deterministic for any row.
var roleOrder = []ColumnRole{RoleItemName, RoleCurrentPeriod, RolePreviousPeriod, RoleNote}

// RoleFromString converts an external string key (e.g. from an LLM
// response) into a ColumnRole. Unrecognized keys map to RoleUnknown.
func RoleFromString(s string) ColumnRole {
	switch s {
	case "item_name":
		return RoleItemName
	case "current_period":
		return RoleCurrentPeriod
	case "previous_period":
		return RolePreviousPeriod
	case "note":
		return RoleNote
	default:
		return RoleUnknown
	}
}

// RoleMap maps each recognized role to a column index. Each role maps to at
// most one index. A role absent from the map means "not identified" - the
// classifier never errors on ambiguous rows, it just leaves roles out.
type RoleMap map[ColumnRole]int

// Strings returns the map keyed by role name, for serialization and for
// comparison against oracle responses.
func (m RoleMap) Strings() map[string]int {
	out := make(map[string]int, len(m))
	for role, idx := range m {
		out[string(role)] = idx
	}
	return out
}

// Equal reports whether two role maps are identical as sets of
// (role, index) pairs.
func (m RoleMap) Equal(other RoleMap) bool {
	if len(m) != len(other) {
		return false
	}
	for role, idx := range m {
		if otherIdx, ok := other[role]; !ok || otherIdx != idx {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (m RoleMap) Clone() RoleMap {
	out := make(RoleMap, len(m))
	for role, idx := range m {
		out[role] = idx
	}
	return out
}

// Fields holds the values sliced out of one row by ExtractFields.
// Empty string means the role was absent or its cell held no usable value.
type Fields struct {
	ItemName       string
	CurrentPeriod  string
	PreviousPeriod string
	Note           string
}
