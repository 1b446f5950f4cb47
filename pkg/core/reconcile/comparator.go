// Package reconcile produces one authoritative role map per row by
// cross-checking the rule classifier against the oracle and recording every
// disagreement in the audit ledger.
package reconcile

import (
	"fmt"
	"sort"

	"finstruct/pkg/core/columns"
)

// unassigned marks a role that one side did not claim.
const unassigned = -1

// Difference describes one role the two classifiers disagree on. An index
// of -1 means that side did not assign the role.
type Difference struct {
	Role        columns.ColumnRole
	RuleIndex   int
	OracleIndex int
	RuleCell    string
	OracleCell  string
	Description string
}

// Comparison is the structured diff of two role maps. Both input maps are
// carried along so a resolver can display them without recomputation.
type Comparison struct {
	IsMatch     bool
	Differences []Difference
	Summary     string
	Row         []string
	RuleMap     columns.RoleMap
	OracleMap   columns.RoleMap
}

// Compare diffs the rule and oracle maps against each other. It is pure:
// a role assigned by only one side counts as a disagreement, and IsMatch
// holds only when both maps are identical as (role, index) sets.
func Compare(ruleMap, oracleMap columns.RoleMap, row []string) *Comparison {
	cmp := &Comparison{
		IsMatch:   ruleMap.Equal(oracleMap),
		Row:       row,
		RuleMap:   ruleMap,
		OracleMap: oracleMap,
	}

	if !cmp.IsMatch {
		roles := unionRoles(ruleMap, oracleMap)
		for _, role := range roles {
			ruleIdx, ruleOK := ruleMap[role]
			oracleIdx, oracleOK := oracleMap[role]
			if ruleOK == oracleOK && ruleIdx == oracleIdx {
				continue
			}
			if !ruleOK {
				ruleIdx = unassigned
			}
			if !oracleOK {
				oracleIdx = unassigned
			}

			d := Difference{
				Role:        role,
				RuleIndex:   ruleIdx,
				OracleIndex: oracleIdx,
				RuleCell:    cellAt(row, ruleIdx),
				OracleCell:  cellAt(row, oracleIdx),
			}
			d.Description = describe(d)
			cmp.Differences = append(cmp.Differences, d)
		}
	}

	cmp.Summary = summarize(cmp, ruleMap, oracleMap)
	return cmp
}

func unionRoles(a, b columns.RoleMap) []columns.ColumnRole {
	seen := make(map[columns.ColumnRole]bool, len(a)+len(b))
	for role := range a {
		seen[role] = true
	}
	for role := range b {
		seen[role] = true
	}
	roles := make([]columns.ColumnRole, 0, len(seen))
	for role := range seen {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func describe(d Difference) string {
	switch {
	case d.RuleIndex == unassigned:
		return fmt.Sprintf("%s: rule did not assign it, oracle chose column %d (%q)", d.Role, d.OracleIndex, d.OracleCell)
	case d.OracleIndex == unassigned:
		return fmt.Sprintf("%s: rule chose column %d (%q), oracle did not assign it", d.Role, d.RuleIndex, d.RuleCell)
	default:
		return fmt.Sprintf("%s: rule chose column %d (%q), oracle chose column %d (%q)",
			d.Role, d.RuleIndex, d.RuleCell, d.OracleIndex, d.OracleCell)
	}
}

func summarize(cmp *Comparison, ruleMap, oracleMap columns.RoleMap) string {
	if cmp.IsMatch {
		return fmt.Sprintf("results identical: both classifiers assigned %d roles", len(ruleMap))
	}
	return fmt.Sprintf("results differ: rule assigned %d roles, oracle assigned %d, %d differences",
		len(ruleMap), len(oracleMap), len(cmp.Differences))
}
