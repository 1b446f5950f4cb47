package columns

import (
	"log"
	"strings"
)

// Classifier infers the column layout of one row stream. It owns a
// single-slot cache of the last accepted RoleMap; the cache is revalidated
// against every row and dropped the moment a cell genuinely contradicts an
// assigned role. One Classifier serves exactly one stream - instances must
// not be shared across concurrently processed streams.
type Classifier struct {
	cache RoleMap
}

// NewClassifier creates a classifier with an empty cache.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify assigns a role to each resolvable column of row. It never
// errors: an unresolvable row yields a map with some or all roles absent.
//
// With useCache, a still-valid cached layout is returned unchanged, which
// keeps consecutive same-layout rows stable and cheap. On a fresh
// inference the cache is overwritten with the new map.
func (c *Classifier) Classify(row []string, useCache bool) RoleMap {
	if len(row) == 0 {
		return RoleMap{}
	}

	if useCache && len(c.cache) > 0 && c.validateCached(row, c.cache) {
		return c.cache.Clone()
	}

	roleMap := c.infer(row)
	if len(roleMap) > 0 {
		c.cache = roleMap.Clone()
	}
	return roleMap
}

// ResetCache drops the cached layout. Callers invoke this when switching
// to a new, unrelated row stream.
func (c *Classifier) ResetCache() {
	c.cache = nil
}

// infer runs the two-phase inference plus the validation/fix pass.
func (c *Classifier) infer(row []string) RoleMap {
	roleMap := c.matchKeywords(row)
	c.inferShapes(row, roleMap)
	c.fixPeriodOrder(roleMap)
	return roleMap
}

// matchKeywords claims roles by header keyword. Columns are scanned left
// to right; within a column roles are tried in priority order; once a role
// is claimed no other column can claim it.
func (c *Classifier) matchKeywords(row []string) RoleMap {
	matches := RoleMap{}
	for colIdx, cell := range row {
		text := strings.TrimSpace(cell)
		if text == "" {
			continue
		}
		for _, role := range roleOrder {
			if _, claimed := matches[role]; claimed {
				continue
			}
			for _, re := range columnKeywords[role] {
				if re.MatchString(text) {
					matches[role] = colIdx
					break
				}
			}
		}
	}
	return matches
}

// inferShapes fills roles left open by the keyword phase from cell content:
// footnote-shaped cells claim Note, amount-shaped cells claim the period
// roles in column order, and column 0 defaults to the item name.
func (c *Classifier) inferShapes(row []string, roleMap RoleMap) {
	claimed := make(map[int]bool, len(roleMap))
	for _, idx := range roleMap {
		claimed[idx] = true
	}

	for colIdx, cell := range row {
		if claimed[colIdx] {
			continue
		}
		text := strings.TrimSpace(cell)
		if text == "" {
			continue
		}

		if IsNoteShaped(text) {
			if _, ok := roleMap[RoleNote]; !ok {
				roleMap[RoleNote] = colIdx
			}
			continue
		}

		if IsAmountShaped(text) {
			// First open amount column is the current period, the second
			// the previous period. Additional amount columns are left
			// unassigned: layouts with more than two numeric columns have
			// no defined reading and are reported as ambiguity, not
			// guessed at.
			if _, ok := roleMap[RoleCurrentPeriod]; !ok {
				roleMap[RoleCurrentPeriod] = colIdx
			} else if _, ok := roleMap[RolePreviousPeriod]; !ok {
				roleMap[RolePreviousPeriod] = colIdx
			}
		}
	}

	if _, ok := roleMap[RoleItemName]; !ok {
		if strings.TrimSpace(row[0]) != "" {
			roleMap[RoleItemName] = 0
		}
	}
}

// fixPeriodOrder enforces the temporal left-to-right convention: the
// current period column sits left of the previous period column. A
// violation is corrected by swapping, not rejected.
func (c *Classifier) fixPeriodOrder(roleMap RoleMap) {
	cur, hasCur := roleMap[RoleCurrentPeriod]
	prev, hasPrev := roleMap[RolePreviousPeriod]
	if hasCur && hasPrev && cur > prev {
		log.Printf("[columns] period columns out of order (current=%d previous=%d), swapping", cur, prev)
		roleMap[RoleCurrentPeriod] = prev
		roleMap[RolePreviousPeriod] = cur
	}
}

// validateCached checks whether the cached layout still fits row. The
// check is optimistic: empty cells never invalidate, so the cache survives
// sparse or merged rows, but a populated cell whose shape contradicts its
// assigned role breaks it immediately.
func (c *Classifier) validateCached(row []string, cached RoleMap) bool {
	for _, idx := range cached {
		if idx >= len(row) {
			return false
		}
	}

	for role, idx := range cached {
		text := strings.TrimSpace(row[idx])
		if text == "" {
			continue
		}
		switch role {
		case RoleCurrentPeriod, RolePreviousPeriod:
			if !IsAmountShaped(text) {
				return false
			}
		case RoleNote:
			if !IsNoteShaped(text) {
				return false
			}
		}
	}
	return true
}
