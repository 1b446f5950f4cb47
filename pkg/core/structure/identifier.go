// Package structure locates a target financial statement inside an
// unsegmented stream of table rows. Identification is anchor-based: each
// statement kind declares an ordered set of section labels that must appear
// top to bottom, which rejects structurally similar but wrong sections
// (e.g. a parent-company statement preceding the consolidated one).
package structure

import (
	"log"
	"regexp"
	"sort"
	"strings"
)

const (
	headerSearchWindow = 20 // rows scanned upward from the first anchor
	endSearchWindow    = 50 // rows scanned downward from the last anchor
	endFallbackOffset  = 30 // rows past the last anchor when no terminator found
)

// Confidence assigned when anchors are found out of canonical order. An
// order violation is a lower-trust failure mode than incompleteness and is
// never auto-corrected: reordering would hide a real document anomaly.
const orderViolationConfidence = 0.5

// Result describes the located statement. Row indices are -1 when not
// determined. A Result is immutable after Identify returns it.
type Result struct {
	IsValid      bool
	Confidence   float64
	KeyPositions map[string]int
	HeaderRow    int
	StartRow     int
	EndRow       int
	MissingKeys  []string
}

// Identifier scans row streams for one statement kind. It carries no
// per-stream state and may be reused across streams.
type Identifier struct {
	kind        StatementKind
	keys        []KeyStructure
	endPatterns []*regexp.Regexp
}

// NewIdentifier builds an identifier for the given statement kind.
// The anchor sets are fixed per kind; an unknown kind yields nil.
func NewIdentifier(kind StatementKind) *Identifier {
	keys := keyStructuresFor(kind)
	if keys == nil {
		return nil
	}
	return &Identifier{
		kind:        kind,
		keys:        keys,
		endPatterns: endPatternsFor(kind),
	}
}

// Kind returns the statement kind this identifier scans for.
func (id *Identifier) Kind() StatementKind { return id.kind }

// Identify locates the statement inside rows. It is a total function:
// incompleteness and order violations are reported through IsValid,
// Confidence and MissingKeys, never as errors.
func (id *Identifier) Identify(rows [][]string) Result {
	positions := id.findKeyPositions(rows)

	missing := id.missingRequired(positions)
	if len(missing) > 0 {
		required := 0
		foundRequired := 0
		for _, ks := range id.keys {
			if !ks.Required {
				continue
			}
			required++
			if _, ok := positions[ks.Name]; ok {
				foundRequired++
			}
		}
		log.Printf("[structure] %s: missing required anchors %v", id.kind, missing)
		return Result{
			IsValid:      false,
			Confidence:   float64(foundRequired) / float64(required),
			KeyPositions: positions,
			HeaderRow:    -1,
			StartRow:     -1,
			EndRow:       -1,
			MissingKeys:  missing,
		}
	}

	if !id.orderCorrect(positions) {
		log.Printf("[structure] %s: anchors found out of canonical order", id.kind)
		return Result{
			IsValid:      false,
			Confidence:   orderViolationConfidence,
			KeyPositions: positions,
			HeaderRow:    -1,
			StartRow:     -1,
			EndRow:       -1,
		}
	}

	startRow := minPosition(positions)
	return Result{
		IsValid:      true,
		Confidence:   float64(len(positions)) / float64(len(id.keys)),
		KeyPositions: positions,
		HeaderRow:    id.locateHeader(rows, startRow),
		StartRow:     startRow,
		EndRow:       id.locateEnd(rows, maxPosition(positions)),
	}
}

// findKeyPositions records the first row matching each anchor. The label
// may sit in column 0 or column 1, tolerating layouts where a merged cell
// shifts it right.
func (id *Identifier) findKeyPositions(rows [][]string) map[string]int {
	positions := make(map[string]int)

	for _, ks := range id.keys {
	scan:
		for rowIdx, row := range rows {
			for colIdx := 0; colIdx <= 1 && colIdx < len(row); colIdx++ {
				label := cleanLabel(row[colIdx])
				if label == "" {
					continue
				}
				for _, re := range ks.Patterns {
					if re.MatchString(label) {
						positions[ks.Name] = rowIdx
						break scan
					}
				}
			}
		}
	}

	return positions
}

func (id *Identifier) missingRequired(positions map[string]int) []string {
	var missing []string
	for _, ks := range id.keys {
		if !ks.Required {
			continue
		}
		if _, ok := positions[ks.Name]; !ok {
			missing = append(missing, ks.Name)
		}
	}
	return missing
}

// orderCorrect verifies that the anchors, sorted by row index, appear in
// their canonical rank order.
func (id *Identifier) orderCorrect(positions map[string]int) bool {
	rank := make(map[string]int, len(id.keys))
	for i, ks := range id.keys {
		rank[ks.Name] = i
	}

	found := make([]string, 0, len(positions))
	for name := range positions {
		found = append(found, name)
	}
	sort.Slice(found, func(i, j int) bool {
		return positions[found[i]] < positions[found[j]]
	})

	for i := 1; i < len(found); i++ {
		if rank[found[i-1]] >= rank[found[i]] {
			return false
		}
	}
	return true
}

// locateHeader scans upward from the first anchor for a row whose joined
// text carries the item-label keyword together with a period keyword.
// Falls back to the row immediately preceding the first anchor.
func (id *Identifier) locateHeader(rows [][]string, firstAnchor int) int {
	searchStart := firstAnchor - headerSearchWindow
	if searchStart < 0 {
		searchStart = 0
	}

	for rowIdx := firstAnchor - 1; rowIdx >= searchStart; rowIdx-- {
		if rowIdx >= len(rows) {
			continue
		}
		text := strings.Join(rows[rowIdx], " ")
		if strings.Contains(text, "项目") && headerPeriodRe.MatchString(text) {
			return rowIdx
		}
	}

	if firstAnchor > 0 {
		return firstAnchor - 1
	}
	return -1
}

var headerPeriodRe = regexp.MustCompile(`期末|期初|本期|上期|年度|金额`)

// locateEnd scans downward from the last anchor for a terminator row.
// Without one inside the window it falls back to a fixed offset past the
// last anchor, clamped to the stream.
func (id *Identifier) locateEnd(rows [][]string, lastAnchor int) int {
	searchEnd := lastAnchor + endSearchWindow
	if searchEnd > len(rows) {
		searchEnd = len(rows)
	}

	for rowIdx := lastAnchor; rowIdx < searchEnd; rowIdx++ {
		row := rows[rowIdx]
		if len(row) == 0 {
			continue
		}
		label := cleanLabel(row[0])
		if label == "" {
			continue
		}
		for _, re := range id.endPatterns {
			if re.MatchString(label) {
				return rowIdx
			}
		}
	}

	end := lastAnchor + endFallbackOffset
	if end > len(rows)-1 {
		end = len(rows) - 1
	}
	return end
}

func cleanLabel(cell string) string {
	cell = strings.ReplaceAll(cell, "\n", "")
	cell = strings.ReplaceAll(cell, "\r", "")
	return strings.TrimSpace(cell)
}

func minPosition(positions map[string]int) int {
	min := -1
	for _, idx := range positions {
		if min == -1 || idx < min {
			min = idx
		}
	}
	return min
}

func maxPosition(positions map[string]int) int {
	max := -1
	for _, idx := range positions {
		if idx > max {
			max = idx
		}
	}
	return max
}
