package columns

import (
	"regexp"
	"strings"
)

// Shape predicates used by the inference and cache-validation passes.
// Keyword patterns identify header cells; shape patterns identify data cells.

var (
	// Footnote references look like "七、1" (ideographic ordinal + numeral)
	// or a bare 1-3 digit number.
	noteOrdinalRe = regexp.MustCompile(`[一二三四五六七八九十]+、\d+`)
	noteDigitsRe  = regexp.MustCompile(`^\d+$`)

	// Amounts: optional sign, grouped or plain digits, optional decimal.
	amountRe = regexp.MustCompile(`^\s*-?(\d{1,3}(,\d{3})*|\d+)(\.\d+)?\s*$`)

	// Characters allowed to survive amount normalization.
	amountJunkRe = regexp.MustCompile(`[^\d.,\-]`)
)

// columnKeywords are the ordered header keyword patterns per role.
// First pattern that matches a cell claims the role for that column.
var columnKeywords = map[ColumnRole][]*regexp.Regexp{
	RoleItemName: compileAll(
		`项目`, `科目`, `会计科目`, `资产`, `负债`, `所有者权益`,
	),
	RoleCurrentPeriod: compileAll(
		`期末`, `本期末`, `本年末`, `本期`, `2024\s*年.*期末`,
		`2024\s*年.*12\s*月.*31\s*日`, `当期`, `本年`, `年末余额`, `期末余额`,
	),
	RolePreviousPeriod: compileAll(
		`期初`, `上期末`, `上年末`, `上期`, `2023\s*年.*期末`,
		`2023\s*年.*12\s*月.*31\s*日`, `上年`, `年初余额`, `期初余额`,
	),
	RoleNote: compileAll(
		`附注`, `注释`, `注`, `备注`,
	),
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// IsNoteShaped reports whether text looks like a footnote reference.
func IsNoteShaped(text string) bool {
	text = strings.TrimSpace(text)
	if noteOrdinalRe.MatchString(text) {
		return true
	}
	return noteDigitsRe.MatchString(text) && len(text) <= 3
}

// IsAmountShaped reports whether text looks like a monetary amount.
func IsAmountShaped(text string) bool {
	return amountRe.MatchString(text)
}

// NormalizeAmount strips grouping separators and non-numeric noise.
// Placeholder markers used for "no value" cells map to the empty string.
func NormalizeAmount(value string) string {
	cleaned := amountJunkRe.ReplaceAllString(value, "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	switch cleaned {
	case "", "-", "--", "—":
		return ""
	}
	return cleaned
}
