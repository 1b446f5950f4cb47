package structure

import "regexp"

// StatementKind selects which anchor set and terminator patterns apply.
type StatementKind string

const (
	BalanceSheet    StatementKind = "balance_sheet"
	IncomeStatement StatementKind = "income_statement"
	CashFlow        StatementKind = "cash_flow"
)

// KeyStructure is one named anchor a statement is expected to contain.
// Anchors are declared in canonical order; the declaration index is the
// anchor's rank for the order check.
type KeyStructure struct {
	Name     string
	Patterns []*regexp.Regexp
	Required bool
}

func key(name string, required bool, patterns ...string) KeyStructure {
	ks := KeyStructure{Name: name, Required: required}
	for _, p := range patterns {
		ks.Patterns = append(ks.Patterns, regexp.MustCompile(p))
	}
	return ks
}

// keyStructuresFor returns the canonical anchor set for one statement kind.
// The section labels are the ones mainland A-share annual reports use; the
// alternative patterns absorb numbering drift between issuers.
func keyStructuresFor(kind StatementKind) []KeyStructure {
	switch kind {
	case BalanceSheet:
		return []KeyStructure{
			key("流动资产", true, `^流动资产：?$`),
			key("非流动资产", true, `^非流动资产：?$`),
			key("流动负债", true, `^流动负债：?$`),
			key("非流动负债", true, `^非流动负债：?$`),
			key("所有者权益", true, `^所有者权益.*：?$`, `^股东权益.*：?$`),
		}
	case IncomeStatement:
		return []KeyStructure{
			key("营业总收入", true, `^一、营业总收入$`, `^营业总收入$`),
			key("营业总成本", true, `^二、营业总成本$`, `^营业总成本$`),
			key("营业利润", true, `^三、营业利润`, `^二、营业利润`, `^营业利润`),
			key("利润总额", true, `^四、利润总额`, `^三、利润总额`, `^利润总额`),
			key("净利润", true, `^五、净利润`, `^四、净利润`, `^净利润(?:[^（]|$)`),
			key("其他综合收益", false, `^六、其他综合收益的税后净额`, `^其他综合收益.*税后净额`),
			key("综合收益总额", false, `^七、综合收益总额`, `^八、综合收益总额`, `^综合收益总额`),
			key("每股收益", false, `^八、每股收益`, `^九、每股收益`),
		}
	case CashFlow:
		return []KeyStructure{
			key("经营活动", true, `^一、经营活动产生的现金流\s*量：?$`),
			key("经营活动流入小计", true, `^经营活动现金流入小计$`),
			key("经营活动流出小计", true, `^经营活动现金流出小计$`),
			key("经营活动净额", true, `^经营活动产生的现金流\s*量净\s*额$`, `^经营活动产生的现金流量净额$`),
			key("投资活动", true, `^二、投资活动产生的现金流\s*量：?$`),
			key("投资活动流入小计", true, `^投资活动现金流入小计$`),
			key("投资活动流出小计", true, `^投资活动现金流出小计$`),
			key("投资活动净额", true, `^投资活动产生的现金流\s*量净\s*额$`, `^投资活动产生的现金流量净额$`),
			key("筹资活动", true, `^三、筹资活动产生的现金流\s*量：?$`),
			key("筹资活动流入小计", true, `^筹资活动现金流入小计$`),
			key("筹资活动流出小计", true, `^筹资活动现金流出小计$`),
			key("筹资活动净额", true, `^筹资活动产生的现金流\s*量净\s*额$`, `^筹资活动产生的现金流量净额$`),
			key("汇率影响", false, `^四、汇率变动对现金及现金等\s*价物的\s*影响$`),
			key("现金净增加额", false, `^五、现金及现金等价物净增加\s*额$`),
			key("期末余额", true, `^六、期末现金及现金等价物余\s*额$`),
		}
	}
	return nil
}

// endPatternsFor returns the statement-specific terminator patterns used to
// locate the last data row.
func endPatternsFor(kind StatementKind) []*regexp.Regexp {
	var patterns []string
	switch kind {
	case BalanceSheet:
		patterns = []string{
			`^负债和所有者权益总计$`,
			`^负债和所有者权益.*总计$`,
			`^负债和股东权益.*总计$`,
		}
	case IncomeStatement:
		// Diluted EPS is the final line of the statement.
		patterns = []string{`^.*稀释每股收益.*$`}
	case CashFlow:
		patterns = []string{`^六、期末现金及现金等价物余\s*额$`}
	}
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}
