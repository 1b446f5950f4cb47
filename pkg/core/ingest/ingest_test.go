package ingest

import (
	"strings"
	"testing"
)

func TestTablesFromHTMLSimple(t *testing.T) {
	html := `
	<html><body>
	<table>
	  <tr><th>项目</th><th>期末余额</th><th>期初余额</th></tr>
	  <tr><td>货币资金</td><td>1,000.00</td><td>900.00</td></tr>
	</table>
	</body></html>`

	tables, err := TablesFromHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("TablesFromHTML: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	rows := tables[0].Rows
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0][0] != "项目" || rows[0][1] != "期末余额" {
		t.Errorf("header row = %v", rows[0])
	}
	if rows[1][0] != "货币资金" || rows[1][2] != "900.00" {
		t.Errorf("data row = %v", rows[1])
	}
}

func TestTablesFromHTMLColspan(t *testing.T) {
	// The title cell spans all three columns; later cells must not shift.
	html := `
	<table>
	  <tr><td colspan="3">资产负债表</td></tr>
	  <tr><td>项目</td><td>期末余额</td><td>期初余额</td></tr>
	  <tr><td>应收账款</td><td>2,000.00</td><td>1,800.00</td></tr>
	</table>`

	tables, err := TablesFromHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("TablesFromHTML: %v", err)
	}
	rows := tables[0].Rows
	if len(rows[0]) != 3 {
		t.Fatalf("grid width = %d, want 3", len(rows[0]))
	}
	if rows[0][0] != "资产负债表" || rows[0][1] != "" || rows[0][2] != "" {
		t.Errorf("spanned title row = %v", rows[0])
	}
	if rows[2][1] != "2,000.00" {
		t.Errorf("amount landed in wrong column: %v", rows[2])
	}
}

func TestTablesFromHTMLRowspan(t *testing.T) {
	// The label cell spans two rows; the second row's amounts must stay in
	// columns 1 and 2.
	html := `
	<table>
	  <tr><td rowspan="2">流动资产</td><td>1,000.00</td><td>900.00</td></tr>
	  <tr><td>500.00</td><td>400.00</td></tr>
	</table>`

	tables, err := TablesFromHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("TablesFromHTML: %v", err)
	}
	rows := tables[0].Rows
	if rows[0][0] != "流动资产" {
		t.Errorf("row 0 = %v", rows[0])
	}
	if rows[1][0] != "" || rows[1][1] != "500.00" || rows[1][2] != "400.00" {
		t.Errorf("row 1 = %v, want amounts in columns 1 and 2", rows[1])
	}
}

func TestTablesFromHTMLNoTables(t *testing.T) {
	tables, err := TablesFromHTML(strings.NewReader("<p>no tables here</p>"))
	if err != nil {
		t.Fatalf("TablesFromHTML: %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("got %d tables, want 0", len(tables))
	}
}

func TestTablesFromMarkdown(t *testing.T) {
	src := []byte(`
Some prose before.

| 项目 | 期末余额 | 期初余额 |
| --- | --- | --- |
| 货币资金 | 1,000.00 | 900.00 |
| 应收账款 | 2,000.00 | 1,800.00 |

Prose after.
`)

	tables := TablesFromMarkdown(src)
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	rows := tables[0].Rows
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0][0] != "项目" {
		t.Errorf("header row = %v", rows[0])
	}
	if rows[2][0] != "应收账款" || rows[2][2] != "1,800.00" {
		t.Errorf("data row = %v", rows[2])
	}
}

func TestTablesFromMarkdownMultiple(t *testing.T) {
	src := []byte(`
| a | b |
| --- | --- |
| 1 | 2 |

| c |
| --- |
| 3 |
`)

	tables := TablesFromMarkdown(src)
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}
	if len(tables[1].Rows[0]) != 1 || tables[1].Rows[1][0] != "3" {
		t.Errorf("second table = %v", tables[1].Rows)
	}
}
