package ingest

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// TablesFromMarkdown extracts every pipe table in the document. Markdown
// tables have no cell merging, so each row maps directly onto a grid row.
func TablesFromMarkdown(source []byte) []Table {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(source))

	var tables []Table
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		tbl, ok := n.(*east.Table)
		if !ok {
			return ast.WalkContinue, nil
		}

		var rows [][]string
		for row := tbl.FirstChild(); row != nil; row = row.NextSibling() {
			switch row.(type) {
			case *east.TableHeader, *east.TableRow:
			default:
				continue
			}
			var cells []string
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, cleanCellText(string(cell.Text(source))))
			}
			rows = append(rows, cells)
		}
		if len(rows) > 0 {
			tables = append(tables, Table{Rows: rows})
		}
		return ast.WalkSkipChildren, nil
	})
	return tables
}
