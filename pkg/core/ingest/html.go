// Package ingest extracts tabular row data from HTML and Markdown
// documents so the downstream classifiers only ever see [][]string rows.
package ingest

import (
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Table is one extracted table as a dense row grid. Cells merged in the
// source occupy their top-left slot; the slots they span are empty.
type Table struct {
	Rows [][]string
}

// TablesFromHTML extracts every <table> in the document. Merged cells are
// resolved with a virtual grid so colspan and rowspan never shift later
// cells out of their true column.
func TablesFromHTML(r io.Reader) ([]Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var tables []Table
	doc.Find("table").Each(func(_ int, tableSel *goquery.Selection) {
		if t := tableFromSelection(tableSel); len(t.Rows) > 0 {
			tables = append(tables, t)
		}
	})
	return tables, nil
}

func tableFromSelection(tableSel *goquery.Selection) Table {
	trs := tableSel.Find("tr")
	rowCount := trs.Length()
	if rowCount == 0 {
		return Table{}
	}

	maxCols := 0
	trs.Each(func(_ int, tr *goquery.Selection) {
		cols := 0
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cols += spanAttr(cell, "colspan")
		})
		if cols > maxCols {
			maxCols = cols
		}
	})
	if maxCols == 0 {
		return Table{}
	}

	grid := make([][]string, rowCount)
	taken := make([][]bool, rowCount)
	for i := range grid {
		grid[i] = make([]string, maxCols)
		taken[i] = make([]bool, maxCols)
	}

	rowIdx := 0
	trs.Each(func(_ int, tr *goquery.Selection) {
		colIdx := 0
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			for colIdx < maxCols && taken[rowIdx][colIdx] {
				colIdx++
			}
			if colIdx >= maxCols {
				return
			}

			colspan := spanAttr(cell, "colspan")
			rowspan := spanAttr(cell, "rowspan")
			text := cleanCellText(cell.Text())

			for r := 0; r < rowspan && rowIdx+r < rowCount; r++ {
				for c := 0; c < colspan && colIdx+c < maxCols; c++ {
					taken[rowIdx+r][colIdx+c] = true
					if r == 0 && c == 0 {
						grid[rowIdx+r][colIdx+c] = text
					}
				}
			}
			colIdx += colspan
		})
		rowIdx++
	})

	return Table{Rows: grid}
}

func spanAttr(cell *goquery.Selection, name string) int {
	n, err := strconv.Atoi(cell.AttrOr(name, "1"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func cleanCellText(text string) string {
	text = strings.ReplaceAll(text, " ", " ")
	fields := strings.Fields(text)
	return strings.Join(fields, " ")
}
