package scrape

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bobmcallan/finscreen/internal/models"
)

// ParseTables extracts every table in the document. Header cells come from
// <thead>, or from a leading row made only of <th> cells; every other row
// becomes a row of cell texts. Tables without rows are skipped. A nested
// table is reported as its own table and contributes nothing to the rows or
// cell text of the table that contains it.
func ParseTables(r io.Reader) ([]models.HTMLTable, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var tables []models.HTMLTable
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var t models.HTMLTable

		rows := ownRows(table)
		if head := table.ChildrenFiltered("thead").ChildrenFiltered("tr"); head.Length() > 0 {
			t.Headers = cellTexts(head.Last())
			rows = rows.NotSelection(head)
		} else if first := rows.First(); first.Length() > 0 && first.ChildrenFiltered("td").Length() == 0 {
			t.Headers = cellTexts(first)
			rows = rows.Slice(1, rows.Length())
		}

		rows.Each(func(_ int, tr *goquery.Selection) {
			if cells := cellTexts(tr); len(cells) > 0 {
				t.Rows = append(t.Rows, cells)
			}
		})

		if len(t.Rows) > 0 || len(t.Headers) > 0 {
			tables = append(tables, t)
		}
	})

	return tables, nil
}

// Paragraphs returns the trimmed, non-empty text of every <p> element
func Paragraphs(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var out []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := collapseSpace(p.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out, nil
}

// ownRows returns the rows whose nearest enclosing table is table
func ownRows(table *goquery.Selection) *goquery.Selection {
	return table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	})
}

func cellTexts(tr *goquery.Selection) []string {
	var cells []string
	tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, cellText(cell))
	})
	return cells
}

func cellText(cell *goquery.Selection) string {
	if cell.Find("table").Length() == 0 {
		return collapseSpace(cell.Text())
	}
	c := cell.Clone()
	c.Find("table").Remove()
	return collapseSpace(c.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
