package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

func init() { register(pdfFormat{}) }

// Tables wider than this switch to landscape.
const portraitMaxColumns = 6

// pdfFormat lays the table out on A4 pages, repeating the header row on
// every page and right-aligning numeric cells.
type pdfFormat struct{}

func (pdfFormat) Name() string      { return "pdf" }
func (pdfFormat) MediaType() string { return "application/pdf" }

func (pdfFormat) Write(w io.Writer, t Table) error {
	orientation := "P"
	if len(t.Columns) > portraitMaxColumns {
		orientation = "L"
	}
	doc := gofpdf.New(orientation, "mm", "A4", "")
	doc.SetMargins(10, 15, 10)
	doc.SetAutoPageBreak(true, 15)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := doc.GetPageSize()
	left, _, right, _ := doc.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(t.Columns))

	header := func() {
		doc.SetFont("Arial", "B", 9)
		doc.SetFillColor(225, 225, 225)
		for _, col := range t.Columns {
			doc.CellFormat(colWidth, 8, tr(clip(doc, col, colWidth)), "1", 0, "C", true, 0, "")
		}
		doc.Ln(-1)
		doc.SetFont("Arial", "", 8)
	}
	doc.SetHeaderFunc(func() {
		if t.Title != "" && doc.PageNo() == 1 {
			doc.SetFont("Arial", "B", 14)
			doc.CellFormat(0, 10, tr(t.Title), "", 1, "C", false, 0, "")
			doc.Ln(4)
		}
		header()
	})
	doc.SetFooterFunc(func() {
		doc.SetY(-12)
		doc.SetFont("Arial", "I", 7)
		doc.CellFormat(0, 6, fmt.Sprintf("%d", doc.PageNo()), "", 0, "R", false, 0, "")
	})

	doc.AddPage()
	for i := range t.Rows {
		doc.SetFillColor(245, 245, 245)
		for _, cell := range t.Cells(i) {
			align := "L"
			if _, err := strconv.ParseFloat(cell, 64); err == nil {
				align = "R"
			}
			doc.CellFormat(colWidth, 7, tr(clip(doc, cell, colWidth)), "1", 0, align, i%2 == 1, 0, "")
		}
		doc.Ln(-1)
	}
	return doc.Output(w)
}

// clip shortens text with an ellipsis until it fits width.
func clip(doc *gofpdf.Fpdf, text string, width float64) string {
	const padding = 2.0
	if doc.GetStringWidth(text) <= width-padding {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && doc.GetStringWidth(string(runes)+"...") > width-padding {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
