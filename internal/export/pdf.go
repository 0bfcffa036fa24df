package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	fontFamily = "Helvetica"
	rowHeight  = 6.0
)

// WritePDF writes one landscape section per relation to w. Long cells are
// truncated; use WriteXLSX for machine consumption.
func WritePDF(w io.Writer, snap Snapshot) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Kanban board export", false)
	pdf.SetAuthor("kanban-board-api", false)
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(fontFamily, "", 8)
		pdf.CellFormat(0, 8,
			fmt.Sprintf("Generated %s - page %d/{nb}", snap.GeneratedAt.UTC().Format(time.RFC3339), pdf.PageNo()),
			"", 0, "C", false, 0, "",
		)
	})

	for _, rel := range relations(snap) {
		section(pdf, tr, rel)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, rel relation) {
	pdf.AddPage()
	pdf.SetFont(fontFamily, "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("%s (%d)", rel.name, len(rel.rows)), "", 1, "L", false, 0, "")

	header := func() {
		pdf.SetFont(fontFamily, "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range rel.columns {
			pdf.CellFormat(c.width, rowHeight, fit(pdf, c.title, c.width), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(fontFamily, "", 9)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range rel.rows {
		if pdf.GetY()+rowHeight > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		for i, c := range rel.columns {
			pdf.CellFormat(c.width, rowHeight, fit(pdf, tr(text(row[i])), c.width), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// fit truncates s so it renders inside a cell of the given width.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > limit {
		s = s[:len(s)-1]
	}
	return s + "..."
}
