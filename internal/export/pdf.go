package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/phpdave11/gofpdf"
)

// pdfColumns picks the columns that fit a landscape page, by header name,
// with their widths in mm.
var pdfColumns = map[string]float64{
	"Created": 28,
	"Status":  20,
	"Name":    38,
	"Email":   52,
	"Phone":   30,
	"Project": 36,
	"City":    28,
	"Subject": 60,
	"Message": 74,
}

const maxCell = 60

func PDF(t Table, now time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(false, 12)
	pdf.SetTitle(t.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	idx, widths := layout(t.Headers)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(20, 20, 20)
	pdf.Cell(0, 10, tr(t.Title))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.Cell(0, 6, fmt.Sprintf("%d records - exported %s", len(t.Rows), now.Format("2006-01-02 15:04")))
	pdf.Ln(9)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(240, 240, 240)
		pdf.SetTextColor(20, 20, 20)
		pdf.SetDrawColor(200, 200, 200)
		for i, col := range idx {
			pdf.CellFormat(widths[i], 8, tr(t.Headers[col]), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(30, 30, 30)
	}
	header()

	_, pageH := pdf.GetPageSize()
	for _, row := range t.Rows {
		if pdf.GetY() > pageH-20 {
			pdf.AddPage()
			header()
		}
		for i, col := range idx {
			cell := ""
			if col < len(row) {
				cell = trimTo(oneLine(row[col]), maxCell)
			}
			pdf.CellFormat(widths[i], 7, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(t.Rows) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 8, "No records", "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func layout(headers []string) ([]int, []float64) {
	var idx []int
	var widths []float64
	for i, h := range headers {
		if w, ok := pdfColumns[h]; ok {
			idx = append(idx, i)
			widths = append(widths, w)
		}
	}
	return idx, widths
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func trimTo(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
