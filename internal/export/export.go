// Package export renders dashboard records as downloadable files.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/domain"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/validate"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatJSON, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Filename is e.g. "leads-2024-05-01.csv".
func Filename(kind string, f Format, now time.Time) string {
	return kind + "-" + now.Format("2006-01-02") + "." + string(f)
}

// Table is the flattened form shared by the CSV and PDF writers.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

const timeLayout = "2006-01-02 15:04"

func LeadsTable(leads []domain.Lead) Table {
	t := Table{
		Title: "Leads",
		Headers: []string{
			"ID", "Created", "Status", "Name", "Email", "Phone", "Company", "Project",
			"Address", "Postal code", "City", "Budget", "Timeline", "Message",
		},
		Rows: make([][]string, 0, len(leads)),
	}
	for _, l := range leads {
		t.Rows = append(t.Rows, []string{
			l.ID, l.CreatedAt.Format(timeLayout), l.Status, l.Name, l.Email, l.Phone, l.Company,
			l.ProjectType, l.Address, l.PostalCode, l.City, l.Budget, l.Timeline, l.Message,
		})
	}
	return t
}

func ContactsTable(items []domain.ContactSubmission) Table {
	t := Table{
		Title:   "Contact messages",
		Headers: []string{"ID", "Created", "Status", "Name", "Email", "Phone", "Subject", "Message"},
		Rows:    make([][]string, 0, len(items)),
	}
	for _, m := range items {
		t.Rows = append(t.Rows, []string{
			m.ID, m.CreatedAt.Format(timeLayout), m.Status, m.Name, m.Email, m.Phone, m.Subject, m.Message,
		})
	}
	return t
}

// utf8BOM lets spreadsheet applications detect the encoding of accented
// names.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func WriteCSV(w io.Writer, t Table) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(sanitizeRow(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// sanitizeRow neutralises cells a spreadsheet would evaluate as formulas.
// Phone numbers such as "+31 6 12345678" hold only digits and separators, so
// they are left as they are.
func sanitizeRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		if cell != "" && strings.ContainsRune("=+-@", rune(cell[0])) && !validate.IsPhone(cell) {
			cell = "'" + cell
		}
		out[i] = cell
	}
	return out
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Render writes records (a []domain.Lead or []domain.ContactSubmission) in
// format f.
func Render(f Format, records any, now time.Time) ([]byte, error) {
	var t Table
	switch r := records.(type) {
	case []domain.Lead:
		t = LeadsTable(r)
	case []domain.ContactSubmission:
		t = ContactsTable(r)
	default:
		return nil, fmt.Errorf("cannot export %T", records)
	}

	var buf bytes.Buffer
	switch f {
	case FormatJSON:
		if err := WriteJSON(&buf, records); err != nil {
			return nil, err
		}
	case FormatPDF:
		return PDF(t, now)
	default:
		if err := WriteCSV(&buf, t); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
