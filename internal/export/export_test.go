package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/domain"
)

var now = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func sampleLeads() []domain.Lead {
	return []domain.Lead{
		{
			ID: "a1", Name: "José Müller", Email: "jose@example.nl", Phone: "0612345678",
			ProjectType: "schuifpuien", City: "Utrecht", Status: domain.LeadStatusNew,
			Message: "Regel 1\nRegel 2, met \"quotes\"", CreatedAt: now,
		},
		{
			ID: "a2", Name: "=HYPERLINK(\"x\")", Email: "b@example.nl", Phone: "0201234567",
			ProjectType: "voordeuren", Status: domain.LeadStatusWon, CreatedAt: now,
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatCSV, "CSV": FormatCSV, " json ": FormatJSON, "pdf": FormatPDF} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "leads-2024-05-01.csv", Filename("leads", FormatCSV, now))
	assert.Equal(t, "contacts-2024-05-01.pdf", Filename("contacts", FormatPDF, now))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, LeadsTable(sampleLeads())))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, utf8BOM))

	records, err := csv.NewReader(bytes.NewReader(raw[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "ID", records[0][0])
	assert.Equal(t, "José Müller", records[1][3])
	assert.Equal(t, "Regel 1\nRegel 2, met \"quotes\"", records[1][13])
	assert.Equal(t, "2024-05-01 09:30", records[1][1])
	assert.Equal(t, "'=HYPERLINK(\"x\")", records[2][3], "formula cells are escaped")
}

func TestContactsTable(t *testing.T) {
	tbl := ContactsTable([]domain.ContactSubmission{{ID: "c1", Name: "Els", Subject: "Vraag", CreatedAt: now}})
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, len(tbl.Headers), len(tbl.Rows[0]))
	assert.Equal(t, "Vraag", tbl.Rows[0][6])
}

func TestRender(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		b, err := Render(FormatJSON, sampleLeads(), now)
		require.NoError(t, err)
		var got []domain.Lead
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Len(t, got, 2)
	})

	t.Run("pdf", func(t *testing.T) {
		b, err := Render(FormatPDF, sampleLeads(), now)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
	})

	t.Run("pdf with many rows and no rows", func(t *testing.T) {
		many := make([]domain.ContactSubmission, 120)
		for i := range many {
			many[i] = domain.ContactSubmission{Name: "Naam", Message: strings.Repeat("lang bericht ", 20), CreatedAt: now}
		}
		b, err := Render(FormatPDF, many, now)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))

		b, err = Render(FormatPDF, []domain.ContactSubmission{}, now)
		require.NoError(t, err)
		assert.NotEmpty(t, b)
	})

	t.Run("unsupported records", func(t *testing.T) {
		_, err := Render(FormatCSV, []string{"x"}, now)
		assert.Error(t, err)
	})
}

func TestTrimTo(t *testing.T) {
	assert.Equal(t, "kort", trimTo("kort", 10))
	assert.Equal(t, "ééééééé...", trimTo(strings.Repeat("é", 20), 10))
	assert.Equal(t, "a b c", oneLine(" a\n b\tc "))
}

func TestSanitizeRowKeepsPhoneNumbers(t *testing.T) {
	got := sanitizeRow([]string{"+31 6 12345678", "-1 (555) 010 0000", "+SUM(A1:A9)", "@cmd", "-2+3+cmd|' /C calc'!A0"})
	assert.Equal(t, []string{
		"+31 6 12345678",
		"-1 (555) 010 0000",
		"'+SUM(A1:A9)",
		"'@cmd",
		"'-2+3+cmd|' /C calc'!A0",
	}, got)
}
