package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lineage-core/internal/application/handlers"
	"github.com/ersonp/lineage-core/internal/domain/entities"
)

func testBiography() *handlers.Biography {
	boston := &entities.DisplayRef{ID: 5, Kind: entities.PlaceLocation, Name: "Boston, MA", AnchorID: "showLoc1_5"}
	return &handlers.Biography{
		RenderID:  "render-1",
		OwnerKind: entities.OwnerPerson,
		OwnerID:   42,
		Title:     "John Smith",
		Entries: []handlers.FactEntry{
			{
				FactType:  entities.FactBirth,
				Label:     "Birth",
				EventID:   7,
				Date:      "1850",
				Place:     boston,
				Preferred: true,
				Footnotes: []int{1, 2},
				Markers:   "¹,²",
			},
			{
				FactType: entities.FactGeneralNotes,
				Label:    "General Notes",
				Notes:    "A farmer.",
			},
		},
		Footnotes: []handlers.FootnoteView{
			{Number: 1, Text: "1850 Census: p. 4"},
			{Number: 2, Text: "Baptized the same day."},
		},
		Places: []entities.DisplayRef{*boston},
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	err := formatJSON(&buf, testBiography())
	require.NoError(t, err)

	var parsed map[string]interface{}
	err = json.Unmarshal(buf.Bytes(), &parsed)
	require.NoError(t, err)

	assert.Equal(t, "John Smith", parsed["title"])
	assert.Equal(t, "person", parsed["owner_kind"])
	entries, ok := parsed["entries"].([]interface{})
	require.True(t, ok)
	assert.Len(t, entries, 2)
	footnotes, ok := parsed["footnotes"].([]interface{})
	require.True(t, ok)
	assert.Len(t, footnotes, 2)
}

func TestFormatCSV(t *testing.T) {
	var buf bytes.Buffer
	err := formatCSV(&buf, testBiography())
	require.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "fact_type", rows[0][0])
	assert.Equal(t, []string{"2", "Birth", "7", "1850", "Boston, MA", "", "", "true", "1 2"}, rows[1])
	assert.Equal(t, []string{"6", "General Notes", "", "", "", "", "A farmer.", "false", ""}, rows[2])
}

func TestFormatMarkdown(t *testing.T) {
	var buf bytes.Buffer
	err := formatMarkdown(&buf, testBiography())
	require.NoError(t, err)

	result := buf.String()
	assert.Contains(t, result, "# John Smith\n")
	assert.Contains(t, result, "- **Birth** 1850, <span id=\"showLoc1_5\">Boston, MA</span>¹,²\n")
	assert.Contains(t, result, "- **General Notes** A farmer.\n")
	assert.Contains(t, result, "## Places\n\n- [Boston, MA](#showLoc1_5)\n")
	assert.Contains(t, result, "## Sources\n\n1. 1850 Census: p. 4\n2. Baptized the same day.\n")
}

func TestFormatMarkdown_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := formatMarkdown(&buf, &handlers.Biography{Title: "person 9"})
	require.NoError(t, err)
	assert.Equal(t, "# person 9\n\nNo facts recorded.\n", buf.String())
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, "a\\|b c", escapeMarkdown("a|b\nc"))
}

func TestExporter_WritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bio.md")
	e := &exporter{format: "markdown", output: out}

	var stdout bytes.Buffer
	err := e.export(&stdout, testBiography())
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# John Smith")
	assert.Equal(t, "Exported 2 facts to "+out+"\n", stdout.String())
}

func TestEntryText(t *testing.T) {
	tests := []struct {
		name  string
		entry handlers.FactEntry
		want  string
	}{
		{
			name:  "date and place",
			entry: handlers.FactEntry{Date: "1850", Place: &entities.DisplayRef{Name: "Boston"}, Markers: "¹"},
			want:  "1850, Boston¹",
		},
		{
			name:  "cremated without description",
			entry: handlers.FactEntry{Date: "1901", Cremated: true},
			want:  "1901, cremated",
		},
		{
			name:  "notes only",
			entry: handlers.FactEntry{Notes: "See letters."},
			want:  "See letters.",
		},
		{
			name:  "alternate event",
			entry: handlers.FactEntry{EventID: 3, Date: "1851"},
			want:  "1851 (alternate)",
		},
		{
			name:  "preferred event",
			entry: handlers.FactEntry{EventID: 3, Date: "1850", Preferred: true},
			want:  "1850",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, entryText(tt.entry, nil))
		})
	}
}
