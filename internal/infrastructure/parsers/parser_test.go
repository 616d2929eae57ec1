package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) *string { return &s }

func TestJSONParser_Parse_ValidInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []RawFact
	}{
		{
			name:  "single fact",
			input: `[{"owner_kind": "person", "owner_id": 1, "fact_type": "Birth", "date": "1850"}]`,
			expected: []RawFact{
				{OwnerKind: "person", OwnerID: 1, FactType: "Birth", Date: text("1850"), LineNum: 1},
			},
		},
		{
			name:  "values trimmed, entries numbered",
			input: `[{"owner_kind": " person ", "owner_id": 1, "fact_type": "Birth"}, {"owner_kind": "person", "owner_id": 2, "fact_type": " Death ", "notes": " Drowned. "}]`,
			expected: []RawFact{
				{OwnerKind: "person", OwnerID: 1, FactType: "Birth", LineNum: 1},
				{OwnerKind: "person", OwnerID: 2, FactType: "Death", Notes: text("Drowned."), LineNum: 2},
			},
		},
		{
			name:     "empty array",
			input:    "[]",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &JSONParser{}
			result, err := parser.Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestJSONParser_Parse_AllFields(t *testing.T) {
	input := `[{
		"owner_kind": "family",
		"owner_id": 7,
		"fact_type": "31",
		"subtype": "Marriage Registration",
		"event_id": 12,
		"date": "3 May 1870",
		"place": "Salem, MA",
		"description": "",
		"notes": "Banns read twice.",
		"source": "Salem Town Records",
		"detail": "vol. 2"
	}]`

	parser := &JSONParser{}
	result, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result, 1)

	fact := result[0]
	assert.Equal(t, "family", fact.OwnerKind)
	assert.Equal(t, int64(7), fact.OwnerID)
	assert.Equal(t, "31", fact.FactType)
	assert.Equal(t, "Marriage Registration", fact.Subtype)
	assert.Equal(t, int64(12), fact.EventID)
	assert.Equal(t, text("3 May 1870"), fact.Date)
	assert.Equal(t, text("Salem, MA"), fact.Place)
	assert.Equal(t, text(""), fact.Description)
	assert.Equal(t, text("Banns read twice."), fact.Notes)
	assert.Equal(t, "Salem Town Records", fact.Source)
	assert.Equal(t, "vol. 2", fact.Detail)
	assert.True(t, fact.HasValues())
}

func TestJSONParser_Parse_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{
			name:   "not json",
			input:  "not json",
			errMsg: "parsing JSON",
		},
		{
			name:   "unknown field",
			input:  `[{"owner": "person"}]`,
			errMsg: `entry 1: json: unknown field "owner"`,
		},
		{
			name:   "entry not an object",
			input:  `[{"owner_kind": "person", "owner_id": 1, "fact_type": "Birth"}, 42]`,
			errMsg: "entry 2: expected an object",
		},
		{
			name:   "missing owner kind",
			input:  `[{"owner_kind": "person", "owner_id": 1, "fact_type": "Birth"}, {"owner_kind": " ", "owner_id": 1, "fact_type": "Birth"}]`,
			errMsg: "entry 2: missing owner_kind",
		},
		{
			name:   "missing fact type",
			input:  `[{"owner_kind": "person", "owner_id": 1}]`,
			errMsg: "entry 1: missing fact_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &JSONParser{}
			_, err := parser.Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestCSVParser_Parse_ValidInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []RawFact
	}{
		{
			name:  "required columns only",
			input: "owner_kind,owner_id,fact_type\nperson,1,Death\n",
			expected: []RawFact{
				{OwnerKind: "person", OwnerID: 1, FactType: "Death", LineNum: 2},
			},
		},
		{
			name:     "empty CSV (header only)",
			input:    "owner_kind,owner_id,fact_type\n",
			expected: nil,
		},
		{
			name:  "columns in different order",
			input: "fact_type,date,owner_id,owner_kind\n2,1850,3,person\n",
			expected: []RawFact{
				{OwnerKind: "person", OwnerID: 3, FactType: "2", Date: text("1850"), LineNum: 2},
			},
		},
		{
			name:  "dash clears a part",
			input: "owner_kind,owner_id,fact_type,place,notes\nperson,1,Birth,-,\n",
			expected: []RawFact{
				{OwnerKind: "person", OwnerID: 1, FactType: "Birth", Place: text(""), LineNum: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &CSVParser{}
			result, err := parser.Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCSVParser_Parse_AllColumns(t *testing.T) {
	input := "owner_kind,owner_id,fact_type,subtype,event_id,date,place,description,notes,source,detail\n" +
		"person,4,Individual Event,Residence,9,1880,\"Lowell, MA\",Mill hand,Boarded,1880 Census,p. 12\n"

	parser := &CSVParser{}
	result, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result, 1)

	fact := result[0]
	assert.Equal(t, "person", fact.OwnerKind)
	assert.Equal(t, int64(4), fact.OwnerID)
	assert.Equal(t, "Individual Event", fact.FactType)
	assert.Equal(t, "Residence", fact.Subtype)
	assert.Equal(t, int64(9), fact.EventID)
	assert.Equal(t, text("1880"), fact.Date)
	assert.Equal(t, text("Lowell, MA"), fact.Place)
	assert.Equal(t, text("Mill hand"), fact.Description)
	assert.Equal(t, text("Boarded"), fact.Notes)
	assert.Equal(t, "1880 Census", fact.Source)
	assert.Equal(t, "p. 12", fact.Detail)
}

func TestCSVParser_Parse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{
			name:   "missing required column",
			input:  "owner_kind,owner_id\nperson,1\n",
			errMsg: "missing required column: fact_type",
		},
		{
			name:   "invalid owner id",
			input:  "owner_kind,owner_id,fact_type\nperson,abc,Birth\n",
			errMsg: "line 2: invalid owner_id value",
		},
		{
			name:   "blank fact type",
			input:  "owner_kind,owner_id,fact_type\nperson,1,Birth\nperson,1, \n",
			errMsg: "line 3: missing fact_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &CSVParser{}
			_, err := parser.Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestRawFact_HasValues(t *testing.T) {
	assert.False(t, (&RawFact{Source: "Bible"}).HasValues())
	assert.True(t, (&RawFact{Notes: text("")}).HasValues())
}

func TestForFormat(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFormat("json"))
	assert.IsType(t, &CSVParser{}, ForFormat("CSV"))
	assert.Nil(t, ForFormat("gedcom"))
}

func TestForFile(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFile("facts.json"))
	assert.IsType(t, &CSVParser{}, ForFile("data.csv"))
	assert.Nil(t, ForFile("tree.ged"))
	assert.Nil(t, ForFile("noextension"))
}
