package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// JSONParser parses an array of fact objects. Entries are numbered from
// 1 in array order and that number is reported as the row's line.
type JSONParser struct{}

// Parse reads a JSON array from the reader and returns one RawFact per
// entry. Unknown keys, non-object entries and entries without owner_kind
// or fact_type fail the whole file. String values are trimmed.
func (p *JSONParser) Parse(r io.Reader) ([]RawFact, error) {
	var entries []json.RawMessage
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	var facts []RawFact
	for i, entry := range entries {
		fact, err := parseEntry(entry, i+1)
		if err != nil {
			return nil, err
		}
		facts = append(facts, fact)
	}
	return facts, nil
}

func parseEntry(entry json.RawMessage, n int) (RawFact, error) {
	trimmed := bytes.TrimSpace(entry)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return RawFact{}, fmt.Errorf("entry %d: expected an object, got %s", n, trimmed)
	}

	var fact RawFact
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&fact); err != nil {
		return RawFact{}, fmt.Errorf("entry %d: %w", n, err)
	}

	fact.OwnerKind = strings.TrimSpace(fact.OwnerKind)
	fact.FactType = strings.TrimSpace(fact.FactType)
	fact.Subtype = strings.TrimSpace(fact.Subtype)
	fact.Source = strings.TrimSpace(fact.Source)
	fact.Detail = strings.TrimSpace(fact.Detail)
	for _, part := range []*string{fact.Date, fact.Place, fact.Description, fact.Notes} {
		if part != nil {
			*part = strings.TrimSpace(*part)
		}
	}
	fact.LineNum = n

	if err := fact.checkRequired(); err != nil {
		return RawFact{}, fmt.Errorf("entry %d: %w", n, err)
	}
	return fact, nil
}
