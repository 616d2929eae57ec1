package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVParser parses fact rows from CSV format.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed facts.
// Required columns: owner_kind, owner_id, fact_type. Optional: subtype,
// event_id, date, place, description, notes, source, detail. An empty
// date, place, description or notes cell leaves the part unchanged; the
// literal "-" clears it.
func (p *CSVParser) Parse(r io.Reader) ([]RawFact, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}

	requiredCols := []string{"owner_kind", "owner_id", "fact_type"}
	for _, col := range requiredCols {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return colIndex, nil
}

// readRecords reads all data rows and converts them to RawFacts.
func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) ([]RawFact, error) {
	var facts []RawFact
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		fact, err := p.parseRecord(record, colIndex, lineNum)
		if err != nil {
			return nil, err
		}
		facts = append(facts, fact)
	}

	return facts, nil
}

// parseRecord converts a CSV record to a RawFact.
func (p *CSVParser) parseRecord(record []string, colIndex map[string]int, lineNum int) (RawFact, error) {
	fact := RawFact{
		OwnerKind:   getColumn(record, colIndex, "owner_kind"),
		FactType:    getColumn(record, colIndex, "fact_type"),
		Subtype:     getColumn(record, colIndex, "subtype"),
		Date:        optionalColumn(record, colIndex, "date"),
		Place:       optionalColumn(record, colIndex, "place"),
		Description: optionalColumn(record, colIndex, "description"),
		Notes:       optionalColumn(record, colIndex, "notes"),
		Source:      getColumn(record, colIndex, "source"),
		Detail:      getColumn(record, colIndex, "detail"),
		LineNum:     lineNum,
	}

	var err error
	if fact.OwnerID, err = parseIntColumn(record, colIndex, "owner_id"); err != nil {
		return RawFact{}, fmt.Errorf("line %d: %w", lineNum, err)
	}
	if fact.EventID, err = parseIntColumn(record, colIndex, "event_id"); err != nil {
		return RawFact{}, fmt.Errorf("line %d: %w", lineNum, err)
	}
	if err := fact.checkRequired(); err != nil {
		return RawFact{}, fmt.Errorf("line %d: %w", lineNum, err)
	}

	return fact, nil
}

// clearValue in a part column clears the stored value.
const clearValue = "-"

func optionalColumn(record []string, colIndex map[string]int, col string) *string {
	v := getColumn(record, colIndex, col)
	switch v {
	case "":
		return nil
	case clearValue:
		v = ""
	}
	return &v
}

func parseIntColumn(record []string, colIndex map[string]int, col string) (int64, error) {
	v := getColumn(record, colIndex, col)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", col, v, err)
	}
	return n, nil
}

// getColumn safely retrieves a column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
