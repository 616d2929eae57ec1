// Package parsers provides parsers for importing facts from various formats.
package parsers

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// RawFact is one fact row read from an import file before validation.
// A nil part is left as stored; an empty one clears it.
type RawFact struct {
	OwnerKind   string  `json:"owner_kind"`
	OwnerID     int64   `json:"owner_id"`
	FactType    string  `json:"fact_type"` // code or name
	Subtype     string  `json:"subtype,omitempty"`
	EventID     int64   `json:"event_id,omitempty"`
	Date        *string `json:"date,omitempty"`
	Place       *string `json:"place,omitempty"`
	Description *string `json:"description,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	Source      string  `json:"source,omitempty"`
	Detail      string  `json:"detail,omitempty"`
	LineNum     int     `json:"-"` // Line number in source file (set by parser)
}

// HasValues reports whether the row sets any part of the fact.
func (f *RawFact) HasValues() bool {
	return f.Date != nil || f.Place != nil || f.Description != nil || f.Notes != nil
}

// checkRequired rejects a row missing the owner kind or the fact type.
// Values themselves are validated on import.
func (f *RawFact) checkRequired() error {
	switch {
	case f.OwnerKind == "":
		return errors.New("missing owner_kind")
	case f.FactType == "":
		return errors.New("missing fact_type")
	}
	return nil
}

// Parser defines the interface for parsing facts from various formats.
type Parser interface {
	Parse(r io.Reader) ([]RawFact, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}
	case ".csv":
		return &CSVParser{}
	default:
		return nil
	}
}
