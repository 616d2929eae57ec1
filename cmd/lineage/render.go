package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ersonp/lineage-core/internal/application/handlers"
	"github.com/ersonp/lineage-core/internal/domain/entities"
)

// entryText joins the shown parts of a fact. place formats the place
// reference; nil shows the bare name.
func entryText(e handlers.FactEntry, place func(*entities.DisplayRef) string) string {
	var parts []string
	if e.Date != "" {
		parts = append(parts, e.Date)
	}
	if e.Place != nil {
		if place != nil {
			parts = append(parts, place(e.Place))
		} else {
			parts = append(parts, e.Place.Name)
		}
	}
	if e.Description != "" {
		parts = append(parts, e.Description)
	} else if e.Cremated {
		parts = append(parts, "cremated")
	}
	// Notes-only facts show the note inline instead of as a footnote.
	if len(parts) == 0 && e.Notes != "" {
		parts = append(parts, e.Notes)
	}
	text := strings.Join(parts, ", ")
	if !e.Preferred && e.EventID != 0 {
		text += " (alternate)"
	}
	return text + e.Markers
}

func writeFootnotes(w io.Writer, footnotes []handlers.FootnoteView) {
	if len(footnotes) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, f := range footnotes {
		fmt.Fprintf(w, "%s %s\n", entities.Superscript(f.Number), f.Text)
	}
}

func writeWarnings(w io.Writer, e handlers.FactEntry) {
	for _, warn := range e.Warnings {
		fmt.Fprintf(w, "warning: %s: %s\n", e.Label, warn.Message)
	}
}
