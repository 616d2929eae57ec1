// Package handlers contains application use case handlers.
package handlers

import (
	"context"

	"github.com/ersonp/lineage-core/internal/domain/entities"
	"github.com/ersonp/lineage-core/internal/domain/services"
)

// FactEntry is one fact as shown to a reader.
type FactEntry struct {
	FactType    entities.FactTypeCode `json:"fact_type"`
	Label       string                `json:"label"`
	EventID     int64                 `json:"event_id,omitempty"`
	Date        string                `json:"date,omitempty"`
	Place       *entities.DisplayRef  `json:"place,omitempty"`
	Description string                `json:"description,omitempty"`
	Notes       string                `json:"notes,omitempty"`
	ForWhom     string                `json:"for_whom,omitempty"`
	Preferred   bool                  `json:"preferred,omitempty"`
	Cremated    bool                  `json:"cremated,omitempty"`
	Footnotes   []int                 `json:"footnotes,omitempty"`
	Markers     string                `json:"markers,omitempty"`
	Warnings    []entities.Warning    `json:"warnings,omitempty"`
}

// FootnoteView is one entry of a rendered footnote section.
type FootnoteView struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// renderFact turns a resolved fact into an entry, registering its place
// and its citations with the render pass. Notes of a fact that also has
// a date, place or description become a footnote of their own.
func renderFact(ctx context.Context, citations *services.CitationService, rc *services.RenderContext, h *entities.FactHandle) (FactEntry, error) {
	entry := FactEntry{
		FactType:    h.FactType,
		Label:       h.Label,
		Date:        h.Date,
		Description: h.Description,
		Notes:       h.Notes,
		ForWhom:     h.ForWhom,
		Preferred:   h.Preferred,
		Cremated:    h.Cremated,
		Warnings:    h.Warnings,
	}
	if h.Event != nil {
		entry.EventID = h.Event.ID
	}
	if h.Place != nil {
		place := *h.Place
		if place.ID != 0 {
			place = rc.Places.Show(place)
		}
		entry.Place = &place
	}

	numbers, err := citations.Annotate(ctx, rc, h)
	if err != nil {
		return FactEntry{}, err
	}
	if h.Date != "" || h.Place != nil || h.Description != "" {
		if n := citations.AnnotateNotes(rc, h); n != 0 {
			numbers = appendUnique(numbers, n)
		}
	}
	entry.Footnotes = numbers
	entry.Markers = entities.Superscript(numbers...)
	return entry, nil
}

func appendUnique(numbers []int, n int) []int {
	for _, m := range numbers {
		if m == n {
			return numbers
		}
	}
	return append(numbers, n)
}

func footnoteViews(rc *services.RenderContext) []FootnoteView {
	notes := rc.Footnotes.Render()
	views := make([]FootnoteView, 0, len(notes))
	for _, f := range notes {
		views = append(views, FootnoteView{Number: f.Number, Text: f.Text()})
	}
	return views
}
