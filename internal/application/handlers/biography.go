package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/lineage-core/internal/domain/entities"
	"github.com/ersonp/lineage-core/internal/domain/services"
)

// BiographyHandler renders every fact of an owner with one shared
// footnote section.
type BiographyHandler struct {
	resolver  *services.ResolverService
	citations *services.CitationService
}

// NewBiographyHandler creates a new BiographyHandler.
func NewBiographyHandler(resolver *services.ResolverService, citations *services.CitationService) *BiographyHandler {
	return &BiographyHandler{
		resolver:  resolver,
		citations: citations,
	}
}

// Biography is the rendered fact list of one owner.
type Biography struct {
	RenderID  string                `json:"render_id"`
	OwnerKind entities.OwnerKind    `json:"owner_kind"`
	OwnerID   int64                 `json:"owner_id"`
	Title     string                `json:"title"`
	Entries   []FactEntry           `json:"entries"`
	Footnotes []FootnoteView        `json:"footnotes,omitempty"`
	Places    []entities.DisplayRef `json:"places,omitempty"`
}

// Handle renders the biography of (kind, ownerID). Nothing is written.
func (h *BiographyHandler) Handle(ctx context.Context, kind entities.OwnerKind, ownerID int64) (*Biography, error) {
	facts, err := h.resolver.ListFactsForOwner(ctx, kind, ownerID, services.ByDate)
	if err != nil {
		return nil, fmt.Errorf("listing facts: %w", err)
	}

	rc := services.NewRenderContext()
	bio := &Biography{
		RenderID:  rc.ID.String(),
		OwnerKind: kind,
		OwnerID:   ownerID,
		Title:     fmt.Sprintf("%s %d", kind, ownerID),
		Entries:   make([]FactEntry, 0, len(facts)),
	}
	titled := false
	for _, f := range facts {
		if !titled && f.ForWhom != "" {
			bio.Title = f.ForWhom
			titled = true
		}
		entry, err := renderFact(ctx, h.citations, rc, f)
		if err != nil {
			return nil, err
		}
		bio.Entries = append(bio.Entries, entry)
	}
	bio.Footnotes = footnoteViews(rc)
	bio.Places = rc.Places.Places()
	return bio, nil
}
