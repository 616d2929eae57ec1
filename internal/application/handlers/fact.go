package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/lineage-core/internal/domain/entities"
	"github.com/ersonp/lineage-core/internal/domain/services"
)

// FactHandler shows, edits and cites single facts.
type FactHandler struct {
	resolver  *services.ResolverService
	citations *services.CitationService
}

// NewFactHandler creates a new FactHandler.
func NewFactHandler(resolver *services.ResolverService, citations *services.CitationService) *FactHandler {
	return &FactHandler{
		resolver:  resolver,
		citations: citations,
	}
}

// FactRequest selects one fact.
type FactRequest struct {
	FactType entities.FactTypeCode
	OwnerID  int64
	// Subtype is required for the generic event codes.
	Subtype entities.EventSubtype
	// EventID selects a specific event instead of the preferred one.
	EventID int64
}

func (r FactRequest) resolveRequest() services.ResolveRequest {
	return services.ResolveRequest{
		FactType: r.FactType,
		OwnerID:  r.OwnerID,
		Subtype:  r.Subtype,
		EventID:  r.EventID,
	}
}

// FactResult contains one rendered fact and its footnote section.
type FactResult struct {
	RenderID  string                `json:"render_id"`
	Fact      FactEntry             `json:"fact"`
	Footnotes []FootnoteView        `json:"footnotes,omitempty"`
	Places    []entities.DisplayRef `json:"places,omitempty"`
}

// HandleShow renders one fact without writing anything.
func (h *FactHandler) HandleShow(ctx context.Context, req FactRequest) (*FactResult, error) {
	r := req.resolveRequest()
	r.ReadOnly = true
	fact, err := h.resolver.ResolveWith(ctx, r)
	if err != nil {
		return nil, err
	}
	return h.render(ctx, fact)
}

// HandleSet resolves one fact, applies the overrides and saves it. With
// creating set a missing owner record is created.
func (h *FactHandler) HandleSet(ctx context.Context, user entities.UserContext, req FactRequest, overrides *entities.Overrides, creating bool) (*FactResult, error) {
	r := req.resolveRequest()
	r.Overrides = overrides
	r.Creating = creating
	fact, err := h.resolver.ResolveWith(ctx, r)
	if err != nil {
		return nil, err
	}
	if err := h.resolver.Save(ctx, user, fact); err != nil {
		return nil, fmt.Errorf("saving %s: %w", fact.Label, err)
	}
	return h.render(ctx, fact)
}

// HandleCite files a citation under one fact, creating its backing event
// when it has none yet.
func (h *FactHandler) HandleCite(ctx context.Context, user entities.UserContext, req FactRequest, source, detail string) (*entities.Citation, error) {
	fact, err := h.resolver.ResolveWith(ctx, req.resolveRequest())
	if err != nil {
		return nil, err
	}
	return h.resolver.Cite(ctx, user, fact, source, detail)
}

func (h *FactHandler) render(ctx context.Context, fact *entities.FactHandle) (*FactResult, error) {
	rc := services.NewRenderContext()
	entry, err := renderFact(ctx, h.citations, rc, fact)
	if err != nil {
		return nil, err
	}
	return &FactResult{
		RenderID:  rc.ID.String(),
		Fact:      entry,
		Footnotes: footnoteViews(rc),
		Places:    rc.Places.Places(),
	}, nil
}
