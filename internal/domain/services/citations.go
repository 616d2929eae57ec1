package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/lineage-core/internal/domain/entities"
	"github.com/ersonp/lineage-core/internal/domain/ports"
)

// CitationService attaches the citations of resolved facts to the
// footnotes of a render pass.
type CitationService struct {
	citations ports.CitationStore
	metrics   ports.ResolverMetrics
	logger    *zap.Logger
}

// NewCitationService creates a new CitationService.
func NewCitationService(citations ports.CitationStore, metrics ports.ResolverMetrics, logger *zap.Logger) *CitationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &CitationService{
		citations: citations,
		metrics:   metrics,
		logger:    logger.Named("citations"),
	}
}

// Annotate registers every citation filed under the fact and returns the
// footnote numbers in citation order, without repeats. An unsaved fact
// has no citations.
func (s *CitationService) Annotate(ctx context.Context, rc *RenderContext, h *entities.FactHandle) ([]int, error) {
	if h.CitationRecordID == 0 {
		return nil, nil
	}
	cits, err := s.citations.ListCitations(ctx, h.CitationType, h.CitationRecordID)
	if err != nil {
		return nil, fmt.Errorf("listing citations of %s: %w", h.Label, err)
	}

	var numbers []int
	seen := make(map[int]bool, len(cits))
	for _, c := range cits {
		n := s.register(rc, c.Key(), entities.SourceCitation{Citation: c})
		if !seen[n] {
			seen[n] = true
			numbers = append(numbers, n)
		}
	}
	if len(numbers) > 0 {
		s.logger.Debug("annotated fact",
			zap.String("render_id", rc.ID.String()),
			zap.Int("fact_type", int(h.FactType)),
			zap.Ints("footnotes", numbers))
	}
	return numbers, nil
}

// AnnotateNotes registers the fact's notes as a free-text footnote and
// returns its number, or 0 when the fact has no notes.
func (s *CitationService) AnnotateNotes(rc *RenderContext, h *entities.FactHandle) int {
	if h.Notes == "" {
		return 0
	}
	return s.register(rc, entities.NoteKey(h.CitationType, h.CitationRecordID), entities.FreeTextNote{Body: h.Notes})
}

func (s *CitationService) register(rc *RenderContext, key entities.CitationKey, payload entities.FootnotePayload) int {
	n, assigned := rc.Footnotes.register(key, payload)
	if assigned {
		s.metrics.FootnoteAssigned()
	}
	return n
}
