package ports

import (
	"context"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

// CitationStore provides access to the citations filed under a fact.
type CitationStore interface {
	// ListCitations lists citations filed under (typ, recordID) in
	// citation order.
	ListCitations(ctx context.Context, typ entities.FactTypeCode, recordID int64) ([]entities.Citation, error)

	// CountCitations counts citations filed under (typ, recordID).
	CountCitations(ctx context.Context, typ entities.FactTypeCode, recordID int64) (int, error)

	// MoveCitations refiles every citation under (typ, fromID) to
	// (typ, toID) and returns how many moved.
	MoveCitations(ctx context.Context, typ entities.FactTypeCode, fromID, toID int64) (int, error)

	// SaveCitation inserts or updates a citation.
	SaveCitation(ctx context.Context, c *entities.Citation) error
}

// SourceStore provides access to cited sources.
type SourceStore interface {
	// FindOrCreateSource returns the ID of the source with the given
	// name, creating it when missing.
	FindOrCreateSource(ctx context.Context, name string) (int64, error)
}
