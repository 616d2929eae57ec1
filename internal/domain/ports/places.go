package ports

import (
	"context"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

// PlaceResolver resolves place references to display values.
type PlaceResolver interface {
	// ResolvePlace returns the display form of a location, temple or
	// address. It returns (nil, nil) when no such place exists.
	ResolvePlace(ctx context.Context, id int64, kind entities.PlaceKind) (*entities.DisplayRef, error)

	// FindOrCreatePlace returns the ID of the place with the given name,
	// creating it when missing.
	FindOrCreatePlace(ctx context.Context, kind entities.PlaceKind, name string) (int64, error)
}
