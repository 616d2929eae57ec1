package ports

import (
	"context"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

// Authorizer decides whether a user may modify a record.
type Authorizer interface {
	CanEdit(ctx context.Context, user entities.UserContext, rec entities.Record) (bool, error)
}
