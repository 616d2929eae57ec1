// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

// EntityStore provides access to owning records and their standalone
// events. Lookups return (nil, nil) when the record does not exist.
type EntityStore interface {
	// Load loads the record of the given kind and ID.
	Load(ctx context.Context, kind entities.OwnerKind, id int64) (entities.Record, error)

	// Save persists the fixed fields of a record.
	Save(ctx context.Context, rec entities.Record) error

	// ListEvents lists the owner's events ordered by (Order, ID).
	ListEvents(ctx context.Context, kind entities.OwnerKind, ownerID int64) ([]entities.StandaloneEvent, error)

	// LoadEvent loads one event by ID.
	LoadEvent(ctx context.Context, id int64) (*entities.StandaloneEvent, error)

	// SaveEvent inserts the event when its ID is zero and updates it
	// otherwise. Inserted events receive the next ordering key of their
	// owner when Order is zero.
	SaveEvent(ctx context.Context, ev *entities.StandaloneEvent) error

	// CreatePreferredEvent inserts ev flagged preferred unless the owner
	// already has a preferred event of the same subtype. It returns the
	// stored preferred event and whether it was created by this call.
	CreatePreferredEvent(ctx context.Context, ev *entities.StandaloneEvent) (*entities.StandaloneEvent, bool, error)

	// SetPreferredEvent flags eventID preferred and clears the flag on
	// every other event of its owner and subtype.
	SetPreferredEvent(ctx context.Context, eventID int64) error

	// DeleteEvent deletes an event by ID.
	DeleteEvent(ctx context.Context, id int64) error
}

// RelationalDB is the full set of storage operations backed by one
// relational database.
type RelationalDB interface {
	EntityStore
	PlaceResolver
	CitationStore
	SourceStore
	Authorizer
	AuditLog
	Transactor

	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

// Transactor runs several writes as one unit.
type Transactor interface {
	// WithinTx runs fn against a store bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Calls made inside fn through the outer store are not part of it.
	WithinTx(ctx context.Context, fn func(tx RelationalDB) error) error
}

// AuditLog records write-path actions.
type AuditLog interface {
	// LogAction logs an action to the audit log.
	LogAction(ctx context.Context, action string, target string, details map[string]any) error

	// FindAuditLog finds audit log entries for a specific target.
	FindAuditLog(ctx context.Context, target string) ([]entities.AuditEntry, error)

	// FindAuditLogByAction finds audit log entries by action type.
	FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error)
}
