package entities

import "errors"

// Sentinel errors returned (wrapped) by the resolution engine. Callers
// test for them with errors.Is.
var (
	// ErrUnknownFactType means a fact type code is not in the taxonomy.
	// It is a programming error and is never defaulted.
	ErrUnknownFactType = errors.New("unknown fact type")

	// ErrEntityNotFound means the owning record does not exist.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrOwnershipViolation means the caller may not modify the record.
	ErrOwnershipViolation = errors.New("not authorized to edit this record")

	// ErrInvalidChildOrMarriageLink means a child or family record points
	// at a parent family or spouse that does not exist.
	ErrInvalidChildOrMarriageLink = errors.New("invalid child or marriage link")

	// ErrMissingSubtype means a generic event fact was requested without
	// an event subtype or event ID.
	ErrMissingSubtype = errors.New("event subtype required")

	// ErrEventCited means an event still has citations and no target to
	// move them to was supplied.
	ErrEventCited = errors.New("event has citations")

	// ErrPlaceUnresolved means the place of a fact could not be resolved.
	ErrPlaceUnresolved = errors.New("place could not be resolved")

	// ErrUnknownField means a record does not carry the named field.
	ErrUnknownField = errors.New("unknown field")
)
