package entities

import "time"

// EventKind flags whether an event's place is an ordinary location or a
// temple.
type EventKind int

// Event place kinds.
const (
	EventKindLocation EventKind = 0
	EventKindTemple   EventKind = 1
)

// StandaloneEvent is an event record owned by a person or family. At most
// one event per (owner, subtype) is preferred; the preferred one backs the
// milestone fact of that subtype.
type StandaloneEvent struct {
	ID          int64        `json:"id"`
	OwnerKind   OwnerKind    `json:"owner_kind"`
	OwnerID     int64        `json:"owner_id"`
	Subtype     EventSubtype `json:"subtype"`
	Date        string       `json:"date,omitempty"`
	PlaceID     int64        `json:"place_id,omitempty"`
	Kind        EventKind    `json:"kind"`
	AddressID   int64        `json:"address_id,omitempty"`
	Description string       `json:"description,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	Order       int          `json:"order"`
	Preferred   bool         `json:"preferred"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// PlaceKind returns the kind of place that renders this event's location.
// An address takes priority over both temple and location.
func (e *StandaloneEvent) PlaceKind() PlaceKind {
	switch {
	case e.AddressID > 0:
		return PlaceAddress
	case e.Kind == EventKindTemple:
		return PlaceTemple
	default:
		return PlaceLocation
	}
}

// PlaceRef returns the identifier of the place selected by PlaceKind.
func (e *StandaloneEvent) PlaceRef() int64 {
	if e.AddressID > 0 {
		return e.AddressID
	}
	return e.PlaceID
}

// Before reports whether e sorts before o by (Order, ID).
func (e *StandaloneEvent) Before(o *StandaloneEvent) bool {
	if e.Order != o.Order {
		return e.Order < o.Order
	}
	return e.ID < o.ID
}
