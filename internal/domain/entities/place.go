package entities

// PlaceKind is the kind of place referenced by a fact.
type PlaceKind string

// Place kinds.
const (
	PlaceLocation PlaceKind = "location"
	PlaceTemple   PlaceKind = "temple"
	PlaceAddress  PlaceKind = "address"
)

// anchor prefixes used when a place is rendered in a page.
var placeAnchorPrefix = map[PlaceKind]string{
	PlaceLocation: "showLoc",
	PlaceTemple:   "showTpl",
	PlaceAddress:  "showAdr",
}

// AnchorPrefix returns the prefix of rendered anchor IDs for the kind.
func (k PlaceKind) AnchorPrefix() string {
	return placeAnchorPrefix[k]
}

// IsValid reports whether k is a known place kind.
func (k PlaceKind) IsValid() bool {
	_, ok := placeAnchorPrefix[k]
	return ok
}

// Place is a stored location, temple or address.
type Place struct {
	ID   int64     `json:"id"`
	Kind PlaceKind `json:"kind"`
	Name string    `json:"name"`
	// Code is the short temple code; empty for other kinds.
	Code string `json:"code,omitempty"`
}

// DisplayRef is a resolved place ready for display. AnchorID is empty
// until the place has been registered with a render pass.
type DisplayRef struct {
	ID       int64     `json:"id"`
	Kind     PlaceKind `json:"kind"`
	Name     string    `json:"name"`
	AnchorID string    `json:"anchor_id,omitempty"`
}
