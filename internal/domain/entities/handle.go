package entities

// Overrides carries caller-supplied values that take precedence over the
// stored ones. A nil field leaves the stored value in place.
type Overrides struct {
	Date        *string `json:"date,omitempty"`
	Place       *string `json:"place,omitempty"`
	Description *string `json:"description,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// Text returns a pointer to s, for building Overrides.
func Text(s string) *string { return &s }

// IsZero reports whether no override is set.
func (o *Overrides) IsZero() bool {
	return o == nil || (o.Date == nil && o.Place == nil && o.Description == nil && o.Notes == nil)
}

// WarningCode classifies a non-fatal problem found while resolving.
type WarningCode string

// Warning codes.
const (
	WarnMultiplePreferred WarningCode = "multiple_preferred"
	WarnDuplicateEvents   WarningCode = "duplicate_events"
	WarnUnlinked          WarningCode = "unlinked"
	WarnOverrideIgnored   WarningCode = "override_ignored"
	WarnPlaceUnresolved   WarningCode = "place_unresolved"
	WarnRepairSkipped     WarningCode = "repair_skipped"
)

// Warning is a non-fatal problem surfaced on a FactHandle.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// FieldAccessor reads and writes one text part of a fact in its backing
// record.
type FieldAccessor struct {
	Get func() string
	Set func(string) error
}

// Supported reports whether the accessor is bound.
func (a FieldAccessor) Supported() bool { return a.Get != nil }

// PlaceAccessor reads and writes the place reference of a fact.
type PlaceAccessor struct {
	Get func() (int64, PlaceKind)
	Set func(id int64, kind PlaceKind) error
}

// Supported reports whether the accessor is bound.
func (a PlaceAccessor) Supported() bool { return a.Get != nil }

// Accessors bind the parts of a fact to the fields that store them.
type Accessors struct {
	Date        FieldAccessor
	Place       PlaceAccessor
	Description FieldAccessor
	Notes       FieldAccessor
}

// FactHandle is one resolved fact. It is built per request and never
// persisted; writes go back through Access and the owner's save.
type FactHandle struct {
	FactType  FactTypeCode `json:"fact_type"`
	Info      FactTypeInfo `json:"-"`
	Subtype   EventSubtype `json:"subtype,omitempty"`
	Label     string       `json:"label"`
	OwnerKind OwnerKind    `json:"owner_kind"`
	OwnerID   int64        `json:"owner_id"`
	Owner     Record       `json:"-"`
	// Event is the backing event of an event-stored fact.
	Event *StandaloneEvent `json:"event,omitempty"`

	// CitationType and CitationRecordID are where the fact's citations
	// are filed.
	CitationType     FactTypeCode `json:"citation_type"`
	CitationRecordID int64        `json:"citation_record_id"`

	Date        string      `json:"date,omitempty"`
	Place       *DisplayRef `json:"place,omitempty"`
	Description string      `json:"description,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	ForWhom     string      `json:"for_whom,omitempty"`
	Preferred   bool        `json:"preferred,omitempty"`
	Cremated    bool        `json:"cremated,omitempty"`
	// Synthesized marks a blank owner built for a record being created.
	Synthesized bool `json:"synthesized,omitempty"`
	Changed     bool `json:"changed,omitempty"`

	// PendingPlace is a place name set by an override or an edit that
	// has not been resolved to a stored place yet.
	PendingPlace *string `json:"pending_place,omitempty"`

	Warnings []Warning `json:"warnings,omitempty"`
	// LinkErr is set on read paths when the owner has a dangling
	// family or spouse link.
	LinkErr error `json:"-"`
	// PlaceErr is set when the stored place could not be resolved.
	PlaceErr error `json:"-"`

	Access Accessors `json:"-"`
}

// IsEmpty reports whether the fact has no date, place, description or
// notes.
func (h *FactHandle) IsEmpty() bool {
	return h.Date == "" && h.Place == nil && h.PendingPlace == nil &&
		h.Description == "" && h.Notes == "" && !h.Cremated
}

// Warn appends a warning to the handle.
func (h *FactHandle) Warn(code WarningCode, msg string) {
	h.Warnings = append(h.Warnings, Warning{Code: code, Message: msg})
}

// HasWarning reports whether a warning with the given code was recorded.
func (h *FactHandle) HasWarning(code WarningCode) bool {
	for _, w := range h.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// SetDate records an edited date.
func (h *FactHandle) SetDate(v string) {
	if h.Date != v {
		h.Date = v
		h.Changed = true
	}
}

// SetDescription records an edited description.
func (h *FactHandle) SetDescription(v string) {
	if h.Description != v {
		h.Description = v
		h.Changed = true
	}
}

// SetNotes records an edited note.
func (h *FactHandle) SetNotes(v string) {
	if h.Notes != v {
		h.Notes = v
		h.Changed = true
	}
}

// SetPlaceName records an edited place by name. The name is resolved to a
// stored place on save; an empty name clears the place.
func (h *FactHandle) SetPlaceName(name string) {
	if h.Place != nil && h.Place.Name == name && h.PendingPlace == nil {
		return
	}
	h.PendingPlace = &name
	kind := h.Info.PlaceKind
	if h.Access.Place.Supported() {
		_, kind = h.Access.Place.Get()
	}
	if h.Place != nil {
		kind = h.Place.Kind
	}
	if name == "" {
		h.Place = nil
	} else {
		h.Place = &DisplayRef{Kind: kind, Name: name}
	}
	h.Changed = true
}

// Apply copies every set override onto the handle. It returns the parts
// that were set but that the fact does not carry.
func (h *FactHandle) Apply(o *Overrides) []FactPart {
	if o == nil {
		return nil
	}
	var ignored []FactPart
	set := func(p FactPart, v *string, fn func(string)) {
		if v == nil {
			return
		}
		if !h.Info.Has(p) {
			ignored = append(ignored, p)
			return
		}
		fn(*v)
	}
	set(PartDate, o.Date, h.SetDate)
	set(PartPlace, o.Place, h.SetPlaceName)
	set(PartDescription, o.Description, h.SetDescription)
	set(PartNotes, o.Notes, h.SetNotes)
	return ignored
}
