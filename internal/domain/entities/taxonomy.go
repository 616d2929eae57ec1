package entities

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FactTypeCode identifies a category of biographical fact.
type FactTypeCode int

// Fact type codes.
const (
	FactName              FactTypeCode = 1
	FactBirth             FactTypeCode = 2
	FactChristening       FactTypeCode = 3
	FactDeath             FactTypeCode = 4
	FactBurial            FactTypeCode = 5
	FactGeneralNotes      FactTypeCode = 6
	FactResearchNotes     FactTypeCode = 7
	FactMedicalNotes      FactTypeCode = 8
	FactDeathCause        FactTypeCode = 9
	FactAltName           FactTypeCode = 10
	FactChildStatus       FactTypeCode = 11
	FactChildRelDad       FactTypeCode = 12
	FactChildRelMom       FactTypeCode = 13
	FactLDSBaptism        FactTypeCode = 15
	FactLDSEndowment      FactTypeCode = 16
	FactSealedToParents   FactTypeCode = 17
	FactSealedToSpouse    FactTypeCode = 18
	FactNeverMarriedIndiv FactTypeCode = 19
	FactMarriage          FactTypeCode = 20
	FactMarriageNote      FactTypeCode = 21
	FactNeverMarried      FactTypeCode = 22
	FactNoChildren        FactTypeCode = 23
	FactMarriageEnded     FactTypeCode = 24
	FactLDSConfirmation   FactTypeCode = 26
	FactLDSInitiatory     FactTypeCode = 27
	FactIndividualEvent   FactTypeCode = 30
	FactFamilyEvent       FactTypeCode = 31
	FactToDo              FactTypeCode = 40
)

// StorageMode says where the values of a fact live.
type StorageMode string

// Storage modes.
const (
	StorageFixed StorageMode = "fixed"
	StorageEvent StorageMode = "event"
)

// FactPart names one of the four values a fact can carry.
type FactPart string

// Fact parts.
const (
	PartDate        FactPart = "date"
	PartPlace       FactPart = "place"
	PartDescription FactPart = "description"
	PartNotes       FactPart = "notes"
)

// FixedFields holds the owner record field names backing a fixed fact.
// An empty name means the fact has no such part.
type FixedFields struct {
	Date        string `json:"date,omitempty"`
	Place       string `json:"place,omitempty"`
	Description string `json:"description,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// FactTypeInfo is one taxonomy entry.
type FactTypeInfo struct {
	Code    FactTypeCode `json:"code"`
	Name    string       `json:"name"`
	Owner   OwnerKind    `json:"owner"`
	Storage StorageMode  `json:"storage"`
	Fields  FixedFields  `json:"fields"`
	// PlaceKind is the kind of place the fact refers to. Event-backed
	// facts may still override it per event.
	PlaceKind PlaceKind `json:"place_kind,omitempty"`
	// Subtype is the event subtype backing a milestone fact. Zero for
	// fixed facts and for the generic event codes.
	Subtype         EventSubtype `json:"subtype,omitempty"`
	SinglePreferred bool         `json:"single_preferred"`
	Generic         bool         `json:"generic,omitempty"`
	// Flag marks a fact whose description is a boolean flag.
	Flag bool `json:"flag,omitempty"`
}

// RequiredIDField returns the identifier parameter needed to resolve the
// fact.
func (i FactTypeInfo) RequiredIDField() IDField {
	return i.Owner.IDField()
}

// IsEvent reports whether the fact is stored as a StandaloneEvent.
func (i FactTypeInfo) IsEvent() bool {
	return i.Storage == StorageEvent
}

// AddressBased reports whether the fact's place is a postal address.
func (i FactTypeInfo) AddressBased() bool {
	return i.PlaceKind == PlaceAddress
}

// Has reports whether the fact carries the given part.
func (i FactTypeInfo) Has(p FactPart) bool {
	if i.IsEvent() {
		return true
	}
	return i.fieldFor(p) != ""
}

// FieldFor returns the owner record field backing part p of a fixed fact.
func (i FactTypeInfo) FieldFor(p FactPart) string {
	if i.IsEvent() {
		return ""
	}
	return i.fieldFor(p)
}

func (i FactTypeInfo) fieldFor(p FactPart) string {
	switch p {
	case PartDate:
		return i.Fields.Date
	case PartPlace:
		return i.Fields.Place
	case PartDescription:
		return i.Fields.Description
	case PartNotes:
		return i.Fields.Notes
	}
	return ""
}

// CitationType returns the code citations of this fact are filed under.
// Event-backed facts file under the generic event code of their owner.
func (i FactTypeInfo) CitationType() FactTypeCode {
	if !i.IsEvent() {
		return i.Code
	}
	if i.Owner == OwnerFamily {
		return FactFamilyEvent
	}
	return FactIndividualEvent
}

func fixed(code FactTypeCode, name string, owner OwnerKind, f FixedFields) FactTypeInfo {
	return FactTypeInfo{Code: code, Name: name, Owner: owner, Storage: StorageFixed, Fields: f}
}

func milestone(code FactTypeCode, name string, sub EventSubtype, pk PlaceKind) FactTypeInfo {
	return FactTypeInfo{
		Code:            code,
		Name:            name,
		Owner:           OwnerPerson,
		Storage:         StorageEvent,
		PlaceKind:       pk,
		Subtype:         sub,
		SinglePreferred: true,
	}
}

func flag(code FactTypeCode, name, field string) FactTypeInfo {
	i := fixed(code, name, OwnerFamily, FixedFields{Description: field})
	i.Flag = true
	return i
}

func withPlaceKind(i FactTypeInfo, pk PlaceKind) FactTypeInfo {
	i.PlaceKind = pk
	return i
}

var taxonomy = func() map[FactTypeCode]FactTypeInfo {
	entries := []FactTypeInfo{
		fixed(FactName, "Name", OwnerPerson, FixedFields{Notes: FieldNameNote}),
		milestone(FactBirth, "Birth", SubtypeBirth, PlaceLocation),
		milestone(FactChristening, "Christening", SubtypeChristening, PlaceLocation),
		milestone(FactDeath, "Death", SubtypeDeath, PlaceLocation),
		milestone(FactBurial, "Burial", SubtypeBurial, PlaceLocation),
		fixed(FactGeneralNotes, "General Notes", OwnerPerson, FixedFields{Notes: FieldNotes}),
		fixed(FactResearchNotes, "Research Notes", OwnerPerson, FixedFields{Notes: FieldReferences}),
		fixed(FactMedicalNotes, "Medical Notes", OwnerPerson, FixedFields{Notes: FieldMedical}),
		fixed(FactDeathCause, "Cause of Death", OwnerPerson, FixedFields{Description: FieldDeathCause}),
		fixed(FactAltName, "Alternate Name", OwnerName, FixedFields{Description: FieldFullName, Notes: FieldAKANote}),
		fixed(FactChildStatus, "Child Status", OwnerChild, FixedFields{Description: FieldStatus}),
		fixed(FactChildRelDad, "Relationship to Father", OwnerChild, FixedFields{Description: FieldCPRelDad}),
		fixed(FactChildRelMom, "Relationship to Mother", OwnerChild, FixedFields{Description: FieldCPRelMom}),
		milestone(FactLDSBaptism, "LDS Baptism", SubtypeLDSBaptism, PlaceTemple),
		milestone(FactLDSEndowment, "LDS Endowment", SubtypeLDSEndowed, PlaceTemple),
		withPlaceKind(fixed(FactSealedToParents, "Sealed to Parents", OwnerChild, FixedFields{
			Date: FieldParSealDate, Place: FieldParSealTpl, Notes: FieldParSealNote,
		}), PlaceTemple),
		withPlaceKind(fixed(FactSealedToSpouse, "Sealed to Spouse", OwnerFamily, FixedFields{
			Date: FieldSealDate, Place: FieldSealTpl, Notes: FieldSealNote,
		}), PlaceTemple),
		flag(FactNeverMarriedIndiv, "Never Married (individual)", FieldNotMarried),
		withPlaceKind(fixed(FactMarriage, "Marriage", OwnerFamily, FixedFields{
			Date: FieldMarDate, Place: FieldMarLoc, Notes: FieldMarNote,
		}), PlaceLocation),
		fixed(FactMarriageNote, "Marriage Note", OwnerFamily, FixedFields{Notes: FieldNotes}),
		flag(FactNeverMarried, "Never Married", FieldNotMarried),
		flag(FactNoChildren, "No Children", FieldNoChildren),
		fixed(FactMarriageEnded, "Marriage Ended", OwnerFamily, FixedFields{Date: FieldMarEndDate}),
		milestone(FactLDSConfirmation, "LDS Confirmation", SubtypeLDSConfirmation, PlaceTemple),
		milestone(FactLDSInitiatory, "LDS Initiatory", SubtypeLDSInitiatory, PlaceTemple),
		{Code: FactIndividualEvent, Name: "Individual Event", Owner: OwnerPerson, Storage: StorageEvent, PlaceKind: PlaceLocation, Generic: true},
		{Code: FactFamilyEvent, Name: "Family Event", Owner: OwnerFamily, Storage: StorageEvent, PlaceKind: PlaceLocation, Generic: true},
		withPlaceKind(fixed(FactToDo, "To-Do", OwnerToDo, FixedFields{
			Date: FieldOpenedDate, Place: FieldAddress, Description: FieldToDoName, Notes: FieldToDoDesc,
		}), PlaceAddress),
	}
	m := make(map[FactTypeCode]FactTypeInfo, len(entries))
	for _, e := range entries {
		m[e.Code] = e
	}
	return m
}()

// LookupFactType returns the taxonomy entry for code.
func LookupFactType(code FactTypeCode) (FactTypeInfo, error) {
	info, ok := taxonomy[code]
	if !ok {
		return FactTypeInfo{}, fmt.Errorf("fact type %d: %w", code, ErrUnknownFactType)
	}
	return info, nil
}

// ParseFactType finds a fact type by code or by name, ignoring case.
func ParseFactType(v string) (FactTypeCode, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		code := FactTypeCode(n)
		if _, err := LookupFactType(code); err != nil {
			return 0, err
		}
		return code, nil
	}
	for code, info := range taxonomy {
		if strings.EqualFold(info.Name, v) {
			return code, nil
		}
	}
	return 0, fmt.Errorf("fact type %q: %w", v, ErrUnknownFactType)
}

// FactTypeCodes returns every defined code in ascending order.
func FactTypeCodes() []FactTypeCode {
	codes := make([]FactTypeCode, 0, len(taxonomy))
	for c := range taxonomy {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// FactTypesFor returns the taxonomy entries owned by kind, ordered by code.
func FactTypesFor(kind OwnerKind) []FactTypeInfo {
	var out []FactTypeInfo
	for _, c := range FactTypeCodes() {
		if info := taxonomy[c]; info.Owner == kind {
			out = append(out, info)
		}
	}
	return out
}

// MilestoneFor returns the single-preferred fact backed by subtype for a
// person, if any.
func MilestoneFor(sub EventSubtype) (FactTypeInfo, bool) {
	for _, info := range taxonomy {
		if info.SinglePreferred && info.Subtype == sub {
			return info, true
		}
	}
	return FactTypeInfo{}, false
}

// GenericEventCode returns the generic event code for events of kind.
func GenericEventCode(kind OwnerKind) (FactTypeCode, bool) {
	switch kind {
	case OwnerPerson:
		return FactIndividualEvent, true
	case OwnerFamily:
		return FactFamilyEvent, true
	}
	return 0, false
}
