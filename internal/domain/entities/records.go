// Package entities contains the core genealogy data structures: owning
// records, standalone events, places, citations and resolved fact handles.
package entities

import (
	"fmt"
	"strings"
)

// Record is an owning record that carries fixed fact fields. Field names
// are the column names of the record, for example "namenote" or "mard".
type Record interface {
	Kind() OwnerKind
	RecordID() int64
	Field(name string) (string, error)
	SetField(name, value string) error
	PlaceField(name string) (int64, error)
	SetPlaceField(name string, id int64) error
}

// Fixed field names.
const (
	FieldNameNote    = "namenote"
	FieldNotes       = "notes"
	FieldReferences  = "references"
	FieldMedical     = "medical"
	FieldDeathCause  = "deathcause"
	FieldFullName    = "fullname"
	FieldAKANote     = "akanote"
	FieldStatus      = "status"
	FieldCPRelDad    = "cpreldad"
	FieldCPRelMom    = "cprelmom"
	FieldParSealDate = "parseald"
	FieldParSealTpl  = "idtrparseal"
	FieldParSealNote = "parsealnote"
	FieldSealDate    = "seald"
	FieldSealTpl     = "idtrseal"
	FieldSealNote    = "sealnote"
	FieldNotMarried  = "notmarried"
	FieldNoChildren  = "nochildren"
	FieldMarDate     = "mard"
	FieldMarLoc      = "idlrmar"
	FieldMarNote     = "marnote"
	FieldMarEndDate  = "marendd"
	FieldOpenedDate  = "openedd"
	FieldAddress     = "idar"
	FieldToDoName    = "todoname"
	FieldToDoDesc    = "desc"
)

func unknownField(k OwnerKind, name string) error {
	return fmt.Errorf("%s field %q: %w", k, name, ErrUnknownField)
}

// ParseFlag interprets a submitted boolean flag. Empty, "0", "n" and "N"
// are false; anything else is true.
func ParseFlag(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "0", "n", "N":
		return false
	default:
		return true
	}
}

// FlagString renders a boolean flag the way it is read back.
func FlagString(b bool) string {
	if b {
		return "1"
	}
	return ""
}

// Person is an individual in the family tree.
type Person struct {
	ID         int64  `json:"id"`
	GivenName  string `json:"given_name"`
	Surname    string `json:"surname"`
	Gender     string `json:"gender,omitempty"`
	NameNote   string `json:"name_note,omitempty"`
	Notes      string `json:"notes,omitempty"`
	References string `json:"references,omitempty"`
	Medical    string `json:"medical,omitempty"`
	DeathCause string `json:"death_cause,omitempty"`
}

// Kind implements Record.
func (p *Person) Kind() OwnerKind { return OwnerPerson }

// RecordID implements Record.
func (p *Person) RecordID() int64 { return p.ID }

// DisplayName returns the given name followed by the surname.
func (p *Person) DisplayName() string {
	return joinName(p.GivenName, p.Surname)
}

// Field implements Record.
func (p *Person) Field(name string) (string, error) {
	switch name {
	case FieldNameNote:
		return p.NameNote, nil
	case FieldNotes:
		return p.Notes, nil
	case FieldReferences:
		return p.References, nil
	case FieldMedical:
		return p.Medical, nil
	case FieldDeathCause:
		return p.DeathCause, nil
	}
	return "", unknownField(OwnerPerson, name)
}

// SetField implements Record.
func (p *Person) SetField(name, value string) error {
	switch name {
	case FieldNameNote:
		p.NameNote = value
	case FieldNotes:
		p.Notes = value
	case FieldReferences:
		p.References = value
	case FieldMedical:
		p.Medical = value
	case FieldDeathCause:
		p.DeathCause = value
	default:
		return unknownField(OwnerPerson, name)
	}
	return nil
}

// PlaceField implements Record. A person has no fixed place fields.
func (p *Person) PlaceField(name string) (int64, error) {
	return 0, unknownField(OwnerPerson, name)
}

// SetPlaceField implements Record.
func (p *Person) SetPlaceField(name string, _ int64) error {
	return unknownField(OwnerPerson, name)
}

// Family is a couple, and the children born to it.
type Family struct {
	ID               int64  `json:"id"`
	HusbandID        int64  `json:"husband_id,omitempty"`
	WifeID           int64  `json:"wife_id,omitempty"`
	MarriageDate     string `json:"marriage_date,omitempty"`
	MarriageLocation int64  `json:"marriage_location,omitempty"`
	MarriageNote     string `json:"marriage_note,omitempty"`
	Notes            string `json:"notes,omitempty"`
	SealDate         string `json:"seal_date,omitempty"`
	SealTemple       int64  `json:"seal_temple,omitempty"`
	SealNote         string `json:"seal_note,omitempty"`
	NotMarried       bool   `json:"not_married,omitempty"`
	NoChildren       bool   `json:"no_children,omitempty"`
	MarriageEndDate  string `json:"marriage_end_date,omitempty"`
}

// Kind implements Record.
func (f *Family) Kind() OwnerKind { return OwnerFamily }

// RecordID implements Record.
func (f *Family) RecordID() int64 { return f.ID }

// Field implements Record.
func (f *Family) Field(name string) (string, error) {
	switch name {
	case FieldMarDate:
		return f.MarriageDate, nil
	case FieldMarNote:
		return f.MarriageNote, nil
	case FieldNotes:
		return f.Notes, nil
	case FieldSealDate:
		return f.SealDate, nil
	case FieldSealNote:
		return f.SealNote, nil
	case FieldNotMarried:
		return FlagString(f.NotMarried), nil
	case FieldNoChildren:
		return FlagString(f.NoChildren), nil
	case FieldMarEndDate:
		return f.MarriageEndDate, nil
	}
	return "", unknownField(OwnerFamily, name)
}

// SetField implements Record. Flag fields are parsed with ParseFlag.
func (f *Family) SetField(name, value string) error {
	switch name {
	case FieldMarDate:
		f.MarriageDate = value
	case FieldMarNote:
		f.MarriageNote = value
	case FieldNotes:
		f.Notes = value
	case FieldSealDate:
		f.SealDate = value
	case FieldSealNote:
		f.SealNote = value
	case FieldNotMarried:
		f.NotMarried = ParseFlag(value)
	case FieldNoChildren:
		f.NoChildren = ParseFlag(value)
	case FieldMarEndDate:
		f.MarriageEndDate = value
	default:
		return unknownField(OwnerFamily, name)
	}
	return nil
}

// PlaceField implements Record.
func (f *Family) PlaceField(name string) (int64, error) {
	switch name {
	case FieldMarLoc:
		return f.MarriageLocation, nil
	case FieldSealTpl:
		return f.SealTemple, nil
	}
	return 0, unknownField(OwnerFamily, name)
}

// SetPlaceField implements Record.
func (f *Family) SetPlaceField(name string, id int64) error {
	switch name {
	case FieldMarLoc:
		f.MarriageLocation = id
	case FieldSealTpl:
		f.SealTemple = id
	default:
		return unknownField(OwnerFamily, name)
	}
	return nil
}

// Child links a person to the family they were born into.
type Child struct {
	ID             int64  `json:"id"`
	PersonID       int64  `json:"person_id"`
	FamilyID       int64  `json:"family_id"`
	Status         string `json:"status,omitempty"`
	FatherRelation string `json:"father_relation,omitempty"`
	MotherRelation string `json:"mother_relation,omitempty"`
	ParSealDate    string `json:"parents_seal_date,omitempty"`
	ParSealTemple  int64  `json:"parents_seal_temple,omitempty"`
	ParSealNote    string `json:"parents_seal_note,omitempty"`
}

// Kind implements Record.
func (c *Child) Kind() OwnerKind { return OwnerChild }

// RecordID implements Record.
func (c *Child) RecordID() int64 { return c.ID }

// Field implements Record.
func (c *Child) Field(name string) (string, error) {
	switch name {
	case FieldStatus:
		return c.Status, nil
	case FieldCPRelDad:
		return c.FatherRelation, nil
	case FieldCPRelMom:
		return c.MotherRelation, nil
	case FieldParSealDate:
		return c.ParSealDate, nil
	case FieldParSealNote:
		return c.ParSealNote, nil
	}
	return "", unknownField(OwnerChild, name)
}

// SetField implements Record.
func (c *Child) SetField(name, value string) error {
	switch name {
	case FieldStatus:
		c.Status = value
	case FieldCPRelDad:
		c.FatherRelation = value
	case FieldCPRelMom:
		c.MotherRelation = value
	case FieldParSealDate:
		c.ParSealDate = value
	case FieldParSealNote:
		c.ParSealNote = value
	default:
		return unknownField(OwnerChild, name)
	}
	return nil
}

// PlaceField implements Record.
func (c *Child) PlaceField(name string) (int64, error) {
	if name == FieldParSealTpl {
		return c.ParSealTemple, nil
	}
	return 0, unknownField(OwnerChild, name)
}

// SetPlaceField implements Record.
func (c *Child) SetPlaceField(name string, id int64) error {
	if name != FieldParSealTpl {
		return unknownField(OwnerChild, name)
	}
	c.ParSealTemple = id
	return nil
}

// Name is an alternate name of a person.
type Name struct {
	ID        int64  `json:"id"`
	PersonID  int64  `json:"person_id"`
	GivenName string `json:"given_name"`
	Surname   string `json:"surname"`
	AKANote   string `json:"aka_note,omitempty"`
}

// Kind implements Record.
func (n *Name) Kind() OwnerKind { return OwnerName }

// RecordID implements Record.
func (n *Name) RecordID() int64 { return n.ID }

// Field implements Record.
func (n *Name) Field(name string) (string, error) {
	switch name {
	case FieldFullName:
		return joinName(n.GivenName, n.Surname), nil
	case FieldAKANote:
		return n.AKANote, nil
	}
	return "", unknownField(OwnerName, name)
}

// SetField implements Record. A full name is split at its last space,
// so "Mary Ann Smith" becomes given name "Mary Ann" and surname "Smith".
func (n *Name) SetField(name, value string) error {
	switch name {
	case FieldFullName:
		value = strings.TrimSpace(value)
		if i := strings.LastIndexByte(value, ' '); i >= 0 {
			n.GivenName = strings.TrimSpace(value[:i])
			n.Surname = value[i+1:]
		} else {
			n.GivenName = ""
			n.Surname = value
		}
	case FieldAKANote:
		n.AKANote = value
	default:
		return unknownField(OwnerName, name)
	}
	return nil
}

// PlaceField implements Record.
func (n *Name) PlaceField(name string) (int64, error) {
	return 0, unknownField(OwnerName, name)
}

// SetPlaceField implements Record.
func (n *Name) SetPlaceField(name string, _ int64) error {
	return unknownField(OwnerName, name)
}

// ToDo is a research task attached to a person.
type ToDo struct {
	ID          int64  `json:"id"`
	PersonID    int64  `json:"person_id"`
	Name        string `json:"name"`
	OpenedDate  string `json:"opened_date,omitempty"`
	AddressID   int64  `json:"address_id,omitempty"`
	Description string `json:"description,omitempty"`
}

// Kind implements Record.
func (t *ToDo) Kind() OwnerKind { return OwnerToDo }

// RecordID implements Record.
func (t *ToDo) RecordID() int64 { return t.ID }

// Field implements Record.
func (t *ToDo) Field(name string) (string, error) {
	switch name {
	case FieldOpenedDate:
		return t.OpenedDate, nil
	case FieldToDoName:
		return t.Name, nil
	case FieldToDoDesc:
		return t.Description, nil
	}
	return "", unknownField(OwnerToDo, name)
}

// SetField implements Record.
func (t *ToDo) SetField(name, value string) error {
	switch name {
	case FieldOpenedDate:
		t.OpenedDate = value
	case FieldToDoName:
		t.Name = value
	case FieldToDoDesc:
		t.Description = value
	default:
		return unknownField(OwnerToDo, name)
	}
	return nil
}

// PlaceField implements Record.
func (t *ToDo) PlaceField(name string) (int64, error) {
	if name == FieldAddress {
		return t.AddressID, nil
	}
	return 0, unknownField(OwnerToDo, name)
}

// SetPlaceField implements Record.
func (t *ToDo) SetPlaceField(name string, id int64) error {
	if name != FieldAddress {
		return unknownField(OwnerToDo, name)
	}
	t.AddressID = id
	return nil
}

// NewRecord returns an empty record of kind k carrying the given ID.
func NewRecord(k OwnerKind, id int64) (Record, error) {
	switch k {
	case OwnerPerson:
		return &Person{ID: id}, nil
	case OwnerFamily:
		return &Family{ID: id}, nil
	case OwnerChild:
		return &Child{ID: id}, nil
	case OwnerName:
		return &Name{ID: id}, nil
	case OwnerToDo:
		return &ToDo{ID: id}, nil
	}
	return nil, fmt.Errorf("owner kind %q: %w", k, ErrUnknownFactType)
}

func joinName(given, surname string) string {
	return strings.TrimSpace(given + " " + surname)
}
