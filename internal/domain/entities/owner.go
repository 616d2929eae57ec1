package entities

// OwnerKind identifies which kind of record owns a fact.
type OwnerKind string

// Owning record kinds.
const (
	OwnerPerson OwnerKind = "person"
	OwnerFamily OwnerKind = "family"
	OwnerChild  OwnerKind = "child"
	OwnerName   OwnerKind = "name"
	OwnerToDo   OwnerKind = "todo"
)

// OwnerKinds lists every owner kind in display order.
var OwnerKinds = []OwnerKind{OwnerPerson, OwnerFamily, OwnerChild, OwnerName, OwnerToDo}

// IDField names the identifier parameter a caller supplies to address a
// record of some kind.
type IDField string

// Identifier parameters, named as the record editors name them.
const (
	IDPerson IDField = "idir"
	IDFamily IDField = "idmr"
	IDChild  IDField = "idcr"
	IDName   IDField = "idnx"
	IDToDo   IDField = "idtd"
)

// IDField returns the identifier parameter used to address this kind.
func (k OwnerKind) IDField() IDField {
	switch k {
	case OwnerPerson:
		return IDPerson
	case OwnerFamily:
		return IDFamily
	case OwnerChild:
		return IDChild
	case OwnerName:
		return IDName
	case OwnerToDo:
		return IDToDo
	default:
		return ""
	}
}

// IsValid reports whether k is one of the known owner kinds.
func (k OwnerKind) IsValid() bool {
	return k.IDField() != ""
}

// ParseOwnerKind converts a string into an OwnerKind.
func ParseOwnerKind(s string) (OwnerKind, bool) {
	k := OwnerKind(s)
	return k, k.IsValid()
}
