package entities

import (
	"sort"
	"strconv"
	"strings"
)

// EventSubtype identifies the category of a StandaloneEvent.
type EventSubtype int

// Event subtypes referred to by the taxonomy.
const (
	SubtypeNull            EventSubtype = 1
	SubtypeBirth           EventSubtype = 3
	SubtypeBurial          EventSubtype = 4
	SubtypeChristening     EventSubtype = 5
	SubtypeDeath           EventSubtype = 6
	SubtypeLDSBaptism      EventSubtype = 8
	SubtypeLDSConfirmation EventSubtype = 16
	SubtypeMarriage        EventSubtype = 69
	SubtypeMarriageFact    EventSubtype = 70
	SubtypeLDSEndowed      EventSubtype = 74
	SubtypeLDSInitiatory   EventSubtype = 75
	SubtypeLDSSealed       EventSubtype = 76
	SubtypeMarriageEnd     EventSubtype = 77
)

var subtypeLabels = map[EventSubtype]string{
	1:  "",
	2:  "Adoption",
	3:  "Birth",
	4:  "Burial",
	5:  "Christening",
	6:  "Death",
	7:  "Annulment",
	8:  "LDS Baptism",
	9:  "Bar Mitzvah",
	10: "Bas Mitzvah",
	11: "Blessing",
	12: "Census",
	13: "Circumcision",
	14: "Citizenship",
	15: "Confirmation",
	16: "LDS Confirmation",
	17: "Court",
	18: "Cremation",
	19: "Degree",
	20: "Divorce",
	21: "Divorce Filing",
	22: "Education",
	23: "Emigration",
	24: "Employment",
	25: "Engagement",
	26: "First Communion",
	27: "Graduation",
	28: "Hobbies",
	29: "Honours",
	30: "Hospital",
	31: "Illness",
	32: "Immigration",
	33: "Interview",
	34: "Land",
	35: "Marriage Banns",
	36: "Marriage Contract",
	37: "Marriage License",
	38: "Marriage Notice",
	39: "Marriage Settlement",
	40: "Medical",
	41: "Membership",
	42: "Military Service",
	43: "Mission",
	44: "Namesake",
	45: "Naturalization",
	46: "Obituary",
	47: "Occupation",
	48: "Ordinance",
	49: "Ordination",
	50: "Physical Description",
	51: "Probate",
	52: "Property",
	53: "Religion",
	54: "Residence",
	55: "Retirement",
	56: "School",
	57: "Social Security Number",
	58: "Will",
	59: "Medical Condition",
	60: "Military",
	61: "Photo",
	62: "Soc Sec Num",
	63: "Other Occupation",
	64: "Nationality",
	65: "Family Group",
	66: "Ethnicity",
	67: "Funeral",
	68: "Election",
	69: "Marriage",
	70: "Other Marriage Fact",
	71: "Birth Registration",
	72: "Death Registration",
	73: "Marriage Registration",
	74: "LDS Endowed",
	75: "LDS Initiatory",
	76: "LDS Sealed",
	77: "Marriage End",
}

// Label returns the display label of the subtype. Unknown subtypes label
// as "IDET=<n>".
func (s EventSubtype) Label() string {
	if l, ok := subtypeLabels[s]; ok {
		return l
	}
	return "IDET=" + strconv.Itoa(int(s))
}

// IsKnown reports whether s is in the subtype table.
func (s EventSubtype) IsKnown() bool {
	_, ok := subtypeLabels[s]
	return ok
}

// EventSubtypes returns the known subtypes in code order.
func EventSubtypes() []EventSubtype {
	subs := make([]EventSubtype, 0, len(subtypeLabels))
	for s := range subtypeLabels {
		subs = append(subs, s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i] < subs[j] })
	return subs
}

// ParseEventSubtype finds a subtype by code or by label, ignoring case.
func ParseEventSubtype(v string) (EventSubtype, bool) {
	if n, err := strconv.Atoi(v); err == nil {
		s := EventSubtype(n)
		return s, s.IsKnown()
	}
	for s, l := range subtypeLabels {
		if l != "" && strings.EqualFold(l, v) {
			return s, true
		}
	}
	return 0, false
}

// EventLabel returns the label of an event. An "Other Marriage Fact"
// labels from its own description when it has one.
func EventLabel(e *StandaloneEvent) string {
	if e == nil {
		return ""
	}
	if e.Subtype == SubtypeMarriageFact && e.Description != "" {
		return e.Description
	}
	return e.Subtype.Label()
}
