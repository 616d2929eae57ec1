package entities

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecords_FixedFieldsRoundTrip(t *testing.T) {
	for _, code := range FactTypeCodes() {
		info, err := LookupFactType(code)
		require.NoError(t, err)
		if info.IsEvent() {
			continue
		}
		rec, err := NewRecord(info.Owner, 1)
		require.NoError(t, err)

		for _, p := range []FactPart{PartDate, PartDescription, PartNotes} {
			field := info.FieldFor(p)
			if field == "" {
				continue
			}
			value := "Mary Smith"
			if info.Flag {
				value = "1"
			}
			require.NoError(t, rec.SetField(field, value), "code %d field %s", code, field)
			got, err := rec.Field(field)
			require.NoError(t, err)
			assert.Equal(t, value, got, "code %d field %s", code, field)
		}
		if field := info.FieldFor(PartPlace); field != "" {
			require.NoError(t, rec.SetPlaceField(field, 9))
			got, err := rec.PlaceField(field)
			require.NoError(t, err)
			assert.Equal(t, int64(9), got)
		}
	}
}

func TestRecords_UnknownField(t *testing.T) {
	p := &Person{ID: 1}
	_, err := p.Field("mard")
	assert.True(t, errors.Is(err, ErrUnknownField))
	assert.True(t, errors.Is(p.SetField("bogus", "x"), ErrUnknownField))
	assert.True(t, errors.Is(p.SetPlaceField("idlrmar", 1), ErrUnknownField))
}

func TestName_FullName(t *testing.T) {
	n := &Name{ID: 2}
	require.NoError(t, n.SetField(FieldFullName, "Mary Ann Smith"))
	assert.Equal(t, "Mary Ann", n.GivenName)
	assert.Equal(t, "Smith", n.Surname)

	require.NoError(t, n.SetField(FieldFullName, "Smith"))
	assert.Equal(t, "", n.GivenName)
	assert.Equal(t, "Smith", n.Surname)
}

func TestFamily_FlagFields(t *testing.T) {
	f := &Family{ID: 3}
	require.NoError(t, f.SetField(FieldNotMarried, "n"))
	assert.False(t, f.NotMarried)
	require.NoError(t, f.SetField(FieldNoChildren, "Y"))
	assert.True(t, f.NoChildren)

	v, err := f.Field(FieldNoChildren)
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestStandaloneEvent_PlaceKind(t *testing.T) {
	tests := []struct {
		name string
		ev   StandaloneEvent
		kind PlaceKind
		ref  int64
	}{
		{"location", StandaloneEvent{PlaceID: 4}, PlaceLocation, 4},
		{"temple", StandaloneEvent{PlaceID: 5, Kind: EventKindTemple}, PlaceTemple, 5},
		{"address beats temple", StandaloneEvent{PlaceID: 5, Kind: EventKindTemple, AddressID: 6}, PlaceAddress, 6},
		{"address beats location", StandaloneEvent{PlaceID: 5, AddressID: 7}, PlaceAddress, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.ev.PlaceKind())
			assert.Equal(t, tt.ref, tt.ev.PlaceRef())
		})
	}
}

func TestSuperscript(t *testing.T) {
	assert.Equal(t, "¹", Superscript(1))
	assert.Equal(t, "¹,¹²", Superscript(1, 12))
	assert.Equal(t, "", Superscript())
}

func TestCitationKeys(t *testing.T) {
	a := Citation{SourceID: 3, Detail: "vol. 2", Type: FactBirth, RecordID: 1}
	b := Citation{SourceID: 3, Detail: "vol. 2", Type: FactDeath, RecordID: 9}
	c := Citation{SourceID: 3, Detail: "vol. 3"}
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.NotEqual(t, NoteKey(FactBirth, 1), NoteKey(FactBirth, 2))

	assert.Equal(t, "Parish register: vol. 2", SourceCitation{Citation: Citation{SourceName: "Parish register", Detail: "vol. 2"}}.Text())
	assert.Equal(t, "hello", Footnote{Payload: FreeTextNote{Body: "hello"}}.Text())
}

func TestFactHandle_Apply(t *testing.T) {
	info, err := LookupFactType(FactDeathCause)
	require.NoError(t, err)
	h := &FactHandle{Info: info}

	ignored := h.Apply(&Overrides{Description: Text("pneumonia"), Date: Text("1850")})
	assert.Equal(t, []FactPart{PartDate}, ignored)
	assert.Equal(t, "pneumonia", h.Description)
	assert.Empty(t, h.Date)
	assert.True(t, h.Changed)
	assert.False(t, h.IsEmpty())
}
