package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

func TestParseFactType(t *testing.T) {
	tests := []struct {
		input   string
		want    entities.FactTypeCode
		wantErr bool
	}{
		{input: "2", want: entities.FactBirth},
		{input: "birth", want: entities.FactBirth},
		{input: "Individual Event", want: entities.FactIndividualEvent},
		{input: "to-do", want: entities.FactToDo},
		{input: "14", wantErr: true},
		{input: "nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseFactType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFactType_UnknownWraps(t *testing.T) {
	_, err := parseFactType("nope")
	assert.ErrorIs(t, err, entities.ErrUnknownFactType)
}

func TestParseSubtype(t *testing.T) {
	sub, err := parseSubtype("")
	require.NoError(t, err)
	assert.Zero(t, sub)

	sub, err = parseSubtype("adoption")
	require.NoError(t, err)
	assert.Equal(t, entities.EventSubtype(2), sub)

	sub, err = parseSubtype("77")
	require.NoError(t, err)
	assert.Equal(t, entities.SubtypeMarriageEnd, sub)

	_, err = parseSubtype("bogus")
	assert.Error(t, err)
}

func TestParseOwnerKind(t *testing.T) {
	kind, err := parseOwnerKind("Person")
	require.NoError(t, err)
	assert.Equal(t, entities.OwnerPerson, kind)

	_, err = parseOwnerKind("household")
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id, err := parseID("person", "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"0", "-1", "x"} {
		_, err := parseID("person", bad)
		assert.Error(t, err, bad)
	}
}

func TestBuildRecord(t *testing.T) {
	rec, err := buildRecord(entities.OwnerPerson, recordFlags{given: "John", surname: "Smith"})
	require.NoError(t, err)
	person, ok := rec.(*entities.Person)
	require.True(t, ok)
	assert.Equal(t, "John Smith", person.DisplayName())

	rec, err = buildRecord(entities.OwnerChild, recordFlags{person: 1, family: 2, relation: "adopted"})
	require.NoError(t, err)
	child := rec.(*entities.Child)
	assert.Equal(t, "adopted", child.FatherRelation)
	assert.Equal(t, "adopted", child.MotherRelation)

	_, err = buildRecord(entities.OwnerFamily, recordFlags{})
	assert.Error(t, err)
	_, err = buildRecord(entities.OwnerToDo, recordFlags{person: 1})
	assert.Error(t, err)
}
