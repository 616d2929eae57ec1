package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ersonp/lineage-core/internal/domain/entities"
	"github.com/ersonp/lineage-core/internal/domain/mocks"
	"github.com/ersonp/lineage-core/internal/domain/services"
)

var editor = entities.UserContext{UserName: "alice"}

type testDeps struct {
	db        *mocks.RelationalDB
	resolver  *services.ResolverService
	citations *services.CitationService
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()
	db := mocks.NewRelationalDB()
	db.Put(&entities.Person{ID: 42, GivenName: "John", Surname: "Smith", Notes: "A farmer."})
	return &testDeps{
		db:        db,
		resolver:  services.NewResolverService(db, zap.NewNop()),
		citations: services.NewCitationService(db, nil, zap.NewNop()),
	}
}

func TestFactHandler_HandleShow_ReadOnly(t *testing.T) {
	d := newTestDeps(t)
	handler := NewFactHandler(d.resolver, d.citations)

	result, err := handler.HandleShow(context.Background(), FactRequest{FactType: entities.FactBirth, OwnerID: 42})
	require.NoError(t, err)
	assert.Equal(t, "Birth", result.Fact.Label)
	assert.Zero(t, result.Fact.EventID)
	assert.Empty(t, result.Footnotes)
	assert.NotEmpty(t, result.RenderID)
	assert.Empty(t, d.db.Events)
}

func TestFactHandler_HandleShow_UnknownType(t *testing.T) {
	d := newTestDeps(t)
	handler := NewFactHandler(d.resolver, d.citations)

	_, err := handler.HandleShow(context.Background(), FactRequest{FactType: 99, OwnerID: 42})
	assert.True(t, errors.Is(err, entities.ErrUnknownFactType))
}

func TestFactHandler_HandleSet(t *testing.T) {
	d := newTestDeps(t)
	handler := NewFactHandler(d.resolver, d.citations)
	ctx := context.Background()

	overrides := &entities.Overrides{Date: entities.Text("3 May 1850"), Place: entities.Text("Salem, MA")}
	result, err := handler.HandleSet(ctx, editor, FactRequest{FactType: entities.FactBirth, OwnerID: 42}, overrides, false)
	require.NoError(t, err)

	assert.Equal(t, "3 May 1850", result.Fact.Date)
	require.NotNil(t, result.Fact.Place)
	assert.Equal(t, "Salem, MA", result.Fact.Place.Name)
	assert.Contains(t, result.Fact.Place.AnchorID, "showLoc1_")
	require.Len(t, result.Places, 1)

	events := d.db.EventsFor(entities.OwnerPerson, 42, entities.SubtypeBirth)
	require.Len(t, events, 1)
	assert.Equal(t, "3 May 1850", events[0].Date)
	assert.Equal(t, result.Fact.Place.ID, events[0].PlaceID)

	shown, err := handler.HandleShow(ctx, FactRequest{FactType: entities.FactBirth, OwnerID: 42})
	require.NoError(t, err)
	assert.Equal(t, events[0].ID, shown.Fact.EventID)
	assert.Equal(t, "Salem, MA", shown.Fact.Place.Name)
}

func TestFactHandler_HandleSet_Unauthorized(t *testing.T) {
	d := newTestDeps(t)
	handler := NewFactHandler(d.resolver, d.citations)

	overrides := &entities.Overrides{Description: entities.Text("fever")}
	_, err := handler.HandleSet(context.Background(), entities.UserContext{}, FactRequest{FactType: entities.FactDeathCause, OwnerID: 42}, overrides, false)
	assert.True(t, errors.Is(err, entities.ErrOwnershipViolation))

	rec, err := d.db.Load(context.Background(), entities.OwnerPerson, 42)
	require.NoError(t, err)
	assert.Empty(t, rec.(*entities.Person).DeathCause)
}

func TestFactHandler_HandleSet_Creating(t *testing.T) {
	d := newTestDeps(t)
	handler := NewFactHandler(d.resolver, d.citations)
	ctx := context.Background()

	req := FactRequest{FactType: entities.FactGeneralNotes, OwnerID: 77}
	_, err := handler.HandleSet(ctx, editor, req, &entities.Overrides{Notes: entities.Text("New arrival.")}, false)
	assert.True(t, errors.Is(err, entities.ErrEntityNotFound))

	result, err := handler.HandleSet(ctx, editor, req, &entities.Overrides{Notes: entities.Text("New arrival.")}, true)
	require.NoError(t, err)
	assert.Equal(t, "New arrival.", result.Fact.Notes)

	rec, err := d.db.Load(ctx, entities.OwnerPerson, 77)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "New arrival.", rec.(*entities.Person).Notes)
}

func TestFactHandler_HandleCite(t *testing.T) {
	d := newTestDeps(t)
	handler := NewFactHandler(d.resolver, d.citations)
	ctx := context.Background()
	req := FactRequest{FactType: entities.FactDeath, OwnerID: 42}

	c, err := handler.HandleCite(ctx, editor, req, "County Death Register", "entry 311")
	require.NoError(t, err)
	assert.Equal(t, entities.FactIndividualEvent, c.Type)

	result, err := handler.HandleShow(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, result.Fact.Footnotes)
	assert.Equal(t, "¹", result.Fact.Markers)
	require.Len(t, result.Footnotes, 1)
	assert.Equal(t, "County Death Register: entry 311", result.Footnotes[0].Text)
}

// Birth and death share a place and a citation: one footnote and one
// place entry, each display with its own anchor.
func TestBiographyHandler_Handle(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()
	d.db.PutPlace(entities.PlaceLocation, 5, "Boston, MA")
	birth := d.db.PutEvent(entities.StandaloneEvent{OwnerKind: entities.OwnerPerson, OwnerID: 42, Subtype: entities.SubtypeBirth,
		Date: "1850", PlaceID: 5, Notes: "Baptized the same day.", Preferred: true})
	death := d.db.PutEvent(entities.StandaloneEvent{OwnerKind: entities.OwnerPerson, OwnerID: 42, Subtype: entities.SubtypeDeath,
		Date: "1901", PlaceID: 5, Preferred: true})
	for _, ev := range []*entities.StandaloneEvent{birth, death} {
		require.NoError(t, d.db.SaveCitation(ctx, &entities.Citation{
			SourceID: 900, SourceName: "1850 Census", Detail: "p. 4", Type: entities.FactIndividualEvent, RecordID: ev.ID,
		}))
	}

	handler := NewBiographyHandler(d.resolver, d.citations)
	bio, err := handler.Handle(ctx, entities.OwnerPerson, 42)
	require.NoError(t, err)

	assert.Equal(t, "John Smith", bio.Title)
	require.Len(t, bio.Entries, 3)

	assert.Equal(t, entities.FactBirth, bio.Entries[0].FactType)
	assert.Equal(t, []int{1, 2}, bio.Entries[0].Footnotes)
	assert.Equal(t, "¹,²", bio.Entries[0].Markers)
	assert.Equal(t, "showLoc1_5", bio.Entries[0].Place.AnchorID)

	assert.Equal(t, entities.FactDeath, bio.Entries[1].FactType)
	assert.Equal(t, "¹", bio.Entries[1].Markers)
	assert.Equal(t, "showLoc2_5", bio.Entries[1].Place.AnchorID)

	// Notes-only facts carry no note footnote.
	assert.Equal(t, entities.FactGeneralNotes, bio.Entries[2].FactType)
	assert.Empty(t, bio.Entries[2].Footnotes)

	assert.Equal(t, []FootnoteView{
		{Number: 1, Text: "1850 Census: p. 4"},
		{Number: 2, Text: "Baptized the same day."},
	}, bio.Footnotes)
	require.Len(t, bio.Places, 1)
	assert.Equal(t, "Boston, MA", bio.Places[0].Name)

	assert.Zero(t, d.db.SaveEventCalls)
	assert.Zero(t, d.db.CreateEventCalls)
}

func TestBiographyHandler_FreshFootnotesPerRender(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()
	ev := d.db.PutEvent(entities.StandaloneEvent{OwnerKind: entities.OwnerPerson, OwnerID: 42, Subtype: entities.SubtypeBirth, Date: "1850", Preferred: true})
	require.NoError(t, d.db.SaveCitation(ctx, &entities.Citation{SourceID: 1, SourceName: "Bible", Type: entities.FactIndividualEvent, RecordID: ev.ID}))

	handler := NewBiographyHandler(d.resolver, d.citations)
	first, err := handler.Handle(ctx, entities.OwnerPerson, 42)
	require.NoError(t, err)
	second, err := handler.Handle(ctx, entities.OwnerPerson, 42)
	require.NoError(t, err)

	assert.Equal(t, first.Entries[0].Footnotes, second.Entries[0].Footnotes)
	assert.Equal(t, []int{1}, second.Entries[0].Footnotes)
	assert.NotEqual(t, first.RenderID, second.RenderID)
}

func TestBiographyHandler_NotFound(t *testing.T) {
	d := newTestDeps(t)
	handler := NewBiographyHandler(d.resolver, d.citations)

	_, err := handler.Handle(context.Background(), entities.OwnerFamily, 8)
	assert.True(t, errors.Is(err, entities.ErrEntityNotFound))
}

func TestTaxonomyHandler(t *testing.T) {
	handler := NewTaxonomyHandler()

	types := handler.HandleList()
	require.Len(t, types, 28)
	assert.Equal(t, entities.FactName, types[0].Code)
	assert.Equal(t, entities.IDField("idir"), types[0].IDField)

	var todo FactTypeView
	for _, ft := range types {
		if ft.Code == entities.FactToDo {
			todo = ft
		}
	}
	assert.Equal(t, entities.PlaceAddress, todo.PlaceKind)
	assert.Equal(t, "idar", todo.Fields.Place)

	subs := handler.HandleSubtypes()
	require.NotEmpty(t, subs)
	assert.Equal(t, "Adoption", subs[1].Label)
}

func TestEventsHandler(t *testing.T) {
	d := newTestDeps(t)
	handler := NewEventsHandler(d.resolver, d.db)
	ctx := context.Background()

	first, err := handler.HandleAdd(ctx, editor, entities.OwnerPerson, 42, 54)
	require.NoError(t, err)
	assert.True(t, first.Preferred)
	assert.Equal(t, "Residence", first.Label)

	second, err := handler.HandleAdd(ctx, editor, entities.OwnerPerson, 42, 54)
	require.NoError(t, err)
	assert.False(t, second.Preferred)

	views, err := handler.HandleList(ctx, entities.OwnerPerson, 42)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, first.ID, views[0].ID)

	require.NoError(t, handler.HandleDelete(ctx, editor, first.ID, 0))
	views, err = handler.HandleList(ctx, entities.OwnerPerson, 42)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Preferred)

	repaired, err := handler.HandleRepair(ctx, editor, entities.OwnerPerson, 42, 54)
	require.NoError(t, err)
	require.NotNil(t, repaired)
	assert.Equal(t, second.ID, repaired.ID)

	none, err := handler.HandleRepair(ctx, editor, entities.OwnerPerson, 42, entities.SubtypeBurial)
	require.NoError(t, err)
	assert.Nil(t, none)
}
