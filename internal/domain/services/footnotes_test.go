package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ersonp/lineage-core/internal/domain/entities"
	"github.com/ersonp/lineage-core/internal/domain/mocks"
	"github.com/ersonp/lineage-core/internal/infrastructure/metrics"
)

func TestFootnoteRegistry_Stability(t *testing.T) {
	r := NewFootnoteRegistry()
	key := entities.SourceCitationKey(7, "p.12")
	payload := entities.SourceCitation{Citation: entities.Citation{SourceID: 7, Detail: "p.12"}}

	for i := 0; i < 3; i++ {
		assert.Equal(t, 1, r.Register(key, payload))
	}
	other := entities.SourceCitationKey(8, "")
	assert.Equal(t, 2, r.Register(other, entities.FreeTextNote{Body: "note"}))
	assert.Equal(t, 1, r.Register(key, payload))
	assert.Equal(t, 2, r.Register(other, entities.FreeTextNote{Body: "replaced"}))

	rendered := r.Render()
	require.Len(t, rendered, 2)
	assert.Equal(t, 1, rendered[0].Number)
	assert.Equal(t, key, rendered[0].Key)
	assert.Equal(t, 2, rendered[1].Number)
	assert.Equal(t, "note", rendered[1].Text())
}

func TestFootnoteRegistry_FirstAppearanceOrder(t *testing.T) {
	r := NewFootnoteRegistry()
	a := entities.SourceCitationKey(1, "a")
	b := entities.SourceCitationKey(2, "b")

	assert.Equal(t, 1, r.Register(b, entities.FreeTextNote{Body: "b"}))
	assert.Equal(t, 2, r.Register(a, entities.FreeTextNote{Body: "a"}))
	assert.Equal(t, 1, r.Register(b, entities.FreeTextNote{Body: "b"}))

	rendered := r.Render()
	require.Len(t, rendered, 2)
	assert.Equal(t, b, rendered[0].Key)
	assert.Equal(t, a, rendered[1].Key)
}

func TestFootnoteRegistry_FreshPerRender(t *testing.T) {
	first := NewRenderContext()
	second := NewRenderContext()
	key := entities.SourceCitationKey(3, "vol. 2")

	first.Footnotes.Register(entities.SourceCitationKey(1, ""), entities.FreeTextNote{})
	assert.Equal(t, 2, first.Footnotes.Register(key, entities.FreeTextNote{}))
	assert.Equal(t, 1, second.Footnotes.Register(key, entities.FreeTextNote{}))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestPlaceTable_Anchors(t *testing.T) {
	pt := NewPlaceTable()

	a := pt.Show(entities.DisplayRef{ID: 12, Kind: entities.PlaceLocation, Name: "Boston"})
	b := pt.Show(entities.DisplayRef{ID: 5, Kind: entities.PlaceTemple, Name: "Logan"})
	c := pt.Show(entities.DisplayRef{ID: 12, Kind: entities.PlaceLocation, Name: "Boston"})
	d := pt.Show(entities.DisplayRef{ID: 9, Kind: entities.PlaceAddress, Name: "1 Elm St"})

	assert.Equal(t, "showLoc1_12", a.AnchorID)
	assert.Equal(t, "showTpl2_5", b.AnchorID)
	assert.Equal(t, "showLoc3_12", c.AnchorID)
	assert.Equal(t, "showAdr4_9", d.AnchorID)

	places := pt.Places()
	require.Len(t, places, 3)
	assert.Equal(t, "showLoc1_12", places[0].AnchorID)
	assert.Equal(t, "Logan", places[1].Name)
}

// Two citations of source 3 with detail "vol. 2" on different facts of
// one page share footnote 1; detail "vol. 3" gets footnote 2.
func TestCitationService_ScenarioB(t *testing.T) {
	db := mocks.NewRelationalDB()
	db.Put(&entities.Person{ID: 42, GivenName: "John", Surname: "Smith"})
	ctx := context.Background()
	m := metrics.New(prometheus.NewRegistry())
	resolver := NewResolverService(db, zap.NewNop(), WithMetrics(m))
	svc := NewCitationService(db, m, zap.NewNop())

	birth, err := resolver.Resolve(ctx, entities.FactBirth, 42, nil)
	require.NoError(t, err)
	notes, err := resolver.Resolve(ctx, entities.FactGeneralNotes, 42, nil)
	require.NoError(t, err)

	for _, c := range []entities.Citation{
		{SourceID: 3, SourceName: "Census", Detail: "vol. 2", Type: entities.FactIndividualEvent, RecordID: birth.Event.ID},
		{SourceID: 3, SourceName: "Census", Detail: "vol. 2", Type: entities.FactGeneralNotes, RecordID: 42},
		{SourceID: 3, SourceName: "Census", Detail: "vol. 3", Type: entities.FactGeneralNotes, RecordID: 42, Order: 1},
	} {
		c := c
		require.NoError(t, db.SaveCitation(ctx, &c))
	}

	rc := NewRenderContext()
	birthNotes, err := svc.Annotate(ctx, rc, birth)
	require.NoError(t, err)
	notesNotes, err := svc.Annotate(ctx, rc, notes)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, birthNotes)
	assert.Equal(t, []int{1, 2}, notesNotes)
	assert.Equal(t, "¹", entities.Superscript(birthNotes...))
	assert.Equal(t, "¹,²", entities.Superscript(notesNotes...))

	table := rc.Footnotes.Render()
	require.Len(t, table, 2)
	assert.Equal(t, "Census: vol. 2", table[0].Text())
	assert.Equal(t, "Census: vol. 3", table[1].Text())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FootnotesAssigned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsLazilyCreated.WithLabelValues("Birth")))
}

func TestCitationService_UnsavedFactHasNoCitations(t *testing.T) {
	db := mocks.NewRelationalDB()
	db.Citations = []entities.Citation{{SourceID: 1, Type: entities.FactIndividualEvent, RecordID: 0}}
	svc := NewCitationService(db, nil, nil)

	numbers, err := svc.Annotate(context.Background(), NewRenderContext(), &entities.FactHandle{CitationType: entities.FactIndividualEvent})
	require.NoError(t, err)
	assert.Empty(t, numbers)
}

func TestCitationService_AnnotateNotes(t *testing.T) {
	svc := NewCitationService(mocks.NewRelationalDB(), nil, nil)
	rc := NewRenderContext()

	h := &entities.FactHandle{FactType: entities.FactMarriage, CitationType: entities.FactMarriage, CitationRecordID: 7, Notes: "At the parish church."}
	assert.Equal(t, 1, svc.AnnotateNotes(rc, h))
	assert.Equal(t, 1, svc.AnnotateNotes(rc, h))
	assert.Zero(t, svc.AnnotateNotes(rc, &entities.FactHandle{}))

	table := rc.Footnotes.Render()
	require.Len(t, table, 1)
	assert.Equal(t, "At the parish church.", table[0].Text())
}
