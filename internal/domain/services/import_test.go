package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ersonp/lineage-core/internal/domain/entities"
	"github.com/ersonp/lineage-core/internal/infrastructure/parsers"
)

func TestImportService_Import(t *testing.T) {
	svc, db := newTestResolver(t)
	importer := NewImportService(svc, zap.NewNop())

	rows := []parsers.RawFact{
		{OwnerKind: "person", OwnerID: 42, FactType: "Birth", Date: entities.Text("1850"), Place: entities.Text("Boston, MA"), Source: "1850 Census", Detail: "p. 4", LineNum: 2},
		{OwnerKind: "person", OwnerID: 42, FactType: "6", Notes: entities.Text("A farmer."), LineNum: 3},
		{OwnerKind: "person", OwnerID: 43, FactType: "Individual Event", Subtype: "Residence", Date: entities.Text("1880"), LineNum: 4},
	}

	result, err := importer.Import(context.Background(), editor, rows, ImportOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 1, result.Cited)

	births := db.EventsFor(entities.OwnerPerson, 42, entities.SubtypeBirth)
	require.Len(t, births, 1)
	assert.Equal(t, "1850", births[0].Date)
	assert.True(t, births[0].Preferred)
	require.Len(t, db.Citations, 1)
	assert.Equal(t, entities.FactIndividualEvent, db.Citations[0].Type)
	assert.Equal(t, births[0].ID, db.Citations[0].RecordID)

	rec, err := db.Load(context.Background(), entities.OwnerPerson, 42)
	require.NoError(t, err)
	assert.Equal(t, "A farmer.", rec.(*entities.Person).Notes)

	assert.Len(t, db.EventsFor(entities.OwnerPerson, 43, entities.EventSubtype(54)), 1)
}

func TestImportService_ValidationErrors(t *testing.T) {
	svc, db := newTestResolver(t)
	importer := NewImportService(svc, nil)

	rows := []parsers.RawFact{
		{OwnerKind: "household", OwnerID: 42, FactType: "Birth", Date: entities.Text("1850")},
		{OwnerKind: "person", FactType: "Birth", Date: entities.Text("1850")},
		{OwnerKind: "person", OwnerID: 42, FactType: "Wedding", Date: entities.Text("1850")},
		{OwnerKind: "person", OwnerID: 42, FactType: "Marriage", Date: entities.Text("1850")},
		{OwnerKind: "person", OwnerID: 42, FactType: "30", Subtype: "jousting", Date: entities.Text("1850")},
		{OwnerKind: "person", OwnerID: 42, FactType: "Death"},
	}

	result, err := importer.Import(context.Background(), editor, rows, ImportOptions{})
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	require.Len(t, result.Errors, 6)

	fields := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"owner_kind", "owner_id", "fact_type", "fact_type", "subtype", ""}, fields)
	assert.Equal(t, "line 1: invalid owner_kind \"household\" (valid: [person family child name todo])", result.Errors[0].Error())
	assert.Empty(t, db.Events)
}

func TestImportService_RowFailuresDoNotStopImport(t *testing.T) {
	svc, db := newTestResolver(t)
	importer := NewImportService(svc, zap.NewNop())

	rows := []parsers.RawFact{
		{OwnerKind: "person", OwnerID: 999, FactType: "Birth", Date: entities.Text("1850"), LineNum: 2},
		{OwnerKind: "person", OwnerID: 42, FactType: "Death", Date: entities.Text("1901"), LineNum: 3},
	}

	result, err := importer.Import(context.Background(), editor, rows, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Line)
	assert.Len(t, db.EventsFor(entities.OwnerPerson, 42, entities.SubtypeDeath), 1)
}

func TestImportService_DryRun(t *testing.T) {
	svc, db := newTestResolver(t)
	importer := NewImportService(svc, zap.NewNop())

	rows := []parsers.RawFact{
		{OwnerKind: "person", OwnerID: 42, FactType: "Birth", Date: entities.Text("1850"), Source: "Bible"},
	}

	result, err := importer.Import(context.Background(), editor, rows, ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Cited)
	assert.Empty(t, db.Events)
	assert.Empty(t, db.Citations)
	assert.Empty(t, db.Audit)
}

func TestImportService_Unauthorized(t *testing.T) {
	svc, db := newTestResolver(t)
	importer := NewImportService(svc, zap.NewNop())

	rows := []parsers.RawFact{
		{OwnerKind: "person", OwnerID: 42, FactType: "6", Notes: entities.Text("x")},
	}

	result, err := importer.Import(context.Background(), entities.UserContext{}, rows, ImportOptions{})
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, entities.ErrOwnershipViolation.Error())
	assert.Zero(t, db.SaveCalls)
}

func TestImportService_Canceled(t *testing.T) {
	svc, _ := newTestResolver(t)
	importer := NewImportService(svc, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := importer.Import(ctx, editor, []parsers.RawFact{
		{OwnerKind: "person", OwnerID: 42, FactType: "6", Notes: entities.Text("x")},
	}, ImportOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
