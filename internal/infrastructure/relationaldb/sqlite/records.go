package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

// Load loads the record of the given kind and ID. It returns (nil, nil)
// when the record does not exist.
func (r *Repository) Load(ctx context.Context, kind entities.OwnerKind, id int64) (entities.Record, error) {
	var (
		rec entities.Record
		err error
	)
	switch kind {
	case entities.OwnerPerson:
		p := &entities.Person{}
		err = r.q.QueryRowContext(ctx, `
			SELECT id, given_name, surname, gender, name_note, notes, research_notes, medical, death_cause
			FROM persons WHERE id = ?`, id).
			Scan(&p.ID, &p.GivenName, &p.Surname, &p.Gender, &p.NameNote, &p.Notes, &p.References, &p.Medical, &p.DeathCause)
		rec = p
	case entities.OwnerFamily:
		f := &entities.Family{}
		var notMarried, noChildren int
		err = r.q.QueryRowContext(ctx, `
			SELECT id, husband_id, wife_id, marriage_date, marriage_location, marriage_note, notes,
				seal_date, seal_temple, seal_note, not_married, no_children, marriage_end_date
			FROM families WHERE id = ?`, id).
			Scan(&f.ID, &f.HusbandID, &f.WifeID, &f.MarriageDate, &f.MarriageLocation, &f.MarriageNote, &f.Notes,
				&f.SealDate, &f.SealTemple, &f.SealNote, &notMarried, &noChildren, &f.MarriageEndDate)
		f.NotMarried = notMarried != 0
		f.NoChildren = noChildren != 0
		rec = f
	case entities.OwnerChild:
		c := &entities.Child{}
		err = r.q.QueryRowContext(ctx, `
			SELECT id, person_id, family_id, status, father_relation, mother_relation,
				par_seal_date, par_seal_temple, par_seal_note
			FROM children WHERE id = ?`, id).
			Scan(&c.ID, &c.PersonID, &c.FamilyID, &c.Status, &c.FatherRelation, &c.MotherRelation,
				&c.ParSealDate, &c.ParSealTemple, &c.ParSealNote)
		rec = c
	case entities.OwnerName:
		n := &entities.Name{}
		err = r.q.QueryRowContext(ctx, `
			SELECT id, person_id, given_name, surname, aka_note
			FROM names WHERE id = ?`, id).
			Scan(&n.ID, &n.PersonID, &n.GivenName, &n.Surname, &n.AKANote)
		rec = n
	case entities.OwnerToDo:
		td := &entities.ToDo{}
		err = r.q.QueryRowContext(ctx, `
			SELECT id, person_id, name, opened_date, address_id, description
			FROM todos WHERE id = ?`, id).
			Scan(&td.ID, &td.PersonID, &td.Name, &td.OpenedDate, &td.AddressID, &td.Description)
		rec = td
	default:
		return nil, fmt.Errorf("loading %q record: %w", kind, entities.ErrUnknownFactType)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s %d: %w", kind, id, err)
	}
	return rec, nil
}

// Save inserts or updates the record. A record with a zero ID is inserted
// and receives the generated ID.
func (r *Repository) Save(ctx context.Context, rec entities.Record) error {
	var (
		query string
		args  []any
	)
	switch v := rec.(type) {
	case *entities.Person:
		query = `
			INSERT INTO persons (id, given_name, surname, gender, name_note, notes, research_notes, medical, death_cause)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				given_name = excluded.given_name, surname = excluded.surname, gender = excluded.gender,
				name_note = excluded.name_note, notes = excluded.notes, research_notes = excluded.research_notes,
				medical = excluded.medical, death_cause = excluded.death_cause`
		args = []any{nullID(v.ID), v.GivenName, v.Surname, v.Gender, v.NameNote, v.Notes, v.References, v.Medical, v.DeathCause}
	case *entities.Family:
		query = `
			INSERT INTO families (id, husband_id, wife_id, marriage_date, marriage_location, marriage_note, notes,
				seal_date, seal_temple, seal_note, not_married, no_children, marriage_end_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				husband_id = excluded.husband_id, wife_id = excluded.wife_id,
				marriage_date = excluded.marriage_date, marriage_location = excluded.marriage_location,
				marriage_note = excluded.marriage_note, notes = excluded.notes,
				seal_date = excluded.seal_date, seal_temple = excluded.seal_temple, seal_note = excluded.seal_note,
				not_married = excluded.not_married, no_children = excluded.no_children,
				marriage_end_date = excluded.marriage_end_date`
		args = []any{nullID(v.ID), v.HusbandID, v.WifeID, v.MarriageDate, v.MarriageLocation, v.MarriageNote, v.Notes,
			v.SealDate, v.SealTemple, v.SealNote, boolInt(v.NotMarried), boolInt(v.NoChildren), v.MarriageEndDate}
	case *entities.Child:
		query = `
			INSERT INTO children (id, person_id, family_id, status, father_relation, mother_relation,
				par_seal_date, par_seal_temple, par_seal_note)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				person_id = excluded.person_id, family_id = excluded.family_id, status = excluded.status,
				father_relation = excluded.father_relation, mother_relation = excluded.mother_relation,
				par_seal_date = excluded.par_seal_date, par_seal_temple = excluded.par_seal_temple,
				par_seal_note = excluded.par_seal_note`
		args = []any{nullID(v.ID), v.PersonID, v.FamilyID, v.Status, v.FatherRelation, v.MotherRelation,
			v.ParSealDate, v.ParSealTemple, v.ParSealNote}
	case *entities.Name:
		query = `
			INSERT INTO names (id, person_id, given_name, surname, aka_note)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				person_id = excluded.person_id, given_name = excluded.given_name,
				surname = excluded.surname, aka_note = excluded.aka_note`
		args = []any{nullID(v.ID), v.PersonID, v.GivenName, v.Surname, v.AKANote}
	case *entities.ToDo:
		query = `
			INSERT INTO todos (id, person_id, name, opened_date, address_id, description)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				person_id = excluded.person_id, name = excluded.name, opened_date = excluded.opened_date,
				address_id = excluded.address_id, description = excluded.description`
		args = []any{nullID(v.ID), v.PersonID, v.Name, v.OpenedDate, v.AddressID, v.Description}
	default:
		return fmt.Errorf("saving %T: %w", rec, entities.ErrUnknownFactType)
	}

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("saving %s %d: %w", rec.Kind(), rec.RecordID(), err)
	}
	if rec.RecordID() != 0 {
		return nil
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading %s id: %w", rec.Kind(), err)
	}
	setRecordID(rec, id)
	return nil
}

// nullID lets SQLite assign the ID of a new row.
func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func setRecordID(rec entities.Record, id int64) {
	switch v := rec.(type) {
	case *entities.Person:
		v.ID = id
	case *entities.Family:
		v.ID = id
	case *entities.Child:
		v.ID = id
	case *entities.Name:
		v.ID = id
	case *entities.ToDo:
		v.ID = id
	}
}
