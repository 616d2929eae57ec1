package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

const eventColumns = `id, owner_kind, owner_id, subtype, event_date, place_id, kind, address_id,
	description, notes, sort_order, preferred, created_at, updated_at`

// nextOrderExpr picks the next ordering key of an owner's events.
const nextOrderExpr = `(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM events WHERE owner_kind = ? AND owner_id = ?)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*entities.StandaloneEvent, error) {
	var ev entities.StandaloneEvent
	var ownerKind string
	var preferred int
	if err := row.Scan(
		&ev.ID, &ownerKind, &ev.OwnerID, &ev.Subtype, &ev.Date, &ev.PlaceID, &ev.Kind, &ev.AddressID,
		&ev.Description, &ev.Notes, &ev.Order, &preferred, &ev.CreatedAt, &ev.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ev.OwnerKind = entities.OwnerKind(ownerKind)
	ev.Preferred = preferred != 0
	return &ev, nil
}

// ListEvents lists the owner's events ordered by (Order, ID).
func (r *Repository) ListEvents(ctx context.Context, kind entities.OwnerKind, ownerID int64) ([]entities.StandaloneEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events
		WHERE owner_kind = ? AND owner_id = ?
		ORDER BY sort_order, id`
	rows, err := r.q.QueryContext(ctx, query, string(kind), ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []entities.StandaloneEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

// LoadEvent loads one event by ID. It returns (nil, nil) when the event
// does not exist.
func (r *Repository) LoadEvent(ctx context.Context, id int64) (*entities.StandaloneEvent, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading event %d: %w", id, err)
	}
	return ev, nil
}

// SaveEvent inserts the event when its ID is zero and updates it
// otherwise.
func (r *Repository) SaveEvent(ctx context.Context, ev *entities.StandaloneEvent) error {
	if ev.ID == 0 {
		return r.insertEvent(ctx, ev, false)
	}

	now := timeNow()
	query := `
		UPDATE events SET
			subtype = ?, event_date = ?, place_id = ?, kind = ?, address_id = ?,
			description = ?, notes = ?, sort_order = ?, preferred = ?, updated_at = ?
		WHERE id = ?`
	result, err := r.q.ExecContext(ctx, query,
		ev.Subtype, ev.Date, ev.PlaceID, ev.Kind, ev.AddressID,
		ev.Description, ev.Notes, ev.Order, boolInt(ev.Preferred), now, ev.ID)
	if err != nil {
		return fmt.Errorf("updating event %d: %w", ev.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("event %d not found", ev.ID)
	}
	ev.UpdatedAt = now
	return nil
}

// insertEvent inserts ev. With ignoreConflict a conflicting preferred
// event leaves ev unsaved and reports no error; the caller checks ev.ID.
func (r *Repository) insertEvent(ctx context.Context, ev *entities.StandaloneEvent, ignoreConflict bool) error {
	now := timeNow()
	verb := "INSERT"
	if ignoreConflict {
		verb = "INSERT OR IGNORE"
	}
	args := []any{string(ev.OwnerKind), ev.OwnerID, ev.Subtype, ev.Date, ev.PlaceID, ev.Kind, ev.AddressID,
		ev.Description, ev.Notes}
	orderExpr := "?"
	if ev.Order == 0 {
		orderExpr = nextOrderExpr
		args = append(args, string(ev.OwnerKind), ev.OwnerID)
	} else {
		args = append(args, ev.Order)
	}
	args = append(args, boolInt(ev.Preferred), now, now)

	query := verb + ` INTO events (owner_kind, owner_id, subtype, event_date, place_id, kind, address_id,
			description, notes, sort_order, preferred, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ` + orderExpr + `, ?, ?, ?)`
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading event id: %w", err)
	}

	stored, err := r.LoadEvent(ctx, id)
	if err != nil {
		return err
	}
	*ev = *stored
	return nil
}

// CreatePreferredEvent inserts ev flagged preferred unless the owner
// already has a preferred event of the same subtype. The partial unique
// index on preferred events decides the race between concurrent writers.
func (r *Repository) CreatePreferredEvent(ctx context.Context, ev *entities.StandaloneEvent) (*entities.StandaloneEvent, bool, error) {
	created := *ev
	created.ID = 0
	created.Preferred = true
	if err := r.insertEvent(ctx, &created, true); err != nil {
		return nil, false, err
	}
	if created.ID != 0 {
		return &created, true, nil
	}

	row := r.q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events
		WHERE owner_kind = ? AND owner_id = ? AND subtype = ? AND preferred = 1`,
		string(ev.OwnerKind), ev.OwnerID, ev.Subtype)
	existing, err := scanEvent(row)
	if err != nil {
		return nil, false, fmt.Errorf("loading preferred event: %w", err)
	}
	return existing, false, nil
}

// SetPreferredEvent flags eventID preferred and clears the flag on every
// other event of its owner and subtype.
func (r *Repository) SetPreferredEvent(ctx context.Context, eventID int64) error {
	return r.withTx(ctx, func(tx *Repository) error {
		var ownerKind string
		var ownerID int64
		var subtype entities.EventSubtype
		err := tx.q.QueryRowContext(ctx, `SELECT owner_kind, owner_id, subtype FROM events WHERE id = ?`, eventID).
			Scan(&ownerKind, &ownerID, &subtype)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("event %d not found", eventID)
		}
		if err != nil {
			return fmt.Errorf("loading event %d: %w", eventID, err)
		}

		now := timeNow()
		// Clear first so the unique index never sees two preferred rows.
		if _, err := tx.q.ExecContext(ctx, `
			UPDATE events SET preferred = 0, updated_at = ?
			WHERE owner_kind = ? AND owner_id = ? AND subtype = ? AND id != ? AND preferred = 1`,
			now, ownerKind, ownerID, subtype, eventID); err != nil {
			return fmt.Errorf("clearing preferred events: %w", err)
		}
		if _, err := tx.q.ExecContext(ctx, `UPDATE events SET preferred = 1, updated_at = ? WHERE id = ?`,
			now, eventID); err != nil {
			return fmt.Errorf("setting preferred event: %w", err)
		}
		return nil
	})
}

// DeleteEvent deletes an event by ID.
func (r *Repository) DeleteEvent(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("event not found: %d", id)
	}
	return nil
}
