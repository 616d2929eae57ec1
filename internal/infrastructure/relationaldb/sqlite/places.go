package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

// ResolvePlace returns the display form of a location, temple or address.
// It returns (nil, nil) when no such place exists.
func (r *Repository) ResolvePlace(ctx context.Context, id int64, kind entities.PlaceKind) (*entities.DisplayRef, error) {
	ref := &entities.DisplayRef{Kind: kind}
	err := r.q.QueryRowContext(ctx, `SELECT id, name FROM places WHERE id = ? AND kind = ?`, id, string(kind)).
		Scan(&ref.ID, &ref.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving %s %d: %w", kind, id, err)
	}
	return ref, nil
}

// FindOrCreatePlace returns the ID of the place with the given name,
// creating it when missing. Names match case-insensitively.
func (r *Repository) FindOrCreatePlace(ctx context.Context, kind entities.PlaceKind, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("place name is required")
	}
	if !kind.IsValid() {
		return 0, fmt.Errorf("unknown place kind %q", kind)
	}

	if _, err := r.q.ExecContext(ctx, `INSERT OR IGNORE INTO places (kind, name) VALUES (?, ?)`,
		string(kind), name); err != nil {
		return 0, fmt.Errorf("inserting %s: %w", kind, err)
	}

	var id int64
	if err := r.q.QueryRowContext(ctx, `SELECT id FROM places WHERE kind = ? AND name = ? COLLATE NOCASE`,
		string(kind), name).Scan(&id); err != nil {
		return 0, fmt.Errorf("finding %s: %w", kind, err)
	}
	return id, nil
}

// SetTempleCode records the short code of a temple.
func (r *Repository) SetTempleCode(ctx context.Context, id int64, code string) error {
	result, err := r.q.ExecContext(ctx, `UPDATE places SET code = ? WHERE id = ? AND kind = ?`,
		code, id, string(entities.PlaceTemple))
	if err != nil {
		return fmt.Errorf("setting temple code: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("temple not found: %d", id)
	}
	return nil
}

// ListPlaces lists the stored places of a kind ordered by name.
func (r *Repository) ListPlaces(ctx context.Context, kind entities.PlaceKind) ([]entities.Place, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, kind, name, code FROM places WHERE kind = ? ORDER BY name COLLATE NOCASE`,
		string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying places: %w", err)
	}
	defer rows.Close()

	var places []entities.Place
	for rows.Next() {
		var p entities.Place
		var k string
		if err := rows.Scan(&p.ID, &k, &p.Name, &p.Code); err != nil {
			return nil, fmt.Errorf("scanning place: %w", err)
		}
		p.Kind = entities.PlaceKind(k)
		places = append(places, p)
	}
	return places, rows.Err()
}
