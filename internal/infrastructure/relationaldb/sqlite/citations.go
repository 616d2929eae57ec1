package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

// FindOrCreateSource returns the ID of the source with the given name,
// creating it when missing.
func (r *Repository) FindOrCreateSource(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("source name is required")
	}
	if _, err := r.q.ExecContext(ctx, `INSERT OR IGNORE INTO sources (name) VALUES (?)`, name); err != nil {
		return 0, fmt.Errorf("inserting source: %w", err)
	}
	var id int64
	if err := r.q.QueryRowContext(ctx, `SELECT id FROM sources WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("finding source: %w", err)
	}
	return id, nil
}

// ListCitations lists citations filed under (typ, recordID) in citation
// order.
func (r *Repository) ListCitations(ctx context.Context, typ entities.FactTypeCode, recordID int64) ([]entities.Citation, error) {
	query := `
		SELECT c.id, c.source_id, s.name, c.detail, c.type, c.record_id, c.sort_order
		FROM citations c
		JOIN sources s ON s.id = c.source_id
		WHERE c.type = ? AND c.record_id = ?
		ORDER BY c.sort_order, c.id
	`
	rows, err := r.q.QueryContext(ctx, query, typ, recordID)
	if err != nil {
		return nil, fmt.Errorf("querying citations: %w", err)
	}
	defer rows.Close()

	var cits []entities.Citation
	for rows.Next() {
		var c entities.Citation
		if err := rows.Scan(&c.ID, &c.SourceID, &c.SourceName, &c.Detail, &c.Type, &c.RecordID, &c.Order); err != nil {
			return nil, fmt.Errorf("scanning citation: %w", err)
		}
		cits = append(cits, c)
	}
	return cits, rows.Err()
}

// CountCitations counts citations filed under (typ, recordID).
func (r *Repository) CountCitations(ctx context.Context, typ entities.FactTypeCode, recordID int64) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM citations WHERE type = ? AND record_id = ?`,
		typ, recordID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting citations: %w", err)
	}
	return count, nil
}

// MoveCitations refiles every citation under (typ, fromID) to (typ, toID).
func (r *Repository) MoveCitations(ctx context.Context, typ entities.FactTypeCode, fromID, toID int64) (int, error) {
	result, err := r.q.ExecContext(ctx, `UPDATE citations SET record_id = ? WHERE type = ? AND record_id = ?`,
		toID, typ, fromID)
	if err != nil {
		return 0, fmt.Errorf("moving citations: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting moved citations: %w", err)
	}
	return int(rows), nil
}

// SaveCitation inserts the citation when its ID is zero and updates it
// otherwise. An inserted citation with a zero Order goes last.
func (r *Repository) SaveCitation(ctx context.Context, c *entities.Citation) error {
	if c.ID != 0 {
		result, err := r.q.ExecContext(ctx, `
			UPDATE citations SET source_id = ?, detail = ?, type = ?, record_id = ?, sort_order = ?
			WHERE id = ?`, c.SourceID, c.Detail, c.Type, c.RecordID, c.Order, c.ID)
		if err != nil {
			return fmt.Errorf("updating citation %d: %w", c.ID, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("citation not found: %d", c.ID)
		}
		return nil
	}

	if c.Order == 0 {
		err := r.q.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(sort_order), 0) + 1 FROM citations WHERE type = ? AND record_id = ?`,
			c.Type, c.RecordID).Scan(&c.Order)
		if err != nil {
			return fmt.Errorf("computing citation order: %w", err)
		}
	}
	result, err := r.q.ExecContext(ctx, `
		INSERT INTO citations (source_id, detail, type, record_id, sort_order) VALUES (?, ?, ?, ?, ?)`,
		c.SourceID, c.Detail, c.Type, c.RecordID, c.Order)
	if err != nil {
		return fmt.Errorf("inserting citation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading citation id: %w", err)
	}
	c.ID = id
	return nil
}
