package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

// CanEdit reports whether the user may modify records. Anonymous users
// never may. While no editor is registered every signed-on user may.
func (r *Repository) CanEdit(ctx context.Context, user entities.UserContext, _ entities.Record) (bool, error) {
	if user.IsAnonymous() {
		return false, nil
	}

	var canEdit int
	err := r.q.QueryRowContext(ctx, `SELECT can_edit FROM editors WHERE user_name = ?`, user.UserName).Scan(&canEdit)
	if err == nil {
		return canEdit != 0, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("checking editor %s: %w", user.UserName, err)
	}

	var count int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM editors`).Scan(&count); err != nil {
		return false, fmt.Errorf("counting editors: %w", err)
	}
	return count == 0, nil
}

// SetEditor registers a user and whether they may edit.
func (r *Repository) SetEditor(ctx context.Context, userName string, canEdit bool) error {
	if userName == "" {
		return errors.New("user name is required")
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO editors (user_name, can_edit) VALUES (?, ?)
		ON CONFLICT(user_name) DO UPDATE SET can_edit = excluded.can_edit`,
		userName, boolInt(canEdit))
	if err != nil {
		return fmt.Errorf("setting editor: %w", err)
	}
	return nil
}
