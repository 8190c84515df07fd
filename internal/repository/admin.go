package repository

import (
	"context"
	"database/sql"
	"errors"
)

// IsAdmin reports whether the external identity is an active admin and, if
// so, returns its internal id.
func (s *Store) IsAdmin(ctx context.Context, identityType, identityID string) (int64, bool, error) {
	query := `SELECT id FROM admins WHERE identity_type = ? AND identity_id = ? AND active = 1`

	var id int64
	err := s.db.QueryRowContext(ctx, query, identityType, identityID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// IsEditor reports whether the external identity is an active admin carrying
// the editor flag.
func (s *Store) IsEditor(ctx context.Context, identityType, identityID string) (int64, bool, error) {
	query := `SELECT id FROM admins WHERE identity_type = ? AND identity_id = ? AND active = 1 AND editor = 1`

	var id int64
	err := s.db.QueryRowContext(ctx, query, identityType, identityID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// GrantAdmin activates (or creates and activates) the admin row for an
// external identity. Granting an already-active admin is a no-op, not an
// error; the editor flag is left untouched.
func (s *Store) GrantAdmin(ctx context.Context, identityType, identityID string) error {
	return s.setActive(ctx, identityType, identityID, true)
}

// RevokeAdmin deactivates the admin row for an external identity. The row is
// kept so the internal id stays stable if the identity is re-granted later.
func (s *Store) RevokeAdmin(ctx context.Context, identityType, identityID string) error {
	return s.setActive(ctx, identityType, identityID, false)
}

func (s *Store) setActive(ctx context.Context, identityType, identityID string, active bool) error {
	query := `
		INSERT INTO admins (identity_type, identity_id, active) VALUES (?, ?, ?)
		ON CONFLICT (identity_type, identity_id) DO UPDATE SET active = excluded.active`

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, query, identityType, identityID, active)
	return err
}

// SetEditor toggles the editor flag, creating an inactive row if the
// identity was never granted admin.
func (s *Store) SetEditor(ctx context.Context, identityType, identityID string, editor bool) error {
	query := `
		INSERT INTO admins (identity_type, identity_id, active, editor) VALUES (?, ?, 0, ?)
		ON CONFLICT (identity_type, identity_id) DO UPDATE SET editor = excluded.editor`

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, query, identityType, identityID, editor)
	return err
}
