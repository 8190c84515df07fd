package repository

import (
	"context"
	"database/sql"

	"github.com/thingbox/thingbox-go/internal/model"
)

// AddItem persists one encrypted item into an open batch owned by adminID.
//
// The ciphertext must decrypt under the server key or nothing is written
// (ErrCiphertext): garbage is rejected at ingestion, not discovered at read
// time. The ownership check and the insert share one locked transaction so a
// racing close cannot slip an item into a closed batch.
func (s *Store) AddItem(ctx context.Context, adminID int64, batchID, targetType, targetID, category, data, templateID string) error {
	if s.dec == nil {
		return ErrCiphertext
	}
	if _, err := s.dec.Decrypt(data); err != nil {
		return ErrCiphertext
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var n int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM batches WHERE id = ? AND admin_id = ? AND closed IS NULL`,
			batchID, adminID).Scan(&n)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNoOpenBatch
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO items (batch_id, target_type, target_id, category, data, template_id)
			VALUES (?, ?, ?, ?, ?, ?)`,
			batchID, targetType, targetID, category, data, templateID)
		return err
	})
}

// GetItems lists all non-archived items for a target, newest created first.
// Data stays encrypted; decryption is the rendering pipeline's job so
// summary-only callers never touch crypto policy.
func (s *Store) GetItems(ctx context.Context, targetType, targetID string) ([]model.Item, error) {
	query := `
		SELECT id, category, data, template_id FROM items
		WHERE target_type = ? AND target_id = ? AND archived = 0
		ORDER BY created DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, targetType, targetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.Category, &it.Data, &it.TemplateID); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ArchiveItem retires an item from reads. Items are never physically
// deleted.
func (s *Store) ArchiveItem(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE items SET archived = 1 WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrItemNotFound
		}
		return nil
	})
}
