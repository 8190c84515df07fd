package repository

import (
	"context"
	"database/sql"
)

// CreateOrContinueBatch returns the id of an open batch owned by adminID.
// With an empty batchID it inserts a fresh open batch under a generated
// unguessable id. With a caller-supplied id it verifies the batch exists,
// belongs to adminID and is still open, returning ErrNoOpenBatch otherwise.
func (s *Store) CreateOrContinueBatch(ctx context.Context, adminID int64, batchID string) (string, error) {
	if batchID == "" {
		id := s.generateID()

		s.mu.Lock()
		defer s.mu.Unlock()
		err := s.withTx(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `INSERT INTO batches (id, admin_id) VALUES (?, ?)`, id, adminID)
			return err
		})
		if err != nil {
			return "", err
		}
		return id, nil
	}

	query := `SELECT COUNT(*) FROM batches WHERE id = ? AND admin_id = ? AND closed IS NULL`

	var n int
	if err := s.db.QueryRowContext(ctx, query, batchID, adminID).Scan(&n); err != nil {
		return "", err
	}
	if n == 0 {
		return "", ErrNoOpenBatch
	}
	return batchID, nil
}

// CloseBatch stamps the batch closed. Closed is terminal: the update only
// touches still-open rows, so a second close is a harmless no-op.
func (s *Store) CloseBatch(ctx context.Context, batchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE batches SET closed = CURRENT_TIMESTAMP WHERE id = ? AND closed IS NULL`, batchID)
		return err
	})
}
