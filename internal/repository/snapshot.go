package repository

import "context"

// Snapshot writes a consistent point-in-time copy of the whole database to
// path. The write mutex is held for the duration, so concurrent writers wait
// out the snapshot; readers are unaffected.
func (s *Store) Snapshot(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, path)
	return err
}
