package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/thingbox/thingbox-go/internal/model"
)

// GetTemplate returns the body of a template under the given kind.
func (s *Store) GetTemplate(ctx context.Context, id, kind string) (string, error) {
	query := `SELECT body FROM templates WHERE id = ? AND kind = ?`

	var body string
	err := s.db.QueryRowContext(ctx, query, id, kind).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrTemplateNotFound
	}
	if err != nil {
		return "", err
	}
	return body, nil
}

// AddTemplate creates a template. The id namespace spans both kinds, so a
// colliding id under either kind yields ErrTemplateExists.
func (s *Store) AddTemplate(ctx context.Context, id, kind, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM templates WHERE id = ?`, id).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return ErrTemplateExists
		}

		_, err := tx.ExecContext(ctx, `INSERT INTO templates (id, kind, body) VALUES (?, ?, ?)`, id, kind, body)
		return err
	})
}

// UpdateTemplate replaces the body of an existing template. The id must
// already exist under the stated kind; otherwise nothing changes and
// ErrTemplateNotFound is returned.
func (s *Store) UpdateTemplate(ctx context.Context, id, kind, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE templates SET body = ? WHERE id = ? AND kind = ?`, body, id, kind)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrTemplateNotFound
		}
		return nil
	})
}

// GetTemplates lists all templates ordered by (kind, id).
func (s *Store) GetTemplates(ctx context.Context) ([]model.Template, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, kind, body FROM templates ORDER BY kind, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []model.Template
	for rows.Next() {
		var t model.Template
		if err := rows.Scan(&t.ID, &t.Kind, &t.Body); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// GetSiteContent maps the requested ids to site-kind template bodies. Ids
// with no site template are simply absent from the result.
func (s *Store) GetSiteContent(ctx context.Context, ids []string) (map[string]string, error) {
	result := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `SELECT id, body FROM templates WHERE kind = 'site' AND id IN (` + placeholders + `)`

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		result[id] = body
	}
	return result, rows.Err()
}
