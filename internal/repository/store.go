package repository

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/thingbox/thingbox-go/internal/crypto"
)

var (
	ErrCiphertext       = errors.New("ciphertext does not decrypt under the server key")
	ErrNoOpenBatch      = errors.New("no such open batch for this admin")
	ErrItemNotFound     = errors.New("item not found")
	ErrTemplateExists   = errors.New("template id already exists")
	ErrTemplateNotFound = errors.New("template not found")
)

// Decrypter validates sealed payloads at ingestion time.
type Decrypter interface {
	Decrypt(ciphertextB64 string) ([]byte, error)
}

// Store is the persistent store for admins, templates, batches and items.
//
// Every mutating operation runs inside a transaction while holding the
// store-wide write mutex, so a logical operation (ownership check plus
// insert, say) is one atomic unit and readers never observe partial writes.
// Read paths do not take the mutex.
type Store struct {
	db    *sql.DB
	dec   Decrypter
	idLen int
	mu    sync.Mutex
}

const schema = `
CREATE TABLE IF NOT EXISTS admins (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	identity_type TEXT NOT NULL,
	identity_id TEXT NOT NULL,
	active BOOLEAN NOT NULL,
	editor BOOLEAN NOT NULL DEFAULT FALSE,
	UNIQUE (identity_type, identity_id)
);

CREATE TABLE IF NOT EXISTS templates (
	id TEXT NOT NULL PRIMARY KEY,
	kind TEXT NOT NULL DEFAULT 'item',
	body TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS batches (
	id TEXT NOT NULL PRIMARY KEY,
	admin_id INTEGER NOT NULL,
	created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	closed TIMESTAMP,
	FOREIGN KEY (admin_id) REFERENCES admins (id)
);

CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id TEXT NOT NULL,
	target_type TEXT NOT NULL,
	target_id TEXT NOT NULL,
	category TEXT NOT NULL,
	data TEXT NOT NULL,
	template_id TEXT NOT NULL,
	created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	archived BOOLEAN NOT NULL DEFAULT FALSE,
	FOREIGN KEY (batch_id) REFERENCES batches (id)
);

CREATE INDEX IF NOT EXISTS items_by_target ON items (target_type, target_id, category);
`

// NewStore wires a Store over an open database and ensures the schema.
// dec may be nil for tooling that never ingests items; idLen is the entropy
// in bytes of generated batch ids.
//
// There is intentionally no foreign key from items.template_id to templates:
// template existence is validated at render time, not write time, so batch
// imports and template creation can happen in either order.
func NewStore(db *sql.DB, dec Decrypter, idLen int) (*Store, error) {
	s := &Store{db: db, dec: dec, idLen: idLen}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return s, nil
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error or panic. Callers must hold the write mutex.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(tx)
	return err
}

// generateID returns a fresh unguessable batch id.
func (s *Store) generateID() string {
	return crypto.NewToken(s.idLen)
}
