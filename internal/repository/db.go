package repository

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// Open opens (creating if necessary) the sqlite database file. WAL mode lets
// readers run concurrently with the single writer; the busy timeout covers
// the brief windows where the engine itself serializes.
func Open(path string) (*sql.DB, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
