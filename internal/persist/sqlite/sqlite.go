// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/ssbc/downfile/internal/persist"
)

const schemaVersion1 = `
CREATE TABLE IF NOT EXISTS downfile_members (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	data BLOB
);
PRAGMA user_version = 1;
`

type SqliteSaver struct {
	db *sql.DB
}

var _ persist.Saver = (*SqliteSaver)(nil)

// New opens (or creates) the sqlite database file at path.
func New(path string) (*SqliteSaver, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, errors.Wrap(err, "persist/sqlite: failed to create path location")
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "persist/sqlite: failed to open sqlite file: %s", path)
	}

	var version int
	err = db.QueryRow(`PRAGMA user_version`).Scan(&version)
	if err == sql.ErrNoRows || version == 0 {
		if _, err := db.Exec(schemaVersion1); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "persist/sqlite: failed to init schema v1")
		}
	} else if err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "persist/sqlite: schema version lookup failed %s", path)
	}

	return &SqliteSaver{db: db}, nil
}

func (s SqliteSaver) Close() error {
	return s.db.Close()
}
