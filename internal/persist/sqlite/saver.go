// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package sqlite

import (
	"database/sql"
	"io"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/ssbc/downfile/internal/persist"
)

func (s SqliteSaver) Put(key persist.Key, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrapf(err, "persist/sqlite/put: failed to buffer member %s", key)
	}

	var cnt int
	err = squirrel.Select("count(*)").From("downfile_members").
		Where(squirrel.Eq{"name": string(key)}).
		RunWith(s.db).QueryRow().Scan(&cnt)
	if err != nil {
		return errors.Wrap(err, "persist/sqlite/put: failed to check for existing member")
	}
	if cnt > 0 {
		return errors.Wrapf(persist.ErrExists, "persist/sqlite/put: %s", key)
	}

	_, err = squirrel.Insert("downfile_members").
		Columns("name", "data").
		Values(string(key), data).
		RunWith(s.db).Exec()
	if err != nil {
		return errors.Wrap(err, "persist/sqlite/put: failed insert new value")
	}
	return nil
}

func (s SqliteSaver) Get(key persist.Key, w io.Writer) error {
	var data []byte
	err := squirrel.Select("data").From("downfile_members").
		Where(squirrel.Eq{"name": string(key)}).
		RunWith(s.db).QueryRow().Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return persist.ErrNotFound
		}
		return errors.Wrapf(err, "persist/sqlite/get(%s): failed to execute query", key)
	}
	_, err = w.Write(data)
	return err
}

func (s SqliteSaver) List() ([]persist.Key, error) {
	var keys []persist.Key
	rows, err := squirrel.Select("name").From("downfile_members").OrderBy("id").
		RunWith(s.db).Query()
	if err != nil {
		return nil, errors.Wrap(err, "persist/sqlite/list: failed to execute rows query")
	}
	defer rows.Close()

	for rows.Next() {
		var k string
		err := rows.Scan(&k)
		if err != nil {
			return nil, errors.Wrap(err, "persist/sqlite/list: failed to scan row result")
		}
		keys = append(keys, persist.Key(k))
	}

	return keys, rows.Err()
}
