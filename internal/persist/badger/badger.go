// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package badger

import (
	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"

	"github.com/ssbc/downfile/internal/persist"
)

type BadgerSaver struct {
	db *badger.DB
}

var _ persist.Saver = (*BadgerSaver)(nil)

func (sl *BadgerSaver) Close() error {
	return sl.db.Close()
}

// New opens (or creates) the badger database in the directory path.
func New(path string) (*BadgerSaver, error) {
	var bs BadgerSaver

	var err error
	bs.db, err = badger.Open(BadgerOpts(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create KV %s", path)
	}

	return &bs, nil
}
