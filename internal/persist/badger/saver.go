// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package badger

import (
	"io"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"

	"github.com/ssbc/downfile/internal/persist"
)

func (s BadgerSaver) Put(key persist.Key, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrapf(err, "persist/badger: failed to buffer member %s", key)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if err == nil {
			return errors.Wrapf(persist.ErrExists, "persist/badger: %s", key)
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set([]byte(key), data)
	})
}

func (s BadgerSaver) Get(key persist.Key, w io.Writer) error {
	return s.db.View(func(txn *badger.Txn) error {
		it, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return persist.ErrNotFound
		}
		if err != nil {
			return errors.Wrapf(err, "persist/badger: failed to get member %s", key)
		}
		return it.Value(func(v []byte) error {
			_, err := w.Write(v)
			return err
		})
	})
}

func (s BadgerSaver) List() ([]persist.Key, error) {
	var keys []persist.Key

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			k := iter.Item().KeyCopy(nil)
			keys = append(keys, persist.Key(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
