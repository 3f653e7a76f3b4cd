// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

// Package mkv keeps archive members in a single modernc.org/kv database file.
package mkv

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"modernc.org/kv"

	"github.com/ssbc/downfile/internal/persist"
)

type KVSaver struct {
	db *kv.DB
}

var _ persist.Saver = (*KVSaver)(nil)

// New opens the database file at path. It is created if it does not exist.
func New(path string) (*KVSaver, error) {
	var (
		db  *kv.DB
		err error
	)
	switch _, statErr := os.Stat(path); {
	case os.IsNotExist(statErr):
		db, err = kv.Create(path, &kv.Options{})
	case statErr != nil:
		return nil, errors.Wrap(statErr, "persist/mkv: failed to stat database")
	default:
		db, err = kv.Open(path, &kv.Options{})
	}
	if err != nil {
		return nil, errors.Wrapf(err, "persist/mkv: failed to open %s", path)
	}
	return &KVSaver{db: db}, nil
}

func (s *KVSaver) Put(key persist.Key, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrapf(err, "persist/mkv: failed to buffer member %s", key)
	}

	_, _, err = s.db.Put(nil, []byte(key), func(k, old []byte) ([]byte, bool, error) {
		if old != nil {
			return nil, false, errors.Wrapf(persist.ErrExists, "persist/mkv: %s", key)
		}
		return data, true, nil
	})
	return err
}

func (s *KVSaver) Get(key persist.Key, w io.Writer) error {
	data, err := s.db.Get(nil, []byte(key))
	if err != nil {
		return errors.Wrapf(err, "persist/mkv: failed to get member %s", key)
	}
	if data == nil {
		return persist.ErrNotFound
	}
	_, err = w.Write(data)
	return err
}

// List returns the member names in key order.
func (s *KVSaver) List() ([]persist.Key, error) {
	var keys []persist.Key
	iter, err := s.db.SeekFirst()
	if err == io.EOF {
		return keys, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "persist/mkv: failed to seek")
	}
	for {
		k, _, err := iter.Next()
		if err == io.EOF {
			return keys, nil
		} else if err != nil {
			return nil, errors.Wrap(err, "persist/mkv: failed to iterate")
		}
		keys = append(keys, persist.Key(k))
	}
}

func (s *KVSaver) Close() error {
	return s.db.Close()
}
