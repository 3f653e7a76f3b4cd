// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

// Package fs stores every member as a plain file inside one directory.
package fs

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/ssbc/downfile/internal/persist"
)

type Saver struct {
	base string
}

var _ persist.Saver = (*Saver)(nil)

// New creates base if needed and returns a Saver rooted there.
func New(base string) (*Saver, error) {
	if err := os.MkdirAll(base, 0700); err != nil {
		return nil, errors.Wrap(err, "persist/fs: failed to create base directory")
	}
	return &Saver{base: base}, nil
}

func (s Saver) path(key persist.Key) (string, error) {
	name := string(key)
	if name == "" || name != filepath.Base(name) {
		return "", errors.Errorf("persist/fs: invalid member name %q", name)
	}
	return filepath.Join(s.base, name), nil
}

func (s Saver) Put(key persist.Key, r io.Reader) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			return errors.Wrapf(persist.ErrExists, "persist/fs: %s", key)
		}
		return errors.Wrap(err, "persist/fs: failed to create member file")
	}

	if _, err = io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return errors.Wrapf(err, "persist/fs: failed to write member %s", key)
	}
	return f.Close()
}

func (s Saver) Get(key persist.Key, w io.Writer) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return persist.ErrNotFound
		}
		return errors.Wrapf(err, "persist/fs: failed to open member %s", key)
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return errors.Wrapf(err, "persist/fs: failed to read member %s", key)
}

func (s Saver) List() ([]persist.Key, error) {
	ents, err := os.ReadDir(s.base)
	if err != nil {
		return nil, errors.Wrap(err, "persist/fs: failed to read base directory")
	}

	var keys []persist.Key
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		keys = append(keys, persist.Key(e.Name()))
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, nil
}

func (Saver) Close() error { return nil }
