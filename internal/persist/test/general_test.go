// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/ssbc/downfile/internal/persist"
	"github.com/ssbc/downfile/internal/persist/badger"
	"github.com/ssbc/downfile/internal/persist/fs"
	"github.com/ssbc/downfile/internal/persist/mkv"
	"github.com/ssbc/downfile/internal/persist/sqlite"
	"github.com/ssbc/downfile/internal/persist/zip"
)

// backend opens a container for the write session and again for reading.
type backend struct {
	create func(string) (persist.Saver, error)
	open   func(string) (persist.Saver, error)
}

func SimpleSaver(b backend) func(*testing.T) {
	return func(t *testing.T) {
		r := require.New(t)
		path := filepath.Join(t.TempDir(), "archive")

		p, err := b.create(path)
		r.NoError(err)

		l, err := p.List()
		r.NoError(err)
		r.Len(l, 0, "%v", l)

		k := persist.Key("0.json")
		testData := []byte(`{"root":"fooo"}`)

		err = p.Put(k, bytes.NewReader(testData))
		r.NoError(err)

		err = p.Put(k, bytes.NewReader([]byte("again")))
		r.True(errors.Is(err, persist.ErrExists), "got %v", err)

		err = p.Put("1.frame", bytes.NewReader([]byte{0, 1, 2, 3}))
		r.NoError(err)

		r.NoError(p.Close())

		p, err = b.open(path)
		r.NoError(err)
		defer p.Close()

		l, err = p.List()
		r.NoError(err)
		r.ElementsMatch([]persist.Key{"0.json", "1.frame"}, l)

		var buf bytes.Buffer
		r.NoError(p.Get(k, &buf))
		r.Equal(testData, buf.Bytes())

		buf.Reset()
		r.NoError(p.Get("1.frame", &buf))
		r.Equal([]byte{0, 1, 2, 3}, buf.Bytes())

		buf.Reset()
		err = p.Get("2.json", &buf)
		r.True(errors.Is(err, persist.ErrNotFound), "got %v", err)
		r.Equal(0, buf.Len())
	}
}

func TestSaver(t *testing.T) {
	t.Run("zip", SimpleSaver(backend{
		create: func(p string) (persist.Saver, error) { return zip.Create(p, zip.Deflate) },
		open:   func(p string) (persist.Saver, error) { return zip.Open(p) },
	}))
	t.Run("zip/zstd", SimpleSaver(backend{
		create: func(p string) (persist.Saver, error) { return zip.Create(p, zip.Zstd) },
		open:   func(p string) (persist.Saver, error) { return zip.Open(p) },
	}))

	dir := func(p string) (persist.Saver, error) { return fs.New(p) }
	t.Run("fs", SimpleSaver(backend{create: dir, open: dir}))

	kv := func(p string) (persist.Saver, error) { return mkv.New(p) }
	t.Run("mkv", SimpleSaver(backend{create: kv, open: kv}))

	sql := func(p string) (persist.Saver, error) { return sqlite.New(p) }
	t.Run("sqlite", SimpleSaver(backend{create: sql, open: sql}))

	bdg := func(p string) (persist.Saver, error) { return badger.New(p) }
	t.Run("badger", SimpleSaver(backend{create: bdg, open: bdg}))
}

func TestZipSessionModes(t *testing.T) {
	r := require.New(t)
	path := filepath.Join(t.TempDir(), "modes.zip")

	w, err := zip.Create(path, zip.Store)
	r.NoError(err)
	r.Error(w.Get("0.json", new(bytes.Buffer)), "write session must not read")
	r.NoError(w.Put("0.json", bytes.NewReader([]byte("{}"))))
	r.NoError(w.Close())

	rd, err := zip.Open(path)
	r.NoError(err)
	defer rd.Close()
	r.Error(rd.Put("1.json", bytes.NewReader(nil)), "read session must not write")
}

func TestFSRejectsPaths(t *testing.T) {
	r := require.New(t)

	s, err := fs.New(t.TempDir())
	r.NoError(err)

	err = s.Put("../escape.json", bytes.NewReader([]byte("{}")))
	r.Error(err)
	err = s.Get("sub/0.json", new(bytes.Buffer))
	r.Error(err)
}
