// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package downfile

import (
	"os"

	"github.com/pkg/errors"

	"github.com/ssbc/downfile/internal/persist"
	"github.com/ssbc/downfile/internal/persist/badger"
	"github.com/ssbc/downfile/internal/persist/fs"
	"github.com/ssbc/downfile/internal/persist/mkv"
	"github.com/ssbc/downfile/internal/persist/sqlite"
	"github.com/ssbc/downfile/internal/persist/zip"
)

// Backend names a container format for the archive members.
type Backend string

const (
	// BackendZip is a zip file, the interchange format.
	BackendZip Backend = "zip"
	// BackendDir keeps every member as a file in a directory.
	BackendDir Backend = "dir"
	// BackendKV is a single modernc.org/kv database file.
	BackendKV Backend = "kv"
	// BackendSQLite is a single sqlite database file.
	BackendSQLite Backend = "sqlite"
	// BackendBadger is a badger database directory.
	BackendBadger Backend = "badger"
)

// Backends lists every supported backend.
var Backends = []Backend{BackendZip, BackendDir, BackendKV, BackendSQLite, BackendBadger}

// create opens a fresh container at path for a write session.
// Only zip archives may replace an existing file.
func (o options) create(path string) (persist.Saver, error) {
	if o.backend != BackendZip {
		if _, err := os.Stat(path); err == nil {
			return nil, errors.Errorf("%s already exists", path)
		}
	}

	switch o.backend {
	case BackendZip:
		return zip.Create(path, o.compression.method())
	case BackendDir:
		return fs.New(path)
	case BackendKV:
		return mkv.New(path)
	case BackendSQLite:
		return sqlite.New(path)
	case BackendBadger:
		return badger.New(path)
	}
	return nil, errors.Errorf("unknown backend %q", o.backend)
}

// open opens an existing container for a read session.
func (o options) open(path string) (persist.Saver, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(err, "downfile: failed to open archive")
	}

	var (
		s   persist.Saver
		err error
	)
	switch o.backend {
	case BackendZip:
		s, err = zip.Open(path)
	case BackendDir:
		s, err = fs.New(path)
	case BackendKV:
		s, err = mkv.New(path)
	case BackendSQLite:
		s, err = sqlite.New(path)
	case BackendBadger:
		s, err = badger.New(path)
	default:
		err = errors.Errorf("unknown backend %q", o.backend)
	}
	return s, errors.Wrap(err, "downfile: failed to open archive")
}
