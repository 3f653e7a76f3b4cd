// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

// Package archive provides scoped, buffered access to the named members of
// a container. Writes go through a temporary file that is committed into the
// container once the writer is done; reads extract the member into a
// temporary directory first. Temporary resources never outlive the call that
// created them.
package archive

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/dgraph-io/sroar"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.mindeco.de/log"
	"go.mindeco.de/log/level"

	"github.com/ssbc/downfile/internal/persist"
)

// Store wraps a container. It is meant for a single session and is not safe for concurrent use.
type Store struct {
	saver  persist.Saver
	tmpDir string
	log    log.Logger

	touched *sroar.Bitmap
	read    map[string]struct{}
}

type Option func(*Store)

// WithTempDir sets where buffers and extraction directories are created. Defaults to os.TempDir.
func WithTempDir(dir string) Option {
	return func(s *Store) {
		s.tmpDir = dir
	}
}

func WithLogger(l log.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// New returns a Store on top of s. The Store takes ownership of s.
func New(s persist.Saver, opts ...Option) *Store {
	st := &Store{
		saver:   s,
		log:     log.NewNopLogger(),
		touched: sroar.NewBitmap(),
		read:    make(map[string]struct{}),
	}
	for _, o := range opts {
		o(st)
	}
	return st
}

// Create runs fn against a temporary buffer and, if fn succeeds, commits
// the buffer into the container as member name. If fn fails nothing is
// committed and its error is returned as is.
func (s *Store) Create(name string, fn func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(s.tmpDir, "downfile-w-*")
	if err != nil {
		return &WriteError{Name: name, Err: errors.Wrap(err, "failed to create temporary buffer")}
	}
	tmpName := tmp.Name()
	defer func() {
		tmp.Close()
		if rmErr := os.Remove(tmpName); rmErr != nil {
			err = multierror.Append(err, errors.Wrap(rmErr, "archive: failed to remove temporary buffer"))
		}
	}()

	if err = fn(tmp); err != nil {
		return err
	}

	if _, err = tmp.Seek(0, io.SeekStart); err != nil {
		return &WriteError{Name: name, Err: errors.Wrap(err, "failed to rewind temporary buffer")}
	}

	if err = s.saver.Put(persist.Key(name), tmp); err != nil {
		return &WriteError{Name: name, Err: err}
	}

	level.Debug(s.log).Log("event", "commit", "entry", name)
	return nil
}

// Open extracts member name into a temporary directory and runs fn on the
// extracted copy. The directory is removed when Open returns.
func (s *Store) Open(name string, fn func(io.Reader) error) (err error) {
	dir, err := os.MkdirTemp(s.tmpDir, "downfile-r-*")
	if err != nil {
		return errors.Wrap(err, "archive: failed to create extraction directory")
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			err = multierror.Append(err, errors.Wrap(rmErr, "archive: failed to remove extraction directory"))
		}
	}()

	// member names come from the archive, so they never become path elements
	f, err := os.Create(filepath.Join(dir, "entry"))
	if err != nil {
		return errors.Wrap(err, "archive: failed to create extraction file")
	}
	defer f.Close()

	err = s.saver.Get(persist.Key(name), f)
	if errors.Is(err, persist.ErrNotFound) {
		return &NotFoundError{Name: name}
	} else if err != nil {
		return errors.Wrapf(err, "archive: failed to extract %s", name)
	}

	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "archive: failed to rewind extracted entry")
	}

	if n, _, ok := ParseName(name); ok {
		s.touched.Set(n)
	}
	s.read[name] = struct{}{}
	level.Debug(s.log).Log("event", "extract", "entry", name)

	return fn(f)
}

// List returns all members in allocation order.
func (s *Store) List() ([]Member, error) {
	keys, err := s.saver.List()
	if err != nil {
		return nil, errors.Wrap(err, "archive: failed to list entries")
	}

	ms := make([]Member, len(keys))
	for i, k := range keys {
		ms[i] = newMember(string(k))
	}
	sort.Sort(byAllocation(ms))
	return ms, nil
}

// Touched returns a snapshot of the allocation indices of every member opened so far.
func (s *Store) Touched() *sroar.Bitmap {
	return s.touched.Clone()
}

// Read returns a snapshot of the names of every member opened so far.
func (s *Store) Read() map[string]struct{} {
	names := make(map[string]struct{}, len(s.read))
	for n := range s.read {
		names[n] = struct{}{}
	}
	return names
}

func (s *Store) Close() error {
	return s.saver.Close()
}
