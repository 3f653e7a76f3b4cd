// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

// Package zip stores members in a zip archive. An archive is opened either
// for writing (Create) or for reading (Open), never both.
package zip

import (
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/ssbc/downfile/internal/persist"
)

// Method selects how members are compressed when writing.
type Method uint16

const (
	Deflate Method = Method(zip.Deflate)
	Store   Method = Method(zip.Store)
	Zstd    Method = Method(zstd.ZipMethodWinZip)
)

var errReadOnly = errors.New("persist/zip: archive opened for reading")
var errWriteOnly = errors.New("persist/zip: archive opened for writing")

type Saver struct {
	// write side
	f      *os.File
	w      *zip.Writer
	method Method
	names  map[persist.Key]struct{}
	order  []persist.Key

	// read side
	r     *zip.ReadCloser
	files map[persist.Key]*zip.File
}

var _ persist.Saver = (*Saver)(nil)

// Create truncates or creates the archive at path and opens it for writing.
func Create(path string, m Method) (*Saver, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "persist/zip: failed to create archive file")
	}

	w := zip.NewWriter(f)
	w.RegisterCompressor(uint16(Zstd), zstd.ZipCompressor())

	return &Saver{
		f:      f,
		w:      w,
		method: m,
		names:  make(map[persist.Key]struct{}),
	}, nil
}

// Open opens the archive at path for reading.
func Open(path string) (*Saver, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "persist/zip: failed to open archive %s", path)
	}
	r.RegisterDecompressor(uint16(Zstd), zstd.ZipDecompressor())

	s := &Saver{
		r:     r,
		files: make(map[persist.Key]*zip.File, len(r.File)),
	}
	for _, zf := range r.File {
		k := persist.Key(zf.Name)
		s.files[k] = zf
		s.order = append(s.order, k)
	}
	return s, nil
}

func (s *Saver) Put(key persist.Key, r io.Reader) error {
	if s.w == nil {
		return errReadOnly
	}
	if _, has := s.names[key]; has {
		return errors.Wrapf(persist.ErrExists, "persist/zip: %s", key)
	}

	hdr := &zip.FileHeader{
		Name:     string(key),
		Method:   uint16(s.method),
		Modified: time.Now(),
	}
	w, err := s.w.CreateHeader(hdr)
	if err != nil {
		return errors.Wrapf(err, "persist/zip: failed to add member %s", key)
	}
	if _, err = io.Copy(w, r); err != nil {
		return errors.Wrapf(err, "persist/zip: failed to write member %s", key)
	}

	s.names[key] = struct{}{}
	s.order = append(s.order, key)
	return nil
}

func (s *Saver) Get(key persist.Key, w io.Writer) error {
	if s.r == nil {
		return errWriteOnly
	}
	zf, has := s.files[key]
	if !has {
		return persist.ErrNotFound
	}

	rc, err := zf.Open()
	if err != nil {
		return errors.Wrapf(err, "persist/zip: failed to open member %s", key)
	}
	defer rc.Close()

	_, err = io.Copy(w, rc)
	return errors.Wrapf(err, "persist/zip: failed to extract member %s", key)
}

func (s *Saver) List() ([]persist.Key, error) {
	keys := make([]persist.Key, len(s.order))
	copy(keys, s.order)
	return keys, nil
}

func (s *Saver) Close() error {
	if s.r != nil {
		return s.r.Close()
	}

	if err := s.w.Close(); err != nil {
		s.f.Close()
		return errors.Wrap(err, "persist/zip: failed to write central directory")
	}
	return s.f.Close()
}
