// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package downfile

import (
	"go.mindeco.de/log"

	"github.com/ssbc/downfile/archive"
	"github.com/ssbc/downfile/internal/persist/zip"
)

// Compression selects how members of zip archives are compressed.
type Compression int

const (
	CompressDeflate Compression = iota
	CompressNone
	CompressZstd
)

func (c Compression) method() zip.Method {
	switch c {
	case CompressNone:
		return zip.Store
	case CompressZstd:
		return zip.Zstd
	}
	return zip.Deflate
}

type options struct {
	backend     Backend
	compression Compression
	tmpDir      string
	log         log.Logger
}

// Option configures Dump, Parse, Check and New.
type Option func(*options)

// WithBackend selects the container the archive is kept in. The default is BackendZip.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithCompression sets the member compression of zip archives. Readers detect it on their own.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithTempDir sets where member buffers and extraction directories are created.
func WithTempDir(dir string) Option {
	return func(o *options) {
		o.tmpDir = dir
	}
}

func WithLogger(l log.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

func newOptions(opts []Option) options {
	o := options{
		backend: BackendZip,
		log:     log.NewNopLogger(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func (o options) storeOptions() []archive.Option {
	return []archive.Option{
		archive.WithTempDir(o.tmpDir),
		archive.WithLogger(o.log),
	}
}
