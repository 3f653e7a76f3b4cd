// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package downfile

import (
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.mindeco.de/log"
	"go.mindeco.de/log/level"

	"github.com/ssbc/downfile/archive"
)

// Dump writes v to a new archive at path. On failure nothing is left at path.
func Dump(path string, v interface{}, reg *Registry, opts ...Option) (err error) {
	o := newOptions(opts)
	o.log = log.With(o.log, "archive", path)

	saver, err := o.create(path)
	if err != nil {
		return &ArchiveWriteError{Name: path, Err: err}
	}

	store := archive.New(saver, o.storeOptions()...)
	defer func() {
		if cErr := store.Close(); cErr != nil && err == nil {
			err = &ArchiveWriteError{Name: path, Err: cErr}
		}
		if err != nil {
			if rmErr := os.RemoveAll(path); rmErr != nil {
				err = multierror.Append(err, errors.Wrap(rmErr, "downfile: failed to remove incomplete archive"))
			}
			level.Warn(o.log).Log("event", "dump failed", "err", err)
		}
	}()

	return New(store, reg, withOptions(o)).Serialize(v)
}

// Parse reads the value stored in the archive at path.
func Parse(path string, reg *Registry, opts ...Option) (v interface{}, err error) {
	o := newOptions(opts)
	o.log = log.With(o.log, "archive", path)

	saver, err := o.open(path)
	if err != nil {
		return nil, err
	}

	store := archive.New(saver, o.storeOptions()...)
	defer func() {
		if cErr := store.Close(); cErr != nil && err == nil {
			err = errors.Wrap(cErr, "downfile: failed to close archive")
		}
	}()

	return New(store, reg, withOptions(o)).Deserialize()
}

func withOptions(from options) Option {
	return func(o *options) {
		*o = from
	}
}
