// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package persist

import (
	"errors"
	"io"
)

// Key is the name of a member inside a container.
type Key string

var (
	ErrNotFound = errors.New("persist: item not found")
	ErrExists   = errors.New("persist: item already exists")
)

//go:generate counterfeiter -o persistfakes/fake_saver.go . Saver

// Saver is a container of named, write-once members.
type Saver interface {
	// Put stores the contents of r under key. It fails with ErrExists if key was already stored.
	Put(Key, io.Reader) error

	// Get copies the member stored under key into w, or returns ErrNotFound.
	Get(Key, io.Writer) error

	List() ([]Key, error)

	io.Closer
}
