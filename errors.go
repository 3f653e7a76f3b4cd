// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package downfile

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/ssbc/downfile/archive"
)

var (
	// ErrEntryNotFound is matched by errors about members missing from an archive.
	ErrEntryNotFound = archive.ErrEntryNotFound

	// ErrNoEncoder means the registry has no json fallback. It is a configuration error.
	ErrNoEncoder = errors.New("downfile: no encoder registered")
)

// ArchiveWriteError is returned when the container cannot take a new member.
type ArchiveWriteError = archive.WriteError

// UnknownTypeTagError is returned when an archive references a tag without a registered parser.
type UnknownTypeTagError struct {
	Tag string
}

func (e *UnknownTypeTagError) Error() string {
	return fmt.Sprintf("downfile: no parser registered for type tag %q", e.Tag)
}

// IsUnknownTypeTag returns whether err is or wraps an *UnknownTypeTagError.
func IsUnknownTypeTag(err error) bool {
	var ue *UnknownTypeTagError
	return errors.As(err, &ue)
}

// MalformedTemporalError is returned when a date or datetime does not match its layout.
type MalformedTemporalError struct {
	Value  interface{}
	Layout string
	Err    error
}

func (e *MalformedTemporalError) Error() string {
	return fmt.Sprintf("downfile: malformed temporal value %#v (want layout %q)", e.Value, e.Layout)
}

func (e *MalformedTemporalError) Unwrap() error { return e.Err }

func IsMalformedTemporal(err error) bool {
	var me *MalformedTemporalError
	return errors.As(err, &me)
}

// CorruptArchiveError is returned when the archive structure itself is broken:
// no root entry, a root that is not a mapping holding root, or a reference
// with the wrong shape.
type CorruptArchiveError struct {
	Reason string
	Err    error
}

func (e *CorruptArchiveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("downfile: corrupt archive: %s: %v", e.Reason, e.Err)
	}
	return "downfile: corrupt archive: " + e.Reason
}

func (e *CorruptArchiveError) Unwrap() error { return e.Err }

func IsCorruptArchive(err error) bool {
	var ce *CorruptArchiveError
	return errors.As(err, &ce)
}

// EncodeError wraps a failure of the encoder registered for Tag.
type EncodeError struct {
	Tag string
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("downfile: encoder %q failed: %v", e.Tag, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
