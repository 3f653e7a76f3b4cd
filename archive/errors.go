// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package archive

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrEntryNotFound matches every *NotFoundError.
var ErrEntryNotFound = errors.New("archive: entry not found")

// NotFoundError is returned when a member is read that the archive does not hold.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("archive: entry %s not found", e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrEntryNotFound }

// WriteError is returned when the container rejects a member.
type WriteError struct {
	Name string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("archive: failed to write %s: %v", e.Name, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// IsWriteError returns whether err is or wraps a *WriteError.
func IsWriteError(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}
