// SPDX-FileCopyrightText: 2022 The margaret Authors
//
// SPDX-License-Identifier: MIT

//go:build !lite
// +build !lite

package badger

import (
	"github.com/dgraph-io/badger/v3"
)

// BadgerOpts silences badger's own logger. Members are written once per key,
// so transactions skip conflict detection.
func BadgerOpts(dir string) badger.Options {
	return badger.DefaultOptions(dir).
		WithDetectConflicts(false).
		WithLogger(nil)
}
