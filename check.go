// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package downfile

import (
	"context"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/sroar"
	"github.com/pkg/errors"
	"github.com/ssbc/go-luigi"

	"github.com/ssbc/downfile/archive"
)

// MemberInfo describes one archive member in a Report.
type MemberInfo struct {
	archive.Member

	Size int64
	Sum  uint64 // xxhash64 of the stored bytes

	// Referenced is true if decoding the archive read this member.
	Referenced bool
}

// Report is the result of Check.
type Report struct {
	Members []MemberInfo

	// Orphans are members no reference leads to.
	Orphans []string

	// Gaps are allocation indices below the highest one that no member uses.
	Gaps []uint64
}

// Check decodes the archive at path and reports on all of its members.
// It fails like Parse does if the archive cannot be decoded.
func Check(path string, reg *Registry, opts ...Option) (rep *Report, err error) {
	o := newOptions(opts)

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

	if _, err := New(store, reg, withOptions(o)).Deserialize(); err != nil {
		return nil, err
	}
	// hashing reads every member, so take the snapshot first
	referenced := store.Read()

	src, err := store.Query()
	if err != nil {
		return nil, err
	}

	rep = new(Report)
	present := sroar.NewBitmap()
	var max uint64
	ctx := context.Background()
	for {
		v, err := src.Next(ctx)
		if luigi.IsEOS(err) {
			break
		} else if err != nil {
			return nil, errors.Wrap(err, "downfile: failed to list members")
		}
		m := v.(archive.Member)

		_, read := referenced[m.Name]
		info := MemberInfo{Member: m, Referenced: read}
		err = store.Open(m.Name, func(r io.Reader) error {
			h := xxhash.New()
			n, err := io.Copy(h, r)
			info.Size, info.Sum = n, h.Sum64()
			return err
		})
		if err != nil {
			return nil, errors.Wrapf(err, "downfile: failed to hash %s", m.Name)
		}

		if m.Indexed {
			present.Set(m.Index)
			if m.Index > max {
				max = m.Index
			}
		}
		if !info.Referenced {
			rep.Orphans = append(rep.Orphans, m.Name)
		}
		rep.Members = append(rep.Members, info)
	}

	for i := uint64(0); i < max; i++ {
		if !present.Contains(i) {
			rep.Gaps = append(rep.Gaps, i)
		}
	}
	return rep, nil
}
