// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package archive

import (
	"strconv"
	"strings"
)

// Name returns the member name for allocation index n and extension ext.
func Name(n uint64, ext string) string {
	return strconv.FormatUint(n, 10) + "." + ext
}

// ParseName splits a member name of the form "{n}.{ext}".
func ParseName(name string) (n uint64, ext string, ok bool) {
	i := strings.IndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return 0, "", false
	}
	n, err := strconv.ParseUint(name[:i], 10, 64)
	if err != nil {
		return 0, "", false
	}
	return n, name[i+1:], true
}

// Member describes one entry of an archive.
type Member struct {
	Name  string
	Index uint64
	Ext   string

	// Indexed is false for members whose name does not follow the allocation scheme.
	Indexed bool
}

func newMember(name string) Member {
	n, ext, ok := ParseName(name)
	return Member{Name: name, Index: n, Ext: ext, Indexed: ok}
}

type byAllocation []Member

func (ms byAllocation) Len() int      { return len(ms) }
func (ms byAllocation) Swap(i, j int) { ms[i], ms[j] = ms[j], ms[i] }
func (ms byAllocation) Less(i, j int) bool {
	a, b := ms[i], ms[j]
	if a.Indexed != b.Indexed {
		return a.Indexed
	}
	if a.Index != b.Index {
		return a.Index < b.Index
	}
	return a.Name < b.Name
}
