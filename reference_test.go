// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package downfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceNode(t *testing.T) {
	a := assert.New(t)

	a.Equal(map[string]interface{}{
		ClassKey: []interface{}{"json", []interface{}{"3.json"}},
	}, Ref("json", "3.json").Node())

	a.Equal(map[string]interface{}{
		ClassKey: []interface{}{"none", []interface{}{}},
	}, Ref("none").Node())
}

func TestParseReference(t *testing.T) {
	type testcase struct {
		node    interface{}
		isRef   bool
		ref     Reference
		corrupt bool
	}

	tcs := []testcase{
		{node: 1},
		{node: "x"},
		{node: []interface{}{ClassKey}},
		{node: map[string]interface{}{"a": 1}},
		{
			node:  Ref("frame", "1.frame").Node(),
			isRef: true,
			ref:   Ref("frame", "1.frame"),
		},
		{
			node:  Ref("json", "0.json"),
			isRef: true,
			ref:   Ref("json", "0.json"),
		},
		{
			node:  map[string]interface{}{ClassKey: []interface{}{"empty", nil}},
			isRef: true,
			ref:   Reference{Tag: "empty"},
		},
		{node: map[string]interface{}{ClassKey: "oops"}, corrupt: true},
		{node: map[string]interface{}{ClassKey: []interface{}{"a"}}, corrupt: true},
		{node: map[string]interface{}{ClassKey: []interface{}{1, []interface{}{}}}, corrupt: true},
		{node: map[string]interface{}{ClassKey: []interface{}{"a", "b"}}, corrupt: true},
	}

	for i, tc := range tcs {
		ref, ok, err := ParseReference(tc.node)
		if tc.corrupt {
			require.True(t, IsCorruptArchive(err), "%d: got %v", i, err)
			continue
		}
		require.NoError(t, err, "%d", i)
		require.Equal(t, tc.isRef, ok, "%d", i)
		require.Equal(t, tc.ref, ref, "%d", i)
	}
}

func TestReferenceName(t *testing.T) {
	r := require.New(t)

	n, err := Ref("json", "2.json").Name()
	r.NoError(err)
	r.Equal("2.json", n)

	_, err = Ref("json").Name()
	r.True(IsCorruptArchive(err))

	_, err = Ref("json", 2).Name()
	r.True(IsCorruptArchive(err))
}
