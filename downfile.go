// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

// Package downfile serializes nested structured data into a single archive.
//
// The value is stored under the key "root" of a JSON document in the entry
// 0.json. Values that JSON cannot hold natively are handed to the codec
// registered for their type tag, which either inlines them as a reference
// ({"__jsonclass__": [tag, args]}) or writes them to an entry of their own,
// named "{n}.{ext}" in allocation order, and references that entry.
package downfile

import (
	"fmt"

	"github.com/pkg/errors"
	"go.mindeco.de/log"
	"go.mindeco.de/log/level"

	"github.com/ssbc/downfile/archive"
)

// RootEntry is the entry every archive starts from.
const RootEntry = "0.json"

// RootKey is the field of the root document that holds the serialized value.
const RootKey = "root"

// DownFile runs one read or write session against an archive.
// It is not safe for concurrent use.
type DownFile struct {
	store *archive.Store
	reg   *Registry
	log   log.Logger

	seq uint64
}

// New binds a session to store, resolving codecs through reg.
func New(store *archive.Store, reg *Registry, opts ...Option) *DownFile {
	o := newOptions(opts)
	return &DownFile{
		store: store,
		reg:   reg,
		log:   o.log,
	}
}

func (df *DownFile) Store() *archive.Store { return df.store }

func (df *DownFile) Registry() *Registry { return df.reg }

func (df *DownFile) Logger() log.Logger { return df.log }

// NewEntry allocates the next entry name with extension ext.
// Call it exactly once per entry that is going to be written.
func (df *DownFile) NewEntry(ext string) string {
	name := archive.Name(df.seq, ext)
	df.seq++
	level.Debug(df.log).Log("event", "allocate", "entry", name)
	return name
}

// EncodeValue encodes v with the most specific registered dumper. The
// result is a JSON node that can be embedded in the enclosing entry.
func (df *DownFile) EncodeValue(v interface{}) (interface{}, error) {
	dump, tag, err := df.reg.ResolveDumper(v)
	if err != nil {
		return nil, err
	}
	return df.dump(dump, tag, v)
}

func (df *DownFile) dump(fn DumpFunc, tag string, v interface{}) (interface{}, error) {
	node, err := fn(df, v)
	if err != nil {
		var ee *EncodeError
		if errors.As(err, &ee) || archive.IsWriteError(err) {
			return nil, err
		}
		return nil, &EncodeError{Tag: tag, Err: err}
	}
	if ref, ok := node.(Reference); ok {
		return ref.Node(), nil
	}
	return node, nil
}

// DecodeValue resolves node if it is a reference and returns every other node unchanged.
func (df *DownFile) DecodeValue(node interface{}) (interface{}, error) {
	ref, ok, err := ParseReference(node)
	if err != nil {
		return nil, err
	}
	if !ok {
		return node, nil
	}

	parse, err := df.reg.ResolveParser(ref.Tag)
	if err != nil {
		return nil, err
	}
	level.Debug(df.log).Log("event", "decode", "tag", ref.Tag)
	return parse(df, ref.Args)
}

// Serialize writes v as the root of the archive. The root document always
// goes through the json dumper so that it lands in RootEntry.
func (df *DownFile) Serialize(v interface{}) error {
	dump, has := df.reg.dumpers[TagJSON]
	if !has {
		return errors.Wrap(ErrNoEncoder, "json fallback")
	}

	node, err := df.dump(dump, TagJSON, map[string]interface{}{RootKey: v})
	if err != nil {
		return err
	}

	ref, ok, err := ParseReference(node)
	if err != nil {
		return err
	}
	if !ok || ref.Tag != TagJSON || len(ref.Args) != 1 || ref.Args[0] != RootEntry {
		return &EncodeError{Tag: TagJSON, Err: fmt.Errorf("root document encoded as %v, want a reference to %s", node, RootEntry)}
	}
	return nil
}

// Deserialize reads the value stored as the root of the archive.
func (df *DownFile) Deserialize() (interface{}, error) {
	doc, err := df.DecodeValue(Ref(TagJSON, RootEntry))
	if err != nil {
		var nf *archive.NotFoundError
		if errors.As(err, &nf) && nf.Name == RootEntry {
			return nil, &CorruptArchiveError{Reason: "missing root entry", Err: err}
		}
		return nil, err
	}

	m, ok := doc.(map[string]interface{})
	if !ok {
		return nil, &CorruptArchiveError{Reason: fmt.Sprintf("root document is %T, not a mapping", doc)}
	}
	root, has := m[RootKey]
	if !has {
		return nil, &CorruptArchiveError{Reason: "root document has no root field"}
	}
	return root, nil
}
