// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package downfile

import (
	"reflect"

	"github.com/pkg/errors"
)

// TagJSON is the universal fallback tag. Its dumper drives recursion through plain structures.
const TagJSON = "json"

// Kind tags name the shape of values that carry no tag of their own.
const (
	TagNull   = "null"
	TagBool   = "bool"
	TagNumber = "number"
	TagString = "string"
	TagList   = "list"
	TagMap    = "map"
	TagObject = "object"
)

// DumpFunc encodes v. It returns either an inline JSON node or a Reference.
type DumpFunc func(df *DownFile, v interface{}) (interface{}, error)

// ParseFunc rebuilds a value from the arguments of a Reference.
type ParseFunc func(df *DownFile, args []interface{}) (interface{}, error)

// TagFunc names values of types that cannot implement Typed, like time.Time.
type TagFunc func(v interface{}) (string, bool)

// Typed is implemented by values that name their own type tag.
type Typed interface {
	TypeTag() string
}

// Registry maps type tags to codecs. It is filled once at startup and must
// not be changed after it was handed to a DownFile.
type Registry struct {
	dumpers  map[string]DumpFunc
	parsers  map[string]ParseFunc
	bases    map[string][]string
	tagFuncs []TagFunc
}

func NewRegistry() *Registry {
	return &Registry{
		dumpers: make(map[string]DumpFunc),
		parsers: make(map[string]ParseFunc),
		bases:   make(map[string][]string),
	}
}

func (reg *Registry) AddDumper(tag string, fn DumpFunc) error {
	if _, has := reg.dumpers[tag]; has {
		return errors.Errorf("downfile: dumper for %q already registered", tag)
	}
	reg.dumpers[tag] = fn
	return nil
}

func (reg *Registry) AddParser(tag string, fn ParseFunc) error {
	if _, has := reg.parsers[tag]; has {
		return errors.Errorf("downfile: parser for %q already registered", tag)
	}
	reg.parsers[tag] = fn
	return nil
}

// AddBase declares bases as the direct ancestors of tag, in lookup order.
func (reg *Registry) AddBase(tag string, bases ...string) {
	reg.bases[tag] = append(reg.bases[tag], bases...)
}

func (reg *Registry) AddTagFunc(fn TagFunc) {
	reg.tagFuncs = append(reg.tagFuncs, fn)
}

// TagOf returns the concrete type tag of v.
func (reg *Registry) TagOf(v interface{}) string {
	if t, ok := v.(Typed); ok {
		return t.TypeTag()
	}
	for _, fn := range reg.tagFuncs {
		if tag, ok := fn(v); ok {
			return tag
		}
	}

	rt := reflect.TypeOf(v)
	if rt == nil {
		return TagNull
	}
	if isNamed(rt) || (rt.Kind() == reflect.Ptr && isNamed(rt.Elem())) {
		return rt.String()
	}
	return kindTag(rt)
}

// Chain returns the tags tried for v, most specific first: the concrete
// tag and its declared bases depth-first, then the kind tag of v, then
// TagJSON. A tag reachable on several paths keeps its first position.
func (reg *Registry) Chain(v interface{}) []string {
	var (
		chain []string
		seen  = make(map[string]struct{})
		walk  func(string)
	)
	walk = func(tag string) {
		if _, has := seen[tag]; has {
			return
		}
		seen[tag] = struct{}{}
		chain = append(chain, tag)
		for _, b := range reg.bases[tag] {
			walk(b)
		}
	}

	walk(reg.TagOf(v))
	walk(kindTag(reflect.TypeOf(v)))
	walk(TagJSON)
	return chain
}

// ResolveDumper returns the first dumper registered along Chain(v) and the tag it was found under.
func (reg *Registry) ResolveDumper(v interface{}) (DumpFunc, string, error) {
	for _, tag := range reg.Chain(v) {
		if fn, has := reg.dumpers[tag]; has {
			return fn, tag, nil
		}
	}
	return nil, "", errors.Wrapf(ErrNoEncoder, "value of type %T", v)
}

func (reg *Registry) ResolveParser(tag string) (ParseFunc, error) {
	fn, has := reg.parsers[tag]
	if !has {
		return nil, &UnknownTypeTagError{Tag: tag}
	}
	return fn, nil
}

func isNamed(rt reflect.Type) bool {
	return rt.Name() != "" && rt.PkgPath() != ""
}

func kindTag(rt reflect.Type) string {
	if rt == nil {
		return TagNull
	}
	switch rt.Kind() {
	case reflect.Bool:
		return TagBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return TagNumber
	case reflect.String:
		return TagString
	case reflect.Slice, reflect.Array:
		return TagList
	case reflect.Map:
		return TagMap
	case reflect.Ptr:
		return kindTag(rt.Elem())
	}
	return TagObject
}
