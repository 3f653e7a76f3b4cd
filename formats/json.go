// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package formats

import (
	"io"
	"math"
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"

	"github.com/ssbc/downfile"
)

// JSONHandle is used for every JSON entry. Mappings decode as
// map[string]interface{}, integers as int64 and fractions as float64.
var JSONHandle = newJSONHandle()

func newJSONHandle() *codec.JsonHandle {
	var h codec.JsonHandle
	h.Canonical = true
	h.MapType = reflect.TypeOf(map[string]interface{}(nil))
	h.SignedInteger = true
	return &h
}

// dumpJSON writes v to a new JSON entry and references it. Values inside v
// that JSON holds natively stay inline; all others are encoded through the
// registry first.
func dumpJSON(df *downfile.DownFile, v interface{}) (interface{}, error) {
	name := df.NewEntry("json")

	node, err := normalize(df, v)
	if err != nil {
		return nil, err
	}

	err = df.Store().Create(name, func(w io.Writer) error {
		return codec.NewEncoder(w, JSONHandle).Encode(node)
	})
	if err != nil {
		return nil, err
	}
	return downfile.Ref(downfile.TagJSON, name), nil
}

// parseJSON reads the JSON entry named by args and resolves every reference in it.
func parseJSON(df *downfile.DownFile, args []interface{}) (interface{}, error) {
	name, err := downfile.Ref(downfile.TagJSON, args...).Name()
	if err != nil {
		return nil, err
	}

	var (
		node   interface{}
		decErr error
	)
	err = df.Store().Open(name, func(r io.Reader) error {
		decErr = codec.NewDecoder(r, JSONHandle).Decode(&node)
		return decErr
	})
	if decErr != nil {
		return nil, &downfile.CorruptArchiveError{Reason: "entry " + name + " is not valid JSON", Err: decErr}
	}
	if err != nil {
		return nil, err
	}

	return resolve(df, node)
}

// tree walks values JSON holds natively and encodes everything else.
func tree(df *downfile.DownFile, v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64:
		return x, nil

	case uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return number(x)

	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			n, err := tree(df, e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil

	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, e := range x {
			n, err := tree(df, e)
			if err != nil {
				return nil, errors.Wrapf(err, "key %q", k)
			}
			out[k] = n
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().Name() == "" {
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			return walkList(df, rv)
		case reflect.Map:
			if rv.Type().Key().Kind() == reflect.String {
				return walkMap(df, rv)
			}
		}
	}

	// scalars and anonymous structs without a codec of their own stay in this entry
	_, tag, err := df.Registry().ResolveDumper(v)
	if err != nil {
		return nil, err
	}
	if tag == downfile.TagJSON && inline(rv.Type()) {
		return normalize(df, v)
	}
	return df.EncodeValue(v)
}

func inline(rt reflect.Type) bool {
	switch rt.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Struct:
		return rt.Name() == ""
	}
	return false
}

// number rejects numbers that would not read back as the same value.
func number(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, errors.Errorf("formats/json: %d overflows a JSON integer", x)
		}
	case uint64:
		if x > math.MaxInt64 {
			return nil, errors.Errorf("formats/json: %d overflows a JSON integer", x)
		}
	case float32:
		return number(float64(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, errors.Errorf("formats/json: %v is not a JSON number", x)
		}
	}
	return v, nil
}

// normalize turns a value that reached the json dumper into a JSON tree,
// whatever its Go type.
func normalize(df *downfile.DownFile, v interface{}) (interface{}, error) {
	switch v.(type) {
	case nil, []interface{}, map[string]interface{}:
		return tree(df, v)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return number(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return number(rv.Float())
	case reflect.String:
		return rv.String(), nil
	case reflect.Slice, reflect.Array:
		return walkList(df, rv)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, errors.Errorf("formats/json: map key type %s is not a string", rv.Type().Key())
		}
		return walkMap(df, rv)
	case reflect.Struct:
		out := make(map[string]interface{})
		if err := walkStruct(df, rv, out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, errors.Errorf("formats/json: cannot encode value of type %T", v)
}

func walkList(df *downfile.DownFile, rv reflect.Value) (interface{}, error) {
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return nil, nil
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		n, err := tree(df, rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func walkMap(df *downfile.DownFile, rv reflect.Value) (interface{}, error) {
	if rv.IsNil() {
		return nil, nil
	}
	out := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key().String()
		n, err := tree(df, iter.Value().Interface())
		if err != nil {
			return nil, errors.Wrapf(err, "key %q", k)
		}
		out[k] = n
	}
	return out, nil
}

// walkStruct adds the exported fields of rv to out. Embedded structs
// without a codec of their own are inlined, the way encoding/json does.
func walkStruct(df *downfile.DownFile, rv reflect.Value, out map[string]interface{}) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, tagged := fieldName(sf)
		if name == "-" {
			continue
		}

		fv := rv.Field(i)
		if sf.Anonymous && !tagged {
			ev := fv
			if ev.Kind() == reflect.Ptr {
				if ev.IsNil() {
					continue
				}
				ev = ev.Elem()
			}
			if ev.Kind() == reflect.Struct {
				_, tag, err := df.Registry().ResolveDumper(fv.Interface())
				if err != nil {
					return err
				}
				if tag == downfile.TagJSON {
					if err := walkStruct(df, ev, out); err != nil {
						return err
					}
					continue
				}
			}
		}

		n, err := tree(df, fv.Interface())
		if err != nil {
			return errors.Wrapf(err, "field %s", sf.Name)
		}
		out[name] = n
	}
	return nil
}

// fieldName honours the name part of codec and json struct tags.
func fieldName(sf reflect.StructField) (string, bool) {
	for _, key := range []string{"codec", "json"} {
		tag, has := sf.Tag.Lookup(key)
		if !has {
			continue
		}
		if name := strings.Split(tag, ",")[0]; name != "" {
			return name, true
		}
	}
	return sf.Name, false
}

// resolve replaces every reference in a decoded JSON tree by its value.
func resolve(df *downfile.DownFile, node interface{}) (interface{}, error) {
	switch n := node.(type) {
	case map[string]interface{}:
		if _, tagged := n[downfile.ClassKey]; tagged {
			return df.DecodeValue(n)
		}
		for k, e := range n {
			v, err := resolve(df, e)
			if err != nil {
				return nil, err
			}
			n[k] = v
		}
		return n, nil

	case []interface{}:
		for i, e := range n {
			v, err := resolve(df, e)
			if err != nil {
				return nil, err
			}
			n[i] = v
		}
		return n, nil
	}
	return node, nil
}
