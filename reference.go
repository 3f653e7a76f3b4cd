// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package downfile

import "fmt"

// ClassKey is the reserved mapping key that marks a reference inside a JSON entry.
const ClassKey = "__jsonclass__"

// Reference points from inline JSON to a typed value. On the wire it is
// {"__jsonclass__": [Tag, Args]}.
type Reference struct {
	Tag  string
	Args []interface{}
}

// Ref builds a Reference.
func Ref(tag string, args ...interface{}) Reference {
	return Reference{Tag: tag, Args: args}
}

// Node returns the JSON form of r.
func (r Reference) Node() map[string]interface{} {
	args := r.Args
	if args == nil {
		args = []interface{}{}
	}
	return map[string]interface{}{
		ClassKey: []interface{}{r.Tag, args},
	}
}

// Name returns the single entry name r carries.
func (r Reference) Name() (string, error) {
	if len(r.Args) != 1 {
		return "", &CorruptArchiveError{Reason: fmt.Sprintf("reference %q: want one entry name, got %d args", r.Tag, len(r.Args))}
	}
	name, ok := r.Args[0].(string)
	if !ok {
		return "", &CorruptArchiveError{Reason: fmt.Sprintf("reference %q: entry name is %T, not a string", r.Tag, r.Args[0])}
	}
	return name, nil
}

// ParseReference reports whether node is a reference and returns it.
// A mapping carrying ClassKey with any other shape is corrupt.
func ParseReference(node interface{}) (Reference, bool, error) {
	switch n := node.(type) {
	case Reference:
		return n, true, nil
	case map[string]interface{}:
		raw, has := n[ClassKey]
		if !has {
			return Reference{}, false, nil
		}

		pair, ok := raw.([]interface{})
		if !ok || len(pair) != 2 {
			return Reference{}, false, &CorruptArchiveError{Reason: fmt.Sprintf("%s is not a [tag, args] pair: %v", ClassKey, raw)}
		}
		tag, ok := pair[0].(string)
		if !ok {
			return Reference{}, false, &CorruptArchiveError{Reason: fmt.Sprintf("%s tag is %T, not a string", ClassKey, pair[0])}
		}
		var args []interface{}
		if pair[1] != nil {
			args, ok = pair[1].([]interface{})
			if !ok {
				return Reference{}, false, &CorruptArchiveError{Reason: fmt.Sprintf("%s args are %T, not a list", ClassKey, pair[1])}
			}
		}
		return Reference{Tag: tag, Args: args}, true, nil
	}
	return Reference{}, false, nil
}
