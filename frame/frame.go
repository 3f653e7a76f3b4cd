// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

// Package frame holds column-oriented tabular data and its binary blob format.
package frame

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Type tags of the values this package provides.
const (
	TagFrame  = "frame.Frame"
	TagSeries = "frame.Series"
)

// Type is the element type of a column.
type Type uint8

const (
	Invalid Type = iota
	Int64
	Float64
	String
	Bool
)

func (t Type) String() string {
	switch t {
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	case String:
		return "string"
	case Bool:
		return "bool"
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

func parseType(s string) (Type, error) {
	for _, t := range []Type{Int64, Float64, String, Bool} {
		if t.String() == s {
			return t, nil
		}
	}
	return Invalid, errors.Errorf("frame: unknown column type %q", s)
}

// Column is a named, typed vector. Only the slice matching Type is used.
type Column struct {
	Name string
	Type Type

	Ints    []int64
	Floats  []float64
	Strings []string
	Bools   []bool
}

func Ints(name string, vs ...int64) Column     { return Column{Name: name, Type: Int64, Ints: vs} }
func Floats(name string, vs ...float64) Column { return Column{Name: name, Type: Float64, Floats: vs} }
func Strings(name string, vs ...string) Column { return Column{Name: name, Type: String, Strings: vs} }
func Bools(name string, vs ...bool) Column     { return Column{Name: name, Type: Bool, Bools: vs} }

func (c Column) Len() int {
	switch c.Type {
	case Int64:
		return len(c.Ints)
	case Float64:
		return len(c.Floats)
	case String:
		return len(c.Strings)
	case Bool:
		return len(c.Bools)
	}
	return 0
}

// Value returns the cell at row i.
func (c Column) Value(i int) interface{} {
	switch c.Type {
	case Int64:
		return c.Ints[i]
	case Float64:
		return c.Floats[i]
	case String:
		return c.Strings[i]
	case Bool:
		return c.Bools[i]
	}
	return nil
}

// Equal compares name, type and every cell. NaN equals NaN.
func (c Column) Equal(o Column) bool {
	if c.Name != o.Name || c.Type != o.Type || c.Len() != o.Len() {
		return false
	}
	for i := 0; i < c.Len(); i++ {
		if c.Type == Float64 {
			a, b := c.Floats[i], o.Floats[i]
			if a != b && !(math.IsNaN(a) && math.IsNaN(b)) {
				return false
			}
			continue
		}
		if c.Value(i) != o.Value(i) {
			return false
		}
	}
	return true
}

// Frame is an ordered set of equally long columns with unique names.
type Frame struct {
	cols   []Column
	byName map[string]int
}

// New checks that all columns are valid, uniquely named and of equal length.
func New(cols ...Column) (*Frame, error) {
	f := &Frame{
		cols:   make([]Column, len(cols)),
		byName: make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if c.Type == Invalid || c.Type > Bool {
			return nil, errors.Errorf("frame: column %q has invalid type %s", c.Name, c.Type)
		}
		if _, dup := f.byName[c.Name]; dup {
			return nil, errors.Errorf("frame: duplicate column %q", c.Name)
		}
		if i > 0 && c.Len() != cols[0].Len() {
			return nil, errors.Errorf("frame: column %q has %d rows, want %d", c.Name, c.Len(), cols[0].Len())
		}
		f.cols[i] = c
		f.byName[c.Name] = i
	}
	return f, nil
}

func (f *Frame) TypeTag() string { return TagFrame }

// Len returns the number of rows.
func (f *Frame) Len() int {
	if len(f.cols) == 0 {
		return 0
	}
	return f.cols[0].Len()
}

func (f *Frame) Columns() []Column {
	cs := make([]Column, len(f.cols))
	copy(cs, f.cols)
	return cs
}

func (f *Frame) Column(name string) (Column, bool) {
	i, has := f.byName[name]
	if !has {
		return Column{}, false
	}
	return f.cols[i], true
}

// Equal compares two frames cell by cell.
func (f *Frame) Equal(o *Frame) bool {
	if f == nil || o == nil {
		return f == o
	}
	if len(f.cols) != len(o.cols) {
		return false
	}
	for i := range f.cols {
		if !f.cols[i].Equal(o.cols[i]) {
			return false
		}
	}
	return true
}

// Series is a single column. It is stored as a one-column frame.
type Series struct {
	Column
}

func (Series) TypeTag() string { return TagSeries }

func (s Series) Frame() (*Frame, error) {
	return New(s.Column)
}
