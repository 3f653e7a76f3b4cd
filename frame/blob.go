// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package frame

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"
)

// Extension is the file extension of frame blobs.
const Extension = "frame"

// ErrBadMagic is returned when a blob does not start with the frame header.
var ErrBadMagic = errors.New("frame: not a frame blob")

var magic = []byte{'D', 'F', 'R', 'M', 1}

var mh = &codec.MsgpackHandle{}

type wireColumn struct {
	Name    string    `codec:"name"`
	Type    string    `codec:"type"`
	Ints    []int64   `codec:"ints,omitempty"`
	Floats  []float64 `codec:"floats,omitempty"`
	Strings []string  `codec:"strings,omitempty"`
	Bools   []bool    `codec:"bools,omitempty"`
}

type wireFrame struct {
	Columns []wireColumn `codec:"columns"`
}

// Encode writes f as a frame blob: a five byte header, then the columns as msgpack.
func Encode(w io.Writer, f *Frame) error {
	if _, err := w.Write(magic); err != nil {
		return errors.Wrap(err, "frame: failed to write header")
	}

	wf := wireFrame{Columns: make([]wireColumn, len(f.cols))}
	for i, c := range f.cols {
		wf.Columns[i] = wireColumn{
			Name:    c.Name,
			Type:    c.Type.String(),
			Ints:    c.Ints,
			Floats:  c.Floats,
			Strings: c.Strings,
			Bools:   c.Bools,
		}
	}

	err := codec.NewEncoder(w, mh).Encode(wf)
	return errors.Wrap(err, "frame: failed to encode columns")
}

// Decode reads a frame blob written by Encode.
func Decode(r io.Reader) (*Frame, error) {
	hdr := make([]byte, len(magic))
	if _, err := io.ReadFull(r, hdr); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrBadMagic
		}
		return nil, errors.Wrap(err, "frame: failed to read header")
	}
	if !bytes.Equal(hdr, magic) {
		return nil, ErrBadMagic
	}

	var wf wireFrame
	if err := codec.NewDecoder(r, mh).Decode(&wf); err != nil {
		return nil, errors.Wrap(err, "frame: failed to decode columns")
	}

	cols := make([]Column, len(wf.Columns))
	for i, wc := range wf.Columns {
		t, err := parseType(wc.Type)
		if err != nil {
			return nil, err
		}
		c := Column{Name: wc.Name, Type: t}
		switch t {
		case Int64:
			c.Ints = wc.Ints
		case Float64:
			c.Floats = wc.Floats
		case String:
			c.Strings = wc.Strings
		case Bool:
			c.Bools = wc.Bools
		}
		cols[i] = c
	}
	return New(cols...)
}
