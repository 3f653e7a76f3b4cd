// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package formats

import (
	"io"

	"github.com/pkg/errors"

	"github.com/ssbc/downfile"
	"github.com/ssbc/downfile/frame"
)

// TagFrameBlob references a frame blob entry.
const TagFrameBlob = "frame"

// dumpFrame writes frames and series to a blob entry of their own.
func dumpFrame(df *downfile.DownFile, v interface{}) (interface{}, error) {
	var (
		f   *frame.Frame
		err error
	)
	switch x := v.(type) {
	case *frame.Frame:
		f = x
	case frame.Series:
		f, err = x.Frame()
	case *frame.Series:
		if x != nil {
			f, err = x.Frame()
		}
	default:
		return nil, errors.Errorf("formats: %T is not a frame", v)
	}
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, nil
	}

	name := df.NewEntry(frame.Extension)
	err = df.Store().Create(name, func(w io.Writer) error {
		return frame.Encode(w, f)
	})
	if err != nil {
		return nil, err
	}
	return downfile.Ref(TagFrameBlob, name), nil
}

func parseFrame(df *downfile.DownFile, args []interface{}) (interface{}, error) {
	name, err := downfile.Ref(TagFrameBlob, args...).Name()
	if err != nil {
		return nil, err
	}

	var f *frame.Frame
	err = df.Store().Open(name, func(r io.Reader) error {
		var err error
		f, err = frame.Decode(r)
		return err
	})
	if errors.Is(err, frame.ErrBadMagic) {
		return nil, &downfile.CorruptArchiveError{Reason: "entry " + name + " is not a frame blob", Err: err}
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}
