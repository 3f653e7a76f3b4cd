// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

// Package formats holds the codecs downfile ships with: the JSON tree
// codec, inline dates and datetimes, and frame blobs.
package formats

import (
	"github.com/ssbc/downfile"
	"github.com/ssbc/downfile/frame"
)

// Dumpers maps type tags to the built-in encoders.
var Dumpers = map[string]downfile.DumpFunc{
	downfile.TagJSON: dumpJSON,
	TagDateTime:      dumpDateTime,
	TagDate:          dumpDate,
	frame.TagFrame:   dumpFrame,
	frame.TagSeries:  dumpFrame,
}

// Parsers maps reference tags to the built-in decoders.
var Parsers = map[string]downfile.ParseFunc{
	downfile.TagJSON: parseJSON,
	TagDateTime:      parseDateTime,
	TagDate:          parseDate,
	TagFrameBlob:     parseFrame,
	TagFile:          parseFile,
}

// Register adds the built-in codecs to reg.
func Register(reg *downfile.Registry) error {
	for tag, fn := range Dumpers {
		if err := reg.AddDumper(tag, fn); err != nil {
			return err
		}
	}
	for tag, fn := range Parsers {
		if err := reg.AddParser(tag, fn); err != nil {
			return err
		}
	}
	// a datetime is a date with a time of day
	reg.AddBase(TagDateTime, TagDate)
	reg.AddTagFunc(timeTag)
	return nil
}

// Default returns a registry holding only the built-in codecs.
func Default() *downfile.Registry {
	reg := downfile.NewRegistry()
	if err := Register(reg); err != nil {
		panic(err)
	}
	return reg
}
