// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package formats

import (
	"github.com/ssbc/downfile"
	"github.com/ssbc/downfile/archive"
)

// TagFile is the generic entry reference of early archives. The entry's
// extension names the parser.
const TagFile = "file"

func parseFile(df *downfile.DownFile, args []interface{}) (interface{}, error) {
	name, err := downfile.Ref(TagFile, args...).Name()
	if err != nil {
		return nil, err
	}

	_, ext, ok := archive.ParseName(name)
	if !ok {
		return nil, &downfile.CorruptArchiveError{Reason: "file reference to unnamed entry " + name}
	}

	parse, err := df.Registry().ResolveParser(ext)
	if err != nil {
		return nil, err
	}
	return parse(df, args)
}
