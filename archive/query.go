// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package archive

import (
	"context"

	"github.com/ssbc/go-luigi"
)

// Query returns the members of the archive as a stream of Member values, in allocation order.
func (s *Store) Query() (luigi.Source, error) {
	ms, err := s.List()
	if err != nil {
		return nil, err
	}
	return &memberSource{members: ms}, nil
}

type memberSource struct {
	members []Member
}

func (src *memberSource) Next(ctx context.Context) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(src.members) == 0 {
		return nil, luigi.EOS{}
	}

	m := src.members[0]
	src.members = src.members[1:]
	return m, nil
}
