// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package archive

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/ssbc/go-luigi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssbc/downfile/internal/persist"
	"github.com/ssbc/downfile/internal/persist/fs"
	"github.com/ssbc/downfile/internal/persist/persistfakes"
)

func requireEmptyDir(t *testing.T, dir string) {
	ents, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, ents, 0, "leftover temporary resources: %v", ents)
}

func newFSStore(t *testing.T) (*Store, string) {
	saver, err := fs.New(t.TempDir())
	require.NoError(t, err)
	tmp := t.TempDir()
	return New(saver, WithTempDir(tmp)), tmp
}

func TestNames(t *testing.T) {
	a := assert.New(t)

	a.Equal("0.json", Name(0, "json"))
	a.Equal("12.frame", Name(12, "frame"))

	n, ext, ok := ParseName("12.frame")
	a.True(ok)
	a.EqualValues(12, n)
	a.Equal("frame", ext)

	for _, bad := range []string{"", "json", ".json", "1.", "x.json", "-1.json"} {
		_, _, ok := ParseName(bad)
		a.False(ok, "%q", bad)
	}
}

func TestCreateOpen(t *testing.T) {
	r := require.New(t)
	s, tmp := newFSStore(t)

	err := s.Create("0.json", func(w io.Writer) error {
		_, err := io.WriteString(w, `{"root":1}`)
		return err
	})
	r.NoError(err)
	requireEmptyDir(t, tmp)

	var got []byte
	err = s.Open("0.json", func(rd io.Reader) error {
		var err error
		got, err = io.ReadAll(rd)
		return err
	})
	r.NoError(err)
	r.Equal(`{"root":1}`, string(got))
	requireEmptyDir(t, tmp)

	r.True(s.Touched().Contains(0))
	r.False(s.Touched().Contains(1))
}

func TestCreateCallerFailure(t *testing.T) {
	r := require.New(t)
	s, tmp := newFSStore(t)

	boom := errors.New("boom")
	err := s.Create("0.json", func(w io.Writer) error {
		io.WriteString(w, "partial")
		return boom
	})
	r.Equal(boom, errors.Cause(err))
	requireEmptyDir(t, tmp)

	ms, err := s.List()
	r.NoError(err)
	r.Len(ms, 0, "nothing may be committed")
}

func TestCreateCommitFailure(t *testing.T) {
	r := require.New(t)

	fake := new(persistfakes.FakeSaver)
	fake.PutReturns(errors.New("disk full"))

	tmp := t.TempDir()
	s := New(fake, WithTempDir(tmp))

	err := s.Create("3.json", func(w io.Writer) error {
		_, err := io.WriteString(w, "[]")
		return err
	})
	r.Error(err)
	r.True(IsWriteError(err), "got %T: %v", err, err)
	r.Equal(1, fake.PutCallCount())
	key, _ := fake.PutArgsForCall(0)
	r.Equal(persist.Key("3.json"), key)
	requireEmptyDir(t, tmp)
}

func TestCreateDuplicate(t *testing.T) {
	r := require.New(t)
	s, tmp := newFSStore(t)

	write := func(w io.Writer) error {
		_, err := w.Write([]byte("{}"))
		return err
	}
	r.NoError(s.Create("0.json", write))

	err := s.Create("0.json", write)
	r.True(IsWriteError(err))
	r.True(errors.Is(err, persist.ErrExists))
	requireEmptyDir(t, tmp)
}

func TestOpenMissing(t *testing.T) {
	r := require.New(t)
	s, tmp := newFSStore(t)

	called := false
	err := s.Open("0.json", func(io.Reader) error {
		called = true
		return nil
	})
	r.True(errors.Is(err, ErrEntryNotFound), "got %v", err)
	r.False(called)
	requireEmptyDir(t, tmp)
}

func TestOpenReaderFailure(t *testing.T) {
	r := require.New(t)

	fake := new(persistfakes.FakeSaver)
	fake.GetCalls(func(_ persist.Key, w io.Writer) error {
		_, err := w.Write([]byte("data"))
		return err
	})

	tmp := t.TempDir()
	s := New(fake, WithTempDir(tmp))

	boom := errors.New("bad member")
	err := s.Open("1.frame", func(io.Reader) error { return boom })
	r.Equal(boom, errors.Cause(err))
	requireEmptyDir(t, tmp)
}

func TestListQuery(t *testing.T) {
	r := require.New(t)

	fake := new(persistfakes.FakeSaver)
	fake.ListReturns([]persist.Key{"10.json", "readme", "2.frame", "0.json", "1.json"}, nil)
	s := New(fake)

	ms, err := s.List()
	r.NoError(err)

	var names []string
	for _, m := range ms {
		names = append(names, m.Name)
	}
	r.Equal([]string{"0.json", "1.json", "2.frame", "10.json", "readme"}, names)
	r.False(ms[4].Indexed)

	src, err := s.Query()
	r.NoError(err)

	ctx := context.Background()
	var streamed []string
	for {
		v, err := src.Next(ctx)
		if luigi.IsEOS(err) {
			break
		}
		r.NoError(err)
		streamed = append(streamed, v.(Member).Name)
	}
	r.Equal(names, streamed)
}

func TestClose(t *testing.T) {
	fake := new(persistfakes.FakeSaver)
	s := New(fake)
	require.NoError(t, s.Close())
	require.Equal(t, 1, fake.CloseCallCount())
}

func TestReadTracking(t *testing.T) {
	r := require.New(t)
	s, _ := newFSStore(t)

	for _, name := range []string{"1.json", "1.frame"} {
		r.NoError(s.Create(name, func(w io.Writer) error {
			_, err := io.WriteString(w, name)
			return err
		}))
	}

	touched, read := s.Touched(), s.Read()
	r.NoError(s.Open("1.frame", func(io.Reader) error { return nil }))

	// snapshots do not change with later reads
	r.False(touched.Contains(1))
	r.Empty(read)

	r.True(s.Touched().Contains(1))
	r.Equal(map[string]struct{}{"1.frame": {}}, s.Read())
}
