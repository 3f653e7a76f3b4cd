// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package formats

import (
	"bytes"
	"io"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssbc/downfile"
	"github.com/ssbc/downfile/archive"
	"github.com/ssbc/downfile/frame"
	"github.com/ssbc/downfile/internal/persist/fs"
)

func newSession(t *testing.T) *downfile.DownFile {
	saver, err := fs.New(t.TempDir())
	require.NoError(t, err)
	store := archive.New(saver, archive.WithTempDir(t.TempDir()))
	t.Cleanup(func() { store.Close() })
	return downfile.New(store, Default())
}

type celsius float64

type reading struct {
	Sensor string
	Temp   float64
	hidden int
}

func TestNormalize(t *testing.T) {
	a := assert.New(t)
	df := newSession(t)

	n, err := normalize(df, celsius(21.5))
	a.NoError(err)
	a.Equal(21.5, n)

	n, err = normalize(df, reading{Sensor: "s1", Temp: 3.5, hidden: 1})
	a.NoError(err)
	a.Equal(map[string]interface{}{"Sensor": "s1", "Temp": 3.5}, n)

	n, err = normalize(df, map[string]int{"a": 1})
	a.NoError(err)
	a.Equal(map[string]interface{}{"a": 1}, n)

	n, err = normalize(df, []string(nil))
	a.NoError(err)
	a.Nil(n)

	_, err = normalize(df, map[int]string{1: "x"})
	a.Error(err)

	_, err = normalize(df, func() {})
	a.Error(err)
}

func TestTreeDispatch(t *testing.T) {
	r := require.New(t)
	df := newSession(t)

	n, err := tree(df, []interface{}{Date{Year: 2021, Month: time.June, Day: 1}, "x"})
	r.NoError(err)
	r.Equal([]interface{}{
		downfile.Ref(TagDate, "2021-06-01").Node(),
		"x",
	}, n)

	// named scalars without a codec stay inline
	n, err = tree(df, map[string]interface{}{"c": celsius(1.5)})
	r.NoError(err)
	r.Equal(map[string]interface{}{"c": 1.5}, n)

	// named maps get an entry of their own
	n, err = tree(df, map[string]interface{}{"l": labels{"k": "v"}})
	r.NoError(err)
	r.Equal(map[string]interface{}{"l": downfile.Ref(downfile.TagJSON, "0.json").Node()}, n)
}

type labels map[string]string

type station struct {
	Name    string `json:"name"`
	Skipped string `codec:"-"`
	Since   Date
	Opened  time.Time `codec:"opened,omitempty"`
	Data    *frame.Frame
	Empty   *frame.Frame
	geo
	*Extra
	Inner struct{ Depth float64 }
}

type geo struct{ Lat float64 }

type Extra struct{ Note string }

func TestWalkStruct(t *testing.T) {
	r := require.New(t)
	df := newSession(t)

	f, err := frame.New(frame.Ints("n", 1, 2))
	r.NoError(err)

	n, err := normalize(df, station{
		Name:    "north",
		Skipped: "x",
		Since:   Date{Year: 2020, Month: time.March, Day: 14},
		Opened:  time.Date(2020, 3, 14, 9, 26, 53, 0, time.UTC),
		Data:    f,
		geo:     geo{Lat: 1.5},
		Extra:   &Extra{Note: "n"},
	})
	r.NoError(err)
	r.Equal(map[string]interface{}{
		"name":   "north",
		"Since":  downfile.Ref(TagDate, "2020-03-14").Node(),
		"opened": downfile.Ref(TagDateTime, "2020-03-14 09:26:53").Node(),
		"Data":   downfile.Ref(TagFrameBlob, "0.frame").Node(),
		"Empty":  nil,
		"Note":   "n",
		"Inner":  map[string]interface{}{"Depth": 0.0},
	}, n)
}

func TestNumbers(t *testing.T) {
	df := newSession(t)

	for _, v := range []interface{}{
		uint64(math.MaxUint64),
		math.NaN(),
		math.Inf(1),
		float32(math.Inf(-1)),
		celsius(math.NaN()),
		map[string]uint64{"u": math.MaxUint64},
	} {
		_, err := tree(df, v)
		require.Error(t, err, "%#v", v)
	}

	n, err := tree(df, uint64(math.MaxInt64))
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxInt64), n)
}

func TestTemporalCodecs(t *testing.T) {
	r := require.New(t)

	ref, err := dumpDateTime(nil, time.Date(2001, 2, 3, 4, 5, 6, 7, time.UTC))
	r.NoError(err)
	r.Equal(downfile.Ref(TagDateTime, "2001-02-03 04:05:06"), ref)

	ref, err = dumpDate(nil, time.Date(2001, 2, 3, 23, 0, 0, 0, time.UTC))
	r.NoError(err)
	r.Equal(downfile.Ref(TagDate, "2001-02-03"), ref)

	ref, err = dumpDate(nil, (*time.Time)(nil))
	r.NoError(err)
	r.Nil(ref)

	_, err = dumpDate(nil, "2001-02-03")
	r.Error(err)

	v, err := parseDate(nil, []interface{}{"2001-02-03"})
	r.NoError(err)
	r.Equal(Date{Year: 2001, Month: time.February, Day: 3}, v)

	for _, args := range [][]interface{}{
		nil,
		{"2001-02-03", "extra"},
		{20010203},
		{"2001-02-30"},
		{"03.02.2001"},
	} {
		_, err := parseDate(nil, args)
		r.True(downfile.IsMalformedTemporal(err), "%v: %v", args, err)
	}

	_, err = parseDateTime(nil, []interface{}{"2001-02-03T04:05:06Z"})
	r.True(downfile.IsMalformedTemporal(err))
}

func TestDate(t *testing.T) {
	a := assert.New(t)

	d, err := ParseDate("1999-12-31")
	a.NoError(err)
	a.Equal("1999-12-31", d.String())
	a.Equal(time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC), d.Time())
	a.Equal(d, DateOf(time.Date(1999, 12, 31, 23, 59, 0, 0, time.FixedZone("Y", -3600))))
}

func TestFileReference(t *testing.T) {
	r := require.New(t)
	df := newSession(t)

	f, err := frame.New(frame.Bools("ok", true, false))
	r.NoError(err)
	r.NoError(df.Store().Create("0.frame", func(w io.Writer) error { return frame.Encode(w, f) }))
	r.NoError(df.Store().Create("1.json", func(w io.Writer) error {
		_, err := io.WriteString(w, `{"a": [1, 2.5]}`)
		return err
	}))

	v, err := df.DecodeValue(downfile.Ref(TagFile, "0.frame").Node())
	r.NoError(err)
	r.True(f.Equal(v.(*frame.Frame)))

	v, err = df.DecodeValue(downfile.Ref(TagFile, "1.json").Node())
	r.NoError(err)
	r.Equal(map[string]interface{}{"a": []interface{}{int64(1), 2.5}}, v)

	_, err = df.DecodeValue(downfile.Ref(TagFile, "plain").Node())
	r.True(downfile.IsCorruptArchive(err))
}

func TestFrameCodec(t *testing.T) {
	r := require.New(t)
	df := newSession(t)

	ref, err := dumpFrame(df, (*frame.Series)(nil))
	r.NoError(err)
	r.Nil(ref)

	f, err := frame.New(frame.Strings("s", "x"))
	r.NoError(err)
	ref, err = dumpFrame(df, f)
	r.NoError(err)
	r.Equal(downfile.Ref(TagFrameBlob, "0.frame"), ref)

	var buf bytes.Buffer
	r.NoError(df.Store().Open("0.frame", func(rd io.Reader) error {
		_, err := io.Copy(&buf, rd)
		return err
	}))
	got, err := frame.Decode(&buf)
	r.NoError(err)
	r.True(f.Equal(got))

	_, err = dumpFrame(df, "not a frame")
	r.Error(err)
}
