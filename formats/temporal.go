// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

package formats

import (
	"time"

	"github.com/pkg/errors"

	"github.com/ssbc/downfile"
)

const (
	TagDateTime = "datetime.datetime"
	TagDate     = "datetime.date"

	LayoutDateTime = "2006-01-02 15:04:05"
	LayoutDate     = "2006-01-02"
)

// Date is a calendar day without time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the day t falls on in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(LayoutDate, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) TypeTag() string { return TagDate }

// AsDate lets types embedding Date be encoded as one.
func (d Date) AsDate() Date { return d }

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Time().Format(LayoutDate)
}

type dater interface {
	AsDate() Date
}

func timeTag(v interface{}) (string, bool) {
	switch v.(type) {
	case time.Time, *time.Time:
		return TagDateTime, true
	}
	return "", false
}

// dumpDateTime inlines a time.Time with second precision. The zone is dropped, the wall clock kept.
func dumpDateTime(_ *downfile.DownFile, v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case time.Time:
		return downfile.Ref(TagDateTime, t.Format(LayoutDateTime)), nil
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		return downfile.Ref(TagDateTime, t.Format(LayoutDateTime)), nil
	}
	return nil, errors.Errorf("formats: %T is not a time.Time", v)
}

// dumpDate inlines a Date. Anything providing AsDate, and time.Time, is accepted.
func dumpDate(_ *downfile.DownFile, v interface{}) (interface{}, error) {
	var d Date
	switch x := v.(type) {
	case dater:
		d = x.AsDate()
	case time.Time:
		d = DateOf(x)
	case *time.Time:
		if x == nil {
			return nil, nil
		}
		d = DateOf(*x)
	default:
		return nil, errors.Errorf("formats: %T is not a date", v)
	}
	return downfile.Ref(TagDate, d.String()), nil
}

// parseDateTime returns the time in UTC.
func parseDateTime(_ *downfile.DownFile, args []interface{}) (interface{}, error) {
	s, err := temporalArg(args, LayoutDateTime)
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(LayoutDateTime, s)
	if err != nil {
		return nil, &downfile.MalformedTemporalError{Value: s, Layout: LayoutDateTime, Err: err}
	}
	return t, nil
}

func parseDate(_ *downfile.DownFile, args []interface{}) (interface{}, error) {
	s, err := temporalArg(args, LayoutDate)
	if err != nil {
		return nil, err
	}
	d, err := ParseDate(s)
	if err != nil {
		return nil, &downfile.MalformedTemporalError{Value: s, Layout: LayoutDate, Err: err}
	}
	return d, nil
}

func temporalArg(args []interface{}, layout string) (string, error) {
	if len(args) != 1 {
		return "", &downfile.MalformedTemporalError{Value: args, Layout: layout}
	}
	s, ok := args[0].(string)
	if !ok {
		return "", &downfile.MalformedTemporalError{Value: args[0], Layout: layout}
	}
	return s, nil
}
