// Package datekey normalizes heterogeneous upstream timestamps into
// canonical YYYY-MM-DD UTC calendar-day keys, the unit of aggregation.
package datekey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Key is a canonical calendar day in YYYY-MM-DD form, always UTC.
type Key string

const layout = "2006-01-02"

// ErrInvalidInput is the sentinel wrapped by every normalization
// failure; callers match it with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// Timestamps outside this window are treated as invalid rather than
// silently producing a nonsense day.
var (
	minTime = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	maxTime = time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)
)

// ErrInvalidDate reports input the normalizer cannot turn into a day key.
type ErrInvalidDate struct {
	Input string
}

func (e *ErrInvalidDate) Error() string {
	return fmt.Sprintf("invalid date input: %s", e.Input)
}

func (*ErrInvalidDate) Unwrap() error { return ErrInvalidInput }

// FromTime returns the UTC calendar day containing t.
func FromTime(t time.Time) Key {
	return Key(t.UTC().Format(layout))
}

// FromUnixSeconds converts an epoch-seconds timestamp to its UTC day.
func FromUnixSeconds(sec int64) (Key, error) {
	t := time.Unix(sec, 0).UTC()
	if t.Before(minTime) || t.After(maxTime) {
		return "", &ErrInvalidDate{Input: strconv.FormatInt(sec, 10)}
	}
	return FromTime(t), nil
}

// FromUnixMillis converts an epoch-milliseconds timestamp to its UTC day.
func FromUnixMillis(ms int64) (Key, error) {
	t := time.UnixMilli(ms).UTC()
	if t.Before(minTime) || t.After(maxTime) {
		return "", &ErrInvalidDate{Input: strconv.FormatInt(ms, 10)}
	}
	return FromTime(t), nil
}

// Parse accepts a YYYY-M-D style date string with optionally unpadded
// month and day (as emitted by upstream profile pages) and returns the
// padded canonical key. Parsing a canonical Key returns it unchanged.
func Parse(s string) (Key, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return "", &ErrInvalidDate{Input: s}
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1970 || year > 2200 {
		return "", &ErrInvalidDate{Input: s}
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return "", &ErrInvalidDate{Input: s}
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return "", &ErrInvalidDate{Input: s}
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Feb 30 -> Mar 2); reject that.
	if t.Day() != day || t.Month() != time.Month(month) {
		return "", &ErrInvalidDate{Input: s}
	}
	return FromTime(t), nil
}

// Time returns the UTC midnight instant for the key.
func (k Key) Time() (time.Time, error) {
	t, err := time.ParseInLocation(layout, string(k), time.UTC)
	if err != nil {
		return time.Time{}, &ErrInvalidDate{Input: string(k)}
	}
	return t, nil
}

// Valid reports whether k is a well-formed canonical day key.
func (k Key) Valid() bool {
	_, err := k.Time()
	return err == nil
}
