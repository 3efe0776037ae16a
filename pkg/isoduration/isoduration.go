// Package isoduration converts ISO-8601 durations as reported by the video
// platform for content length (for example "PT1H2M3S") into seconds.
package isoduration

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sosodev/duration"
)

var (
	// ErrInvalid is returned for strings that are not ISO-8601 durations.
	ErrInvalid = errors.New("invalid ISO-8601 duration")

	// ErrCalendarUnit is returned for durations using years or months, whose
	// length in seconds depends on an anchor date.
	ErrCalendarUnit = errors.New("calendar units are not supported")
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	secondsPerWeek   = 7 * secondsPerDay
)

// Seconds parses s and returns its total length in seconds. Supported
// designators are W and D in the date part and H, M and S in the time part.
// A decimal fraction may use either '.' or ','.
func Seconds(s string) (float64, error) {
	if !strings.HasPrefix(s, "P") || len(s) < 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	// The parser ignores a dangling number or designator marker at the end.
	switch last := s[len(s)-1]; {
	case last == 'T', last == '.', last == ',', last >= '0' && last <= '9':
		return 0, fmt.Errorf("%w: %q: missing designator", ErrInvalid, s)
	}

	d, err := duration.Parse(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalid, s, err)
	}
	if d.Years != 0 || d.Months != 0 {
		return 0, fmt.Errorf("%w: %q", ErrCalendarUnit, s)
	}

	total := d.Weeks*secondsPerWeek +
		d.Days*secondsPerDay +
		d.Hours*secondsPerHour +
		d.Minutes*secondsPerMinute +
		d.Seconds
	if math.IsInf(total, 0) || math.IsNaN(total) {
		return 0, fmt.Errorf("%w: %q: out of range", ErrInvalid, s)
	}

	return total, nil
}

// WholeSeconds returns the length of s rounded to the nearest second.
func WholeSeconds(s string) (int64, error) {
	secs, err := Seconds(s)
	if err != nil {
		return 0, err
	}

	rounded := math.Round(secs)
	if rounded >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q: out of range", ErrInvalid, s)
	}
	return int64(rounded), nil
}
