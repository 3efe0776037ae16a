// Package timedim generates the calendar rows backing the time dimension of
// the warehouse.
package timedim

import "time"

// Layout is the textual form of a calendar date used by the warehouse.
const Layout = "2006-01-02"

// IsLeapYear reports whether year is a leap year in the proleptic Gregorian
// calendar: divisible by 4, except centuries not divisible by 400.
func IsLeapYear(year int) bool {
	if year%400 == 0 {
		return true
	}
	if year%100 == 0 {
		return false
	}
	return year%4 == 0
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// GenerateDates returns every calendar date from January 1 of startYear
// through December 31 of endYear inclusive, in ascending order, as UTC
// midnights. An inverted range yields an empty slice.
func GenerateDates(startYear, endYear int) []time.Time {
	if endYear < startYear {
		return []time.Time{}
	}

	total := 0
	for y := startYear; y <= endYear; y++ {
		total += DaysInYear(y)
	}

	dates := make([]time.Time, 0, total)
	for y := startYear; y <= endYear; y++ {
		first := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		for d := 0; d < DaysInYear(y); d++ {
			dates = append(dates, first.AddDate(0, 0, d))
		}
	}

	return dates
}

// Truncate returns the calendar date of t in UTC at midnight.
func Truncate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Format renders the calendar date of t using Layout.
func Format(t time.Time) string {
	return Truncate(t).Format(Layout)
}
