// Package isoweek maps between calendar dates and ISO-8601 week numbers.
// Weeks start on Monday; week 1 is the week containing the year's first
// Thursday. All functions are pure.
package isoweek

import (
	"fmt"
	"time"
)

const dateFormat = "2006-01-02"

// Of returns the ISO week number containing t, using the nearest-Thursday
// rule: the week of a date belongs to the year of that week's Thursday.
func Of(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

// YearOf returns the ISO week-numbering year of t, which can differ from the
// calendar year near January 1.
func YearOf(t time.Time) int {
	year, _ := t.ISOWeek()
	return year
}

// Range returns the Monday and Sunday bounding ISO week `week` of ISO year
// `year`. Week 53 is rejected for years that only have 52 ISO weeks.
func Range(year, week int) (start, end time.Time, err error) {
	if week < 1 || week > 53 {
		return time.Time{}, time.Time{}, fmt.Errorf("week %d out of range [1,53]", week)
	}

	// January 4 is always inside ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	week1Monday := jan4.AddDate(0, 0, -(isoWeekday(jan4) - 1))

	start = week1Monday.AddDate(0, 0, (week-1)*7)
	if y, w := start.ISOWeek(); y != year || w != week {
		return time.Time{}, time.Time{}, fmt.Errorf("year %d has no ISO week %d", year, week)
	}

	return start, start.AddDate(0, 0, 6), nil
}

// Current returns today's ISO year and week.
func Current(now time.Time) (year, week int) {
	return now.ISOWeek()
}

// FormatRange renders a week's bounds as "YYYY-MM-DD".
func FormatRange(start, end time.Time) (string, string) {
	return start.Format(dateFormat), end.Format(dateFormat)
}

// isoWeekday maps time.Weekday to ISO numbering (Monday=1 .. Sunday=7).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
