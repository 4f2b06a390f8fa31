// Package birthdays finds recurring birthdays that fall inside a date window.
//
// Birthdays are stored as month/day pairs. Each pair is projected onto
// concrete occurrence dates, year by year, and every occurrence inside
// [start, start+days] is returned in calendar order:
//
//	matches, err := birthdays.Match(time.Now(), 7, records)
//	if err != nil {
//		return err
//	}
//	for _, m := range matches {
//		fmt.Println(m.Record.ID, m.Occurrence.Format("2006-01-02"))
//	}
//
// Feb 29 birthdays fall on Mar 1 in non-leap years.
package birthdays

import (
	"slices"
	"time"
)

// leapYear is any leap year; used to check that a month/day pair exists at all.
const leapYear = 2000

// NewWindow builds the inclusive window starting on the reference's calendar day.
func NewWindow(reference time.Time, days int) (Window, error) {
	if days < 0 || days > MaxHorizonDays {
		return Window{}, ErrInvalidWindow
	}
	start := truncateDay(reference)
	return Window{
		Start: start,
		End:   start.AddDate(0, 0, days),
	}, nil
}

// Contains reports whether t falls on a day inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Validate checks that the record's month/day exists in some year.
func Validate(r BirthRecord) error {
	if r.Month < time.January || r.Month > time.December || r.Day < 1 {
		return &RecordError{Record: r}
	}
	if r.Day > daysIn(r.Month, leapYear) {
		return &RecordError{Record: r}
	}
	return nil
}

// ValidateRecords splits records into valid ones and per-record errors.
// Input order is preserved.
func ValidateRecords(records []BirthRecord) ([]BirthRecord, []error) {
	valid := make([]BirthRecord, 0, len(records))
	var errs []error
	for _, r := range records {
		if err := Validate(r); err != nil {
			errs = append(errs, err)
			continue
		}
		valid = append(valid, r)
	}
	return valid, errs
}

// Occurrence returns the date the birthday falls on in the given year.
// time.Date normalises Feb 29 of a non-leap year to Mar 1.
func Occurrence(r BirthRecord, year int, loc *time.Location) time.Time {
	return time.Date(year, r.Month, r.Day, 0, 0, 0, 0, loc)
}

// Match returns every occurrence of the records inside
// [reference, reference+horizonDays], sorted by date. Records sharing a date
// keep their input order. A record can appear more than once when the
// horizon is longer than a year.
//
// The call fails on a horizon outside [0, MaxHorizonDays] or on any impossible month/day pair;
// callers that prefer skipping bad records should filter with ValidateRecords first.
func Match(reference time.Time, horizonDays int, records []BirthRecord) ([]Upcoming, error) {
	window, err := NewWindow(reference, horizonDays)
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		if err := Validate(r); err != nil {
			return nil, err
		}
	}

	matches := make([]Upcoming, 0)
	loc := window.Start.Location()
	for _, r := range records {
		for year := window.Start.Year(); ; year++ {
			occ := Occurrence(r, year, loc)
			if occ.After(window.End) {
				break
			}
			if window.Contains(occ) {
				matches = append(matches, Upcoming{Record: r, Occurrence: occ})
			}
		}
	}

	slices.SortStableFunc(matches, func(a, b Upcoming) int {
		return a.Occurrence.Compare(b.Occurrence)
	})

	return matches, nil
}

// DaysUntil counts calendar days from from's day to on's day.
func DaysUntil(from, on time.Time) int {
	return int(civilUTC(on).Sub(civilUTC(from)).Hours() / 24)
}

// civilUTC drops the clock and zone, keeping the calendar day.
func civilUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysIn returns the number of days in month m of year y.
func daysIn(m time.Month, y int) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
