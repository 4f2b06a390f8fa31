package contacts

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout   = "2006-01-02"
	noYearPrefix = "--"

	// placeholderLeapYear is used to check month/day pairs when the year is unknown.
	placeholderLeapYear = 2000
)

// ErrYearZero is returned for "0000-MM-DD"; a year-less date is written "--MM-DD".
var ErrYearZero = errors.New("year 0000 is not allowed, use --MM-DD for an unknown year")

// Date is a calendar date without a time of day.
// A zero Year means the year is unknown, as vCard allows for birthdays.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the date part of t.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses "YYYY-MM-DD" or "--MM-DD".
func ParseDate(s string) (Date, error) {
	if len(s) == len("--01-02") && s[:2] == noYearPrefix {
		t, err := time.Parse(dateLayout, fmt.Sprintf("%d-%s", placeholderLeapYear, s[2:]))
		if err != nil {
			return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return Date{Month: t.Month(), Day: t.Day()}, nil
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	if t.Year() == 0 {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, ErrYearZero)
	}
	return NewDate(t), nil
}

// SplitDate reads the fields of "YYYY-MM-DD" or "--MM-DD" without checking
// that the day exists in the month. Use IsValid on the result.
func SplitDate(s string) (Date, error) {
	var yearPart string
	rest := s
	if strings.HasPrefix(s, noYearPrefix) {
		rest = s[len(noYearPrefix):]
	} else {
		var ok bool
		yearPart, rest, ok = strings.Cut(s, "-")
		if !ok || len(yearPart) != 4 {
			return Date{}, fmt.Errorf("invalid date %q", s)
		}
	}

	monthPart, dayPart, ok := strings.Cut(rest, "-")
	if !ok || len(monthPart) != 2 || len(dayPart) != 2 {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}

	var d Date
	month, err := strconv.Atoi(monthPart)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Month = time.Month(month)
	if d.Day, err = strconv.Atoi(dayPart); err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	if yearPart != "" {
		if d.Year, err = strconv.Atoi(yearPart); err != nil {
			return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
	}
	return d, nil
}

// YearKnown reports whether the date carries a year.
func (d Date) YearKnown() bool {
	return d.Year != 0
}

// IsValid reports whether the date exists in the calendar.
func (d Date) IsValid() bool {
	if d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return false
	}
	year := d.Year
	if !d.YearKnown() {
		year = placeholderLeapYear
	}
	return d.Day <= time.Date(year, d.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Time returns the date at midnight UTC. Unknown years use a leap year.
func (d Date) Time() time.Time {
	year := d.Year
	if !d.YearKnown() {
		year = placeholderLeapYear
	}
	return time.Date(year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	if !d.YearKnown() {
		return fmt.Sprintf("%s%02d-%02d", noYearPrefix, int(d.Month), d.Day)
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON encodes the date as a string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes "YYYY-MM-DD" or "--MM-DD".
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
	case []byte:
		return d.Scan(string(v))
	case time.Time:
		*d = NewDate(v)
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
	return nil
}
