package birthdays

import (
	"errors"
	"fmt"
	"time"
)

// MaxHorizonDays is the longest window Match accepts, about a century.
const MaxHorizonDays = 366 * 100

var (
	// ErrInvalidWindow is returned when the horizon is negative or above MaxHorizonDays.
	ErrInvalidWindow = fmt.Errorf("invalid window: horizon must be between 0 and %d days", MaxHorizonDays)

	// ErrInvalidRecord is returned when a record's month/day cannot form a calendar date.
	ErrInvalidRecord = errors.New("invalid birth record")
)

// BirthRecord is a recurring birthday stored without a year.
type BirthRecord struct {
	ID    string
	Month time.Month
	Day   int
}

// Upcoming pairs a record with one concrete occurrence inside the window.
type Upcoming struct {
	Record     BirthRecord
	Occurrence time.Time
}

// Window is an inclusive range of calendar days.
type Window struct {
	Start time.Time
	End   time.Time
}

// RecordError reports a single record whose month/day pair is impossible.
type RecordError struct {
	Record BirthRecord
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: id=%s month=%d day=%d", ErrInvalidRecord, e.Record.ID, int(e.Record.Month), e.Record.Day)
}

// Unwrap lets errors.Is match ErrInvalidRecord.
func (e *RecordError) Unwrap() error {
	return ErrInvalidRecord
}
