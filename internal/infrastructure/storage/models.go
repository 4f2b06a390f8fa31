package storage

import (
	"errors"

	"github.com/eshaffer321/contactbook/internal/domain/contacts"
)

const (
	// DefaultLimit is used when ContactFilters.Limit is zero or negative
	DefaultLimit = 100

	// MaxLimit caps a single page
	MaxLimit = 1000
)

// ErrDuplicate is returned when an email or phone number is already taken.
var ErrDuplicate = errors.New("contact with the same email or phone number already exists")

// ContactFilters defines filters for listing contacts
type ContactFilters struct {
	Query string // Case-insensitive substring of name, surname or email (empty = all)
	Skip  int    // Pagination offset
	Limit int    // Max results (0 = DefaultLimit)
}

// normalized clamps pagination values into range.
func (f ContactFilters) normalized() ContactFilters {
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

// ContactListResult contains paginated contact results
type ContactListResult struct {
	Contacts   []*contacts.Contact `json:"contacts"`
	TotalCount int                 `json:"total_count"`
	Skip       int                 `json:"skip"`
	Limit      int                 `json:"limit"`
}
