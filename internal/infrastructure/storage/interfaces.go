package storage

import (
	"context"

	"github.com/eshaffer321/contactbook/internal/domain/contacts"
)

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, in-memory, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	ContactRepository

	// Ping checks that the database answers
	Ping(ctx context.Context) error

	// SchemaVersion returns the applied migration version
	SchemaVersion() (int64, error)

	Close() error
}

// ContactRepository handles contact persistence.
//
// Lookups that find nothing return (nil, nil) so callers can tell
// "absent" apart from a failure.
type ContactRepository interface {
	// ListContacts returns contacts matching the filters, ordered by ID
	ListContacts(ctx context.Context, filters ContactFilters) (*ContactListResult, error)

	// GetContact retrieves a contact by ID
	GetContact(ctx context.Context, id int64) (*contacts.Contact, error)

	// CreateContact inserts a contact and returns it with ID and timestamps set
	CreateContact(ctx context.Context, c *contacts.Contact) (*contacts.Contact, error)

	// UpdateContact merges the patch into the stored contact
	UpdateContact(ctx context.Context, id int64, patch contacts.Patch) (*contacts.Contact, error)

	// DeleteContact removes a contact and returns what was removed
	DeleteContact(ctx context.Context, id int64) (*contacts.Contact, error)

	// ListBirthdayContacts returns every contact that has a birthday set.
	// A stored birthday that is not a real date is returned unvalidated
	// rather than failing the listing.
	ListBirthdayContacts(ctx context.Context) ([]*contacts.Contact, error)
}
