package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eshaffer321/contactbook/internal/domain/contacts"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps, making tests fast and isolated.
type MockRepository struct {
	mu       sync.Mutex
	contacts map[int64]*contacts.Contact
	nextID   int64

	// Hooks for test assertions
	CreateContactCalled bool
	UpdateContactCalled bool
	DeleteContactCalled bool
	LastPatch           *contacts.Patch

	// Error injection for testing error paths
	ListContactsErr  error
	GetContactErr    error
	CreateContactErr error
	UpdateContactErr error
	DeleteContactErr error
	ListBirthdaysErr error
	PingErr          error

	// Version is reported by SchemaVersion
	Version int64
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		contacts: make(map[int64]*contacts.Contact),
		nextID:   1,
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// AddContact seeds a contact directly, bypassing uniqueness checks.
// A zero ID is replaced with the next free one.
func (m *MockRepository) AddContact(c *contacts.Contact) *contacts.Contact {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneContact(c)
	if copied.ID == 0 {
		copied.ID = m.nextID
	}
	if copied.ID >= m.nextID {
		m.nextID = copied.ID + 1
	}
	m.contacts[copied.ID] = copied
	return cloneContact(copied)
}

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// ListContacts filters and paginates the in-memory contacts
func (m *MockRepository) ListContacts(_ context.Context, filters ContactFilters) (*ContactListResult, error) {
	if m.ListContactsErr != nil {
		return nil, m.ListContactsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	filters = filters.normalized()
	q := strings.ToLower(strings.TrimSpace(filters.Query))

	var matched []*contacts.Contact
	for _, c := range m.sorted() {
		if q != "" &&
			!strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(strings.ToLower(c.Surname), q) &&
			!strings.Contains(strings.ToLower(c.Email), q) {
			continue
		}
		matched = append(matched, c)
	}

	result := &ContactListResult{
		Contacts:   make([]*contacts.Contact, 0),
		TotalCount: len(matched),
		Skip:       filters.Skip,
		Limit:      filters.Limit,
	}
	for i := filters.Skip; i < len(matched) && len(result.Contacts) < filters.Limit; i++ {
		result.Contacts = append(result.Contacts, cloneContact(matched[i]))
	}
	return result, nil
}

// GetContact returns a copy of the stored contact or nil
func (m *MockRepository) GetContact(_ context.Context, id int64) (*contacts.Contact, error) {
	if m.GetContactErr != nil {
		return nil, m.GetContactErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.contacts[id]
	if !ok {
		return nil, nil
	}
	return cloneContact(c), nil
}

// Ping returns PingErr
func (m *MockRepository) Ping(_ context.Context) error {
	return m.PingErr
}

// SchemaVersion returns Version
func (m *MockRepository) SchemaVersion() (int64, error) {
	return m.Version, nil
}

// CreateContact stores a copy, enforcing email/phone uniqueness
func (m *MockRepository) CreateContact(_ context.Context, c *contacts.Contact) (*contacts.Contact, error) {
	m.CreateContactCalled = true
	if m.CreateContactErr != nil {
		return nil, m.CreateContactErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conflicts(0, c.Email, c.PhoneNumber) {
		return nil, ErrDuplicate
	}

	copied := cloneContact(c)
	copied.ID = m.nextID
	m.nextID++
	now := time.Now().UTC()
	copied.CreatedAt = now
	copied.UpdatedAt = now
	m.contacts[copied.ID] = copied
	return cloneContact(copied), nil
}

// UpdateContact merges the patch into the stored contact
func (m *MockRepository) UpdateContact(_ context.Context, id int64, patch contacts.Patch) (*contacts.Contact, error) {
	m.UpdateContactCalled = true
	m.LastPatch = &patch
	if m.UpdateContactErr != nil {
		return nil, m.UpdateContactErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.contacts[id]
	if !ok {
		return nil, nil
	}

	updated := cloneContact(existing)
	updated.Apply(patch)
	if m.conflicts(id, updated.Email, updated.PhoneNumber) {
		return nil, ErrDuplicate
	}
	updated.UpdatedAt = time.Now().UTC()
	m.contacts[id] = updated
	return cloneContact(updated), nil
}

// DeleteContact removes the contact and returns it
func (m *MockRepository) DeleteContact(_ context.Context, id int64) (*contacts.Contact, error) {
	m.DeleteContactCalled = true
	if m.DeleteContactErr != nil {
		return nil, m.DeleteContactErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.contacts[id]
	if !ok {
		return nil, nil
	}
	delete(m.contacts, id)
	return c, nil
}

// ListBirthdayContacts returns contacts with a birthday, ordered by ID
func (m *MockRepository) ListBirthdayContacts(_ context.Context) ([]*contacts.Contact, error) {
	if m.ListBirthdaysErr != nil {
		return nil, m.ListBirthdaysErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*contacts.Contact
	for _, c := range m.sorted() {
		if c.Birthday != nil {
			out = append(out, cloneContact(c))
		}
	}
	return out, nil
}

// sorted returns stored contacts ordered by ID. Caller holds mu.
func (m *MockRepository) sorted() []*contacts.Contact {
	out := make([]*contacts.Contact, 0, len(m.contacts))
	for _, c := range m.contacts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// conflicts reports whether another contact uses the email or phone. Caller holds mu.
func (m *MockRepository) conflicts(selfID int64, email, phone string) bool {
	for id, c := range m.contacts {
		if id == selfID {
			continue
		}
		if c.Email == email || c.PhoneNumber == phone {
			return true
		}
	}
	return false
}

func cloneContact(c *contacts.Contact) *contacts.Contact {
	copied := *c
	if c.Birthday != nil {
		b := *c.Birthday
		copied.Birthday = &b
	}
	return &copied
}
