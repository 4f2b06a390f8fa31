package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/eshaffer321/contactbook/internal/domain/birthdays"
	"github.com/eshaffer321/contactbook/internal/domain/contacts"
	"github.com/eshaffer321/contactbook/internal/infrastructure/storage"
)

// ErrEmptyPatch is returned when an update carries no fields.
var ErrEmptyPatch = errors.New("update contains no fields")

// UpcomingBirthday is a contact whose birthday falls inside the requested window.
type UpcomingBirthday struct {
	Contact    *contacts.Contact
	Occurrence time.Time
	DaysUntil  int
	TurningAge int // 0 when the birth year is unknown
}

// ImportResult summarises a bulk import.
type ImportResult struct {
	Created []*contacts.Contact
	Skipped []ImportSkip
}

// ImportSkip describes a contact that was not imported.
type ImportSkip struct {
	Index  int
	Name   string
	Reason string
}

// ContactService coordinates contact storage, validation and birthday lookups.
type ContactService struct {
	repo     storage.Repository
	clock    Clock
	location *time.Location
	logger   *slog.Logger
}

// NewContactService creates a contact service.
// A nil clock uses the real time, a nil location uses time.Local.
func NewContactService(repo storage.Repository, clock Clock, location *time.Location, logger *slog.Logger) *ContactService {
	if clock == nil {
		clock = RealClock{}
	}
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactService{
		repo:     repo,
		clock:    clock,
		location: location,
		logger:   logger,
	}
}

// ListContacts returns a page of contacts.
func (s *ContactService) ListContacts(ctx context.Context, filters storage.ContactFilters) (*storage.ContactListResult, error) {
	return s.repo.ListContacts(ctx, filters)
}

// AllContacts pages through every stored contact in id order.
func (s *ContactService) AllContacts(ctx context.Context) ([]*contacts.Contact, error) {
	filters := storage.ContactFilters{Limit: storage.MaxLimit}
	var out []*contacts.Contact
	for {
		page, err := s.repo.ListContacts(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("list contacts: %w", err)
		}
		out = append(out, page.Contacts...)
		filters.Skip += len(page.Contacts)
		if len(page.Contacts) == 0 || filters.Skip >= page.TotalCount {
			return out, nil
		}
	}
}

// GetContact returns a contact or nil when it does not exist.
func (s *ContactService) GetContact(ctx context.Context, id int64) (*contacts.Contact, error) {
	return s.repo.GetContact(ctx, id)
}

// CreateContact validates and stores a new contact.
func (s *ContactService) CreateContact(ctx context.Context, c contacts.Contact) (*contacts.Contact, error) {
	if err := contacts.Validate(c); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateContact(ctx, &c)
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	s.logger.Info("contact created", "contact_id", created.ID)
	return created, nil
}

// UpdateContact merges the patch into an existing contact.
// Returns nil when the contact does not exist.
func (s *ContactService) UpdateContact(ctx context.Context, id int64, patch contacts.Patch) (*contacts.Contact, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}

	existing, err := s.repo.GetContact(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load contact %d: %w", id, err)
	}
	if existing == nil {
		return nil, nil
	}

	merged := *existing
	merged.Apply(patch)
	if err := contacts.Validate(merged); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateContact(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update contact %d: %w", id, err)
	}

	if updated != nil {
		s.logger.Info("contact updated", "contact_id", id)
	}
	return updated, nil
}

// DeleteContact removes a contact and returns it, or nil when it does not exist.
func (s *ContactService) DeleteContact(ctx context.Context, id int64) (*contacts.Contact, error) {
	deleted, err := s.repo.DeleteContact(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete contact %d: %w", id, err)
	}
	if deleted != nil {
		s.logger.Info("contact deleted", "contact_id", id)
	}
	return deleted, nil
}

// ImportContacts creates each contact, skipping invalid ones and duplicates.
func (s *ContactService) ImportContacts(ctx context.Context, batch []contacts.Contact) (*ImportResult, error) {
	result := &ImportResult{Created: make([]*contacts.Contact, 0, len(batch))}

	for i, c := range batch {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		created, err := s.CreateContact(ctx, c)
		if err != nil {
			var verr *contacts.ValidationError
			if errors.As(err, &verr) || errors.Is(err, storage.ErrDuplicate) {
				result.Skipped = append(result.Skipped, ImportSkip{Index: i, Name: c.FullName(), Reason: err.Error()})
				continue
			}
			return result, err
		}
		result.Created = append(result.Created, created)
	}

	s.logger.Info("import finished",
		slog.Int("created", len(result.Created)),
		slog.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// CheckHealth pings the store and returns its schema version.
func (s *ContactService) CheckHealth(ctx context.Context) (int64, error) {
	if err := s.repo.Ping(ctx); err != nil {
		return 0, fmt.Errorf("ping database: %w", err)
	}
	version, err := s.repo.SchemaVersion()
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// Today returns the current date in the service's location.
func (s *ContactService) Today() time.Time {
	now := s.clock.Now().In(s.location)
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.location)
}

// UpcomingBirthdays returns contacts whose birthday falls within the next
// days days, today included, in calendar order.
// Stored birthdays that cannot form a date are skipped and logged.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, days int) ([]UpcomingBirthday, error) {
	if days < 0 || days > birthdays.MaxHorizonDays {
		return nil, birthdays.ErrInvalidWindow
	}

	stored, err := s.repo.ListBirthdayContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load birthdays: %w", err)
	}

	byID := make(map[string]*contacts.Contact, len(stored))
	records := make([]birthdays.BirthRecord, 0, len(stored))
	for _, c := range stored {
		if c.Birthday == nil {
			continue
		}
		id := strconv.FormatInt(c.ID, 10)
		byID[id] = c
		records = append(records, birthdays.BirthRecord{
			ID:    id,
			Month: c.Birthday.Month,
			Day:   c.Birthday.Day,
		})
	}

	valid, invalid := birthdays.ValidateRecords(records)
	for _, err := range invalid {
		s.logger.Warn("skipping contact with impossible birthday", slog.Any("error", err))
	}

	today := s.Today()
	matches, err := birthdays.Match(today, days, valid)
	if err != nil {
		return nil, err
	}

	out := make([]UpcomingBirthday, 0, len(matches))
	for _, m := range matches {
		c := byID[m.Record.ID]
		age := 0
		if c.Birthday.YearKnown() {
			age = m.Occurrence.Year() - c.Birthday.Year
		}
		out = append(out, UpcomingBirthday{
			Contact:    c,
			Occurrence: m.Occurrence,
			DaysUntil:  birthdays.DaysUntil(today, m.Occurrence),
			TurningAge: age,
		})
	}

	s.logger.Debug("upcoming birthdays",
		slog.Int("days", days),
		slog.Int("candidates", len(records)),
		slog.Int("matched", len(out)),
	)
	return out, nil
}
