package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/eshaffer321/contactbook/internal/domain/contacts"
)

const contactColumns = `id, name, surname, email, phone_number, birthday, additional_info, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// birthdayParser turns the stored birthday text into a Date
type birthdayParser func(string) (contacts.Date, error)

// lenientBirthday keeps impossible month/day pairs so callers can report them.
// Unreadable text becomes the zero Date, which is never valid.
func lenientBirthday(s string) (contacts.Date, error) {
	d, err := contacts.SplitDate(s)
	if err != nil {
		return contacts.Date{}, nil
	}
	return d, nil
}

func scanContact(row rowScanner) (*contacts.Contact, error) {
	return scanContactWith(row, contacts.ParseDate)
}

func scanContactWith(row rowScanner, parseBirthday birthdayParser) (*contacts.Contact, error) {
	c := &contacts.Contact{}
	var birthday sql.NullString
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Surname,
		&c.Email,
		&c.PhoneNumber,
		&birthday,
		&c.AdditionalInfo,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if birthday.Valid && birthday.String != "" {
		d, err := parseBirthday(birthday.String)
		if err != nil {
			return nil, fmt.Errorf("contact %d: %w", c.ID, err)
		}
		c.Birthday = &d
	}

	return c, nil
}

func birthdayValue(d *contacts.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// mapWriteError translates SQLite constraint failures into storage errors
func mapWriteError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrDuplicate
	}
	return err
}

// likePattern escapes LIKE wildcards and wraps the query for substring search
func likePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(query)) + "%"
}

// ListContacts returns contacts matching the given filters with pagination
func (s *Storage) ListContacts(ctx context.Context, filters ContactFilters) (*ContactListResult, error) {
	filters = filters.normalized()

	where := ""
	var args []any
	if q := strings.TrimSpace(filters.Query); q != "" {
		where = `WHERE LOWER(name) LIKE ? ESCAPE '\' OR LOWER(surname) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`
		p := likePattern(q)
		args = append(args, p, p, p)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM contacts ` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count contacts: %w", err)
	}

	query := `SELECT ` + contactColumns + ` FROM contacts ` + where + ` ORDER BY id ASC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, filters.Limit, filters.Skip)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := &ContactListResult{
		Contacts:   make([]*contacts.Contact, 0),
		TotalCount: total,
		Skip:       filters.Skip,
		Limit:      filters.Limit,
	}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		result.Contacts = append(result.Contacts, c)
	}

	return result, rows.Err()
}

// GetContact retrieves a contact by ID
func (s *Storage) GetContact(ctx context.Context, id int64) (*contacts.Contact, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateContact inserts a new contact
func (s *Storage) CreateContact(ctx context.Context, c *contacts.Contact) (*contacts.Contact, error) {
	now := time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts
		(name, surname, email, phone_number, birthday, additional_info, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.Name,
		c.Surname,
		c.Email,
		c.PhoneNumber,
		birthdayValue(c.Birthday),
		c.AdditionalInfo,
		now,
		now,
	)
	if err != nil {
		return nil, mapWriteError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return s.GetContact(ctx, id)
}

// UpdateContact applies a partial update inside a transaction
func (s *Storage) UpdateContact(ctx context.Context, id int64, patch contacts.Patch) (*contacts.Contact, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.Apply(patch)
	c.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE contacts
		SET name = ?, surname = ?, email = ?, phone_number = ?,
		    birthday = ?, additional_info = ?, updated_at = ?
		WHERE id = ?
	`,
		c.Name,
		c.Surname,
		c.Email,
		c.PhoneNumber,
		birthdayValue(c.Birthday),
		c.AdditionalInfo,
		c.UpdatedAt,
		id,
	)
	if err != nil {
		return nil, mapWriteError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.GetContact(ctx, id)
}

// DeleteContact removes a contact by ID
func (s *Storage) DeleteContact(ctx context.Context, id int64) (*contacts.Contact, error) {
	c, err := s.GetContact(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id); err != nil {
		return nil, err
	}

	return c, nil
}

// ListBirthdayContacts returns contacts with a non-null birthday.
// Birthdays are read leniently; callers must validate the month/day.
func (s *Storage) ListBirthdayContacts(ctx context.Context) ([]*contacts.Contact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE birthday IS NOT NULL AND birthday != ''
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*contacts.Contact
	for rows.Next() {
		c, err := scanContactWith(rows, lenientBirthday)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}
