// Package vcard converts contacts to and from vCard and publishes upcoming
// birthdays as an iCalendar feed.
package vcard

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/google/uuid"

	"github.com/eshaffer321/contactbook/internal/domain/contacts"
)

// uidNamespace seeds the stable UUIDs used as vCard UIDs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://contactbook.local/contacts"))

// CardError reports a vCard entry that could not be converted.
type CardError struct {
	Index int
	Name  string
	Err   error
}

func (e *CardError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("card %d (%s): %v", e.Index, e.Name, e.Err)
	}
	return fmt.Sprintf("card %d: %v", e.Index, e.Err)
}

func (e *CardError) Unwrap() error {
	return e.Err
}

// DecodeContacts reads every card in r.
// Cards that cannot be decoded or converted are reported and skipped;
// the returned error is non-nil only when the stream itself is unreadable.
func DecodeContacts(r io.Reader) ([]contacts.Contact, []*CardError, error) {
	dec := vcard.NewDecoder(r)

	var out []contacts.Contact
	var skipped []*CardError
	for i := 0; ; i++ {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if i == 0 {
				return nil, nil, fmt.Errorf("decode vcard: %w", err)
			}
			// The decoder cannot resync after a malformed card.
			skipped = append(skipped, &CardError{Index: i, Err: err})
			break
		}

		c, err := cardToContact(card)
		if err != nil {
			skipped = append(skipped, &CardError{Index: i, Name: card.Value(vcard.FieldFormattedName), Err: err})
			continue
		}
		out = append(out, c)
	}

	return out, skipped, nil
}

func cardToContact(card vcard.Card) (contacts.Contact, error) {
	var c contacts.Contact

	if n := card.Name(); n != nil && (n.GivenName != "" || n.FamilyName != "") {
		c.Name = strings.TrimSpace(n.GivenName)
		c.Surname = strings.TrimSpace(n.FamilyName)
	}
	if c.Name == "" {
		fn := strings.TrimSpace(card.Value(vcard.FieldFormattedName))
		first, rest, _ := strings.Cut(fn, " ")
		c.Name = first
		if c.Surname == "" {
			c.Surname = strings.TrimSpace(rest)
		}
	}

	c.Email = strings.TrimSpace(card.PreferredValue(vcard.FieldEmail))
	c.PhoneNumber = strings.TrimSpace(card.PreferredValue(vcard.FieldTelephone))
	c.AdditionalInfo = strings.TrimSpace(card.Value(vcard.FieldNote))

	if raw := strings.TrimSpace(card.Value(vcard.FieldBirthday)); raw != "" {
		d, err := ParseBirthday(raw)
		if err != nil {
			return contacts.Contact{}, err
		}
		c.Birthday = &d
	}

	return c, nil
}

// ParseBirthday handles the BDAY forms seen in vCard 3.0 and 4.0.
func ParseBirthday(value string) (contacts.Date, error) {
	withYear := []string{
		"2006-01-02",
		"20060102",
		time.RFC3339,
		"20060102T150405Z",
		"2006-01-02T15:04:05",
	}
	for _, layout := range withYear {
		if t, err := time.Parse(layout, value); err == nil {
			if t.Year() == 0 {
				return contacts.Date{}, fmt.Errorf("birthday %q: %w", value, contacts.ErrYearZero)
			}
			return contacts.NewDate(t), nil
		}
	}

	// Year-less dates: --MMDD and --MM-DD
	if strings.HasPrefix(value, "--") {
		rest := strings.ReplaceAll(value[2:], "-", "")
		if len(rest) == 4 {
			m, errM := strconv.Atoi(rest[:2])
			d, errD := strconv.Atoi(rest[2:])
			if errM == nil && errD == nil {
				date := contacts.Date{Month: time.Month(m), Day: d}
				if date.IsValid() {
					return date, nil
				}
			}
		}
	}

	return contacts.Date{}, fmt.Errorf("unsupported birthday %q", value)
}

// ContactUID returns the stable vCard UID for a stored contact.
func ContactUID(id int64) string {
	return "urn:uuid:" + uuid.NewSHA1(uidNamespace, []byte(strconv.FormatInt(id, 10))).String()
}

// EncodeContacts writes the contacts as vCard 4.0.
func EncodeContacts(w io.Writer, list []*contacts.Contact) error {
	enc := vcard.NewEncoder(w)
	for _, c := range list {
		card := make(vcard.Card)
		card.SetValue(vcard.FieldUID, ContactUID(c.ID))
		card.SetValue(vcard.FieldFormattedName, c.FullName())
		card.SetName(&vcard.Name{GivenName: c.Name, FamilyName: c.Surname})
		if c.Email != "" {
			card.SetValue(vcard.FieldEmail, c.Email)
		}
		if c.PhoneNumber != "" {
			card.SetValue(vcard.FieldTelephone, c.PhoneNumber)
		}
		if c.Birthday != nil {
			card.SetValue(vcard.FieldBirthday, formatBirthday(*c.Birthday))
		}
		if c.AdditionalInfo != "" {
			card.SetValue(vcard.FieldNote, c.AdditionalInfo)
		}
		vcard.ToV4(card)

		if err := enc.Encode(card); err != nil {
			return fmt.Errorf("encode contact %d: %w", c.ID, err)
		}
	}
	return nil
}

// formatBirthday renders vCard 4.0 date-and-or-time values.
func formatBirthday(d contacts.Date) string {
	if !d.YearKnown() {
		return fmt.Sprintf("--%02d%02d", int(d.Month), d.Day)
	}
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
}
