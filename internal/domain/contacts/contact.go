// Package contacts holds the contact entity and its update rules.
package contacts

import "time"

// Contact is a person in the address book.
type Contact struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name" validate:"required,max=50"`
	Surname        string    `json:"surname" validate:"required,max=50"`
	Email          string    `json:"email" validate:"required,email"`
	PhoneNumber    string    `json:"phone_number" validate:"required,max=25"`
	Birthday       *Date     `json:"birthday,omitempty" validate:"omitempty,calendar_date"`
	AdditionalInfo string    `json:"additional_info,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FullName joins name and surname.
func (c Contact) FullName() string {
	if c.Surname == "" {
		return c.Name
	}
	if c.Name == "" {
		return c.Surname
	}
	return c.Name + " " + c.Surname
}

// Patch is a partial update. Nil fields are left untouched.
// ClearBirthday removes the birthday and wins over Birthday.
type Patch struct {
	Name           *string
	Surname        *string
	Email          *string
	PhoneNumber    *string
	Birthday       *Date
	ClearBirthday  bool
	AdditionalInfo *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Surname == nil && p.Email == nil && p.PhoneNumber == nil &&
		p.Birthday == nil && !p.ClearBirthday && p.AdditionalInfo == nil
}

// Apply merges the set fields of p into c.
func (c *Contact) Apply(p Patch) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Surname != nil {
		c.Surname = *p.Surname
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.PhoneNumber != nil {
		c.PhoneNumber = *p.PhoneNumber
	}
	if p.Birthday != nil {
		b := *p.Birthday
		c.Birthday = &b
	}
	if p.ClearBirthday {
		c.Birthday = nil
	}
	if p.AdditionalInfo != nil {
		c.AdditionalInfo = *p.AdditionalInfo
	}
}
