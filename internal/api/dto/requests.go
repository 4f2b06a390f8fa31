package dto

import (
	"bytes"
	"encoding/json"

	"github.com/eshaffer321/contactbook/internal/domain/contacts"
)

// ContactRequest is the body for creating a contact.
type ContactRequest struct {
	Name           string         `json:"name"`
	Surname        string         `json:"surname"`
	Email          string         `json:"email"`
	PhoneNumber    string         `json:"phone_number"`
	Birthday       *contacts.Date `json:"birthday,omitempty"`
	AdditionalInfo string         `json:"additional_info,omitempty"`
}

// ToContact converts the request into a domain contact.
func (r ContactRequest) ToContact() contacts.Contact {
	return contacts.Contact{
		Name:           r.Name,
		Surname:        r.Surname,
		Email:          r.Email,
		PhoneNumber:    r.PhoneNumber,
		Birthday:       r.Birthday,
		AdditionalInfo: r.AdditionalInfo,
	}
}

// OptionalDate distinguishes an absent field from an explicit null.
type OptionalDate struct {
	Set   bool
	Value *contacts.Date
}

// UnmarshalJSON records that the field was present.
func (o *OptionalDate) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var d contacts.Date
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	o.Value = &d
	return nil
}

// ContactPatchRequest is the body for a partial update.
// Omitted fields are left untouched; "birthday": null clears the birthday.
type ContactPatchRequest struct {
	Name           *string      `json:"name"`
	Surname        *string      `json:"surname"`
	Email          *string      `json:"email"`
	PhoneNumber    *string      `json:"phone_number"`
	Birthday       OptionalDate `json:"birthday"`
	AdditionalInfo *string      `json:"additional_info"`
}

// ToPatch converts the request into a domain patch.
func (r ContactPatchRequest) ToPatch() contacts.Patch {
	return contacts.Patch{
		Name:           r.Name,
		Surname:        r.Surname,
		Email:          r.Email,
		PhoneNumber:    r.PhoneNumber,
		Birthday:       r.Birthday.Value,
		ClearBirthday:  r.Birthday.Set && r.Birthday.Value == nil,
		AdditionalInfo: r.AdditionalInfo,
	}
}

// ContactListParams represents query parameters for listing contacts.
type ContactListParams struct {
	Query string `json:"q"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
}

// DefaultContactListParams returns default values for contact list params.
func DefaultContactListParams() ContactListParams {
	return ContactListParams{
		Skip:  0,
		Limit: 100,
	}
}
