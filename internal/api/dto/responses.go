package dto

import (
	"time"

	"github.com/eshaffer321/contactbook/internal/domain/contacts"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	Database      string `json:"database"`
	SchemaVersion int64  `json:"schema_version"`
	Error         string `json:"error,omitempty"`
}

// ContactResponse represents a contact in API responses.
type ContactResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Surname        string `json:"surname"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number"`
	Birthday       string `json:"birthday,omitempty"`
	AdditionalInfo string `json:"additional_info,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

// ContactListResponse is returned when listing contacts.
type ContactListResponse struct {
	Contacts   []ContactResponse `json:"contacts"`
	TotalCount int               `json:"total_count"`
	Skip       int               `json:"skip"`
	Limit      int               `json:"limit"`
}

// UpcomingBirthdayResponse is a contact with its next birthday in the window.
type UpcomingBirthdayResponse struct {
	ContactResponse
	NextBirthday string `json:"next_birthday"`
	DaysUntil    int    `json:"days_until"`
	TurningAge   int    `json:"turning_age,omitempty"`
}

// BirthdaysResponse is returned by the upcoming birthdays endpoint.
type BirthdaysResponse struct {
	Message  string                     `json:"message"`
	Days     int                        `json:"days"`
	Contacts []UpcomingBirthdayResponse `json:"contacts"`
}

// ImportSkipResponse describes a skipped vCard entry.
type ImportSkipResponse struct {
	Index  int    `json:"index"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

// ImportResponse is returned after a vCard import.
type ImportResponse struct {
	Created []ContactResponse    `json:"created"`
	Skipped []ImportSkipResponse `json:"skipped"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// NewContactResponse converts a domain contact to its API form.
func NewContactResponse(c *contacts.Contact) ContactResponse {
	resp := ContactResponse{
		ID:             c.ID,
		Name:           c.Name,
		Surname:        c.Surname,
		Email:          c.Email,
		PhoneNumber:    c.PhoneNumber,
		AdditionalInfo: c.AdditionalInfo,
	}
	if c.Birthday != nil {
		resp.Birthday = c.Birthday.String()
	}
	if !c.CreatedAt.IsZero() {
		resp.CreatedAt = c.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !c.UpdatedAt.IsZero() {
		resp.UpdatedAt = c.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
