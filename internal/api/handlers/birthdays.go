package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/eshaffer321/contactbook/internal/adapters/vcard"
	"github.com/eshaffer321/contactbook/internal/api/dto"
	"github.com/eshaffer321/contactbook/internal/application/service"
	"github.com/eshaffer321/contactbook/internal/domain/birthdays"
	"github.com/eshaffer321/contactbook/internal/infrastructure/config"
)

// BirthdaysHandler handles upcoming birthday requests.
type BirthdaysHandler struct {
	*Base
	defaultDays int
}

// NewBirthdaysHandler creates a new birthdays handler.
func NewBirthdaysHandler(svc *service.ContactService, defaultDays int, logger *slog.Logger) *BirthdaysHandler {
	if defaultDays < 0 || defaultDays > birthdays.MaxHorizonDays {
		defaultDays = config.DefaultBirthdayDays
	}
	return &BirthdaysHandler{
		Base:        NewBase(svc, logger),
		defaultDays: defaultDays,
	}
}

// days reads the ?days= parameter, writing a 400 when it is malformed or out of range.
func (h *BirthdaysHandler) days(w http.ResponseWriter, r *http.Request) (int, bool) {
	days, err := ParseStrictIntParam(r, "days", h.defaultDays)
	if err != nil || days < 0 || days > birthdays.MaxHorizonDays {
		h.WriteServiceError(w, r, birthdays.ErrInvalidWindow)
		return 0, false
	}
	return days, true
}

// List handles GET /api/birthdays - contacts with a birthday in the next N days.
func (h *BirthdaysHandler) List(w http.ResponseWriter, r *http.Request) {
	days, ok := h.days(w, r)
	if !ok {
		return
	}

	upcoming, err := h.svc.UpcomingBirthdays(r.Context(), days)
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}

	response := dto.BirthdaysResponse{
		Message:  birthdayMessage(len(upcoming), days),
		Days:     days,
		Contacts: make([]dto.UpcomingBirthdayResponse, 0, len(upcoming)),
	}
	for _, u := range upcoming {
		response.Contacts = append(response.Contacts, dto.UpcomingBirthdayResponse{
			ContactResponse: dto.NewContactResponse(u.Contact),
			NextBirthday:    u.Occurrence.Format("2006-01-02"),
			DaysUntil:       u.DaysUntil,
			TurningAge:      u.TurningAge,
		})
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Calendar handles GET /api/birthdays/calendar.ics.
func (h *BirthdaysHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	days, ok := h.days(w, r)
	if !ok {
		return
	}

	upcoming, err := h.svc.UpcomingBirthdays(r.Context(), days)
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}

	events := make([]vcard.BirthdayEvent, 0, len(upcoming))
	for _, u := range upcoming {
		events = append(events, vcard.BirthdayEvent{
			Contact:    u.Contact,
			Occurrence: u.Occurrence,
			TurningAge: u.TurningAge,
		})
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="birthdays.ics"`)
	if err := vcard.EncodeCalendar(w, events, h.svc.Today()); err != nil {
		h.logger.Error("calendar encode failed", slog.Any("error", err))
	}
}

func birthdayMessage(count, days int) string {
	switch {
	case count == 0:
		return fmt.Sprintf("No birthdays in the next %d days", days)
	case count == 1:
		return fmt.Sprintf("1 birthday in the next %d days", days)
	default:
		return fmt.Sprintf("%d birthdays in the next %d days", count, days)
	}
}
