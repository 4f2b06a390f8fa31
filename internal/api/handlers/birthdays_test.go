package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/contactbook/internal/api/dto"
	"github.com/eshaffer321/contactbook/internal/api/handlers"
	"github.com/eshaffer321/contactbook/internal/domain/birthdays"
	"github.com/eshaffer321/contactbook/internal/domain/contacts"
	"github.com/eshaffer321/contactbook/internal/infrastructure/config"
	"github.com/eshaffer321/contactbook/internal/infrastructure/storage"
)

// seedBirthdays stores contacts around the year boundary relative to testNow (2024-12-28).
func seedBirthdays(repo *storage.MockRepository) {
	seedContact(repo, "January", "jan@example.com", &contacts.Date{Year: 1990, Month: time.January, Day: 2})
	seedContact(repo, "Today", "today@example.com", &contacts.Date{Month: time.December, Day: 28})
	seedContact(repo, "March", "mar@example.com", &contacts.Date{Year: 2000, Month: time.March, Day: 1})
	seedContact(repo, "NewYearsEve", "nye@example.com", &contacts.Date{Year: 1985, Month: time.December, Day: 31})
	seedContact(repo, "Nobody", "none@example.com", nil)
}

func TestBirthdaysHandler_List(t *testing.T) {
	t.Run("uses the default window and wraps the year", func(t *testing.T) {
		svc, repo := newTestService()
		seedBirthdays(repo)
		handler := handlers.NewBirthdaysHandler(svc, config.DefaultBirthdayDays, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/birthdays", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var response dto.BirthdaysResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))

		assert.Equal(t, 7, response.Days)
		assert.Equal(t, "3 birthdays in the next 7 days", response.Message)
		require.Len(t, response.Contacts, 3)

		assert.Equal(t, "Today", response.Contacts[0].Name)
		assert.Equal(t, "2024-12-28", response.Contacts[0].NextBirthday)
		assert.Equal(t, 0, response.Contacts[0].DaysUntil)
		assert.Zero(t, response.Contacts[0].TurningAge)

		assert.Equal(t, "NewYearsEve", response.Contacts[1].Name)
		assert.Equal(t, 3, response.Contacts[1].DaysUntil)
		assert.Equal(t, 39, response.Contacts[1].TurningAge)

		assert.Equal(t, "January", response.Contacts[2].Name)
		assert.Equal(t, "2025-01-02", response.Contacts[2].NextBirthday)
		assert.Equal(t, 5, response.Contacts[2].DaysUntil)
		assert.Equal(t, 35, response.Contacts[2].TurningAge)
	})

	t.Run("days parameter widens the window", func(t *testing.T) {
		svc, repo := newTestService()
		seedBirthdays(repo)
		handler := handlers.NewBirthdaysHandler(svc, config.DefaultBirthdayDays, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/birthdays?days=90", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var response dto.BirthdaysResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		require.Len(t, response.Contacts, 4)
		assert.Equal(t, "March", response.Contacts[3].Name)
		assert.Equal(t, "2025-03-01", response.Contacts[3].NextBirthday)
	})

	t.Run("zero days returns only today", func(t *testing.T) {
		svc, repo := newTestService()
		seedBirthdays(repo)
		handler := handlers.NewBirthdaysHandler(svc, config.DefaultBirthdayDays, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/birthdays?days=0", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var response dto.BirthdaysResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		require.Len(t, response.Contacts, 1)
		assert.Equal(t, "1 birthday in the next 0 days", response.Message)
	})

	t.Run("empty result still has a contacts array", func(t *testing.T) {
		svc, _ := newTestService()
		handler := handlers.NewBirthdaysHandler(svc, 14, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/birthdays", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"contacts":[]`)
		assert.Contains(t, rec.Body.String(), "No birthdays in the next 14 days")
	})

	t.Run("rejects negative and malformed days", func(t *testing.T) {
		svc, repo := newTestService()
		repo.ListBirthdaysErr = errors.New("must not be called")
		handler := handlers.NewBirthdaysHandler(svc, config.DefaultBirthdayDays, testLogger())

		for _, q := range []string{"-1", "abc", "1.5"} {
			req := httptest.NewRequest(http.MethodGet, "/api/birthdays?days="+q, nil)
			rec := httptest.NewRecorder()

			handler.List(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code, q)
			var apiErr dto.APIError
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
			assert.Equal(t, dto.ErrCodeBadRequest, apiErr.Code)
		}
	})

	t.Run("rejects days beyond the maximum horizon", func(t *testing.T) {
		svc, repo := newTestService()
		repo.ListBirthdaysErr = errors.New("must not be called")
		handler := handlers.NewBirthdaysHandler(svc, config.DefaultBirthdayDays, testLogger())

		for _, q := range []string{"36601", "2000000000"} {
			req := httptest.NewRequest(http.MethodGet, "/api/birthdays?days="+q, nil)
			rec := httptest.NewRecorder()

			handler.List(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code, q)
			assert.Contains(t, rec.Body.String(), "between 0 and 36600", q)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/birthdays/calendar.ics?days=2000000000", nil)
		rec := httptest.NewRecorder()
		handler.Calendar(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("accepts the maximum horizon", func(t *testing.T) {
		svc, repo := newTestService()
		seedContact(repo, "Once", "once@example.com", &contacts.Date{Year: 1990, Month: time.January, Day: 2})
		handler := handlers.NewBirthdaysHandler(svc, config.DefaultBirthdayDays, testLogger())

		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/birthdays?days=%d", birthdays.MaxHorizonDays), nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var response dto.BirthdaysResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Len(t, response.Contacts, 101)
	})

	t.Run("returns 500 on repository error", func(t *testing.T) {
		svc, repo := newTestService()
		repo.ListBirthdaysErr = errors.New("boom")
		handler := handlers.NewBirthdaysHandler(svc, config.DefaultBirthdayDays, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/birthdays", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestBirthdaysHandler_Calendar(t *testing.T) {
	t.Run("writes one event per occurrence", func(t *testing.T) {
		svc, repo := newTestService()
		seedBirthdays(repo)
		handler := handlers.NewBirthdaysHandler(svc, config.DefaultBirthdayDays, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/birthdays/calendar.ics", nil)
		rec := httptest.NewRecorder()

		handler.Calendar(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")

		body := rec.Body.String()
		assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR"))
		assert.Equal(t, 3, strings.Count(body, "BEGIN:VEVENT"))
		assert.Contains(t, body, "1-20250102@contactbook")
		assert.Contains(t, body, "January Test's birthday (35)")
		assert.Contains(t, body, "Today Test's birthday")
	})

	t.Run("serves an empty calendar", func(t *testing.T) {
		svc, _ := newTestService()
		handler := handlers.NewBirthdaysHandler(svc, config.DefaultBirthdayDays, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/birthdays/calendar.ics?days=3", nil)
		rec := httptest.NewRecorder()

		handler.Calendar(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "END:VCALENDAR")
		assert.NotContains(t, rec.Body.String(), "BEGIN:VEVENT")
	})

	t.Run("rejects negative days", func(t *testing.T) {
		svc, _ := newTestService()
		handler := handlers.NewBirthdaysHandler(svc, config.DefaultBirthdayDays, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/birthdays/calendar.ics?days=-2", nil)
		rec := httptest.NewRecorder()

		handler.Calendar(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
