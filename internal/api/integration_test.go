package api_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/contactbook/internal/api"
	"github.com/eshaffer321/contactbook/internal/api/dto"
	"github.com/eshaffer321/contactbook/internal/application/service"
	"github.com/eshaffer321/contactbook/internal/infrastructure/storage"
)

// =============================================================================
// API Integration Tests
// =============================================================================
// These tests use real SQLite databases to test the full stack:
// HTTP request → Router → Handlers → Service → Storage → SQLite
//
// This catches issues that mock-based tests miss, like:
// - birthday column round trips (year-less dates, NULL)
// - unique constraint mapping to 409
// - router configuration and middleware

func createTestServer(t *testing.T, now time.Time) (*httptest.Server, *storage.Storage, func()) {
	t.Helper()

	// Create temp database
	tmpFile, err := os.CreateTemp("", "api_integration_*.db")
	require.NoError(t, err)
	tmpFile.Close()

	// Create real storage
	store, err := storage.NewStorage(tmpFile.Name())
	require.NoError(t, err)

	// Create real server with real storage
	svc := service.NewContactService(store, service.FixedClock(now), time.UTC, nil)
	server := api.NewServer(api.DefaultConfig(), svc, nil) // nil logger = use default

	// Create test server
	ts := httptest.NewServer(server.Router())

	cleanup := func() {
		ts.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	}

	return ts, store, cleanup
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func doRequest(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func contactJSON(name, email, phone, birthday string) string {
	if birthday == "" {
		return fmt.Sprintf(`{"name":%q,"surname":"Test","email":%q,"phone_number":%q}`, name, email, phone)
	}
	return fmt.Sprintf(`{"name":%q,"surname":"Test","email":%q,"phone_number":%q,"birthday":%q}`, name, email, phone, birthday)
}

func TestAPI_Integration_HealthCheck(t *testing.T) {
	ts, _, cleanup := createTestServer(t, time.Now())
	defer cleanup()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health dto.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "ok", health.Database)
	assert.Equal(t, int64(2), health.SchemaVersion)
}

func TestAPI_Integration_ContactLifecycle(t *testing.T) {
	ts, _, cleanup := createTestServer(t, time.Now())
	defer cleanup()

	// Create
	resp := postJSON(t, ts.URL+"/api/contacts", contactJSON("Ada", "ada@example.com", "+44 1", "1815-12-10"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.ContactResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.NotZero(t, created.ID)
	assert.NotEmpty(t, created.CreatedAt)

	url := fmt.Sprintf("%s/api/contacts/%d", ts.URL, created.ID)

	// Read
	resp, err := http.Get(url)
	require.NoError(t, err)
	var fetched dto.ContactResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fetched))
	resp.Body.Close()
	assert.Equal(t, "1815-12-10", fetched.Birthday)

	// Partial update keeps untouched fields
	resp = doRequest(t, http.MethodPatch, url, `{"birthday":"--12-10","additional_info":"Analyst"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated dto.ContactResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	resp.Body.Close()
	assert.Equal(t, "Ada", updated.Name)
	assert.Equal(t, "ada@example.com", updated.Email)
	assert.Equal(t, "--12-10", updated.Birthday)
	assert.Equal(t, "Analyst", updated.AdditionalInfo)

	// Clear birthday
	resp = doRequest(t, http.MethodPut, url, `{"birthday":null}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	resp.Body.Close()
	assert.Empty(t, updated.Birthday)

	// Delete, then 404
	resp = doRequest(t, http.MethodDelete, url, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(url)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_Integration_Duplicates(t *testing.T) {
	ts, _, cleanup := createTestServer(t, time.Now())
	defer cleanup()

	resp := postJSON(t, ts.URL+"/api/contacts", contactJSON("Ada", "ada@example.com", "1", ""))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	t.Run("same email returns 409", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/contacts", contactJSON("Other", "ada@example.com", "2", ""))
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("same phone returns 409", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/contacts", contactJSON("Other", "other@example.com", "1", ""))
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestAPI_Integration_ListContacts(t *testing.T) {
	ts, _, cleanup := createTestServer(t, time.Now())
	defer cleanup()

	for i, name := range []string{"Ada", "Alan", "Grace", "Edsger"} {
		resp := postJSON(t, ts.URL+"/api/contacts",
			contactJSON(name, strings.ToLower(name)+"@example.com", fmt.Sprintf("555-%d", i), ""))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	list := func(t *testing.T, query string) dto.ContactListResponse {
		t.Helper()
		resp, err := http.Get(ts.URL + "/api/contacts" + query)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out dto.ContactListResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out
	}

	t.Run("list all contacts", func(t *testing.T) {
		out := list(t, "")
		assert.Equal(t, 4, out.TotalCount)
		assert.Len(t, out.Contacts, 4)
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		out := list(t, "?q=GRACE")
		require.Equal(t, 1, out.TotalCount)
		assert.Equal(t, "Grace", out.Contacts[0].Name)
	})

	t.Run("pagination", func(t *testing.T) {
		out := list(t, "?skip=1&limit=2")
		assert.Equal(t, 4, out.TotalCount)
		require.Len(t, out.Contacts, 2)
		assert.Equal(t, "Alan", out.Contacts[0].Name)
		assert.Equal(t, "Grace", out.Contacts[1].Name)
	})
}

func TestAPI_Integration_UpcomingBirthdays(t *testing.T) {
	// Reference date near the year boundary.
	ts, _, cleanup := createTestServer(t, time.Date(2023, time.December, 30, 20, 0, 0, 0, time.UTC))
	defer cleanup()

	for i, c := range []struct{ name, birthday string }{
		{"Later", "1990-01-20"},
		{"Soon", "1990-01-02"},
		{"Leap", "2000-02-29"},
		{"Yearless", "--12-31"},
		{"Past", "1980-12-01"},
		{"NoBirthday", ""},
	} {
		resp := postJSON(t, ts.URL+"/api/contacts",
			contactJSON(c.name, fmt.Sprintf("p%d@example.com", i), fmt.Sprintf("555-%d", i), c.birthday))
		require.Equal(t, http.StatusCreated, resp.StatusCode, c.name)
		resp.Body.Close()
	}

	get := func(t *testing.T, days string) dto.BirthdaysResponse {
		t.Helper()
		resp, err := http.Get(ts.URL + "/api/birthdays" + days)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out dto.BirthdaysResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out
	}

	t.Run("default window spans the new year", func(t *testing.T) {
		out := get(t, "")
		require.Len(t, out.Contacts, 2)
		assert.Equal(t, "Yearless", out.Contacts[0].Name)
		assert.Equal(t, "2023-12-31", out.Contacts[0].NextBirthday)
		assert.Equal(t, "Soon", out.Contacts[1].Name)
		assert.Equal(t, "2024-01-02", out.Contacts[1].NextBirthday)
		assert.Equal(t, 34, out.Contacts[1].TurningAge)
	})

	t.Run("leap year keeps Feb 29", func(t *testing.T) {
		out := get(t, "?days=61")
		names := make([]string, 0, len(out.Contacts))
		for _, c := range out.Contacts {
			names = append(names, c.Name)
		}
		assert.Equal(t, []string{"Yearless", "Soon", "Later", "Leap"}, names)
		assert.Equal(t, "2024-02-29", out.Contacts[3].NextBirthday)
	})

	t.Run("negative days returns 400", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/birthdays?days=-1")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("calendar feed", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/birthdays/calendar.ics")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(string(body), "BEGIN:VEVENT"))
	})
}

func TestAPI_Integration_ImportExport(t *testing.T) {
	ts, _, cleanup := createTestServer(t, time.Now())
	defer cleanup()

	cards := "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Ada Lovelace\r\nN:Lovelace;Ada;;;\r\n" +
		"EMAIL:ada@example.com\r\nTEL:+44 1\r\nBDAY:--1210\r\nEND:VCARD\r\n" +
		"BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Grace Hopper\r\nN:Hopper;Grace;;;\r\n" +
		"EMAIL:grace@example.com\r\nTEL:+1 2\r\nEND:VCARD\r\n"

	resp, err := http.Post(ts.URL+"/api/contacts/import", "text/vcard", strings.NewReader(cards))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var imported dto.ImportResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&imported))
	resp.Body.Close()
	assert.Len(t, imported.Created, 2)
	assert.Empty(t, imported.Skipped)

	// Importing again reports every card as a duplicate.
	resp, err = http.Post(ts.URL+"/api/contacts/import", "text/vcard", strings.NewReader(cards))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&imported))
	resp.Body.Close()
	assert.Empty(t, imported.Created)
	assert.Len(t, imported.Skipped, 2)

	resp, err = http.Get(ts.URL + "/api/contacts/export.vcf")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(body), "BEGIN:VCARD"))
	assert.Contains(t, string(body), "BDAY:--1210")
}
