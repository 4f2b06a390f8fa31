package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/contactbook/internal/api/dto"
	"github.com/eshaffer321/contactbook/internal/application/service"
	"github.com/eshaffer321/contactbook/internal/domain/birthdays"
	"github.com/eshaffer321/contactbook/internal/domain/contacts"
	"github.com/eshaffer321/contactbook/internal/infrastructure/storage"
)

// maxBodyBytes caps request bodies, vCard imports included.
const maxBodyBytes = 4 << 20

// Base provides shared functionality for all handlers.
type Base struct {
	svc    *service.ContactService
	logger *slog.Logger
}

// NewBase creates a new base handler with the given service.
func NewBase(svc *service.ContactService, logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{svc: svc, logger: logger}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(w http.ResponseWriter, status int, err dto.APIError) {
	b.WriteJSON(w, status, err)
}

// WriteServiceError maps domain and storage errors onto HTTP responses.
func (b *Base) WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *contacts.ValidationError
	switch {
	case errors.As(err, &verr):
		b.WriteError(w, http.StatusBadRequest, dto.ValidationError("invalid contact", verr.Fields))
	case errors.Is(err, storage.ErrDuplicate):
		b.WriteError(w, http.StatusConflict, dto.ConflictError(storage.ErrDuplicate.Error()))
	case errors.Is(err, service.ErrEmptyPatch):
		b.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
	case errors.Is(err, birthdays.ErrInvalidWindow):
		b.WriteError(w, http.StatusBadRequest, dto.BadRequestError(fmt.Sprintf("days must be an integer between 0 and %d", birthdays.MaxHorizonDays)))
	default:
		b.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		b.WriteError(w, http.StatusInternalServerError, dto.InternalError())
	}
}

// DecodeJSON reads a size-limited JSON body, rejecting unknown fields.
func (b *Base) DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		b.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body: "+err.Error()))
		return false
	}
	return true
}

// ParseIDParam reads the {id} URL parameter, writing a 400 when it is not a positive integer.
func (b *Base) ParseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		b.WriteError(w, http.StatusBadRequest, dto.BadRequestError("contact ID must be a positive integer"))
		return 0, false
	}
	return id, true
}

// ParseIntParam parses an integer query parameter with a default value.
func ParseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseStrictIntParam parses an integer query parameter, reporting malformed values.
func ParseStrictIntParam(r *http.Request, name string, defaultVal int) (int, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(val)
}
