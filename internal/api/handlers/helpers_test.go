package handlers_test

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/contactbook/internal/application/service"
	"github.com/eshaffer321/contactbook/internal/domain/contacts"
	"github.com/eshaffer321/contactbook/internal/infrastructure/storage"
)

var testNow = time.Date(2024, time.December, 28, 15, 30, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestService() (*service.ContactService, *storage.MockRepository) {
	repo := storage.NewMockRepository()
	svc := service.NewContactService(repo, service.FixedClock(testNow), time.UTC, testLogger())
	return svc, repo
}

func seedContact(repo *storage.MockRepository, name, email string, bday *contacts.Date) *contacts.Contact {
	return repo.AddContact(&contacts.Contact{
		Name:        name,
		Surname:     "Test",
		Email:       email,
		PhoneNumber: "+1-" + name,
		Birthday:    bday,
	})
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(withChiParam(r.Context(), key, value))
}

func withChiParam(ctx context.Context, key, value string) context.Context {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return context.WithValue(ctx, chi.RouteCtxKey, rctx)
}
