package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cwhuang/bsmiweb/internal/bsmi"
	"github.com/cwhuang/bsmiweb/internal/database"
	"github.com/cwhuang/bsmiweb/internal/lookup"
	"github.com/cwhuang/bsmiweb/internal/model"
)

// fakeLookuper serves a canned lookup result or error.
type fakeLookuper struct {
	result *model.LookupResult
	err    error
}

func (f *fakeLookuper) Lookup(_ context.Context, _ model.Mark) (*model.LookupResult, error) {
	return f.result, f.err
}

// fakeStore serves canned listing results.
type fakeStore struct {
	regs    []model.Registration
	entries []database.MarkEntry
	err     error
}

func (f *fakeStore) ListByTaxID(_ context.Context, _ string) ([]model.Registration, error) {
	return f.regs, f.err
}

func (f *fakeStore) ListMarks(_ context.Context) ([]database.MarkEntry, error) {
	return f.entries, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleResult() *model.LookupResult {
	return &model.LookupResult{
		Registration: &model.Registration{
			ID:    "R45879",
			TaxID: "82781974",
			Certificates: []model.Certificate{
				{ID: "CI450068790054", RegistrationID: "R45879"},
			},
		},
		Authorizations: []model.Authorization{
			{ID: "CI450078790054", CertificateID: "CI450068790054"},
		},
	}
}

// get performs a request against the server's router.
func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

// TestHandleLookup tests the registration lookup route.
func TestHandleLookup(t *testing.T) {
	t.Parallel()

	t.Run("serves the result as JSON", func(t *testing.T) {
		t.Parallel()

		s := New(&fakeLookuper{result: sampleResult()}, &fakeStore{}, WithLogger(quietLogger()))
		rec := get(t, s, "/bsmi/R45879")

		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d, expected %d", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("Content-Type: got %q", ct)
		}

		var result model.LookupResult
		if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
			t.Fatalf("invalid JSON response: %v", err)
		}
		if result.Registration.ID != "R45879" {
			t.Errorf("ID: got %q, expected %q", result.Registration.ID, "R45879")
		}
		if len(result.Authorizations) != 1 {
			t.Errorf("got %d authorizations, expected 1", len(result.Authorizations))
		}
	})

	t.Run("malformed mark code answers 404", func(t *testing.T) {
		t.Parallel()

		s := New(&fakeLookuper{result: sampleResult()}, &fakeStore{}, WithLogger(quietLogger()))
		rec := get(t, s, "/bsmi/not-a-mark")

		if rec.Code != http.StatusNotFound {
			t.Errorf("status: got %d, expected %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("unknown mark answers 404", func(t *testing.T) {
		t.Parallel()

		s := New(&fakeLookuper{err: lookup.ErrNotFound}, &fakeStore{}, WithLogger(quietLogger()))
		rec := get(t, s, "/bsmi/R00000")

		if rec.Code != http.StatusNotFound {
			t.Errorf("status: got %d, expected %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("origin failure answers 502", func(t *testing.T) {
		t.Parallel()

		err := &bsmi.FetchError{URL: "https://civil.bsmi.gov.tw", StatusCode: http.StatusServiceUnavailable}
		s := New(&fakeLookuper{err: err}, &fakeStore{}, WithLogger(quietLogger()))
		rec := get(t, s, "/bsmi/R45879")

		if rec.Code != http.StatusBadGateway {
			t.Errorf("status: got %d, expected %d", rec.Code, http.StatusBadGateway)
		}
	})

	t.Run("store failure answers 500", func(t *testing.T) {
		t.Parallel()

		s := New(&fakeLookuper{err: errors.New("disk failure")}, &fakeStore{}, WithLogger(quietLogger()))
		rec := get(t, s, "/bsmi/R45879")

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status: got %d, expected %d", rec.Code, http.StatusInternalServerError)
		}
	})
}

// TestHandleTaxID tests the tax-identifier listing route.
func TestHandleTaxID(t *testing.T) {
	t.Parallel()

	t.Run("serves the registration list", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{regs: []model.Registration{{ID: "R45879"}, {ID: "T33456"}}}
		s := New(&fakeLookuper{}, store, WithLogger(quietLogger()))
		rec := get(t, s, "/taxid/82781974")

		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d, expected %d", rec.Code, http.StatusOK)
		}

		var regs []model.Registration
		if err := json.Unmarshal(rec.Body.Bytes(), &regs); err != nil {
			t.Fatalf("invalid JSON response: %v", err)
		}
		if len(regs) != 2 {
			t.Errorf("got %d registrations, expected 2", len(regs))
		}
	})

	t.Run("unknown tax id yields an empty array", func(t *testing.T) {
		t.Parallel()

		s := New(&fakeLookuper{}, &fakeStore{}, WithLogger(quietLogger()))
		rec := get(t, s, "/taxid/00000000")

		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d, expected %d", rec.Code, http.StatusOK)
		}
		if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
			t.Errorf("got %q, expected an empty JSON array", body)
		}
	})
}

// TestHandleSitemap tests the sitemap route.
func TestHandleSitemap(t *testing.T) {
	t.Parallel()

	t.Run("serves absolute URLs with last-modified dates", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{entries: []database.MarkEntry{
			{ID: "R45879", UpdatedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)},
		}}
		s := New(&fakeLookuper{}, store,
			WithBaseURL("https://bsmi.example.com"), WithLogger(quietLogger()))
		rec := get(t, s, "/sitemap.xml")

		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d, expected %d", rec.Code, http.StatusOK)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "<loc>https://bsmi.example.com/bsmi/R45879</loc>") {
			t.Errorf("sitemap missing entry URL:\n%s", body)
		}
		if !strings.Contains(body, "<lastmod>2026-08-30</lastmod>") {
			t.Errorf("sitemap missing lastmod:\n%s", body)
		}
	})

	t.Run("answers 404 without a base URL", func(t *testing.T) {
		t.Parallel()

		s := New(&fakeLookuper{}, &fakeStore{}, WithLogger(quietLogger()))
		rec := get(t, s, "/sitemap.xml")

		if rec.Code != http.StatusNotFound {
			t.Errorf("status: got %d, expected %d", rec.Code, http.StatusNotFound)
		}
	})
}

// TestHandleHealthz tests the liveness probe.
func TestHandleHealthz(t *testing.T) {
	t.Parallel()

	s := New(&fakeLookuper{}, &fakeStore{}, WithLogger(quietLogger()))
	rec := get(t, s, "/healthz")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, expected %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("got %q, expected status ok body", rec.Body.String())
	}
}
