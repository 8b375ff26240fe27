package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cwhuang/bsmiweb/internal/bsmi"
	"github.com/cwhuang/bsmiweb/internal/database"
	"github.com/cwhuang/bsmiweb/internal/lookup"
	"github.com/cwhuang/bsmiweb/internal/model"
)

// Lookuper resolves a mark code to its lookup result.
type Lookuper interface {
	Lookup(ctx context.Context, mark model.Mark) (*model.LookupResult, error)
}

// Store provides the read queries the HTTP surface needs beyond lookups.
type Store interface {
	ListByTaxID(ctx context.Context, taxID string) ([]model.Registration, error)
	ListMarks(ctx context.Context) ([]database.MarkEntry, error)
}

// Server handles HTTP requests for registration data.
type Server struct {
	// lookuper resolves mark codes through the cache policy.
	lookuper Lookuper

	// store serves the tax-id and sitemap queries.
	store Store

	// baseURL is the public base URL for sitemap links.
	// Empty disables the sitemap route's output.
	baseURL string

	// logger is used for request logging.
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithBaseURL sets the public base URL used for sitemap links.
func WithBaseURL(url string) Option {
	return func(s *Server) {
		s.baseURL = url
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a Server.
func New(lookuper Lookuper, store Store, opts ...Option) *Server {
	s := &Server{
		lookuper: lookuper,
		store:    store,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Routes returns a chi.Router with all handlers mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/bsmi/{id}", s.handleLookup)
	r.Get("/taxid/{taxId}", s.handleTaxID)
	r.Get("/sitemap.xml", s.handleSitemap)
	return r
}

// handleHealthz serves the liveness probe.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLookup serves one registration record with its authorizations.
//
// A malformed mark code and an unknown one both answer 404: neither names
// a resource this server has, and distinguishing them would only help
// probe traffic.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	mark, err := model.NewMark(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "registration not found")
		return
	}

	result, err := s.lookuper.Lookup(r.Context(), mark)
	if err != nil {
		switch {
		case errors.Is(err, lookup.ErrNotFound):
			s.writeError(w, http.StatusNotFound, "registration not found")
		default:
			var fetchErr *bsmi.FetchError
			if errors.As(err, &fetchErr) {
				s.logger.Error("origin fetch failed", "mark", mark.String(), "error", err)
				s.writeError(w, http.StatusBadGateway, "upstream lookup failed")
				return
			}
			s.logger.Error("lookup failed", "mark", mark.String(), "error", err)
			s.writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleTaxID lists registrations sharing a unified business number.
// An unknown tax id yields an empty list, not an error: the store can
// only know about registrations that were looked up at least once.
func (s *Server) handleTaxID(w http.ResponseWriter, r *http.Request) {
	regs, err := s.store.ListByTaxID(r.Context(), chi.URLParam(r, "taxId"))
	if err != nil {
		s.logger.Error("tax id listing failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}

	s.writeJSON(w, http.StatusOK, regs)
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
