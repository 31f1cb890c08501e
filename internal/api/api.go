// Package api exposes carrier onboarding and matching over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/loadmatch/internal/config"
	"github.com/sells-group/loadmatch/internal/model"
	"github.com/sells-group/loadmatch/internal/onboard"
)

// Server handles API requests against one onboarding service.
type Server struct {
	svc          *onboard.Service
	cfg          config.ServerConfig
	defaultLimit int
}

// New creates a Server. defaultLimit caps match responses when a request
// does not set its own limit.
func New(svc *onboard.Service, cfg config.ServerConfig, defaultLimit int) *Server {
	return &Server{svc: svc, cfg: cfg, defaultLimit: defaultLimit}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		var l *rate.Limiter
		if s.cfg.RequestsPerSecond > 0 {
			l = rate.NewLimiter(rate.Limit(s.cfg.RequestsPerSecond), s.cfg.Burst)
		}
		r.Use(limit(l))
		r.Use(maxBody(s.cfg.MaxBodyBytes))

		r.Get("/carriers", s.listCarriers)
		r.Post("/carriers", s.onboard)
		r.Route("/carriers/{id}", func(r chi.Router) {
			r.Get("/", s.getCarrier)
			r.Post("/records", s.appendRecords)
			r.Get("/status", s.status)
			r.Post("/matches", s.matches)
		})
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listCarriers(w http.ResponseWriter, r *http.Request) {
	n := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		n = parsed
	}
	list, err := s.svc.Carriers(r.Context(), n)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"carriers": list})
}

func (s *Server) onboard(w http.ResponseWriter, r *http.Request) {
	var req onboard.Request
	if !decode(w, r, &req) {
		return
	}
	res, err := s.svc.Onboard(r.Context(), req)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// appendRecords adds an upload to an existing carrier. Unknown ids are 404
// so a typo does not silently create a new carrier.
func (s *Server) appendRecords(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req onboard.Request
	if !decode(w, r, &req) {
		return
	}
	req.CarrierID = id
	req.MustExist = true
	res, err := s.svc.Onboard(r.Context(), req)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) getCarrier(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	rep, err := s.svc.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// MatchRequest carries candidate loads either as raw records, which are
// normalized first, or as already-normalized loads.
type MatchRequest struct {
	Records []model.RawRecord `json:"records"`
	Loads   []model.Load      `json:"loads"`
	Limit   int               `json:"limit"`
}

func (s *Server) matches(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must be >= 0")
		return
	}
	limit := req.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}

	candidates, warnings := s.svc.Candidates(req.Records)
	candidates = append(candidates, req.Loads...)

	res, err := s.svc.Matches(r.Context(), chi.URLParam(r, "id"), candidates, limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	res.Warnings = append(warnings, res.Warnings...)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if eris.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusNotFound, "carrier not found")
		return
	}
	zap.L().Error("api: request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
