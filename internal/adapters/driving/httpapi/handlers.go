package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/logger"
)

// maxLimit caps the number of hits one request may ask for.
const maxLimit = 100

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("http: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSearch answers GET and form POST requests carrying "query" and an
// optional "limit".
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.FormValue("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "No query provided")
		return
	}

	var opts domain.SearchOptions
	if v := r.FormValue("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxLimit))
			return
		}
		opts.Limit = n
	}

	hits, err := s.search.Search(r.Context(), query, opts)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, hits)
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "No query provided")
	case errors.Is(err, domain.ErrSearchUnavailable):
		l := logger.Ctx(r.Context())
		l.Warn().Err(err).Msg("search unavailable")
		writeError(w, http.StatusServiceUnavailable, "Search service error. Please try again later.")
	default:
		l := logger.Ctx(r.Context())
		l.Error().Err(err).Msg("search failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// handleObject serves a stored object to the holder of a valid signed URL.
func (s *Server) handleObject(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if s.signer == nil {
		writeError(w, http.StatusForbidden, "url signing disabled")
		return
	}

	opts, err := s.signer.Verify(name, r.URL.Query(), s.clock.Now())
	if err != nil {
		msg := "invalid signature"
		if errors.Is(err, domain.ErrExpired) {
			msg = "link expired"
		}
		writeError(w, http.StatusForbidden, msg)
		return
	}

	info, err := s.store.Properties(r.Context(), name)
	if err != nil {
		s.objectError(w, r, name, err)
		return
	}
	data, err := s.store.Read(r.Context(), name)
	if err != nil {
		s.objectError(w, r, name, err)
		return
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = info.ContentType
	}
	if contentType == "" {
		contentType = domain.ContentTypeFromName(name)
	}

	h := w.Header()
	h.Set("Content-Type", contentType)
	if opts.ContentDisposition != "" {
		h.Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", opts.ContentDisposition, path.Base(name)))
	}
	if info.ETag != "" {
		h.Set("ETag", strconv.Quote(info.ETag))
	}
	h.Set("Cache-Control", fmt.Sprintf("private, max-age=%d", int(opts.TTL.Seconds())))
	h.Set("X-Content-Type-Options", "nosniff")

	http.ServeContent(w, r, name, info.LastModified, bytes.NewReader(data))
}

func (s *Server) objectError(w http.ResponseWriter, r *http.Request, name string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "object not found")
		return
	}
	l := logger.Ctx(r.Context())
	l.Warn().Err(err).Str("object", name).Msg("object read failed")
	writeError(w, http.StatusServiceUnavailable, "object store unavailable")
}
