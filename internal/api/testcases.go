package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/seantiz/kiln/internal/model"
	"github.com/seantiz/kiln/internal/store"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// listTestcasesResponse wraps the paginated list response.
type listTestcasesResponse struct {
	Testcases []*model.TestcaseRecord `json:"testcases"`
	Total     int                     `json:"total"`
	Limit     int                     `json:"limit"`
	Offset    int                     `json:"offset"`
}

func (s *Server) handleListTestcases(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", defaultListLimit)
	offset := parseIntQuery(r, "offset", 0)

	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	recs, total, err := s.store.ListTestcases(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("list testcases", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list testcases")
		return
	}

	if recs == nil {
		recs = []*model.TestcaseRecord{}
	}

	s.writeJSON(w, http.StatusOK, listTestcasesResponse{
		Testcases: recs,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	})
}

func (s *Server) lookupTestcase(w http.ResponseWriter, r *http.Request) (*model.TestcaseRecord, bool) {
	id := chi.URLParam(r, "id")

	rec, err := s.store.GetTestcase(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "testcase not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error("get testcase", "testcase_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get testcase")
		return nil, false
	}
	return rec, true
}

func (s *Server) handleGetTestcase(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookupTestcase(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// handleGetTestcaseInput serves the raw serialized input of a testcase.
func (s *Server) handleGetTestcaseInput(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookupTestcase(w, r)
	if !ok {
		return
	}

	data, err := os.ReadFile(rec.Filename)
	if errors.Is(err, os.ErrNotExist) {
		s.writeError(w, http.StatusGone, "testcase input no longer on disk")
		return
	}
	if err != nil {
		s.logger.Error("read testcase input", "testcase_id", rec.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to read testcase input")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	n, err := w.Write(data)
	inputBytesServed.Add(float64(n))
	if err != nil {
		s.logger.Debug("write testcase input", "error", err)
	}
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
