package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/JonMunkholm/pricemachine/internal/catalog"
	"github.com/JonMunkholm/pricemachine/internal/logging"
	"github.com/JonMunkholm/pricemachine/internal/report"
)

// maxQueryLength bounds the q parameter, in characters.
const maxQueryLength = 256

// SearchResponse is the body of GET /api/search.
type SearchResponse struct {
	Query   string       `json:"query"`
	Count   int          `json:"count"`
	Results []report.Row `json:"results"`
}

// FilesResponse is the body of GET /api/files.
type FilesResponse struct {
	Files       []string         `json:"files"`
	Skipped     []SkippedFile    `json:"skipped"`
	Records     int              `json:"records"`
	Diagnostics []DiagnosticView `json:"diagnostics"`
}

// SkippedFile is a file dropped during load.
type SkippedFile struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// DiagnosticView is a load diagnostic with its support code.
type DiagnosticView struct {
	Kind    string `json:"kind"`
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// search reads q, runs the query and records it.
func (s *Server) search(r *http.Request) (string, []catalog.Record, error) {
	q := r.URL.Query().Get("q")
	if utf8.RuneCountInString(q) > maxQueryLength {
		return q, nil, errQueryTooLong
	}
	recs := s.engine.Search(q)
	s.metrics.ObserveSearch(len(recs))
	return q, recs, nil
}

// handleReport renders the HTML report, filtered by ?q= when present.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	_, recs, err := s.search(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	doc, err := report.RenderHTML(r.Context(), recs, s.title)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %w", errRenderFailure, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(doc)
}

// handleSearch returns matching records, ranked, as JSON.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q, recs, err := s.search(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	logging.FromContext(r.Context()).Debug("search", "query", q, "results", len(recs))

	writeJSON(w, r, SearchResponse{
		Query:   q,
		Count:   len(recs),
		Results: report.Rows(recs),
	})
}

// handleFiles returns the cumulative load summary.
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	sum := s.engine.Summary()

	resp := FilesResponse{
		Files:       sum.Files,
		Skipped:     make([]SkippedFile, 0, len(sum.Skipped)),
		Records:     sum.Records,
		Diagnostics: make([]DiagnosticView, 0, len(sum.Diagnostics)),
	}
	if resp.Files == nil {
		resp.Files = []string{}
	}
	for _, sk := range sum.Skipped {
		resp.Skipped = append(resp.Skipped, SkippedFile{File: sk.File, Reason: sk.Reason})
	}
	for _, d := range sum.Diagnostics {
		resp.Diagnostics = append(resp.Diagnostics, DiagnosticView{
			Kind:    string(d.Kind),
			File:    d.File,
			Line:    d.Line,
			Code:    catalog.MapDiagnostic(d).Code,
			Message: d.Err.Error(),
		})
	}

	writeJSON(w, r, resp)
}

// handleHealth reports liveness and the catalog size.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]any{
		"status":  "ok",
		"records": s.engine.Len(),
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode", "error", err)
	}
}
