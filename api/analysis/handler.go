// Package analysis exposes route gap analyses over HTTP.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kilianp07/routegap/core/gap"
	"github.com/kilianp07/routegap/core/logger"
	"github.com/kilianp07/routegap/core/model"
	"github.com/kilianp07/routegap/core/source"
	"github.com/kilianp07/routegap/pkg/export"
	"github.com/kilianp07/routegap/pkg/report"
)

// maxBodyBytes bounds ad-hoc datasets posted to the API.
const maxBodyBytes = 1 << 20

// Analyzer produces reports for the configured source or an ad-hoc dataset.
// Latest returns the current report of the configured source without
// re-running it; Analyze runs a fresh analysis that replaces it.
type Analyzer interface {
	Latest(ctx context.Context) (gap.Report, error)
	Analyze(ctx context.Context) (gap.Report, error)
	AnalyzeDataset(ctx context.Context, ds model.Dataset) (gap.Report, error)
}

// Options tunes the rendered page and the CORS policy.
type Options struct {
	Title          string
	Description    string
	CSVFilename    string
	AllowedOrigins []string
}

// ErrorResponse is the JSON body of failed API calls.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type handler struct {
	svc  Analyzer
	opts Options
	log  logger.Logger
}

// NewRouter returns the HTTP surface: the report page, chart, CSV export,
// JSON API and health check. The page, chart, CSV and GET API all serve the
// latest report; POST /api/analysis/refresh replaces it.
func NewRouter(svc Analyzer, opts Options, log logger.Logger) http.Handler {
	if opts.CSVFilename == "" {
		opts.CSVFilename = "route_analysis.csv"
	}
	h := &handler{svc: svc, opts: opts, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}

	r.Get("/", h.page)
	r.Get("/chart", h.chart)
	r.Get("/export.csv", h.csv)
	r.Get("/api/analysis", h.getAnalysis)
	r.Post("/api/analysis", h.postAnalysis)
	r.Post("/api/analysis/refresh", h.refresh)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "timestamp": time.Now().UTC()})
	})
	return r
}

func (h *handler) page(w http.ResponseWriter, r *http.Request) {
	p := report.Page{
		Title:       h.opts.Title,
		Description: h.opts.Description,
		ChartURL:    "chart",
		CSVURL:      "export.csv",
		CSVName:     h.opts.CSVFilename,
	}
	status := http.StatusOK
	rep, err := h.svc.Latest(r.Context())
	if err != nil {
		status = statusFor(err)
		p.Err = err
		p.ErrKind = kindOf(err)
	} else {
		p.Report = &rep
	}
	var buf bytes.Buffer
	if err := report.WritePage(&buf, p); err != nil {
		h.log.Errorf("render page: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *handler) chart(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.analyze(w, r)
	if !ok {
		return
	}
	h.render(w, "text/html; charset=utf-8", func(out io.Writer) error {
		return report.WriteChart(out, h.opts.Title, rep.Routes)
	})
}

func (h *handler) csv(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.analyze(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.opts.CSVFilename))
	h.render(w, "text/csv; charset=utf-8", func(out io.Writer) error {
		return export.WriteCSV(out, rep.Routes)
	})
}

func (h *handler) getAnalysis(w http.ResponseWriter, r *http.Request) {
	if rep, ok := h.analyze(w, r); ok {
		writeJSON(w, http.StatusOK, rep)
	}
}

func (h *handler) postAnalysis(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	var ds model.Dataset
	if err := dec.Decode(&ds); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: "malformed_request"})
		return
	}
	rep, err := h.svc.AnalyzeDataset(r.Context(), ds)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Analyze(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *handler) analyze(w http.ResponseWriter, r *http.Request) (gap.Report, bool) {
	rep, err := h.svc.Latest(r.Context())
	if err != nil {
		h.fail(w, err)
		return gap.Report{}, false
	}
	return rep, true
}

// render buffers the body so a failure can still produce a clean 500.
func (h *handler) render(w http.ResponseWriter, contentType string, fn func(io.Writer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		h.log.Errorf("render: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = buf.WriteTo(w)
}

func (h *handler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Errorf("analysis failed: %v", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: kindOf(err)})
}

func statusFor(err error) int {
	switch {
	case gap.Kind(err) != "":
		return http.StatusUnprocessableEntity
	case errors.Is(err, source.ErrMalformed):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func kindOf(err error) string {
	if k := gap.Kind(err); k != "" {
		return k
	}
	if errors.Is(err, source.ErrMalformed) {
		return "malformed_source"
	}
	return "internal"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
