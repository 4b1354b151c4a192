// Package web serves the mapping engine as a small JSON API for the template
// upload page. It has no auth and is meant to sit behind the plant network.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"scadamap/mapping"
	"scadamap/report"
	"scadamap/store"
	"scadamap/workbook"
)

const (
	maxUploadBytes    = 32 << 20
	templateFormField = "template"
)

type Options struct {
	Threshold float64
	Policy    string
	Logger    logrus.FieldLogger
}

type Server struct {
	store     store.Store
	source    mapping.CandidateSource
	generator *mapping.Generator
	opts      Options
	logger    logrus.FieldLogger
	mux       *http.ServeMux

	// serializes load-merge-save cycles of concurrent map requests
	saveMu sync.Mutex
}

type mapResponse struct {
	report.View
	Policy string            `json:"policy"`
	Saved  map[string]string `json:"saved"`
}

type columnsResponse struct {
	Source  string   `json:"source"`
	Columns []string `json:"columns"`
}

func NewServer(st store.Store, source mapping.CandidateSource, generator *mapping.Generator, opts Options) http.Handler {
	if generator == nil {
		generator = mapping.NewGenerator()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if strings.TrimSpace(opts.Policy) == "" {
		opts.Policy = store.PolicyOverwrite
	}

	server := &Server{
		store:     st,
		source:    source,
		generator: generator,
		opts:      opts,
		logger:    opts.Logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", server.handleAPIAnalyze)
	mux.HandleFunc("POST /api/map", server.handleAPIMap)
	mux.HandleFunc("GET /api/mappings", server.handleAPIMappings)
	mux.HandleFunc("GET /api/columns", server.handleAPIColumns)
	server.mux = mux

	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleAPIAnalyze(w http.ResponseWriter, r *http.Request) {
	result, ok := s.analyzeUpload(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.NewView(result))
}

func (s *Server) handleAPIMap(w http.ResponseWriter, r *http.Request) {
	result, ok := s.analyzeUpload(w, r)
	if !ok {
		return
	}

	policy := strings.TrimSpace(r.FormValue("policy"))
	if policy == "" {
		policy = s.opts.Policy
	}

	s.saveMu.Lock()
	saved, err := store.Apply(s.store, result.Document, policy)
	s.saveMu.Unlock()
	if err != nil {
		if errors.Is(err, store.ErrPersistence) {
			s.logger.WithError(err).Error("save mappings")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"policy":  policy,
		"mapped":  len(result.Document),
		"entries": len(saved),
	}).Info("mappings saved")

	writeJSON(w, http.StatusOK, mapResponse{
		View:   report.NewView(result),
		Policy: strings.ToLower(policy),
		Saved:  saved,
	})
}

func (s *Server) handleAPIMappings(w http.ResponseWriter, r *http.Request) {
	s.saveMu.Lock()
	doc := s.store.Load()
	s.saveMu.Unlock()
	if doc == nil {
		doc = mapping.Document{}
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleAPIColumns(w http.ResponseWriter, r *http.Request) {
	set, err := s.source.Candidates(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("resolve candidate columns: %v", err), http.StatusServiceUnavailable)
		return
	}
	if set.Names == nil {
		set.Names = []string{}
	}
	writeJSON(w, http.StatusOK, columnsResponse{Source: set.Source, Columns: set.Names})
}

// analyzeUpload reads the uploaded template and maps it. On failure it has
// already written the error response.
func (s *Server) analyzeUpload(w http.ResponseWriter, r *http.Request) (mapping.Result, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, fmt.Sprintf("parse multipart form: %v", err), http.StatusBadRequest)
		return mapping.Result{}, false
	}

	threshold, err := parseThreshold(r.FormValue("threshold"), s.opts.Threshold)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return mapping.Result{}, false
	}

	file, header, err := r.FormFile(templateFormField)
	if err != nil {
		http.Error(w, "missing template upload", http.StatusBadRequest)
		return mapping.Result{}, false
	}
	defer file.Close()

	book, err := readUpload(file, header.Filename)
	if err != nil {
		s.logger.WithError(err).WithField("file", header.Filename).Warn("rejected template upload")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return mapping.Result{}, false
	}

	result, err := s.generator.GenerateFrom(r.Context(), book, s.source, threshold)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return mapping.Result{}, false
		}
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return mapping.Result{}, false
	}
	return result, true
}

func readUpload(src io.Reader, filename string) (workbook.Workbook, error) {
	base := filepath.Base(filename)
	if strings.EqualFold(filepath.Ext(base), ".csv") {
		sheet, err := (&workbook.CSVReader{}).ReadSheet(src, strings.TrimSuffix(base, filepath.Ext(base)))
		if err != nil {
			return workbook.Workbook{}, err
		}
		return workbook.New(base, sheet), nil
	}
	return workbook.ReadExcel(src, base)
}

func parseThreshold(raw string, fallback float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || value < 0 || value > 1 {
		return 0, fmt.Errorf("invalid threshold %q (expected 0..1)", raw)
	}
	return value, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
