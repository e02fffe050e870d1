// Package http exposes document loading over HTTP: upload a KRA archive,
// then fetch its loaded tree as JSON or a layer as PNG.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/dto"
	"github.com/aretw0/strata/internal/export"
	"github.com/aretw0/strata/internal/logging"
	"github.com/aretw0/strata/internal/manifest"
	"github.com/aretw0/strata/pkg/adapters/zip"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/observability"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

// DefaultMaxUploadBytes caps uploads when Server.MaxUploadBytes is zero.
const DefaultMaxUploadBytes = 256 << 20

// DefaultExpansionRatio sets Server.MaxExpandedBytes relative to
// MaxUploadBytes when it is zero.
const DefaultExpansionRatio = 8

// Server serves cached documents.
type Server struct {
	Cache ports.DocumentCache
	// Options are passed to every strata.Load call.
	Options        []strata.Option
	Metrics        *observability.Metrics
	MetricsHandler http.Handler
	Logger         *slog.Logger
	MaxUploadBytes int64
	// MaxExpandedBytes caps the decompressed size of an uploaded archive.
	MaxExpandedBytes int64
}

// NewHandler creates the HTTP handler for s.
func NewHandler(s *Server) http.Handler {
	if s.Logger == nil {
		s.Logger = logging.NewNop()
	}
	if s.MaxUploadBytes <= 0 {
		s.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if s.MaxExpandedBytes <= 0 {
		s.MaxExpandedBytes = s.MaxUploadBytes * DefaultExpansionRatio
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if s.MetricsHandler != nil {
		r.Handle("/metrics", s.MetricsHandler)
	}

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", s.Upload)
		r.Get("/", s.List)
		r.Get("/{id}", s.Get)
		r.Delete("/{id}", s.Delete)
		r.Get("/{id}/layers/{name}.png", s.LayerPNG)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Upload handles POST /documents with a KRA (zip) body.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.MaxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Document too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	if !filetype.Is(body, "zip") {
		http.Error(w, "Body is not a KRA archive", http.StatusUnsupportedMediaType)
		return
	}

	archive, err := zip.NewFromBytes(body, zip.WithMaxBytes(s.MaxExpandedBytes))
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid archive: %v", err), http.StatusBadRequest)
		return
	}
	entries, err := archive.Entries(r.Context())
	if errors.Is(err, domain.ErrEntryTooLarge) {
		http.Error(w, "Document too large when expanded", http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid archive: %v", err), http.StatusBadRequest)
		return
	}

	doc, err := s.load(r, archive)
	if doc == nil {
		s.writeLoadError(w, err)
		return
	}

	id := uuid.NewString()
	if err := s.Cache.Put(r.Context(), id, entries); err != nil {
		s.Logger.Error("failed to cache document", "id", id, "error", err)
		http.Error(w, "Failed to store document", http.StatusInternalServerError)
		return
	}
	s.Logger.Info("document uploaded", "id", id, "name", doc.Name, "bytes", len(body), "failed", doc.Report.Failed())

	view := dto.FromDocument(doc)
	view.ID = id
	writeJSON(w, http.StatusCreated, view)
}

// List handles GET /documents.
func (s *Server) List(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Cache.List(r.Context())
	if err != nil {
		s.Logger.Error("failed to list documents", "error", err)
		http.Error(w, "Failed to list documents", http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
}

// Get handles GET /documents/{id}.
func (s *Server) Get(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.cachedDocument(w, r)
	if !ok {
		return
	}
	view := dto.FromDocument(doc)
	view.ID = chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, view)
}

// Delete handles DELETE /documents/{id}.
func (s *Server) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Cache.Delete(r.Context(), id); err != nil {
		s.Logger.Error("failed to delete document", "id", id, "error", err)
		http.Error(w, "Failed to delete document", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LayerPNG handles GET /documents/{id}/layers/{name}.png; ?width= scales the image.
func (s *Server) LayerPNG(w http.ResponseWriter, r *http.Request) {
	width := 0
	if v := r.URL.Query().Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "Invalid width", http.StatusBadRequest)
			return
		}
		width = n
	}

	doc, ok := s.cachedDocument(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	node := doc.Layer(name)
	if node == nil {
		http.Error(w, fmt.Sprintf("Layer %q not found", name), http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := export.WritePNG(&buf, node, width); err != nil {
		if errors.Is(err, export.ErrNoPixels) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.Logger.Error("failed to encode layer", "layer", name, "error", err)
		http.Error(w, "Failed to encode layer", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (s *Server) cachedDocument(w http.ResponseWriter, r *http.Request) (*strata.Document, bool) {
	id := chi.URLParam(r, "id")
	archive, err := s.Cache.Archive(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			http.Error(w, "Document not found", http.StatusNotFound)
			return nil, false
		}
		s.Logger.Error("failed to open cached document", "id", id, "error", err)
		http.Error(w, "Failed to open document", http.StatusInternalServerError)
		return nil, false
	}

	doc, err := s.load(r, archive)
	if doc == nil {
		s.writeLoadError(w, err)
		return nil, false
	}
	return doc, true
}

// load always loads in best-effort mode; node failures travel in the report.
func (s *Server) load(r *http.Request, archive ports.Archive) (*strata.Document, error) {
	opts := append([]strata.Option{
		strata.WithLogger(s.Logger),
		strata.WithBestEffort(true),
	}, s.Options...)
	if s.Metrics != nil {
		opts = append(opts, strata.WithHooks(s.Metrics.Hooks()))
	}

	doc, err := strata.Load(r.Context(), archive, opts...)
	if s.Metrics != nil {
		s.Metrics.ObserveDocument(err)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, manifest.ErrNotKRA):
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
	case errors.Is(err, domain.ErrEntryNotFound), errors.Is(err, domain.ErrMalformedData),
		errors.Is(err, domain.ErrUnknownNodeKind), errors.Is(err, domain.ErrUnknownColorSpace):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		s.Logger.Error("failed to load document", "error", err)
		http.Error(w, "Failed to load document", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
