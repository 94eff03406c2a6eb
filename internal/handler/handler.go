package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/pavelanni/papergen/internal/generator"
	"github.com/pavelanni/papergen/internal/handler/views"
	"github.com/pavelanni/papergen/internal/model"
	"github.com/pavelanni/papergen/internal/ocr"
)

const maxBodyBytes = 1 << 20

const msgMissingInput = "Missing sections or unitTopics"

// GetOnlyPostMessage is the plain-text reply to GET /api/generate-questions.
const GetOnlyPostMessage = "This route only supports POST requests."

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	pipeline  *generator.Pipeline
	extractor ocr.Extractor
	schemas   map[string]*jsonschema.Schema
	config    model.ServerConfig
}

// New creates a new Handler. A nil extractor disables /api/extract-syllabus.
func New(p *generator.Pipeline, ex ocr.Extractor, cfg model.ServerConfig) (*Handler, error) {
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	cfg.OCREnabled = ex != nil
	return &Handler{pipeline: p, extractor: ex, schemas: schemas, config: cfg}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if h.config.AccessKeyHash != "" {
			r.Use(h.requireAccessKey)
		}
		r.Post("/generate-questions", h.handleGenerate)
		r.Get("/generate-questions", h.handleGenerateGet)
		r.Post("/parse-syllabus", h.handleParseSyllabus)
		r.Post("/extract-syllabus", h.handleExtractSyllabus)
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.IndexPage(h.config).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (h *Handler) handleGenerateGet(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, GetOnlyPostMessage)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	body, doc, ok := h.readJSON(w, r)
	if !ok {
		return
	}
	if !hasSectionsAndTopics(doc) {
		writeError(w, http.StatusBadRequest, msgMissingInput)
		return
	}
	if !h.validate(w, generateSchema, doc) {
		return
	}

	var req model.GenerateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	// Only the first section is generated per call; the client posts
	// sections one at a time.
	sec := req.Sections[0]
	if len(req.Sections) > 1 {
		slog.Debug("ignoring extra sections", "count", len(req.Sections)-1)
	}

	// A client disconnect must not abort the unit calls already under way.
	ctx := context.WithoutCancel(r.Context())
	records, err := h.pipeline.RunSection(ctx, req.SubjectName, sec, req.UnitTopics)
	if errors.Is(err, generator.ErrNoUnits) || errors.Is(err, generator.ErrNegativeCount) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("generate questions", "section", sec.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.Info("generated section",
		"subject", req.SubjectName, "section", sec.ID, "units", len(sec.Units), "records", len(records))
	writeJSON(w, http.StatusOK, model.GenerateResponse{Questions: records})
}

// hasSectionsAndTopics reports whether the body carries a non-empty
// sections array and a unitTopics value.
func hasSectionsAndTopics(doc any) bool {
	obj, ok := doc.(map[string]any)
	if !ok {
		return false
	}
	sections, ok := obj["sections"].([]any)
	if !ok || len(sections) == 0 {
		return false
	}
	return obj["unitTopics"] != nil
}

// readJSON reads the request body and parses it into a generic document for
// schema validation.
func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request) ([]byte, any, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return nil, nil, false
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return nil, nil, false
	}
	return body, doc, true
}

func (h *Handler) validate(w http.ResponseWriter, schema string, doc any) bool {
	s, ok := h.schemas[schema]
	if !ok {
		slog.Error("schema not compiled", "schema", schema)
		writeError(w, http.StatusInternalServerError, "internal error")
		return false
	}
	if err := s.Validate(doc); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
