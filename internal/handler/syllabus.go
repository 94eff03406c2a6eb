package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/pavelanni/papergen/internal/model"
	"github.com/pavelanni/papergen/internal/ocr"
	"github.com/pavelanni/papergen/internal/syllabus"
)

const maxImageBytes = 10 << 20

func (h *Handler) handleParseSyllabus(w http.ResponseWriter, r *http.Request) {
	body, doc, ok := h.readJSON(w, r)
	if !ok {
		return
	}
	if !h.validate(w, parseSchema, doc) {
		return
	}

	var req model.ParseSyllabusRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	units := syllabus.ParseWithOptions(req.SyllabusText, syllabus.Options{MaxTopics: req.MaxTopics})
	writeJSON(w, http.StatusOK, model.ParseSyllabusResponse{
		SubjectName: syllabus.SubjectName(req.SyllabusText),
		UnitTopics:  units,
	})
}

func (h *Handler) handleExtractSyllabus(w http.ResponseWriter, r *http.Request) {
	if h.extractor == nil {
		writeError(w, http.StatusServiceUnavailable, "syllabus extraction is not configured")
		return
	}
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "image too large or not multipart")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no image uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	res, err := h.extractor.Extract(r.Context(), data, mimeType)
	if errors.Is(err, ocr.ErrEmptyImage) {
		writeError(w, http.StatusBadRequest, "no image uploaded")
		return
	}
	if err != nil {
		slog.Error("extract syllabus", "filename", header.Filename, "error", err)
		writeError(w, http.StatusBadGateway, "failed to extract syllabus text")
		return
	}

	slog.Info("extracted syllabus", "filename", header.Filename, "bytes", len(data), "subject", res.SubjectName)
	writeJSON(w, http.StatusOK, res)
}
