package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Difficulty represents question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalizes a difficulty label. Unknown labels are returned
// lower-cased as-is so callers can fall back to the generic bucket.
func ParseDifficulty(s string) Difficulty {
	return Difficulty(strings.ToLower(strings.TrimSpace(s)))
}

// Known reports whether d is one of easy, medium or hard.
func (d Difficulty) Known() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// FlexInt decodes from a JSON number or a numeric string.
// The browser form posts counts and marks as strings.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("parse integer %q: %w", s, err)
		}
		*n = FlexInt(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = FlexInt(v)
	return nil
}

// Section describes one part of the paper requested by the caller.
type Section struct {
	ID               string   `json:"id"`
	Name             string   `json:"name,omitempty"`
	NumQuestions     FlexInt  `json:"numQuestions"`
	MarksPerQuestion FlexInt  `json:"marksPerQuestion"`
	Difficulty       string   `json:"difficulty"`
	Units            []string `json:"units"`
}

// GenerateRequest is the body of POST /api/generate-questions.
type GenerateRequest struct {
	SubjectName string              `json:"subjectName"`
	Regulation  string              `json:"regulation,omitempty"`
	Sections    []Section           `json:"sections"`
	UnitTopics  map[string][]string `json:"unitTopics"`
}

// QuestionRecord is one entry of the generated paper. Placeholder records
// carry a notice in Text instead of a question.
type QuestionRecord struct {
	Section string `json:"section"`
	Unit    string `json:"unit"`
	Text    string `json:"text"`
}

// GenerateResponse is the body returned by POST /api/generate-questions.
type GenerateResponse struct {
	Questions []QuestionRecord `json:"questions"`
}

// ParseSyllabusRequest is the body of POST /api/parse-syllabus.
type ParseSyllabusRequest struct {
	SyllabusText string `json:"syllabusText"`
	MaxTopics    int    `json:"maxTopics,omitempty"`
}

// ParseSyllabusResponse holds the unit topics found in a syllabus.
type ParseSyllabusResponse struct {
	SubjectName string              `json:"subjectName"`
	UnitTopics  map[string][]string `json:"unitTopics"`
}

// ExtractedSyllabus is what the OCR collaborator returns for an image.
type ExtractedSyllabus struct {
	SubjectName  string `json:"subjectName"`
	SyllabusText string `json:"syllabusText"`
}

// GenerationCall is one recorded call to the generation backend.
type GenerationCall struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id,omitempty"`
	Backend   string    `json:"backend"`
	Model     string    `json:"model"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Error     string    `json:"error,omitempty"`
	LatencyMs int64     `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// ServerConfig holds runtime server parameters set via CLI flags.
type ServerConfig struct {
	Backend       string
	Model         string
	Lang          string
	CORSOrigins   []string
	AccessKeyHash string // bcrypt hash; empty disables the check
	OCREnabled    bool
}

type requestIDCtxKey struct{}

// ContextWithRequestID stores the request ID used to correlate audit records.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey{}, id)
}

// RequestIDFromContext retrieves the request ID (empty string if not set).
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}
