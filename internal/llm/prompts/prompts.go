package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/pavelanni/papergen/internal/model"
)

//go:embed templates/*.txt
var templateFS embed.FS

var unitTemplate = template.Must(template.ParseFS(templateFS, "templates/unit_questions.txt"))

// ErrEmptyContent is returned when a unit has no syllabus text to ground on.
var ErrEmptyContent = errors.New("unit has no syllabus content")

// GenericComplexity is used for difficulty labels outside easy/medium/hard.
const GenericComplexity = "conceptual question"

// DefaultLengthHint is used for marks values without a dedicated hint.
const DefaultLengthHint = "brief answer"

var complexities = map[model.Difficulty]string{
	model.DifficultyEasy:   "definition or concept-based question",
	model.DifficultyMedium: "application-based question with brief explanation",
	model.DifficultyHard:   "analytical or scenario-based question",
}

// The response parser expects one question per numbered line; these hints
// keep answers short enough for that.
var lengthHints = map[int]string{
	2:  "one-line answer",
	5:  "one and half-line answer",
	10: "two-line answer",
	13: "two-line answer",
	15: "three-line answer",
	16: "three-line answer",
}

// UnitPrompt holds the inputs for one unit's prompt.
type UnitPrompt struct {
	Subject    string
	Content    string // unit topics joined into one block
	Count      int
	Difficulty string
	Marks      int
}

type unitData struct {
	Subject    string
	Content    string
	Count      int
	Complexity string
	Marks      int
	LengthHint string
}

// Complexity maps a difficulty label (case-insensitive) to the kind of
// question to ask.
func Complexity(difficulty string) string {
	if c, ok := complexities[model.ParseDifficulty(difficulty)]; ok {
		return c
	}
	return GenericComplexity
}

// LengthHint maps a marks value to an expected answer length.
func LengthHint(marks int) string {
	if h, ok := lengthHints[marks]; ok {
		return h
	}
	return DefaultLengthHint
}

// BuildUnitPrompt renders the question-generation prompt for one unit.
func BuildUnitPrompt(p UnitPrompt) (string, error) {
	content := strings.TrimSpace(p.Content)
	if content == "" {
		return "", ErrEmptyContent
	}

	data := unitData{
		Subject:    p.Subject,
		Content:    content,
		Count:      p.Count,
		Complexity: Complexity(p.Difficulty),
		Marks:      p.Marks,
		LengthHint: LengthHint(p.Marks),
	}

	var buf bytes.Buffer
	if err := unitTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render unit prompt: %w", err)
	}
	return buf.String(), nil
}
