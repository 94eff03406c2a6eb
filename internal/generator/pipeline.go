// Package generator turns a section request and unit topics into question
// records, one backend call per unit.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/pavelanni/papergen/internal/llm"
	"github.com/pavelanni/papergen/internal/llm/prompts"
	"github.com/pavelanni/papergen/internal/model"
)

// Placeholders renders the text of records that stand in for a unit.
type Placeholders interface {
	NoContent(ctx context.Context, unitLabel string) string
	Failed(ctx context.Context, unitLabel string) string
}

// EnglishPlaceholders is the default placeholder text.
type EnglishPlaceholders struct{}

func (EnglishPlaceholders) NoContent(_ context.Context, unitLabel string) string {
	return fmt.Sprintf("⚠️ No valid syllabus content found for %s. Skipping question generation.", unitLabel)
}

func (EnglishPlaceholders) Failed(_ context.Context, unitLabel string) string {
	return fmt.Sprintf("❌ Error generating questions for %s", unitLabel)
}

// Pipeline runs one section at a time. It holds no per-request state and
// is safe for concurrent use when its Generator is.
type Pipeline struct {
	gen          llm.Generator
	placeholders Placeholders
	log          *slog.Logger
}

// New creates a Pipeline. A nil Placeholders uses English text and a nil
// logger uses slog.Default.
func New(gen llm.Generator, ph Placeholders, log *slog.Logger) *Pipeline {
	if ph == nil {
		ph = EnglishPlaceholders{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{gen: gen, placeholders: ph, log: log}
}

// UnitKey returns the topics key for a unit reference such as "unit3",
// "3" or "UNIT 3".
func UnitKey(ref string) string {
	return "unit" + digits(ref)
}

// UnitLabel returns the display label for a unit reference, e.g. "UNIT 3".
func UnitLabel(ref string) string {
	if d := digits(ref); d != "" {
		return "UNIT " + d
	}
	return "UNIT " + strings.TrimSpace(ref)
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, s)
}

// RunSection generates the questions for one section, visiting its units in
// order. A unit without topics or whose backend call fails contributes a
// single placeholder record; other units are unaffected. The only error is
// ErrNoUnits for a section that lists no units.
func (p *Pipeline) RunSection(ctx context.Context, subject string, sec model.Section, topics map[string][]string) ([]model.QuestionRecord, error) {
	plan, err := Plan(int(sec.NumQuestions), sec.Units)
	if err != nil {
		return nil, fmt.Errorf("plan section %q: %w", sec.ID, err)
	}

	out := []model.QuestionRecord{}
	for _, alloc := range plan {
		label := UnitLabel(alloc.Unit)
		content := strings.TrimSpace(strings.Join(topics[UnitKey(alloc.Unit)], "\n"))

		prompt, err := prompts.BuildUnitPrompt(prompts.UnitPrompt{
			Subject:    subject,
			Content:    content,
			Count:      alloc.Count,
			Difficulty: sec.Difficulty,
			Marks:      int(sec.MarksPerQuestion),
		})
		if errors.Is(err, prompts.ErrEmptyContent) {
			p.log.Warn("no syllabus content for unit", "section", sec.ID, "unit", label)
			out = append(out, p.placeholder(sec.ID, label, p.placeholders.NoContent(ctx, label)))
			continue
		}
		if err != nil {
			p.logFailure(sec.ID, label, err)
			out = append(out, p.placeholder(sec.ID, label, p.placeholders.Failed(ctx, label)))
			continue
		}

		text, err := p.gen.Generate(ctx, prompt)
		if err != nil {
			p.logFailure(sec.ID, label, err)
			out = append(out, p.placeholder(sec.ID, label, p.placeholders.Failed(ctx, label)))
			continue
		}

		questions := ParseQuestions(text)
		p.log.Debug("generated unit questions",
			"section", sec.ID, "unit", label, "requested", alloc.Count, "received", len(questions))
		for _, q := range questions {
			out = append(out, model.QuestionRecord{Section: sec.ID, Unit: label, Text: q})
		}
	}
	return out, nil
}

func (p *Pipeline) placeholder(section, label, text string) model.QuestionRecord {
	return model.QuestionRecord{Section: section, Unit: label, Text: text}
}

func (p *Pipeline) logFailure(section, label string, err error) {
	attrs := []any{"section", section, "unit", label, "error", err}
	var genErr *llm.ErrGeneration
	if errors.As(err, &genErr) {
		attrs = append(attrs, "backend", genErr.Backend, "status", genErr.Status, "payload", genErr.Payload)
	}
	p.log.Error("error generating questions", attrs...)
}
