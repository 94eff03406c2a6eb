package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/pavelanni/papergen/internal/model"
)

// MaxTotalMarks is the paper total above which callers warn.
const MaxTotalMarks = 100

// TotalMarks sums numQuestions * marksPerQuestion over all sections.
func TotalMarks(sections []model.Section) int {
	total := 0
	for _, s := range sections {
		total += int(s.NumQuestions) * int(s.MarksPerQuestion)
	}
	return total
}

// RunPaper generates every section of req in order, as the browser client
// does by posting one section at a time.
func (p *Pipeline) RunPaper(ctx context.Context, req model.GenerateRequest) (model.Paper, error) {
	paper := model.Paper{
		SubjectName: req.SubjectName,
		Regulation:  req.Regulation,
		GeneratedAt: time.Now().UTC(),
		TotalMarks:  TotalMarks(req.Sections),
		Sections:    make([]model.PaperSection, 0, len(req.Sections)),
	}
	if paper.TotalMarks > MaxTotalMarks {
		p.log.Warn("total marks exceed paper limit", "total", paper.TotalMarks, "limit", MaxTotalMarks)
	}

	for _, sec := range req.Sections {
		records, err := p.RunSection(ctx, req.SubjectName, sec, req.UnitTopics)
		if err != nil {
			return model.Paper{}, fmt.Errorf("section %q: %w", sec.ID, err)
		}
		paper.Sections = append(paper.Sections, model.PaperSection{
			ID:               sec.ID,
			Name:             sec.Name,
			MarksPerQuestion: int(sec.MarksPerQuestion),
			Difficulty:       sec.Difficulty,
			Questions:        records,
		})
	}
	return paper, nil
}
