package model

import "time"

// Paper is the JSON document printed by the generate command.
type Paper struct {
	SubjectName string         `json:"subject_name"`
	Regulation  string         `json:"regulation,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
	TotalMarks  int            `json:"total_marks"`
	Sections    []PaperSection `json:"sections"`
}

// PaperSection holds the generated questions of one section.
type PaperSection struct {
	ID               string           `json:"id"`
	Name             string           `json:"name,omitempty"`
	MarksPerQuestion int              `json:"marks_per_question"`
	Difficulty       string           `json:"difficulty"`
	Questions        []QuestionRecord `json:"questions"`
}

// AuditExport is the top-level JSON structure printed by the audit command.
type AuditExport struct {
	ExportedAt time.Time         `json:"exported_at"`
	Server     map[string]string `json:"server,omitempty"`
	Count      int               `json:"count"`
	Calls      []GenerationCall  `json:"calls"`
}
