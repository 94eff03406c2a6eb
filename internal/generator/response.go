package generator

import (
	"regexp"
	"strings"
)

var (
	lineBreakRegex = regexp.MustCompile(`(\r?\n)+`)
	numberingRegex = regexp.MustCompile(`^\d+[.)]?\s*`)
)

// ParseQuestions turns the model's numbered list into question texts.
// Blank lines are dropped and a leading "1." or "1)" is stripped; lines
// without numbering are kept as they are. The count is not checked.
func ParseQuestions(text string) []string {
	var out []string
	for _, line := range lineBreakRegex.Split(text, -1) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		q := strings.TrimSpace(numberingRegex.ReplaceAllString(line, ""))
		if q == "" {
			continue
		}
		out = append(out, q)
	}
	return out
}
