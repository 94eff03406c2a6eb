// Package syllabus splits raw syllabus text into per-unit topic lists.
package syllabus

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultMinTopicLength is the rune count a segment must exceed to count as a topic.
const DefaultMinTopicLength = 5

// CappedMaxTopics is the topic cap used by the capped parser variant.
const CappedMaxTopics = 8

// unitHeaderRegex matches "UNIT <roman>" at the start of a line, with an
// optional title after a separator on the same line.
var unitHeaderRegex = regexp.MustCompile(`(?im)^[ \t]*UNIT[ \t]+([IVX]+)\b[ \t]*[-–—:.]*[ \t]*(.*)$`)

var romanNumerals = map[string]int{
	"I": 1, "II": 2, "III": 3, "IV": 4, "V": 5,
	"VI": 6, "VII": 7, "VIII": 8, "IX": 9, "X": 10,
}

// Units maps a unit key ("unit1", "unit2", ...) to its ordered topics.
type Units map[string][]string

// Options tune the parser.
type Options struct {
	// MaxTopics caps the topics kept per unit. Zero means no cap.
	MaxTopics int
	// MinTopicLength overrides DefaultMinTopicLength when positive.
	MinTopicLength int
}

// Parse splits text into units using the default options.
func Parse(text string) Units {
	return ParseWithOptions(text, Options{})
}

// ParseWithOptions splits text into units. Each header starts a unit whose
// body runs until the next header or the end of the text. A header with no
// body yields an empty topic list.
func ParseWithOptions(text string, opts Options) Units {
	minLen := opts.MinTopicLength
	if minLen <= 0 {
		minLen = DefaultMinTopicLength
	}

	units := Units{}
	matches := unitHeaderRegex.FindAllStringSubmatchIndex(text, -1)
	for i, m := range matches {
		numeral := strings.ToUpper(text[m[2]:m[3]])
		title := text[m[4]:m[5]]

		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		body := text[m[1]:bodyEnd]

		topics := splitTopics(title+"\n"+body, minLen)
		if opts.MaxTopics > 0 && len(topics) > opts.MaxTopics {
			topics = topics[:opts.MaxTopics]
		}
		units[UnitKey(numeral)] = topics
	}
	return units
}

// UnitKey converts a roman numeral to its unit key. Numerals outside I-X
// fall back to the lower-cased literal.
func UnitKey(numeral string) string {
	if n, ok := romanNumerals[strings.ToUpper(numeral)]; ok {
		return "unit" + strconv.Itoa(n)
	}
	return "unit" + strings.ToLower(numeral)
}

func isTopicSeparator(r rune) bool {
	switch r {
	case '\n', '\r', '—', '–', '•', '+':
		return true
	}
	return false
}

func splitTopics(body string, minLen int) []string {
	topics := []string{}
	for _, seg := range strings.FieldsFunc(body, isTopicSeparator) {
		seg = strings.TrimSpace(seg)
		if utf8.RuneCountInString(seg) <= minLen {
			continue
		}
		topics = append(topics, seg)
	}
	return topics
}

// Keys returns the unit keys in numeric order, so unit2 sorts before
// unit10. Keys without a number sort last, alphabetically.
func (u Units) Keys() []string {
	keys := make([]string, 0, len(u))
	for k := range u {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, erri := strconv.Atoi(strings.TrimPrefix(keys[i], "unit"))
		nj, errj := strconv.Atoi(strings.TrimPrefix(keys[j], "unit"))
		switch {
		case erri == nil && errj == nil:
			return ni < nj
		case erri == nil:
			return true
		case errj == nil:
			return false
		}
		return keys[i] < keys[j]
	})
	return keys
}

// SubjectName guesses the subject from the first non-empty line before the
// first unit header. It returns "Unknown" when there is none.
func SubjectName(text string) string {
	head := text
	if loc := unitHeaderRegex.FindStringIndex(text); loc != nil {
		head = text[:loc[0]]
	}
	for _, line := range strings.Split(head, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return "Unknown"
}
