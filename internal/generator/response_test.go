package generator

import (
	"reflect"
	"testing"
)

func TestParseQuestions(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"mixed numbering", "1. Define X\n2) Explain Y\n\nExplain Z", []string{"Define X", "Explain Y", "Explain Z"}},
		{"no space after number", "1.Define paging\n2)Explain TLB", []string{"Define paging", "Explain TLB"}},
		{"bare number", "10 Compare FCFS and SJF", []string{"Compare FCFS and SJF"}},
		{"crlf and indentation", "  1. First\r\n\r\n   2. Second  \r\n", []string{"First", "Second"}},
		{"whitespace-only lines", "1. A question\n   \n\t\n2. Another", []string{"A question", "Another"}},
		{"number only", "1. Real question\n3.\n", []string{"Real question"}},
		{"duplicates kept", "1. Same\n2. Same", []string{"Same", "Same"}},
		{"unnumbered bullets kept", "- Define deadlock", []string{"- Define deadlock"}},
		{"empty", "", nil},
		{"blank", "\n\n \n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuestions(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseQuestions(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
