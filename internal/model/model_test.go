package model

import (
	"context"
	"encoding/json"
	"testing"
)

func TestFlexIntUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    FlexInt
		wantErr bool
	}{
		{`5`, 5, false},
		{`"5"`, 5, false},
		{`" 12 "`, 12, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`-2`, -2, false},
		{`"five"`, 0, true},
		{`2.5`, 0, true},
		{`true`, 0, true},
	}
	for _, tt := range tests {
		var got FlexInt
		err := json.Unmarshal([]byte(tt.in), &got)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("Unmarshal(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestGenerateRequestFromBrowserForm(t *testing.T) {
	body := `{
		"subjectName": "Operating Systems",
		"sections": [{"id": "A", "numQuestions": "10", "marksPerQuestion": "2", "difficulty": "Easy", "units": ["unit1", "unit2"]}],
		"unitTopics": {"unit1": ["Process concept"], "unit2": ["Paging"]}
	}`
	var req GenerateRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(req.Sections) != 1 {
		t.Fatalf("got %d sections", len(req.Sections))
	}
	sec := req.Sections[0]
	if sec.NumQuestions != 10 || sec.MarksPerQuestion != 2 {
		t.Errorf("unexpected counts %+v", sec)
	}
	if ParseDifficulty(sec.Difficulty) != DifficultyEasy {
		t.Errorf("difficulty = %q", sec.Difficulty)
	}
}

func TestParseDifficulty(t *testing.T) {
	if d := ParseDifficulty(" HARD "); d != DifficultyHard || !d.Known() {
		t.Errorf("ParseDifficulty(HARD) = %q", d)
	}
	if d := ParseDifficulty("tricky"); d.Known() {
		t.Errorf("tricky should not be a known difficulty")
	}
}

func TestRequestIDContext(t *testing.T) {
	if id := RequestIDFromContext(context.Background()); id != "" {
		t.Errorf("empty context returned %q", id)
	}
	ctx := ContextWithRequestID(context.Background(), "abc")
	if id := RequestIDFromContext(ctx); id != "abc" {
		t.Errorf("RequestIDFromContext = %q", id)
	}
}
