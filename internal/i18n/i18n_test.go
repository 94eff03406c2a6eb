package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "AppTitle")
	if got != "Question Paper Generator" {
		t.Errorf("T(AppTitle) = %q, want 'Question Paper Generator'", got)
	}
}

func TestTranslateTamil(t *testing.T) {
	ctx := initLang(t, "ta")

	got := T(ctx, "AppTitle")
	if got != "வினாத்தாள் உருவாக்கி" {
		t.Errorf("T(AppTitle) = %q", got)
	}
}

func TestPlaceholders(t *testing.T) {
	ctx := initLang(t, "en")
	var ph Placeholders

	want := "⚠️ No valid syllabus content found for UNIT 3. Skipping question generation."
	if got := ph.NoContent(ctx, "UNIT 3"); got != want {
		t.Errorf("NoContent = %q, want %q", got, want)
	}
	if got := ph.Failed(ctx, "UNIT 2"); got != "❌ Error generating questions for UNIT 2" {
		t.Errorf("Failed = %q", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestMiddlewareAcceptLanguage(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	var got string
	h := Middleware("en")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "Enabled")
	}))

	tests := []struct {
		header string
		want   string
	}{
		{"", "enabled"},
		{"ta-IN,ta;q=0.9,en;q=0.8", "இயக்கத்தில்"},
		{"fr-FR", "enabled"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Accept-Language", tt.header)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)
		if got != tt.want {
			t.Errorf("Accept-Language %q: got %q, want %q", tt.header, got, tt.want)
		}
	}
}
