package i18n

import "net/http"

// Middleware injects a localizer into every request context. The client's
// Accept-Language header wins; lang is the fallback.
func Middleware(lang string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loc := NewLocalizer(r.Header.Get("Accept-Language"), lang)
			ctx := WithLocalizer(r.Context(), loc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
