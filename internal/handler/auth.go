package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/papergen/internal/model"
)

// AccessKeyHeader carries the shared access key on /api requests.
const AccessKeyHeader = "X-Access-Key"

// requireAccessKey rejects requests whose access key does not match the
// configured bcrypt hash.
func (h *Handler) requireAccessKey(next http.Handler) http.Handler {
	hash := []byte(h.config.AccessKeyHash)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(AccessKeyHeader)
		if key == "" || bcrypt.CompareHashAndPassword(hash, []byte(key)) != nil {
			slog.Warn("invalid access key", "remote", r.RemoteAddr, "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, "invalid access key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestID copies chi's request ID into the context key read by the audit
// recorder. It must run after middleware.RequestID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(model.ContextWithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// HashAccessKey returns the bcrypt hash stored in access-key-hash.
func HashAccessKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
