package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/JonMunkholm/lasfile/internal/logging"
)

// APIKeyAuth checks the X-API-Key header against keys. When required is
// false every request passes. When it is true and keys is empty every
// request is rejected.
func APIKeyAuth(required bool, keys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !required {
				next.ServeHTTP(w, r)
				return
			}

			log := logging.FromContext(r.Context())
			apiKey := r.Header.Get("X-API-Key")
			switch {
			case apiKey == "":
				log.Warn("auth: missing API key", "path", r.URL.Path, "method", r.Method, "remote_addr", r.RemoteAddr)
				writeJSONError(w, http.StatusUnauthorized, "missing API key", "AUTH001")
			case !validAPIKey(apiKey, keys):
				log.Warn("auth: invalid API key", "path", r.URL.Path, "method", r.Method, "remote_addr", r.RemoteAddr)
				writeJSONError(w, http.StatusForbidden, "invalid API key", "AUTH002")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// validAPIKey compares against every key in constant time.
func validAPIKey(key string, keys []string) bool {
	valid := 0
	for _, k := range keys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return valid == 1
}
