package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
)

// APIKeyAuth checks the X-API-Key header against keys when required is
// true. A missing key gets 401 and a wrong key 403. With required false
// every request passes.
func APIKeyAuth(required bool, keys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !required {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			switch {
			case key == "":
				slog.Warn("auth: missing API key", "path", r.URL.Path, "ip", r.RemoteAddr)
				denyJSON(w, http.StatusUnauthorized, "API key required", "AUTH001")
			case !validAPIKey(key, keys):
				slog.Warn("auth: invalid API key", "path", r.URL.Path, "ip", r.RemoteAddr)
				denyJSON(w, http.StatusForbidden, "API key not recognised", "AUTH002")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// validAPIKey compares against every configured key in constant time.
func validAPIKey(key string, keys []string) bool {
	match := 0
	for _, k := range keys {
		match |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return match == 1
}

func denyJSON(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   message,
		"message": message,
		"code":    code,
	})
}
