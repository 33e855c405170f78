package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cssbattle/championship/internal/logging"
)

func echoRemoteAddr() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.RemoteAddr))
	})
}

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{
			name:    "no trusted proxies ignores headers",
			remote:  "203.0.113.7:5555",
			headers: map[string]string{"X-Real-IP": "1.2.3.4"},
			want:    "203.0.113.7:5555",
		},
		{
			name:    "trusted proxy real ip",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:4000",
			headers: map[string]string{"X-Real-IP": "198.51.100.9"},
			want:    "198.51.100.9",
		},
		{
			name:    "trusted single address forwarded for",
			trusted: []string{"127.0.0.1"},
			remote:  "127.0.0.1:4000",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.10, 10.0.0.1"},
			want:    "198.51.100.10",
		},
		{
			name:    "untrusted source",
			trusted: []string{"10.0.0.0/8"},
			remote:  "192.0.2.1:4000",
			headers: map[string]string{"X-Real-IP": "198.51.100.9"},
			want:    "192.0.2.1:4000",
		},
		{
			name:    "garbage header keeps remote",
			trusted: []string{"10.0.0.0/8", "not-a-cidr"},
			remote:  "10.0.0.2:4000",
			headers: map[string]string{"X-Real-IP": "nope"},
			want:    "10.0.0.2:4000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			TrustedRealIP(tt.trusted)(echoRemoteAddr()).ServeHTTP(rec, req)

			if got := rec.Body.String(); got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIKeyAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name     string
		required bool
		key      string
		want     int
	}{
		{"disabled", false, "", http.StatusNoContent},
		{"missing", true, "", http.StatusUnauthorized},
		{"wrong", true, "nope", http.StatusForbidden},
		{"second key", true, "k2", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/players/import", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()

			APIKeyAuth(tt.required, []string{"k1", "k2"})(ok).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&buf, "debug", "text"))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnprocessableEntity)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/players/import", nil))

	out := buf.String()
	for _, want := range []string{"level=WARN", "status=422", "path=/api/players/import"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}
