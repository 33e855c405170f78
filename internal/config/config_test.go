package config

import (
	"strings"
	"testing"
	"time"
)

// env returns a LookupFunc backed by a map.
func env(vars map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

// validConfig returns a config that passes Validate.
func validConfig() *Config {
	return &Config{
		Server:      ServerConfig{Port: 8080, ShutdownTimeout: time.Second, RequestTimeout: time.Second},
		Import:      ImportConfig{MaxFileSize: 1, MaxConcurrent: 1, MaxWaitTime: time.Second, SaveTimeout: time.Second},
		Rate:        RateLimitConfig{Enabled: true, RequestsPerMinute: 100, ImportLimit: 10},
		Logging:     LoggingConfig{Level: "info", Format: "text"},
		Metrics:     MetricsConfig{Namespace: "championship"},
		Preferences: PreferencesConfig{Backend: "memory"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Database.HasDatabase() {
		t.Errorf("Database.URL = %q, want empty", cfg.Database.URL)
	}
	if cfg.Import.MaxFileSize != 5*1024*1024 {
		t.Errorf("Import.MaxFileSize = %d, want %d", cfg.Import.MaxFileSize, 5*1024*1024)
	}
	if cfg.Import.MaxConcurrent != 4 {
		t.Errorf("Import.MaxConcurrent = %d, want %d", cfg.Import.MaxConcurrent, 4)
	}
	if !cfg.Import.CreateMissingGroups {
		t.Error("Import.CreateMissingGroups should default to true")
	}
	if cfg.Preferences.Backend != "memory" {
		t.Errorf("Preferences.Backend = %q, want memory", cfg.Preferences.Backend)
	}
	if cfg.Metrics.Namespace != "championship" || cfg.Metrics.DurationBuckets != nil {
		t.Errorf("Metrics = %+v, want championship namespace and default buckets", cfg.Metrics)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"DATABASE_URL":                 "postgres://localhost/roster",
		"SERVER_PORT":                  "9090",
		"IMPORT_MAX_CONCURRENT":        "8",
		"IMPORT_CREATE_MISSING_GROUPS": "false",
		"LOG_LEVEL":                    "debug",
		"PREFERENCES_BACKEND":          "none",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Import.MaxConcurrent != 8 {
		t.Errorf("Import.MaxConcurrent = %d, want %d", cfg.Import.MaxConcurrent, 8)
	}
	if cfg.Import.CreateMissingGroups {
		t.Error("Import.CreateMissingGroups = true, want false")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Preferences.Backend != "none" {
		t.Errorf("Preferences.Backend = %q, want none", cfg.Preferences.Backend)
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{"DB_URL": "postgres://localhost/alt"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/alt" {
		t.Errorf("Database.URL = %q, want %q", cfg.Database.URL, "postgres://localhost/alt")
	}
}

func TestLoad_DurationAndSlice(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"SERVER_READ_TIMEOUT":  "45s",
		"IMPORT_MAX_WAIT_TIME": "1m30s",
		"TRUSTED_PROXIES":      "10.0.0.0/8, 172.16.0.0/12 ,, 192.168.0.0/16",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Import.MaxWaitTime != 90*time.Second {
		t.Errorf("Import.MaxWaitTime = %v, want %v", cfg.Import.MaxWaitTime, 90*time.Second)
	}

	expected := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if len(cfg.Security.TrustedProxies) != len(expected) {
		t.Fatalf("TrustedProxies = %v, want %v", cfg.Security.TrustedProxies, expected)
	}
	for i, v := range expected {
		if cfg.Security.TrustedProxies[i] != v {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], v)
		}
	}
}

func TestLoad_FloatSlice(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{"METRICS_DURATION_BUCKETS": "0.05, 0.5,2"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	want := []float64{0.05, 0.5, 2}
	if len(cfg.Metrics.DurationBuckets) != len(want) {
		t.Fatalf("DurationBuckets = %v, want %v", cfg.Metrics.DurationBuckets, want)
	}
	for i, v := range want {
		if cfg.Metrics.DurationBuckets[i] != v {
			t.Errorf("DurationBuckets[%d] = %v, want %v", i, cfg.Metrics.DurationBuckets[i], v)
		}
	}

	if _, err := LoadFrom(env(map[string]string{"METRICS_DURATION_BUCKETS": "0.1,fast"})); err == nil {
		t.Error("LoadFrom() expected error for non-numeric bucket")
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	_, err := LoadFrom(env(map[string]string{"SERVER_PORT": "eighty"}))
	if err == nil {
		t.Fatal("LoadFrom() expected error for non-numeric port")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("error should mention SERVER_PORT: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 99999 }, "SERVER_PORT"},
		{"pool bounds only checked with database", func(c *Config) { c.Database.MaxConns = 0 }, ""},
		{"pool bounds", func(c *Config) {
			c.Database = DatabaseConfig{URL: "postgres://x", MaxConns: 2, MinConns: 5}
		}, "DB_MAX_CONNS"},
		{"zero file size", func(c *Config) { c.Import.MaxFileSize = 0 }, "IMPORT_MAX_FILE_SIZE"},
		{"rate disabled ignores limits", func(c *Config) {
			c.Rate = RateLimitConfig{Enabled: false}
		}, ""},
		{"api key required without keys", func(c *Config) { c.Security.RequireAPIKey = true }, "API_KEYS"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"empty metrics namespace", func(c *Config) { c.Metrics.Namespace = "" }, "METRICS_NAMESPACE"},
		{"buckets not increasing", func(c *Config) { c.Metrics.DurationBuckets = []float64{1, 0.5} }, "METRICS_DURATION_BUCKETS"},
		{"buckets increasing", func(c *Config) { c.Metrics.DurationBuckets = []float64{0.1, 1} }, ""},
		{"bad preferences backend", func(c *Config) { c.Preferences.Backend = "redis" }, "PREFERENCES_BACKEND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error should mention %s: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Import.MaxConcurrent = 0
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"SERVER_PORT", "IMPORT_MAX_CONCURRENT", "LOG_FORMAT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"", 3000, ":3000"},
		{"::1", 8080, "[::1]:8080"},
	}

	for _, tt := range tests {
		cfg := ServerConfig{Host: tt.host, Port: tt.port}
		if got := cfg.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}

func TestString_MasksSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Database.URL = "postgres://admin:hunter2@db/roster"
	cfg.Security.APIKeys = []string{"super-secret"}

	s := cfg.String()
	for _, secret := range []string{"hunter2", "super-secret"} {
		if strings.Contains(s, secret) {
			t.Errorf("String() leaks %q: %s", secret, s)
		}
	}
	if !strings.Contains(s, "[MASKED]") {
		t.Errorf("String() should mark the URL masked: %s", s)
	}
}
