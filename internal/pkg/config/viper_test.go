package config

import (
	"reflect"
	"testing"
	"time"
)

const sample = `
webauth:
  enabled: true
  totp:
    step_seconds: 30
    skew: 1
app:
  server:
    cors: "https://a.example, ,https://b.example"
  maintenance:
    endpoints:
      - /api/v1/webauth/totp/authenticate
      - " "
`

func TestViper(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}
	t.Cleanup(func() { _ = cfg.Close() })

	t.Run("scalars", func(t *testing.T) {
		if !cfg.GetBool("webauth.enabled") {
			t.Fatalf("GetBool(webauth.enabled) = false")
		}
		if got := cfg.GetSecond("webauth.totp.step_seconds"); got != 30*time.Second {
			t.Fatalf("GetSecond() = %s, want 30s", got)
		}
		if got := cfg.GetUint("webauth.totp.skew"); got != 1 {
			t.Fatalf("GetUint() = %d, want 1", got)
		}
		if got := cfg.GetString("missing.key"); got != "" {
			t.Fatalf("GetString(missing) = %q, want empty", got)
		}
	})

	t.Run("is set", func(t *testing.T) {
		if !cfg.IsSet("webauth.enabled") {
			t.Fatalf("IsSet(webauth.enabled) = false, want true")
		}
		if cfg.IsSet("webauth.invalidation.enabled") {
			t.Fatalf("IsSet(webauth.invalidation.enabled) = true, want false")
		}
	})

	t.Run("is set from environment", func(t *testing.T) {
		t.Setenv("WEBAUTH_INVALIDATION_VERBOSE", "true")
		if !cfg.IsSet("webauth.invalidation.verbose") {
			t.Fatalf("IsSet(webauth.invalidation.verbose) = false, want true")
		}
	})

	t.Run("comma separated array", func(t *testing.T) {
		want := []string{"https://a.example", "https://b.example"}
		if got := cfg.GetArray("app.server.cors"); !reflect.DeepEqual(got, want) {
			t.Fatalf("GetArray() = %v, want %v", got, want)
		}
	})

	t.Run("yaml list array", func(t *testing.T) {
		want := []string{"/api/v1/webauth/totp/authenticate"}
		if got := cfg.GetArray("app.maintenance.endpoints"); !reflect.DeepEqual(got, want) {
			t.Fatalf("GetArray() = %v, want %v", got, want)
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("WEBAUTH_TOTP_STEP_SECONDS", "60")
		if got := cfg.GetSecond("webauth.totp.step_seconds"); got != time.Minute {
			t.Fatalf("GetSecond() = %s, want 1m", got)
		}
	})

	t.Run("missing type", func(t *testing.T) {
		if _, err := NewViperFromBytes(" ", nil); err != ErrMissingType {
			t.Fatalf("NewViperFromBytes() error = %v, want ErrMissingType", err)
		}
	})
}
