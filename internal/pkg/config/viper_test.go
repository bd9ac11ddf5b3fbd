package config

import (
	"testing"
	"time"
)

const testYAML = `
app:
  env: development
  server:
    cors: "http://localhost:3000, https://app.example.com"
otp:
  ttl_seconds: 300
  rollback_on_delivery_failure: true
ratelimit:
  window_minutes: 15
  limit: 5
instrument:
  log_mask_fields:
    - password
    - code
jwt:
  secret: c2VjcmV0
mail:
  headers: "X-Mailer:otpgate,X-Priority:1"
`

func newTestConfig(t *testing.T) *Viper {
	t.Helper()

	cfg, err := NewViperFromBytes("yaml", []byte(testYAML))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}
	return cfg
}

func TestViperDurations(t *testing.T) {
	cfg := newTestConfig(t)

	if got := cfg.GetSecond("otp.ttl_seconds"); got != 5*time.Minute {
		t.Fatalf("GetSecond() = %s, want 5m", got)
	}
	if got := cfg.GetMinute("ratelimit.window_minutes"); got != 15*time.Minute {
		t.Fatalf("GetMinute() = %s, want 15m", got)
	}
	if got := cfg.GetInt("ratelimit.limit"); got != 5 {
		t.Fatalf("GetInt() = %d, want 5", got)
	}
	if !cfg.GetBool("otp.rollback_on_delivery_failure") {
		t.Fatal("GetBool() = false, want true")
	}
}

func TestViperGetArray(t *testing.T) {
	cfg := newTestConfig(t)

	cors := cfg.GetArray("app.server.cors")
	if len(cors) != 2 || cors[0] != "http://localhost:3000" || cors[1] != "https://app.example.com" {
		t.Fatalf("GetArray(comma string) = %#v", cors)
	}

	fields := cfg.GetArray("instrument.log_mask_fields")
	if len(fields) != 2 || fields[0] != "password" || fields[1] != "code" {
		t.Fatalf("GetArray(sequence) = %#v", fields)
	}

	if got := cfg.GetArray("missing.key"); len(got) != 0 {
		t.Fatalf("GetArray(missing) = %#v, want empty", got)
	}
}

func TestViperBinaryAndMap(t *testing.T) {
	cfg := newTestConfig(t)

	if got := string(cfg.GetBinary("jwt.secret")); got != "secret" {
		t.Fatalf("GetBinary() = %q", got)
	}

	headers := cfg.GetMap("mail.headers")
	if headers["X-Mailer"] != "otpgate" || headers["X-Priority"] != "1" {
		t.Fatalf("GetMap() = %#v", headers)
	}
}

func TestViperEnvOverride(t *testing.T) {
	t.Setenv("OTPGATE_APP_ENV", "production")

	cfg := newTestConfig(t)

	if got := cfg.GetString("app.env"); got != "production" {
		t.Fatalf("GetString() = %q, want env override", got)
	}
}

func TestNewViperFromBytesRequiresType(t *testing.T) {
	if _, err := NewViperFromBytes(" ", []byte(testYAML)); err == nil {
		t.Fatal("expected error for empty config type")
	}
}
