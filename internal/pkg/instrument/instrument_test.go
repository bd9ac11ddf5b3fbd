package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestLoggerMasksAndTagsCorrelation(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{ServiceName: "otpgate", MaskFields: []string{"Code", "password"}}, nil)
	ctx := SetCorrelationID(context.Background(), "cid-123")

	// Act
	logger.InfoContext(ctx, "otp issued",
		"subject", "ada@example.com",
		"code", "123456",
		"body", `{"subject":"ada@example.com","password":"hunter22"}`,
		slog.Group("req", slog.String("password", "x")),
	)

	// Assert
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if line["code"] != Masked {
		t.Fatalf("expected code to be masked, got %v", line["code"])
	}
	if line["subject"] != "ada@example.com" {
		t.Fatalf("unexpected subject %v", line["subject"])
	}
	if line["body"] != `{"password":"***","subject":"ada@example.com"}` {
		t.Fatalf("expected JSON body to be masked, got %v", line["body"])
	}
	if req, _ := line["req"].(map[string]any); req["password"] != Masked {
		t.Fatalf("expected grouped password to be masked, got %v", line["req"])
	}
	if line["_cID"] != "cid-123" || line["service"] != "otpgate" {
		t.Fatalf("missing context attributes: %v", line)
	}
	if line["severity"] != "INFO" {
		t.Fatalf("expected severity key, got %v", line["severity"])
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{LogLevel: "warn"}, nil)

	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Fatalf("info must be dropped at warn level, got %s", buf.String())
	}

	logger.Warn("loud")
	if buf.Len() == 0 {
		t.Fatal("warn must be written at warn level")
	}
}

func TestCorrelationID(t *testing.T) {
	if got := GetCorrelationID(context.Background()); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
	if got := GetCorrelationID(SetCorrelationID(context.Background(), "abc")); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
}

func TestMaskData(t *testing.T) {
	keys := MaskKeys([]string{" OTP ", ""})

	got := MaskData([]any{map[string]any{"otp": "1", "n": map[string]string{"Otp": "2", "k": "v"}}}, keys)

	row := got.([]any)[0].(map[string]any)
	nested := row["n"].(map[string]any)
	if row["otp"] != Masked || nested["Otp"] != Masked || nested["k"] != "v" {
		t.Fatalf("unexpected masking result %v", got)
	}
}

func TestNewDisabledIsNoop(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	ins, err := New(context.Background(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := ins.(*noopInstrumentation); !ok {
		t.Fatalf("expected noop instrumentation, got %T", ins)
	}
	if err := ins.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}
