package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "empty token", token: "", want: "<empty>"},
		{name: "short token", token: "abc", want: "[token:3 chars]"},
		{name: "jwt-shaped token", token: "eyJhbGciOiJSUzI1NiJ9.payload.sig", want: "[token:32 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeToken(tt.token); got != tt.want {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestSanitizeTokenNeverExposesContent(t *testing.T) {
	token := "super-secret-bearer-token"
	got := SanitizeToken(token)
	if strings.Contains(got, "super") || strings.Contains(got, "secret") {
		t.Errorf("SanitizeToken leaked token content: %q", got)
	}
}

func TestAnonymizeSubject(t *testing.T) {
	if got := AnonymizeSubject(""); got != "" {
		t.Errorf("AnonymizeSubject(\"\") = %q, want empty", got)
	}

	a := AnonymizeSubject("12345678")
	b := AnonymizeSubject("12345678")
	if a != b {
		t.Errorf("AnonymizeSubject not stable: %q != %q", a, b)
	}
	if !strings.HasPrefix(a, "subject:") {
		t.Errorf("AnonymizeSubject(%q) = %q, want subject: prefix", "12345678", a)
	}
	if strings.Contains(a, "12345678") {
		t.Errorf("AnonymizeSubject leaked raw id: %q", a)
	}
}

func TestErrNilIsOmitted(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("op done", Err(nil))
	if strings.Contains(buf.String(), "error") {
		t.Errorf("Err(nil) should be omitted, got %q", buf.String())
	}

	buf.Reset()
	logger.Info("op failed", Err(errors.New("boom")))
	if !strings.Contains(buf.String(), "error=boom") {
		t.Errorf("Err() missing from output: %q", buf.String())
	}
}

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer

	logger := New(&buf, false)
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug line logged at info level: %q", buf.String())
	}

	logger = New(&buf, true)
	logger.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug line missing at debug level: %q", buf.String())
	}
}
