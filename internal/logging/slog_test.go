package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{name: "regular email", email: "user@example.com"},
		{name: "another email", email: "someone@tarefista.app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnonymizeEmail(tt.email)
			assert.True(t, strings.HasPrefix(got, "user:"))
			assert.NotContains(t, got, "@")

			// Hashing must be stable so log entries can be correlated.
			assert.Equal(t, got, AnonymizeEmail(tt.email))
		})
	}
}

func TestAnonymizeEmailEmpty(t *testing.T) {
	assert.Equal(t, "", AnonymizeEmail(""))
}

func TestSanitizeToken(t *testing.T) {
	assert.Equal(t, "<empty>", SanitizeToken(""))

	got := SanitizeToken("eyJhbGciOiJIUzI1NiJ9.payload.sig")
	assert.NotContains(t, got, "eyJ")
	assert.Contains(t, got, "chars")
}

func TestErrNilIsOmitted(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("op done", Err(nil))
	assert.NotContains(t, buf.String(), KeyError)

	buf.Reset()
	logger.Info("op failed", Err(errors.New("boom")))
	assert.Contains(t, buf.String(), "boom")
}

func TestWithOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := WithOperation(slog.New(slog.NewTextHandler(&buf, nil)), "tasks.list")
	logger.Info("fetched")
	assert.Contains(t, buf.String(), "operation=tasks.list")
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil)))

	adapter.Info("hello", "key", "value")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "key=value")

	assert.NotNil(t, NewSlogAdapter(nil).Logger())
}
