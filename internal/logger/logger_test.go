package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedaction(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, INFO, false)

	l.Info("login succeeded",
		"email", "marie.dupont@example.com",
		"telephone", "06 01 02 03 04",
		"password", "secret123",
		"session_id", "0123456789abcdef",
		"user_id", 42,
		"culture_id", 3)

	out := buf.String()
	assert.Contains(t, out, "[INFO] login succeeded")
	assert.Contains(t, out, "email=m****t@example.com")
	assert.Contains(t, out, "telephone=****04")
	assert.Contains(t, out, "password=[REDACTED]")
	assert.Contains(t, out, "session_id=0123****")
	assert.Contains(t, out, "user_id=user_")
	assert.Contains(t, out, "culture_id=3")
	assert.NotContains(t, out, "secret123")
	assert.NotContains(t, out, "marie.dupont")
}

func TestDevelopmentDebugKeepsValues(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, DEBUG, true)

	l.Debug("profile loaded", "email", "marie@example.com")
	assert.Contains(t, buf.String(), "email=marie@example.com")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WARN, false)

	l.Info("hidden")
	l.Debug("hidden too")
	assert.Empty(t, buf.String())

	l.Error("visible", "status", 502)
	assert.Contains(t, buf.String(), "[ERROR] visible { status=502 }")

	buf.Reset()
	l.SetLevel(DEBUG)
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "[DEBUG] now visible")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("warning"))
	assert.Equal(t, ERROR, ParseLevel(" ERROR "))
	assert.Equal(t, INFO, ParseLevel("verbose"))
}
