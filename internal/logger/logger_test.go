package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "test-role", zerolog.DebugLevel)

	l.Info().Msg("hello")

	entry := decode(t, &buf)
	assert.Equal(t, "test-role", entry["role"])
	assert.Equal(t, "hello", entry["message"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry["func"], "TestNew_Fields")
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "r", zerolog.WarnLevel)

	l.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("kept")
	assert.NotZero(t, buf.Len())
}

func TestNop(t *testing.T) {
	l := Nop()
	require.NotNil(t, l)
	l.Error().Msg("nothing")
}

func TestGetChildLogger_IsIndependent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(&buf, "parent", zerolog.DebugLevel)

	child := parent.GetChildLogger()
	child.Logger = child.With().Str("trace_id", "abc").Logger()

	parent.Info().Msg("p")
	assert.NotContains(t, decode(t, &buf), "trace_id")

	buf.Reset()
	child.Info().Msg("c")
	entry := decode(t, &buf)
	assert.Equal(t, "abc", entry["trace_id"])
	assert.Equal(t, "parent", entry["role"])
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "ctx", zerolog.DebugLevel)

	ctx := l.WithContext(context.Background())
	FromContext(ctx).Info().Msg("from ctx")
	assert.Equal(t, "ctx", decode(t, &buf)["role"])

	// no logger attached: disabled, never nil
	FromContext(context.Background()).Info().Msg("discarded")
}

func TestFromRequest(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "req", zerolog.DebugLevel)

	r := httptest.NewRequest("GET", "/", nil)
	r = r.WithContext(l.WithContext(r.Context()))

	FromRequest(r).Info().Msg("from request")
	assert.Equal(t, "req", decode(t, &buf)["role"])
}
