package middleware

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("json", &buf)
	logger.Info().Str("path", "/api/polls").Msg("request")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "prioritypoll", line["service"])
	assert.Equal(t, "/api/polls", line["path"])
	assert.Equal(t, "request", line["message"])

	buf.Reset()
	logger = newLogger("console", &buf)
	logger.Info().Msg("request")

	assert.False(t, json.Valid(buf.Bytes()))
	assert.Contains(t, buf.String(), "request")
}
