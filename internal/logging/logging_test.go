package logging

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer

	l := New("info", &buf)
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())

	l.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())

	l.Info().Str("k", "v").Msg("shown")
	assert.Contains(t, buf.String(), `"k":"v"`)
	assert.Contains(t, buf.String(), `"message":"shown"`)

	assert.Equal(t, zerolog.WarnLevel, New("", &buf).GetLevel())
	assert.Equal(t, zerolog.WarnLevel, New("loud", &buf).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, New(" DEBUG ", &buf).GetLevel())
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	l, closer, err := OpenFile("warn", path)
	require.NoError(t, err)
	l.Warn().Msg("written")
	require.NoError(t, closer.Close())

	assert.FileExists(t, path)
}
