package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewProductionSkipsInfo(t *testing.T) {
	l, err := New(Config{OutputPaths: []string{filepath.Join(t.TempDir(), "out.log")}})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNewDebugEnablesDebug(t *testing.T) {
	l, err := New(Config{Debug: true, OutputPaths: []string{filepath.Join(t.TempDir(), "out.log")}})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNewWritesToOutputPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	l, err := New(Config{OutputPaths: []string{path}})
	require.NoError(t, err)

	l.Error("invalid price per token")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "invalid price per token")
}

func TestMustFallsBackToNop(t *testing.T) {
	l := Must(Config{OutputPaths: []string{filepath.Join(t.TempDir(), "missing", "dir", "out.log")}})
	assert.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}
