package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(Config{Level: "warn", Encoding: "json", OutputPath: path})
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("kept")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"timestamp"`)
	assert.NotContains(t, out, "dropped")
}

func TestNew_FallsBackOnBadValues(t *testing.T) {
	l, err := New(Config{Level: "loud", Encoding: "xml"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}
