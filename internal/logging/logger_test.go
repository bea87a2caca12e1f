package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	var console, file bytes.Buffer
	l := NewWriterLogger("worldgen", &console, &file)

	l.Debug("отладка %d", 1)
	l.Info("информация %d", 2)

	assert.NotContains(t, console.String(), "отладка", "DEBUG не выводится в консоль")
	assert.Contains(t, console.String(), "[INFO] информация 2")
	assert.Contains(t, file.String(), "[DEBUG] отладка 1", "в файл пишутся все уровни")
	assert.Contains(t, file.String(), "[worldgen]")

	l.SetLevels(ERROR, WARN)
	console.Reset()
	file.Reset()
	l.Info("скрыто")
	l.Warn("предупреждение")
	assert.Empty(t, console.String())
	assert.Contains(t, file.String(), "предупреждение")
	assert.NotContains(t, file.String(), "скрыто")

	assert.True(t, l.Enabled(WARN))
	assert.False(t, l.Enabled(INFO))
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{
		"trace": TRACE, "DEBUG": DEBUG, "": INFO, "warning": WARN, " error ": ERROR,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewLoggerWritesFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "worldgen-logs-*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	SetLogDir(dir)
	defer SetLogDir("")

	l, err := NewLogger("storage")
	require.NoError(t, err)
	l.Trace("трассировка")
	require.NoError(t, l.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "storage_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "[TRACE] трассировка"))
}

func TestLoggerManager(t *testing.T) {
	SetLogDir(t.TempDir())
	defer SetLogDir("")
	lm := NewLoggerManager()
	lm.SetConsoleLevel(WARN)

	a, err := lm.GetLogger(ComponentVolume)
	require.NoError(t, err)
	b, err := lm.GetLogger(ComponentVolume)
	require.NoError(t, err)
	assert.Same(t, a, b, "один компонент - один логгер")
	assert.Equal(t, WARN, a.minConsoleLevel, "новый логгер наследует уровень консоли")

	_, err = lm.GetLogger(ComponentStorage)
	require.NoError(t, err)
	assert.Equal(t, []string{ComponentStorage, ComponentVolume}, lm.ListComponents())

	lm.SetConsoleLevel(DEBUG)
	assert.Equal(t, DEBUG, a.minConsoleLevel)

	require.NoError(t, lm.SetLogLevel(ComponentVolume, ERROR, ERROR))
	assert.False(t, a.Enabled(WARN))
	assert.Error(t, lm.SetLogLevel("missing", INFO, INFO))

	require.NoError(t, lm.CloseAll())
	assert.Empty(t, lm.ListComponents())
}
