package logger_test

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"secret-nick/internal/core/logger"
)

func TestToWriter_OneEntryPerLine(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	w := logger.ToWriter(zap.New(core), zapcore.WarnLevel)

	n, err := w.Write([]byte("gin debug line\nsecond line\n"))

	require.NoError(t, err)
	assert.Equal(t, 27, n)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "gin debug line", logs.All()[0].Message)
	assert.Equal(t, "second line", logs.All()[1].Message)
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestRedirectStdLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	undo := logger.RedirectStdLog(zap.New(core), zapcore.InfoLevel)
	defer undo()

	log.Print("from std log")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "from std log", logs.All()[0].Message)
}

// 控制台格式下文件仍写 JSON
func TestBuild_FileIsJSON(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := logger.Build(logger.Options{Level: "info", File: &logger.File{Path: file, MaxSizeMB: 1}})

	l.Info("room drawn", zap.Uint64("room_id", 7))
	l.Debug("hidden")
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"room_id":7`)
	assert.Contains(t, string(b), `"msg":"room drawn"`)
	assert.NotContains(t, string(b), "hidden")
}

func TestBuild_BadLevelFallsBackToInfo(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := logger.Build(logger.Options{Level: "loud", JSON: true, File: &logger.File{Path: file}})

	l.Debug("debug line")
	l.Info("info line")
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "debug line")
	assert.Contains(t, string(b), "info line")
}
