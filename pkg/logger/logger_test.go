package logger

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DEBUG,
		"INFO":    INFO,
		"warning": WARN,
		" warn ":  WARN,
		"Error":   ERROR,
		"fatal":   FATAL,
		"":        INFO,
		"verbose": INFO,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLogLevel(in), "input %q", in)
	}
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, WARN)

	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "[WARN] warn 3")
	assert.Contains(t, out, "[ERROR] error 4")

	l.SetLevel(DEBUG)
	l.Debugf("now visible")
	assert.Contains(t, buf.String(), "[DEBUG] now visible")
}

func TestGlobalFunctions_UseDefault(t *testing.T) {
	prev := instance
	t.Cleanup(func() { instance = prev })

	var buf bytes.Buffer
	SetDefault(NewWithWriter(&buf, INFO))

	Infof("loaded %s", "energy")
	Debugf("hidden")

	assert.Contains(t, buf.String(), "[INFO] loaded energy")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Equal(t, INFO, GetLevel())
}

func TestNew_WithRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "loader.log")
	l, err := New(Options{Path: path, Level: INFO, MaxSize: 1, MaxBackups: 1, MaxAge: 1})
	require.NoError(t, err)

	l.Infof("hello file")
	require.NoError(t, l.Close())
	assert.FileExists(t, path)
}
