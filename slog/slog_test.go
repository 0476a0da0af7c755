package slog_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cli "github.com/bassmanitram/dataclass-cli"
	clislog "github.com/bassmanitram/dataclass-cli/slog"
)

type appConfig struct {
	clislog.Options
	Name string
}

func TestOptionsFlags(t *testing.T) {
	cfg, err := cli.ParseArgs[appConfig]("app", nil, []string{
		"--log-level", "debug",
		"--log-format", "json",
	})
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestOptionsDefaults(t *testing.T) {
	cfg, err := cli.ParseArgs[appConfig]("app", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestOptionsBadFormat(t *testing.T) {
	_, err := cli.ParseArgs[appConfig]("app", nil, []string{"--log-format", "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "choose from text, json")
}

func TestOptionsLevelForms(t *testing.T) {
	cfg, err := cli.ParseArgs[appConfig]("app", nil, []string{"--log-level", "WARN"})
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)

	cfg, err = cli.ParseArgs[appConfig]("app", nil, []string{"--log-level", "DEBUG+2"})
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug+2, cfg.LogLevel)
}

func TestOptionsEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	cfg, err := cli.ParseArgs[appConfig]("app", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, cfg.LogLevel)
}

func TestConfigureJSON(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	buf := &bytes.Buffer{}
	o := &clislog.Options{LogLevel: slog.LevelInfo, LogFormat: "json"}
	o.ConfigureWithHandlerOptions(buf, nil)

	slog.Debug("quiet")
	slog.Info("hello", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, `"msg":"hello"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestConfigureText(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	buf := &bytes.Buffer{}
	o := &clislog.Options{LogFormat: "text"}
	o.ConfigureWithHandlerOptions(buf, nil)

	slog.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
