package logging

import (
	"bytes"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw    string
		want   zerolog.Level
		wantOK bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, true},
		{" WARN ", zerolog.WarnLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"loud", zerolog.InfoLevel, false},
	}

	for _, tt := range tests {
		got, ok := ParseLevel(tt.raw)
		assert.Equal(t, tt.want, got, "level %q", tt.raw)
		assert.Equal(t, tt.wantOK, ok, "ok %q", tt.raw)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogNoColor, "true")

	opts := defaultOptions(ProfileRuntime)
	applyEnvOverrides(&opts)

	assert.Equal(t, zerolog.DebugLevel, opts.Level)
	assert.True(t, opts.NoColor)
}

func TestNewTagsApp(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: zerolog.InfoLevel, Out: &buf, NoColor: true})

	logger.Info().Str("host", "example.com").Msg("fetched")
	logger.Debug().Msg("hidden")

	out := buf.String()
	assert.Contains(t, out, "fetched")
	assert.Contains(t, out, "app=burrow")
	assert.Contains(t, out, "host=example.com")
	assert.NotContains(t, out, "hidden")
}

// reconfigurable lets a test install the global logger again and restores
// the previous one afterwards.
func reconfigurable(t *testing.T) {
	t.Helper()
	prev := log.Logger
	configureOnce = sync.Once{}
	t.Cleanup(func() {
		log.Logger = prev
		configureOnce = sync.Once{}
	})
}

func TestSetupUsesConfiguredLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogNoColor, "1")
	reconfigurable(t)

	var buf bytes.Buffer
	logger := Setup("warn", &buf)

	logger.Info().Msg("quiet")
	global := Logger()
	global.Warn().Msg("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "loud")
}

func TestConfigureTestsSilences(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	reconfigurable(t)

	ConfigureTests()
	assert.Equal(t, zerolog.Disabled, Logger().GetLevel())
}

func TestSetupKeepsTestConfiguration(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	reconfigurable(t)

	ConfigureTests()
	var buf bytes.Buffer
	logger := Setup("debug", &buf)
	logger.Error().Msg("should stay silent")

	assert.Equal(t, zerolog.Disabled, logger.GetLevel())
	assert.Empty(t, buf.String())
}

func TestEnvOverridesAdjustments(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	reconfigurable(t)

	Configure(ProfileRuntime, func(opts *Options) {
		opts.Level = zerolog.DebugLevel
		opts.Out = &bytes.Buffer{}
	})
	assert.Equal(t, zerolog.ErrorLevel, Logger().GetLevel())
}
