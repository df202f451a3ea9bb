// Package logging configures the zerolog logger shared by burrow's packages.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel   = "BURROW_LOG_LEVEL"
	EnvLogNoColor = "BURROW_LOG_NOCOLOR"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Options controls logger construction.
type Options struct {
	Level     zerolog.Level
	Out       io.Writer
	NoColor   bool
	Timestamp bool
}

var configureOnce sync.Once

// ConfigureTests silences the global logger unless BURROW_LOG_LEVEL asks
// otherwise. Test binaries call it from TestMain.
func ConfigureTests() {
	Configure(ProfileTest)
}

// Configure installs the global logger for the given profile once per
// process. adjust runs on the profile defaults; environment overrides are
// applied last. Later calls are no-ops.
func Configure(profile Profile, adjust ...func(*Options)) {
	configureOnce.Do(func() {
		opts := defaultOptions(profile)
		for _, fn := range adjust {
			fn(&opts)
		}
		applyEnvOverrides(&opts)
		log.Logger = New(opts)
	})
}

// New builds a console logger tagged with app=burrow.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	writer := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    opts.NoColor,
		TimeFormat: time.RFC3339,
	}
	if !opts.Timestamp {
		writer.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	ctx := zerolog.New(writer).Level(opts.Level).With().Str("app", "burrow")
	if opts.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

// Setup configures the runtime logger writing to out at the named level and
// returns it. The environment still wins over level and an unknown level
// keeps the runtime default. If a test binary already configured logging,
// that logger is kept.
func Setup(level string, out io.Writer) zerolog.Logger {
	Configure(ProfileRuntime, func(opts *Options) {
		if lvl, ok := ParseLevel(level); ok {
			opts.Level = lvl
		}
		opts.Out = out
		if _, isFile := out.(*os.File); isFile && out != os.Stderr && out != os.Stdout {
			opts.NoColor = true
		}
	})
	return log.Logger
}

// Logger returns the global logger. Packages default to it when no logger is
// injected.
func Logger() zerolog.Logger {
	return log.Logger
}

func defaultOptions(profile Profile) Options {
	switch profile {
	case ProfileTest:
		return Options{Level: zerolog.Disabled, NoColor: true}
	default:
		return Options{Level: zerolog.InfoLevel, Timestamp: true}
	}
}

func applyEnvOverrides(opts *Options) {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		opts.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		opts.NoColor = v
	}
}

// ParseLevel maps a level name to a zerolog level. ok is false for empty or
// unrecognised input.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
