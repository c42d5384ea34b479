// Package sysutil holds process-level helpers used by the server entrypoint:
// global log configuration and build metadata.
package sysutil

import (
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps a LOG_LEVEL value to a zerolog level. Matching ignores case
// and surrounding space, accepts "warning" for warn, and falls back to info
// for empty or unknown input.
func ParseLevel(lvl string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(lvl))
	if s == "warning" {
		s = "warn"
	}
	l, err := zerolog.ParseLevel(s)
	if err != nil || s == "" || l == zerolog.NoLevel || l == zerolog.Disabled || l == zerolog.TraceLevel {
		return zerolog.InfoLevel
	}
	return l
}

// SetLogLevel applies ParseLevel(lvl) as the global zerolog level.
func SetLogLevel(lvl string) {
	zerolog.SetGlobalLevel(ParseLevel(lvl))
}

// SetupLogger replaces the global zerolog logger with one writing to w.
// Output is JSON with nanosecond RFC 3339 timestamps, or a console format
// when pretty is set.
func SetupLogger(w io.Writer, lvl string, pretty bool) zerolog.Logger {
	SetLogLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Str("service", "leaderboard").Logger()
	return log.Logger
}

// Version reports the running build: APP_VERSION when set, else the main
// module version stamped by the Go toolchain, else "dev".
func Version() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}
