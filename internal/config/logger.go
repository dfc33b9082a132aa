package config

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// logLevels maps the accepted LOG_LEVEL values to zerolog levels. Validate
// checks membership against the same map, so a level that loads is a level
// that resolves.
var logLevels = map[string]zerolog.Level{
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
	"error": zerolog.ErrorLevel,
}

// NewLogger builds the root logger for the configured level and format.
func NewLogger(cfg LoggerConfig) zerolog.Logger {
	level, ok := logLevels[cfg.Level]
	if !ok {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stderr
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(out).With().Timestamp().Logger()
}
