package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger installs the global zerolog logger at the given level,
// writing newline-delimited JSON to stdout.
func InitLogger(level string) {
	logLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// NewComponentLogger returns a logger tagged with the given component
// name, for packages that want their own scoped logger rather than the
// global one.
func NewComponentLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
