// Package logger builds the zerolog logger shared by the SDK and stockctl.
package logger

import (
	"io"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

type stackTracer interface{ StackTrace() pkgerrors.StackTrace }

// New returns a logger writing JSON to stderr. stdout is left to command
// output. Use .Stack() on error events to include a stack trace.
func New(service string) zerolog.Logger {
	return NewWithWriter(service, os.Stderr)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(service string, w io.Writer) zerolog.Logger {
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}
	return zerolog.New(w).With().
		Str("service", service).
		Timestamp().
		Logger()
}

// Level parses a level name, falling back to info.
func Level(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
