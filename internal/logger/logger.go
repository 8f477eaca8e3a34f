package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New creates a console logger on stderr at the given level. An unknown level
// falls back to info.
func New(level string) zerolog.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter is New with an explicit output, used by tests.
func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	output := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: w != os.Stderr}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger()
}
