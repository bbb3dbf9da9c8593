package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New tạo logger ghi ra w. Development dùng console writer, còn lại ghi JSON.
// Level rỗng thì dùng debug cho development và info cho môi trường khác.
func New(env, level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if env == "development" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	lvl := zerolog.InfoLevel
	if env == "development" {
		lvl = zerolog.DebugLevel
	}
	if level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
			lvl = parsed
		}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "tasktracker").Logger()
}
