package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogging installs the default slog logger, writing to stderr or, when
// LOG_FILE is set, to a rotating file. LOG_FORMAT picks text (default) or
// json. Output from the std log package goes through the same handler.
// Close the result on exit.
func (c *Config) SetupLogging() io.Closer {
	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if path := strings.TrimSpace(c.v.GetString("LOG_FILE")); path != "" {
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    c.v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: c.v.GetInt("LOG_MAX_BACKUPS"),
			MaxAge:     c.v.GetInt("LOG_MAX_AGE_DAYS"),
		}
		w, closer = lj, lj
	}

	slog.SetDefault(slog.New(c.handler(w)))
	return closer
}

func (c *Config) handler(w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: c.GetLogLevel()}
	if strings.ToLower(c.v.GetString("LOG_FORMAT")) == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
