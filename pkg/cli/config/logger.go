package config

import (
	"io"
	"log/slog"
	"os"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/copilot-dash/pkg/utils/logging"
)

// Logger holds logging configuration
type Logger struct {
	level  string
	format string
	output string
}

// Flags returns CLI flags for logger configuration
func (l *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("COPILOT_DASH_LOG_LEVEL"),
			Destination: &l.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       "console",
			Sources:     cli.EnvVars("COPILOT_DASH_LOG_FORMAT"),
			Destination: &l.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output destination (-, stdout, stderr or file path)",
			Value:       "-",
			Sources:     cli.EnvVars("COPILOT_DASH_LOG_OUTPUT"),
			Destination: &l.output,
		},
	}
}

// LogValue implements slog.LogValuer, for startup logging
func (l Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", l.level),
		slog.String("format", l.format),
		slog.String("output", l.output),
	)
}

// Configure builds the process-wide logger from the flags and installs it
// as logging default. The returned closer releases the log file, if any.
func (l *Logger) Configure() (func(), error) {
	levels := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	level, ok := levels[l.level]
	if !ok {
		return nil, goerr.New("invalid log level", goerr.V("level", l.level))
	}

	var w io.Writer
	closer := func() {}
	switch l.output {
	case "-", "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(l.output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", l.output))
		}
		w = f
		closer = func() {
			_ = f.Close()
		}
	}

	redact := masq.New(
		masq.WithFieldName("Token"),
		masq.WithFieldName("token"),
		masq.WithFieldPrefix("secret"),
	)

	var handler slog.Handler
	switch l.format {
	case "console":
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithReplaceAttr(redact),
			clog.WithSource(level == slog.LevelDebug),
			clog.WithColor(l.output == "-" || l.output == "stdout" || l.output == "stderr"),
		)
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: redact,
		})
	default:
		closer()
		return nil, goerr.New("invalid log format", goerr.V("format", l.format))
	}

	logging.SetDefault(slog.New(handler))
	return closer, nil
}
