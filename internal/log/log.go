// Package log builds slog handlers backed by charmbracelet/log.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Supported formats.
const (
	TextFormat   = "text"
	LogfmtFormat = "logfmt"
	JSONFormat   = "json"
)

// CreateHandler creates a [slog.Handler] writing to w.
//
// Parameters:
//   - w: Destination of the records
//   - logLevel: One of debug, info, warn, error (case-insensitive)
//   - logFormat: One of text, logfmt, json (case-insensitive)
//
// Returns:
//   - slog.Handler: Handler for slog.New
//   - error: Unknown level or format
func CreateHandler(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	level, err := GetLevel(logLevel)
	if err != nil {
		return nil, err
	}

	formatter, err := getFormatter(logFormat)
	if err != nil {
		return nil, err
	}

	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
		TimeFormat:      time.StampMilli,
	}), nil
}

// GetLevel parses a level name.
func GetLevel(level string) (charmlog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return charmlog.DebugLevel, nil
	case "info", "":
		return charmlog.InfoLevel, nil
	case "warn", "warning":
		return charmlog.WarnLevel, nil
	case "error":
		return charmlog.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}

func getFormatter(format string) (charmlog.Formatter, error) {
	switch strings.ToLower(format) {
	case TextFormat, "":
		return charmlog.TextFormatter, nil
	case LogfmtFormat:
		return charmlog.LogfmtFormatter, nil
	case JSONFormat:
		return charmlog.JSONFormatter, nil
	default:
		return 0, fmt.Errorf("unknown log format %q", format)
	}
}
