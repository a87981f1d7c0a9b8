package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// New creates the process logger. level comes from the CLI flag and falls
// back to CHATOT_LOG_LEVEL; a "json" or "json:<level>" value switches to
// JSON output. CHATOT_LOG_PATH redirects logs to a file.
func New(name, level string) hclog.Logger {
	if level == "" {
		level = os.Getenv("CHATOT_LOG_LEVEL")
	}
	if level == "" {
		level = "warn"
	}

	jsonFormat := false
	if strings.HasPrefix(level, "json") {
		jsonFormat = true
		if rest, ok := strings.CutPrefix(level, "json:"); ok {
			level = rest
		} else {
			level = "info"
		}
	}

	var output io.Writer = os.Stderr
	if logPath := os.Getenv("CHATOT_LOG_PATH"); logPath != "" {
		if file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			output = file
		}
	}

	if !jsonFormat {
		output = NewPrefixWriter("🐦 ", output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format without timezone
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}
