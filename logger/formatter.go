package logger

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultFieldSeparator = " | "

// Formatter renders log entries as a timestamp, an optional level name,
// the ordered scope fields in brackets, the message, and any remaining
// fields sorted alphabetically.
type Formatter struct {
	// TimestampFormat for the leading timestamp. Default: time.RFC3339.
	TimestampFormat string
	// NoColors disables ANSI coloring of the level name.
	NoColors bool
	// ShowLevelName shows the level name on every entry; otherwise only
	// warnings and above carry one.
	ShowLevelName bool
	// FieldOrder lists field keys rendered, in order, before the message.
	// Fields not listed are appended after the message alphabetically.
	FieldOrder []string
	// FieldSeparator between trailing fields. Default: " | ".
	FieldSeparator string
}

// Format implements logrus.Formatter.
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := &bytes.Buffer{}

	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = time.RFC3339
	}
	b.WriteString(entry.Time.Format(timestampFormat))
	b.WriteString(" ")

	if f.ShowLevelName || entry.Level <= logrus.WarnLevel {
		name := strings.ToUpper(entry.Level.String())
		if f.NoColors {
			fmt.Fprintf(b, "[%s] ", name)
		} else {
			fmt.Fprintf(b, "\x1b[%dm[%s]\x1b[0m ", colorByLevel(entry.Level), name)
		}
	}

	ordered := make(map[string]bool, len(f.FieldOrder))
	for _, key := range f.FieldOrder {
		if v, ok := entry.Data[key]; ok {
			fmt.Fprintf(b, "[%s:%v] ", key, v)
			ordered[key] = true
		}
	}

	b.WriteString(strings.TrimSpace(entry.Message))

	rest := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		if !ordered[key] {
			rest = append(rest, key)
		}
	}
	if len(rest) > 0 {
		sort.Strings(rest)
		sep := f.FieldSeparator
		if sep == "" {
			sep = defaultFieldSeparator
		}
		parts := make([]string, 0, len(rest))
		for _, key := range rest {
			parts = append(parts, fmt.Sprintf("%s:%v", key, entry.Data[key]))
		}
		b.WriteString("  ")
		b.WriteString(strings.Join(parts, sep))
	}

	b.WriteString("\n")
	return b.Bytes(), nil
}

func colorByLevel(level logrus.Level) int {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return 37 // gray
	case logrus.WarnLevel:
		return 33 // yellow
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return 31 // red
	default:
		return 36 // cyan
	}
}
