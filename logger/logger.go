package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/taskcores/common"
)

// Log is the global logger instance.
var Log *logrus.Logger

func init() {
	Log = logrus.New()
	Log.SetLevel(logrus.InfoLevel)
	Log.SetFormatter(consoleFormatter(false))
}

// fieldOrder places invocation scope fields before everything else.
var fieldOrder = []string{
	common.LogFieldTaskName,
	common.LogFieldSupplierName,
	common.LogFieldStepName,
	common.LogFieldJobID,
	common.LogFieldCorrelation,
}

// Init configures the global logger. When outputPath is non-empty, log
// lines go to a daily-rotated file under it (kept for seven days) instead
// of the console.
func Init(outputPath string, verbose bool, defaultLevel logrus.Level) error {
	level := defaultLevel
	if verbose {
		level = logrus.DebugLevel
	}
	Log.SetLevel(level)

	if outputPath == "" {
		Log.SetFormatter(consoleFormatter(verbose))
		Log.SetOutput(os.Stderr)
		return nil
	}

	if err := os.MkdirAll(outputPath, common.FileMode0755); err != nil {
		return err
	}
	logFilePath := filepath.Join(outputPath, common.AppName+".log")

	writer, err := rotatelogs.New(
		logFilePath+".%Y%m%d",
		rotatelogs.WithLinkName(logFilePath),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return err
	}

	fileFormatter := &Formatter{
		TimestampFormat: "2006-01-02 15:04:05.000 MST",
		NoColors:        true,
		ShowLevelName:   true,
		FieldOrder:      fieldOrder,
	}
	writers := lfshook.WriterMap{}
	for _, lvl := range logrus.AllLevels {
		if Log.IsLevelEnabled(lvl) {
			writers[lvl] = writer
		}
	}
	Log.Hooks.Add(lfshook.NewHook(writers, fileFormatter))
	// File output is handled by the hook; drop the default stream.
	Log.SetOutput(io.Discard)
	return nil
}

func consoleFormatter(verbose bool) *Formatter {
	return &Formatter{
		TimestampFormat: "15:04:05",
		NoColors:        false,
		ShowLevelName:   verbose,
		FieldOrder:      fieldOrder,
	}
}

// Entry returns a fresh entry on the global logger.
func Entry() *logrus.Entry {
	return logrus.NewEntry(Log)
}
