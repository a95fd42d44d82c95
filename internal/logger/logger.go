package logger

import (
	"io"
	"os"
	"path/filepath"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"ewastevision/internal/config"
)

// Fields is an alias so callers do not need to import logrus directly.
type Fields = logrus.Fields

// Logger provides leveled logging (info/warning/error) to rotated files and stdout/stderr.
type Logger struct {
	infoLog    *logrus.Logger
	warningLog *logrus.Logger
	errorLog   *logrus.Logger
	logDir     string
}

// NewLogger creates a Logger and ensures the log directory exists.
func NewLogger(cfg *config.Config) *Logger {
	if err := os.MkdirAll(cfg.LogDirectory, 0755); err != nil {
		logrus.Fatalf("Failed to create log directory: %v", err)
	}

	l := &Logger{logDir: cfg.LogDirectory}
	l.infoLog = newLevelLogger(io.MultiWriter(os.Stdout, l.rotatingFile("info.log")), logrus.InfoLevel)
	l.warningLog = newLevelLogger(io.MultiWriter(os.Stdout, l.rotatingFile("warning.log")), logrus.WarnLevel)
	l.errorLog = newLevelLogger(io.MultiWriter(os.Stderr, l.rotatingFile("error.log")), logrus.ErrorLevel)
	return l
}

// NewWriter creates a Logger that writes every level to w and keeps no files.
func NewWriter(w io.Writer) *Logger {
	return &Logger{
		infoLog:    newLevelLogger(w, logrus.InfoLevel),
		warningLog: newLevelLogger(w, logrus.WarnLevel),
		errorLog:   newLevelLogger(w, logrus.ErrorLevel),
	}
}

// NewDiscard creates a Logger that drops everything.
func NewDiscard() *Logger {
	return NewWriter(io.Discard)
}

func newLevelLogger(w io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&formatter.Formatter{
		NoColors:        true,
		TimestampFormat: "2006-01-02 15:04:05",
		HideKeys:        false,
	})
	return l
}

// rotatingFile opens a size-rotated log file inside the log directory.
func (l *Logger) rotatingFile(name string) io.Writer {
	return &lumberjack.Logger{
		Filename:   filepath.Join(l.logDir, name),
		MaxSize:    20,
		MaxBackups: 3,
		MaxAge:     14,
		LocalTime:  true,
	}
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.infoLog.Infof(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.warningLog.Warnf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.errorLog.Errorf(format, v...)
}

// WithFields returns an info-level entry carrying structured fields.
func (l *Logger) WithFields(fields Fields) *logrus.Entry {
	return l.infoLog.WithFields(fields)
}

// Dir returns the directory log files are written to, empty for writer-backed loggers.
func (l *Logger) Dir() string {
	return l.logDir
}

// CleanLogs truncates the specified log file.
func (l *Logger) CleanLogs(fileName string) error {
	if l.logDir == "" {
		return nil
	}

	filePath := filepath.Join(l.logDir, filepath.Base(fileName))
	if err := os.Truncate(filePath, 0); err != nil {
		l.Error("Error truncating log file %s: %v", fileName, err)
		return err
	}

	l.Info("Log file %s has been cleared.", fileName)
	return nil
}
