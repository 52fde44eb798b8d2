package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  *logrus.Logger
	WarnLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

// InitLoggers sets up the three leveled loggers. Each writes to stdout and to
// a rotated file under LOG_DIR (default ./logs).
func InitLoggers() {
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	InfoLogger = newLogger(filepath.Join(logDir, "info.log"), logrus.InfoLevel)
	WarnLogger = newLogger(filepath.Join(logDir, "warn.log"), logrus.WarnLevel)
	ErrorLogger = newLogger(filepath.Join(logDir, "error.log"), logrus.ErrorLevel)
}

func newLogger(path string, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	l.SetOutput(io.MultiWriter(os.Stdout, rotator))

	return l
}

func init() {
	// Keep the loggers usable even when main forgets to call InitLoggers
	// (tests import model packages directly).
	if InfoLogger == nil {
		InitLoggers()
	}
}
