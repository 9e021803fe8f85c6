package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const fileName = "app.log"

type Config struct {
	Level string
	Debug bool
	// Dir holds the rotating log file. Empty disables the file sink.
	Dir    string
	Stdout io.Writer
}

// Logger is the application logger plus the file sink it owns.
type Logger struct {
	*logrus.Logger
	file *lumberjack.Logger
}

func New(cfg Config) (*Logger, error) {
	out := cfg.Stdout
	if out == nil {
		out = os.Stdout
	}

	l := &Logger{Logger: logrus.New()}
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		l.file = &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, fileName),
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   true,
		}
		out = io.MultiWriter(out, l.file)
	}

	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   !cfg.Debug,
	})
	l.SetLevel(ParseLevel(cfg.Level))
	if cfg.Debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l, nil
}

// App returns the entry every application component logs through.
func (l *Logger) App() *logrus.Entry {
	return l.WithField("logger", "app")
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel accepts logrus names plus "critical". Unknown values fall back to info.
func ParseLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return logrus.FatalLevel
	case "":
		return logrus.InfoLevel
	}
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
