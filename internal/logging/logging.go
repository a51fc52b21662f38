// ABOUTME: Shared logrus setup with rotation
// ABOUTME: Routes logs to file only when a TUI owns the terminal
package logging

import (
	"io"
	"os"

	"github.com/echolat/echolat-go/internal/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var base = logrus.New()

// Init configures the shared logger. When fileOnly is true (a TUI owns
// the terminal) log lines go to the rotated file alone; otherwise they
// are mirrored to stdout as well.
func Init(cfg config.LoggingConfig, fileOnly bool) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	if cfg.File == "" {
		base.SetOutput(os.Stdout)
		return
	}

	rotated := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxAge:     cfg.MaxAge,
		MaxBackups: 3,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}

	if fileOnly {
		base.SetOutput(rotated)
	} else {
		base.SetOutput(io.MultiWriter(os.Stdout, rotated))
	}
}

// L returns the shared logger.
func L() *logrus.Logger { return base }

// With returns an entry carrying structured fields.
func With(fields logrus.Fields) *logrus.Entry { return base.WithFields(fields) }
