// Logger construction shared by the CLI commands
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"image-processing-engine/internal/config"
)

// New builds a logrus logger. Debug mode forces debug level and the
// colored text formatter; otherwise cfg.Format picks text or JSON. When
// cfg.File is set, entries also go to a size-rotated file. The returned
// closer releases the file and is never nil.
func New(cfg config.LogConfig, debug bool, out io.Writer) (*logrus.Logger, io.Closer, error) {
	cfg = cfg.Merge(config.DefaultLogConfig())
	if debug {
		cfg.Level = "debug"
		cfg.Format = "text"
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	level, _ := logrus.ParseLevel(cfg.Level)

	if out == nil {
		out = os.Stdout
	}

	logger := logrus.New()
	logger.SetLevel(level)

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		out = io.MultiWriter(out, rotator)
		closer = rotator
	}
	logger.SetOutput(out)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   debug && cfg.File == "",
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	logger.WithFields(logrus.Fields{
		"level":  level.String(),
		"format": cfg.Format,
		"file":   cfg.File,
	}).Debug("Logger initialized")
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
