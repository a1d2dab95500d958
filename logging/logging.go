// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"gaznger/config"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	log "github.com/sirupsen/logrus"
)

// Setup applies the configured log level and output. In production the
// format is JSON; development gets the human-readable text formatter. When
// a log file is configured, output goes to stdout and a daily-rotated file.
func Setup(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log.SetLevel(level)

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if cfg.LogFile != "" {
		writer, err := rotatelogs.New(
			cfg.LogFile+".%Y%m%d",
			rotatelogs.WithLinkName(cfg.LogFile),
			rotatelogs.WithRotationTime(24*time.Hour),
			rotatelogs.WithMaxAge(14*24*time.Hour),
		)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", cfg.LogFile, err)
		}
		log.SetOutput(io.MultiWriter(os.Stdout, writer))
	}

	return nil
}
