// Package logging builds the logrus loggers used by the engine and the CLI.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"

	"clinic/internal/errors"
)

// DefaultLevel is the CLI log level when none is given
const DefaultLevel = "warn"

// New creates a text logger writing to out at the given level
func New(level string, out io.Writer) (*logrus.Logger, error) {
	if level == "" {
		level = DefaultLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Config("invalid log level", err)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableQuote:     true,
	})
	return logger, nil
}

// Discard returns a logger that drops everything
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}
