package util

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewNullLogger returns a logger which discards everything. It is the default for components
// constructed without a logger.
func NewNullLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// LoggerOrNull returns logger, or a discarding logger when it is nil.
func LoggerOrNull(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger == nil {
		return NewNullLogger()
	}
	return logger
}
