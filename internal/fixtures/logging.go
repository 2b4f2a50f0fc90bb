package fixtures

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// tbWriter forwards each formatted log entry to the test log so output is attributed to the test.
type tbWriter struct {
	tb testing.TB
}

func (w tbWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	w.tb.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// NewTestLogger returns a debug level logger writing through tb.Log.
func NewTestLogger(tb testing.TB) logrus.FieldLogger {
	l, _ := NewTestLoggerWithHook(tb)
	return l
}

// NewTestLoggerWithHook is NewTestLogger with a hook recording every entry for assertions.
func NewTestLoggerWithHook(tb testing.TB) (logrus.FieldLogger, *test.Hook) {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	l.SetOutput(tbWriter{tb: tb})
	return l, test.NewLocal(l)
}
