// Package format renders metric events into statsd wire lines and parses them back.
//
// A line has the shape
//
//	[<namespace>.]<stat>:<value>|<type>[|@<sample_rate>]
//
// where type is one of c, g or ms and the sample rate is only present when it is below 1.
package format

import (
	"strconv"
	"strings"

	"github.com/hindenbug/statsd"
)

var nameReplacer = strings.NewReplacer(":", "_", "|", "_", "@", "_")

// SanitizeName makes a stat name safe for the wire: "::" becomes "." and any remaining
// ':', '|' or '@' becomes '_'.
func SanitizeName(stat string) string {
	return nameReplacer.Replace(strings.ReplaceAll(stat, "::", "."))
}

// Format renders a line with an already formatted value.
func Format(namespace, stat, value string, t statsd.MetricType, sampleRate float64) string {
	var sb strings.Builder
	sb.Grow(len(namespace) + len(stat) + len(value) + 16)
	if namespace != "" {
		sb.WriteString(namespace)
		sb.WriteByte('.')
	}
	sb.WriteString(SanitizeName(stat))
	sb.WriteByte(':')
	sb.WriteString(value)
	sb.WriteByte('|')
	sb.WriteString(t.Symbol())
	if sampleRate < 1 {
		sb.WriteString("|@")
		sb.WriteString(FormatRate(sampleRate))
	}
	return sb.String()
}

// FormatInt renders a line with an integer value.
func FormatInt(namespace, stat string, value int64, t statsd.MetricType, sampleRate float64) string {
	return Format(namespace, stat, strconv.FormatInt(value, 10), t, sampleRate)
}

// FormatFloat renders a line with a floating point value using the shortest exact representation,
// so 42.0 is rendered as "42".
func FormatFloat(namespace, stat string, value float64, t statsd.MetricType, sampleRate float64) string {
	return Format(namespace, stat, strconv.FormatFloat(value, 'f', -1, 64), t, sampleRate)
}

// FormatRate renders a sample rate the way it appears after "|@".
func FormatRate(sampleRate float64) string {
	return strconv.FormatFloat(sampleRate, 'f', -1, 64)
}

// SplitPayload splits a datagram payload into its lines. Empty lines are skipped.
func SplitPayload(payload string) []string {
	lines := strings.Split(payload, "\n")
	next := 0
	for _, line := range lines {
		if line != "" {
			lines[next] = line
			next++
		}
	}
	return lines[:next]
}
