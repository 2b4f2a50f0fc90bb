package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hindenbug/statsd"
)

func TestParseValid(t *testing.T) {
	t.Parallel()
	tests := map[string]Line{
		"user.count:42|g":          {Name: "user.count", Value: 42, Type: statsd.GAUGE, SampleRate: 1},
		"hits:-1|c":                {Name: "hits", Value: -1, Type: statsd.COUNTER, SampleRate: 1},
		"ns.latency:12.5|ms|@0.25": {Name: "ns.latency", Value: 12.5, Type: statsd.TIMER, SampleRate: 0.25},
		"hits:1|c|@1":              {Name: "hits", Value: 1, Type: statsd.COUNTER, SampleRate: 1},
	}
	for input, expected := range tests {
		input, expected := input, expected
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			line, err := Parse(input)
			require.NoError(t, err)
			assert.Equal(t, expected, line)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()
	tests := map[string]error{
		"":                 errMissingKeySep,
		"no-separator":     errMissingKeySep,
		":1|c":             errEmptyKey,
		"a|b:1|c":          errInvalidKey,
		"a:1":              errMissingValueSep,
		"a:x|c":            errInvalidValue,
		"a:NaN|c":          errNaN,
		"a:1|s":            errInvalidType,
		"a:1|":             errInvalidType,
		"a:1|c|0.5":        errInvalidRate,
		"a:1|c|@0":         errInvalidRate,
		"a:1|c|@1.5":       errInvalidRate,
		"a:1|c|@half":      errInvalidRate,
		"a:1|c|#tag:value": errInvalidRate,
	}
	for input, expected := range tests {
		input, expected := input, expected
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(input)
			assert.Equal(t, expected, err)
		})
	}
}
