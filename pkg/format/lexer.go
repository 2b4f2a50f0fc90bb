package format

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/hindenbug/statsd"
)

// Line is a parsed statsd line.
type Line struct {
	Name       string
	Value      float64
	Type       statsd.MetricType
	SampleRate float64
}

var (
	errMissingKeySep   = errors.New("missing key separator")
	errEmptyKey        = errors.New("key zero len")
	errInvalidKey      = errors.New("invalid character in key")
	errMissingValueSep = errors.New("missing value separator")
	errInvalidValue    = errors.New("invalid value")
	errInvalidType     = errors.New("invalid type")
	errInvalidRate     = errors.New("invalid sample rate")
	errNaN             = errors.New("invalid value NaN")
)

type lexer struct {
	input string
	pos   int
	start int
	line  Line
	err   error
}

type stateFn func(*lexer) stateFn

// Parse parses a single line. It is strict: anything the formatter would never produce is an error.
func Parse(input string) (Line, error) {
	l := &lexer{
		input: input,
		line:  Line{SampleRate: 1},
	}
	for state := lexKeySep; state != nil; {
		state = state(l)
	}
	if l.err != nil {
		return Line{}, l.err
	}
	return l.line, nil
}

// lex until we find the colon separator between key and value.
func lexKeySep(l *lexer) stateFn {
	idx := strings.IndexByte(l.input, ':')
	if idx == -1 {
		l.err = errMissingKeySep
		return nil
	}
	if idx == 0 {
		l.err = errEmptyKey
		return nil
	}
	if strings.ContainsAny(l.input[:idx], "|@\n") {
		l.err = errInvalidKey
		return nil
	}
	l.line.Name = l.input[:idx]
	l.pos = idx + 1
	l.start = l.pos
	return lexValue
}

// lex the value up to the pipe separator.
func lexValue(l *lexer) stateFn {
	idx := strings.IndexByte(l.input[l.pos:], '|')
	if idx == -1 {
		l.err = errMissingValueSep
		return nil
	}
	v, err := strconv.ParseFloat(l.input[l.start:l.pos+idx], 64)
	if err != nil {
		l.err = errInvalidValue
		return nil
	}
	if math.IsNaN(v) {
		l.err = errNaN
		return nil
	}
	l.line.Value = v
	l.pos += idx + 1
	l.start = l.pos
	return lexType
}

// lex the type, up to the optional sample rate.
func lexType(l *lexer) stateFn {
	end := strings.IndexByte(l.input[l.pos:], '|')
	var symbol string
	if end == -1 {
		symbol = l.input[l.pos:]
		l.pos = len(l.input)
	} else {
		symbol = l.input[l.pos : l.pos+end]
		l.pos += end + 1
	}
	t, ok := statsd.ParseMetricType(symbol)
	if !ok {
		l.err = errInvalidType
		return nil
	}
	l.line.Type = t
	if end == -1 {
		return nil
	}
	return lexSampleRate
}

// lex the sample rate, the last field of a line.
func lexSampleRate(l *lexer) stateFn {
	if l.pos >= len(l.input) || l.input[l.pos] != '@' {
		l.err = errInvalidRate
		return nil
	}
	rate, err := strconv.ParseFloat(l.input[l.pos+1:], 64)
	if err != nil || math.IsNaN(rate) || rate <= 0 || rate > 1 {
		l.err = errInvalidRate
		return nil
	}
	l.line.SampleRate = rate
	return nil
}
