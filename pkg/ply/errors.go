package ply

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every *Error unwraps to exactly one of them.
var (
	ErrMalformedHeader   = errors.New("malformed header")
	ErrMalformedContent  = errors.New("malformed content")
	ErrIO                = errors.New("i/o failure")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrSchema            = errors.New("invalid schema")
)

// Error describes a failure with as much location context as is known.
// Line is 0 and Row is -1 when they do not apply.
type Error struct {
	Kind     error
	Path     string
	Line     int
	Element  string
	Property string
	Row      int
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Path != "" {
		fmt.Fprintf(&b, " in file '%s'", e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " on line %d", e.Line)
	}
	if e.Element != "" {
		fmt.Fprintf(&b, " for element '%s'", e.Element)
		if e.Row >= 0 {
			fmt.Fprintf(&b, " item %d", e.Row)
		}
	}
	if e.Property != "" {
		fmt.Fprintf(&b, " property '%s'", e.Property)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func schemaError(format string, args ...any) *Error {
	return &Error{Kind: ErrSchema, Row: -1, Msg: fmt.Sprintf(format, args...)}
}
