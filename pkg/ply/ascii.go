package ply

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
)

// asciiSource reads one line per row and hands out its whitespace separated tokens
type asciiSource struct {
	r      *bufio.Reader
	tokens []string
	pos    int
	lineNo int
}

func (f *File) decodeASCII(br *bufio.Reader) error {
	src := &asciiSource{r: br, lineNo: f.lines}
	return f.decodeRows(src)
}

func (s *asciiSource) beginRow() error {
	text, err := s.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return &Error{Kind: ErrIO, Row: -1, Msg: "cannot read content", Err: err}
	}
	s.lineNo++
	s.tokens = strings.Fields(text)
	s.pos = 0
	return nil
}

func (s *asciiSource) next(t Type) (number, error) {
	if s.pos >= len(s.tokens) {
		return number{}, contentError("there are not enough values")
	}
	tok := s.tokens[s.pos]
	s.pos++
	v, err := parseToken(tok, t)
	if err != nil {
		return number{}, &Error{Kind: ErrMalformedContent, Row: -1, Msg: "cannot parse " + t.String() + " value '" + tok + "'", Err: err}
	}
	return v, nil
}

func (s *asciiSource) endRow() error {
	if s.pos < len(s.tokens) {
		return contentError("there are more fields defined than used")
	}
	return nil
}

// finish accepts trailing blank lines only
func (s *asciiSource) finish() error {
	for {
		text, err := s.r.ReadString('\n')
		if strings.TrimSpace(text) != "" {
			s.lineNo++
			return contentError("there are more data than used")
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return &Error{Kind: ErrIO, Row: -1, Msg: "cannot read content", Err: err}
		}
		s.lineNo++
	}
}

func (s *asciiSource) line() int {
	return s.lineNo
}

// parseToken parses tok as a value of file type t. 8-bit types are parsed as
// 32-bit integers and narrowed.
func parseToken(tok string, t Type) (number, error) {
	bits := t.Size() * 8
	if bits == 8 {
		bits = 32
	}
	switch classOf(t) {
	case signedClass:
		v, err := strconv.ParseInt(tok, 10, bits)
		if err != nil {
			return number{}, err
		}
		return columns[t].cast(number{class: signedClass, i: v}), nil
	case unsignedClass:
		v, err := strconv.ParseUint(tok, 10, bits)
		if err != nil {
			return number{}, err
		}
		return columns[t].cast(number{class: unsignedClass, u: v}), nil
	default:
		v, err := strconv.ParseFloat(tok, bits)
		if err != nil {
			return number{}, err
		}
		return number{class: floatClass, f: v}, nil
	}
}

func formatToken(v number, t Type) string {
	switch v.class {
	case signedClass:
		return strconv.FormatInt(v.i, 10)
	case unsignedClass:
		return strconv.FormatUint(v.u, 10)
	default:
		return strconv.FormatFloat(v.f, 'g', -1, t.Size()*8)
	}
}

// asciiSink writes one line per row with single spaces between tokens
type asciiSink struct {
	w        *bufio.Writer
	startRow bool
}

func (f *File) encodeASCII(bw *bufio.Writer) error {
	return f.encodeRows(&asciiSink{w: bw, startRow: true})
}

func (s *asciiSink) put(t Type, v number) error {
	if !s.startRow {
		s.w.WriteByte(' ')
	}
	s.startRow = false
	_, err := s.w.WriteString(formatToken(v, t))
	if err != nil {
		return &Error{Kind: ErrIO, Row: -1, Msg: "cannot write content", Err: err}
	}
	return nil
}

func (s *asciiSink) endRow() error {
	s.startRow = true
	if err := s.w.WriteByte('\n'); err != nil {
		return &Error{Kind: ErrIO, Row: -1, Msg: "cannot write content", Err: err}
	}
	return nil
}
