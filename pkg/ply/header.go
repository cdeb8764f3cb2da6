package ply

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type headerState uint8

const (
	expectMagic headerState = iota
	scanning
	done
)

// headerParser holds the state of one header parse. current is the element
// receiving property declarations.
type headerParser struct {
	f       *File
	path    string
	line    int
	offset  int64
	state   headerState
	current *Element
}

// readHeader parses the header from br into f and returns the offset of the
// content. On success br is positioned at the first byte of row data.
func (f *File) readHeader(br *bufio.Reader, path string) (int64, error) {
	f.Clear()
	hp := &headerParser{f: f, path: path}
	for hp.state != done {
		text, err := br.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return 0, &Error{Kind: ErrIO, Path: path, Line: hp.line, Row: -1, Msg: "cannot read header", Err: err}
			}
			if text == "" {
				f.valid = false
				if hp.state == expectMagic {
					return 0, hp.fail("first line must be '%s'", Magic)
				}
				return 0, hp.fail("end_header not found")
			}
		}
		hp.line++
		hp.offset += int64(len(text))
		if err := hp.handle(strings.TrimSpace(text)); err != nil {
			f.valid = false
			return 0, err
		}
	}
	f.contentOffset = hp.offset
	f.lines = hp.line
	if f.FileType == "" {
		f.FileType = Magic
	}
	return hp.offset, nil
}

func (hp *headerParser) fail(format string, args ...any) *Error {
	return &Error{Kind: ErrMalformedHeader, Path: hp.path, Line: hp.line, Row: -1, Msg: fmt.Sprintf(format, args...)}
}

// wrap turns a schema or validation error into a header error at the current line
func (hp *headerParser) wrap(err error) error {
	var perr *Error
	if errors.As(err, &perr) {
		return &Error{Kind: ErrMalformedHeader, Path: hp.path, Line: hp.line, Row: -1, Msg: perr.Msg}
	}
	return &Error{Kind: ErrMalformedHeader, Path: hp.path, Line: hp.line, Row: -1, Msg: "invalid declaration", Err: err}
}

func (hp *headerParser) handle(line string) error {
	if hp.state == expectMagic {
		if line != Magic {
			return hp.fail("first line must be '%s'", Magic)
		}
		hp.f.FileType = line
		hp.state = scanning
		return nil
	}
	if line == "" {
		return nil
	}
	fields := strings.Fields(line)
	keyword, fields := strings.ToLower(fields[0]), fields[1:]
	switch keyword {
	case "comment":
		comment := strings.Join(fields, " ")
		hp.f.Comments = append(hp.f.Comments, comment)
		hp.f.log().Debug("header comment", "path", hp.path, "line", hp.line, "comment", comment)
		return nil
	case "format":
		return hp.readFormat(fields)
	case "element":
		return hp.readElement(fields)
	case "property":
		return hp.readProperty(fields)
	case "end_header":
		if hp.f.Format == Unspecified {
			return hp.fail("format is not specified")
		}
		hp.state = done
		return nil
	default:
		hp.f.log().Warn("unknown field in header", "path", hp.path, "line", hp.line, "text", line)
		return nil
	}
}

func (hp *headerParser) readFormat(fields []string) error {
	if hp.f.Format != Unspecified {
		return hp.fail("the format has already been specified before")
	}
	if len(fields) != 2 {
		return hp.fail("the format should have two fields: type and version")
	}
	format, ok := ParseFormat(fields[0])
	if !ok {
		return hp.fail("unknown format '%s'", fields[0])
	}
	hp.f.Format = format
	hp.f.Version = fields[1]
	if err := hp.f.Validate(); err != nil {
		return hp.wrap(err)
	}
	return nil
}

func (hp *headerParser) readElement(fields []string) error {
	if hp.f.Format == Unspecified {
		return hp.fail("the first element must be after the format specification")
	}
	if len(fields) != 2 {
		return hp.fail("an element must have a name and the size")
	}
	rows, err := strconv.ParseUint(fields[1], 10, 31)
	if err != nil {
		return hp.fail("the element size is not a valid unsigned integer")
	}
	el, err := hp.f.CreateElement(fields[0], int(rows))
	if err != nil {
		return hp.wrap(err)
	}
	hp.current = el
	return nil
}

func (hp *headerParser) readProperty(fields []string) error {
	if hp.current == nil {
		return hp.fail("property defined outside any element")
	}
	if len(fields) != 2 && len(fields) != 4 {
		return hp.fail("property must be one of 'TYPE NAME' or 'list TYPE TYPE NAME'")
	}
	if strings.ToLower(fields[0]) == "list" {
		if len(fields) != 4 {
			return hp.fail("list property must have four fields: 'list' TYPE TYPE NAME")
		}
		size, elem := ParseType(fields[1]), ParseType(fields[2])
		if !size.Valid() || size.IsFloat() {
			return hp.fail("type '%s' for element count is invalid", fields[1])
		}
		if !elem.Valid() {
			return hp.fail("type '%s' of element is invalid", fields[2])
		}
		if _, err := hp.current.CreateList(fields[3], size, elem, Invalid); err != nil {
			return hp.wrap(err)
		}
		return nil
	}
	if len(fields) != 2 {
		return hp.fail("property must have two fields: TYPE NAME")
	}
	t := ParseType(fields[0])
	if !t.Valid() {
		return hp.fail("type '%s' of element is invalid", fields[0])
	}
	if _, err := hp.current.CreateValue(fields[1], t, Invalid); err != nil {
		return hp.wrap(err)
	}
	return nil
}

func (f *File) writeHeader(w *bufio.Writer) error {
	fileType := f.FileType
	if fileType == "" {
		fileType = Magic
	}
	fmt.Fprintf(w, "%s\n", fileType)
	fmt.Fprintf(w, "format %s %s\n", f.Format, f.Version)
	for _, c := range f.Comments {
		fmt.Fprintf(w, "comment %s\n", c)
	}
	for _, el := range f.elements {
		fmt.Fprintf(w, "element %s %d\n", el.name, el.rows)
		for _, p := range el.props {
			if p.kind == List {
				fmt.Fprintf(w, "property list %s %s %s\n", p.sizeType, p.fileType, p.name)
			} else {
				fmt.Fprintf(w, "property %s %s\n", p.fileType, p.name)
			}
		}
	}
	if _, err := w.WriteString("end_header\n"); err != nil {
		return &Error{Kind: ErrIO, Row: -1, Msg: "cannot write header", Err: err}
	}
	return nil
}
