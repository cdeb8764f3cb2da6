package ply

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Magic is the first line of every file
const Magic = "ply"

// File is a polygon file: global format metadata and an ordered list of elements.
// A File is not safe for concurrent use.
type File struct {
	Format   Format
	Version  string
	Major    uint
	Minor    uint
	FileType string
	Comments []string

	elements      []*Element
	index         map[string]int
	path          string
	contentOffset int64
	lines         int
	valid         bool
	logger        *slog.Logger
}

// New creates a file declared as binary little endian version 1.0
func New() *File {
	f := &File{}
	f.Init(BinaryLittleEndian, "1.0", Magic)
	return f
}

// Init clears f and declares its format, version and file type
func (f *File) Init(format Format, version, fileType string) {
	f.Clear()
	f.Format = format
	f.Version = version
	f.FileType = fileType
}

// Clear drops every element and resets the format metadata
func (f *File) Clear() {
	for _, el := range f.elements {
		el.setParent(nil)
	}
	f.elements = nil
	f.index = make(map[string]int)
	f.contentOffset = -1
	f.lines = 0
	f.Format = Unspecified
	f.Version = ""
	f.Major, f.Minor = 0, 0
	f.Comments = nil
	f.valid = false
}

// SetLogger sets the logger used for header comments and diagnostics
func (f *File) SetLogger(l *slog.Logger) {
	f.logger = l
}

func (f *File) log() *slog.Logger {
	if f.logger == nil {
		return slog.Default()
	}
	return f.logger
}

// Valid reports whether the format metadata has been validated and no parse has failed since
func (f *File) Valid() bool {
	return f.valid
}

// Path returns the path of the last parsed header
func (f *File) Path() string {
	return f.path
}

// ContentOffset returns the byte offset of the row data, or -1 before a header was parsed
func (f *File) ContentOffset() int64 {
	return f.contentOffset
}

// Validate checks the format and the MAJOR.MINOR version, setting the validity flag
func (f *File) Validate() error {
	f.valid = false
	if f.Format == Unspecified || f.Format > BinaryBigEndian {
		return &Error{Kind: ErrUnsupportedFormat, Row: -1, Msg: "format is not specified"}
	}
	parts := strings.Split(f.Version, ".")
	if len(parts) != 2 {
		return &Error{Kind: ErrMalformedHeader, Row: -1, Msg: "the version must be on the form MAJOR.MINOR"}
	}
	major, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return &Error{Kind: ErrMalformedHeader, Row: -1, Msg: "MAJOR part of the version is not a valid unsigned integer"}
	}
	minor, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return &Error{Kind: ErrMalformedHeader, Row: -1, Msg: "MINOR part of the version is not a valid unsigned integer"}
	}
	f.Major, f.Minor = uint(major), uint(minor)
	f.valid = true
	return nil
}

// NumElements returns the number of elements
func (f *File) NumElements() int {
	return len(f.elements)
}

// ElementAt returns the element at position i
func (f *File) ElementAt(i int) *Element {
	return f.elements[i]
}

// Element returns the element called name, or nil
func (f *File) Element(name string) *Element {
	if i, ok := f.index[name]; ok {
		return f.elements[i]
	}
	return nil
}

// Elements returns the elements in declaration order
func (f *File) Elements() []*Element {
	return f.elements
}

func (f *File) HasElement(name string) bool {
	_, ok := f.index[name]
	return ok
}

// CreateElement adds an element with the given row count
func (f *File) CreateElement(name string, rows int) (*Element, error) {
	el := NewElement(name, rows)
	if err := f.Attach(el); err != nil {
		return nil, err
	}
	return el, nil
}

// Attach makes f the owner of el, detaching it from any previous file
func (f *File) Attach(el *Element) error {
	if el.parent == f {
		return nil
	}
	if f.HasElement(el.name) {
		return schemaError("there is already an element called '%s'", el.name)
	}
	if el.parent != nil {
		el.parent.remove(el.name)
	}
	if f.index == nil {
		f.index = make(map[string]int)
	}
	f.index[el.name] = len(f.elements)
	f.elements = append(f.elements, el)
	el.setParent(f)
	return nil
}

// Detach removes el from f without destroying it
func (f *File) Detach(el *Element) error {
	if el.parent != f {
		return schemaError("element '%s' does not belong to this file", el.name)
	}
	f.remove(el.name)
	return nil
}

// Allocate sizes the storage of every element of a valid file
func (f *File) Allocate() {
	if !f.valid {
		return
	}
	for _, el := range f.elements {
		el.Allocate()
	}
}

func (f *File) remove(name string) {
	i := f.index[name]
	f.elements[i].setParent(nil)
	f.elements = append(f.elements[:i], f.elements[i+1:]...)
	f.index = make(map[string]int, len(f.elements))
	for j, el := range f.elements {
		f.index[el.name] = j
	}
}

func (f *File) renameElement(old, name string) {
	f.index[name] = f.index[old]
	delete(f.index, old)
}

// ParseHeader reads the header of the file at path, replacing the content of f
func (f *File) ParseHeader(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return &Error{Kind: ErrIO, Path: path, Row: -1, Msg: "cannot open file for reading", Err: err}
	}
	defer file.Close()

	if _, err := f.readHeader(bufio.NewReader(file), path); err != nil {
		return err
	}
	f.path = path
	return nil
}

// ParseContent reads the row data of the file whose header was parsed last
func (f *File) ParseContent() error {
	if !f.valid || f.path == "" || f.contentOffset < 0 {
		return &Error{Kind: ErrMalformedHeader, Path: f.path, Row: -1, Msg: "the header of the file must be parsed first"}
	}
	file, err := os.Open(f.path)
	if err != nil {
		return &Error{Kind: ErrIO, Path: f.path, Row: -1, Msg: "cannot open file for reading", Err: err}
	}
	defer file.Close()

	if _, err := file.Seek(f.contentOffset, io.SeekStart); err != nil {
		return &Error{Kind: ErrIO, Path: f.path, Row: -1, Msg: "cannot seek to content", Err: err}
	}
	return f.readContent(bufio.NewReader(file), f.path)
}

// Decode reads a whole file, header and content, from r
func Decode(r io.Reader) (*File, error) {
	f := &File{}
	br := bufio.NewReader(r)
	if _, err := f.readHeader(br, ""); err != nil {
		return f, err
	}
	if err := f.readContent(br, ""); err != nil {
		return f, err
	}
	return f, nil
}

// ReadFile parses the header and the content of the file at path
func ReadFile(path string) (*File, error) {
	f := &File{}
	if err := f.ParseHeader(path); err != nil {
		return f, err
	}
	if err := f.ParseContent(); err != nil {
		return f, err
	}
	return f, nil
}

func (f *File) readContent(br *bufio.Reader, path string) error {
	var err error
	switch f.Format {
	case ASCII:
		err = f.decodeASCII(br)
	case BinaryLittleEndian, BinaryBigEndian:
		err = f.decodeBinary(br)
	default:
		err = &Error{Kind: ErrUnsupportedFormat, Row: -1, Msg: "cannot process unspecified format header"}
	}
	if err != nil {
		f.valid = false
		var perr *Error
		if errors.As(err, &perr) && perr.Path == "" {
			perr.Path = path
		}
		return err
	}
	return nil
}

// Save writes the header and the content of f to path
func (f *File) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return &Error{Kind: ErrIO, Path: path, Row: -1, Msg: "cannot open file for writing", Err: err}
	}
	if err := f.Encode(file); err != nil {
		file.Close()
		var perr *Error
		if errors.As(err, &perr) && perr.Path == "" {
			perr.Path = path
		}
		return err
	}
	if err := file.Close(); err != nil {
		return &Error{Kind: ErrIO, Path: path, Row: -1, Msg: "cannot close file", Err: err}
	}
	return nil
}

// Encode writes the header and the content of f to w in f's format
func (f *File) Encode(w io.Writer) error {
	if f.Format == Unspecified || f.Format > BinaryBigEndian {
		return &Error{Kind: ErrUnsupportedFormat, Row: -1, Msg: "cannot write content of unspecified format"}
	}
	if err := f.checkWritable(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if err := f.writeHeader(bw); err != nil {
		return err
	}
	var err error
	if f.Format == ASCII {
		err = f.encodeASCII(bw)
	} else {
		err = f.encodeBinary(bw)
	}
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return &Error{Kind: ErrIO, Row: -1, Msg: "cannot write content", Err: err}
	}
	return nil
}

// checkWritable verifies every property holds one row per item of its element
func (f *File) checkWritable() error {
	for _, el := range f.elements {
		for _, p := range el.props {
			if !p.memType.Valid() || !p.fileType.Valid() {
				return &Error{Kind: ErrSchema, Element: el.name, Property: p.name, Row: -1,
					Msg: fmt.Sprintf("cannot write %s property held as %s", p.fileType, p.memType)}
			}
			if p.kind == List && (!p.sizeType.Valid() || p.sizeType.IsFloat()) {
				return &Error{Kind: ErrSchema, Element: el.name, Property: p.name, Row: -1,
					Msg: fmt.Sprintf("type '%s' cannot hold a list size", p.sizeType)}
			}
			if el.rows > 0 && (p.data == nil || p.rows != el.rows) {
				return &Error{Kind: ErrSchema, Element: el.name, Property: p.name, Row: -1,
					Msg: fmt.Sprintf("property holds %d rows, element has %d", p.rows, el.rows)}
			}
		}
	}
	return nil
}
