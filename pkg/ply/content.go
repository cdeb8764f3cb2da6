package ply

import (
	"errors"
	"fmt"
	"math"
)

// rowSource yields the scalars of the content, row by row, in one encoding
type rowSource interface {
	beginRow() error
	next(t Type) (number, error)
	endRow() error
	finish() error
	line() int
}

// rowSink receives the scalars of the content, row by row, in one encoding
type rowSink interface {
	put(t Type, v number) error
	endRow() error
}

// decodeRows walks every element, row and property in declaration order and
// stores what src yields. The first error aborts the walk.
func (f *File) decodeRows(src rowSource) error {
	var scratch []number
	for _, el := range f.elements {
		el.Allocate()
		for row := 0; row < el.rows; row++ {
			if err := src.beginRow(); err != nil {
				return locate(err, src, el, nil, row)
			}
			for _, p := range el.props {
				var err error
				scratch, err = readProperty(p, row, src, scratch)
				if err != nil {
					return locate(err, src, el, p, row)
				}
			}
			if err := src.endRow(); err != nil {
				return locate(err, src, el, nil, row)
			}
		}
	}
	if err := src.finish(); err != nil {
		return locate(err, src, nil, nil, -1)
	}
	return nil
}

func readProperty(p *Property, row int, src rowSource, scratch []number) ([]number, error) {
	if p.kind == Value {
		v, err := src.next(p.fileType)
		if err != nil {
			return scratch, err
		}
		if p.data != nil {
			columns[p.memType].setValue(p.data, row, v)
		}
		return scratch, nil
	}

	c, err := src.next(p.sizeType)
	if err != nil {
		return scratch, err
	}
	count, err := listCount(c)
	if err != nil {
		return scratch, err
	}
	// values are gathered first so that a bogus count fails on missing data
	// instead of allocating the whole row up front
	scratch = scratch[:0]
	for i := 0; i < count; i++ {
		v, err := src.next(p.fileType)
		if err != nil {
			return scratch, err
		}
		scratch = append(scratch, v)
	}
	if p.data != nil {
		col := columns[p.memType]
		col.makeRow(p.data, row, count)
		for i, v := range scratch {
			col.setListValue(p.data, row, i, v)
		}
	}
	return scratch, nil
}

func listCount(c number) (int, error) {
	switch c.class {
	case signedClass:
		if c.i < 0 {
			return 0, contentError("negative list size %d", c.i)
		}
		return int(c.i), nil
	case unsignedClass:
		if c.u > math.MaxInt32 {
			return 0, contentError("list size %d is too large", c.u)
		}
		return int(c.u), nil
	}
	return 0, contentError("list size must be an integer")
}

// encodeRows walks the content in declaration order, casting each in-memory
// value to its file type before handing it to dst.
func (f *File) encodeRows(dst rowSink) error {
	for _, el := range f.elements {
		for row := 0; row < el.rows; row++ {
			for _, p := range el.props {
				if err := writeProperty(p, row, dst); err != nil {
					return locate(err, nil, el, p, row)
				}
			}
			if err := dst.endRow(); err != nil {
				return locate(err, nil, el, nil, row)
			}
		}
	}
	return nil
}

func writeProperty(p *Property, row int, dst rowSink) error {
	col, file := columns[p.memType], columns[p.fileType]
	if p.kind == Value {
		return dst.put(p.fileType, file.cast(col.value(p.data, row)))
	}
	n := col.listLen(p.data, row)
	count := number{class: unsignedClass, u: uint64(n)}
	cast := columns[p.sizeType].cast(count)
	if c, err := listCount(cast); err != nil || c != n {
		return contentError("list of %d items does not fit size type %s", n, p.sizeType)
	}
	if err := dst.put(p.sizeType, cast); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := dst.put(p.fileType, file.cast(col.listValue(p.data, row, i))); err != nil {
			return err
		}
	}
	return nil
}

func contentError(format string, args ...any) *Error {
	return &Error{Kind: ErrMalformedContent, Row: -1, Msg: fmt.Sprintf(format, args...)}
}

// locate adds the position of a content failure to err
func locate(err error, src rowSource, el *Element, p *Property, row int) error {
	var perr *Error
	if !errors.As(err, &perr) {
		perr = &Error{Kind: ErrIO, Row: -1, Msg: "cannot access content", Err: err}
	}
	if el != nil {
		perr.Element = el.name
		perr.Row = row
	}
	if p != nil {
		perr.Property = p.name
	}
	if src != nil && perr.Line == 0 {
		perr.Line = src.line()
	}
	return perr
}
