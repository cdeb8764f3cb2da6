package ply

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

func (f *File) byteOrder() binary.ByteOrder {
	if f.Format == BinaryBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// binarySource reads fixed width scalars from a byte stream
type binarySource struct {
	r     *bufio.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (f *File) decodeBinary(br *bufio.Reader) error {
	return f.decodeRows(&binarySource{r: br, order: f.byteOrder()})
}

func (s *binarySource) beginRow() error { return nil }
func (s *binarySource) endRow() error   { return nil }
func (s *binarySource) line() int       { return 0 }

func (s *binarySource) next(t Type) (number, error) {
	b := s.buf[:t.Size()]
	if _, err := io.ReadFull(s.r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return number{}, contentError("there are not enough data for a %s value", t)
		}
		return number{}, &Error{Kind: ErrIO, Row: -1, Msg: "cannot read content", Err: err}
	}
	return decodeScalar(b, s.order, t), nil
}

func (s *binarySource) finish() error {
	if _, err := s.r.Peek(1); err == nil {
		return contentError("there are more data than used")
	} else if !errors.Is(err, io.EOF) {
		return &Error{Kind: ErrIO, Row: -1, Msg: "cannot read content", Err: err}
	}
	return nil
}

func decodeScalar(b []byte, order binary.ByteOrder, t Type) number {
	var bits uint64
	switch len(b) {
	case 1:
		bits = uint64(b[0])
	case 2:
		bits = uint64(order.Uint16(b))
	case 4:
		bits = uint64(order.Uint32(b))
	case 8:
		bits = order.Uint64(b)
	}
	switch t {
	case Char:
		return number{class: signedClass, i: int64(int8(bits))}
	case Short:
		return number{class: signedClass, i: int64(int16(bits))}
	case Int:
		return number{class: signedClass, i: int64(int32(bits))}
	case Long:
		return number{class: signedClass, i: int64(bits)}
	case Float:
		return number{class: floatClass, f: float64(math.Float32frombits(uint32(bits)))}
	case Double:
		return number{class: floatClass, f: math.Float64frombits(bits)}
	}
	return number{class: unsignedClass, u: bits}
}

func encodeScalar(b []byte, order binary.ByteOrder, t Type, v number) {
	var bits uint64
	switch t {
	case Float:
		bits = uint64(math.Float32bits(float32(v.f)))
	case Double:
		bits = math.Float64bits(v.f)
	default:
		if v.class == signedClass {
			bits = uint64(v.i)
		} else {
			bits = v.u
		}
	}
	switch len(b) {
	case 1:
		b[0] = byte(bits)
	case 2:
		order.PutUint16(b, uint16(bits))
	case 4:
		order.PutUint32(b, uint32(bits))
	case 8:
		order.PutUint64(b, bits)
	}
}

// binarySink writes fixed width scalars in one byte order
type binarySink struct {
	w     *bufio.Writer
	order binary.ByteOrder
	buf   [8]byte
}

func (f *File) encodeBinary(bw *bufio.Writer) error {
	return f.encodeRows(&binarySink{w: bw, order: f.byteOrder()})
}

func (s *binarySink) put(t Type, v number) error {
	b := s.buf[:t.Size()]
	encodeScalar(b, s.order, t, v)
	if _, err := s.w.Write(b); err != nil {
		return &Error{Kind: ErrIO, Row: -1, Msg: "cannot write content", Err: err}
	}
	return nil
}

func (s *binarySink) endRow() error { return nil }
