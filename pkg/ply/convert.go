package ply

// Scalar is the set of Go types property storage can hold, one per Type
type Scalar interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

type numClass uint8

const (
	signedClass numClass = iota
	unsignedClass
	floatClass
)

func classOf(t Type) numClass {
	switch {
	case t.IsFloat():
		return floatClass
	case t.IsSigned():
		return signedClass
	default:
		return unsignedClass
	}
}

// number carries one scalar between the codecs and typed storage without losing
// precision: only the field matching class is meaningful.
type number struct {
	class numClass
	i     int64
	u     uint64
	f     float64
}

func toNumber[T Scalar](v T, c numClass) number {
	switch c {
	case signedClass:
		return number{class: c, i: int64(v)}
	case unsignedClass:
		return number{class: c, u: uint64(v)}
	default:
		return number{class: c, f: float64(v)}
	}
}

func fromNumber[T Scalar](n number) T {
	switch n.class {
	case signedClass:
		return T(n.i)
	case unsignedClass:
		return T(n.u)
	default:
		return T(n.f)
	}
}

// column resolves type-erased storage for one memory type. Value storage is a
// []T, list storage a [][]T.
type column interface {
	makeValues(n int) any
	makeLists(n int) any
	resize(data any, kind Kind, n int) any
	len(data any) int
	value(data any, row int) number
	setValue(data any, row int, v number)
	listLen(data any, row int) int
	listValue(data any, row, i int) number
	makeRow(data any, row, n int)
	setListValue(data any, row, i int, v number)
	cast(v number) number
}

type columnOf[T Scalar] struct {
	class numClass
}

func (c columnOf[T]) makeValues(n int) any { return make([]T, n) }
func (c columnOf[T]) makeLists(n int) any  { return make([][]T, n) }

func (c columnOf[T]) resize(data any, kind Kind, n int) any {
	if kind == List {
		return resizeSlice(data.([][]T), n)
	}
	return resizeSlice(data.([]T), n)
}

func (c columnOf[T]) len(data any) int {
	switch d := data.(type) {
	case []T:
		return len(d)
	case [][]T:
		return len(d)
	}
	return 0
}

func (c columnOf[T]) value(data any, row int) number {
	return toNumber(data.([]T)[row], c.class)
}

func (c columnOf[T]) setValue(data any, row int, v number) {
	data.([]T)[row] = fromNumber[T](v)
}

func (c columnOf[T]) listLen(data any, row int) int {
	return len(data.([][]T)[row])
}

func (c columnOf[T]) listValue(data any, row, i int) number {
	return toNumber(data.([][]T)[row][i], c.class)
}

func (c columnOf[T]) makeRow(data any, row, n int) {
	data.([][]T)[row] = make([]T, n)
}

func (c columnOf[T]) setListValue(data any, row, i int, v number) {
	data.([][]T)[row][i] = fromNumber[T](v)
}

// cast converts v to this column's type with Go conversion semantics and back
func (c columnOf[T]) cast(v number) number {
	return toNumber(fromNumber[T](v), c.class)
}

// columns is the dispatch table indexed by Type. A new scalar type needs an
// entry here and in the type registry.
var columns = [NumTypes]column{
	Char:   columnOf[int8]{signedClass},
	UChar:  columnOf[uint8]{unsignedClass},
	Short:  columnOf[int16]{signedClass},
	UShort: columnOf[uint16]{unsignedClass},
	Int:    columnOf[int32]{signedClass},
	UInt:   columnOf[uint32]{unsignedClass},
	Long:   columnOf[int64]{signedClass},
	ULong:  columnOf[uint64]{unsignedClass},
	Float:  columnOf[float32]{floatClass},
	Double: columnOf[float64]{floatClass},
}

// TypeOf returns the Type matching the Go type T
func TypeOf[T Scalar]() Type {
	var zero T
	switch any(zero).(type) {
	case int8:
		return Char
	case uint8:
		return UChar
	case int16:
		return Short
	case uint16:
		return UShort
	case int32:
		return Int
	case uint32:
		return UInt
	case int64:
		return Long
	case uint64:
		return ULong
	case float32:
		return Float
	case float64:
		return Double
	}
	return Invalid
}

func resizeSlice[S ~[]E, E any](s S, n int) S {
	if n <= len(s) {
		clear(s[n:])
		return s[:n]
	}
	if n <= cap(s) {
		return s[:n]
	}
	out := make(S, n)
	copy(out, s)
	return out
}

// convertData casts every value of data from memory type from to memory type to
func convertData(data any, kind Kind, from, to Type) any {
	src, dst := columns[from], columns[to]
	n := src.len(data)
	if kind == Value {
		out := dst.makeValues(n)
		for i := 0; i < n; i++ {
			dst.setValue(out, i, src.value(data, i))
		}
		return out
	}
	out := dst.makeLists(n)
	for i := 0; i < n; i++ {
		m := src.listLen(data, i)
		dst.makeRow(out, i, m)
		for j := 0; j < m; j++ {
			dst.setListValue(out, i, j, src.listValue(data, i, j))
		}
	}
	return out
}
