package ply

import "strings"

// Type identifies one of the scalar types a property can hold, on disk or in memory
type Type uint8

const (
	Char Type = iota
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	Float
	Double

	// Invalid marks an unrecognized or unset type
	Invalid
)

// NumTypes is the number of valid scalar types
const NumTypes = int(Invalid)

var typeSizes = [NumTypes]int{1, 1, 2, 2, 4, 4, 8, 8, 4, 8}

var typeNames = [NumTypes + 1]string{
	"char",
	"uchar",
	"short",
	"ushort",
	"int",
	"uint",
	"long",
	"ulong",
	"float",
	"double",
	"invalid",
}

// ParseType returns the type named by name, ignoring case, or Invalid
func ParseType(name string) Type {
	name = strings.ToLower(name)
	for i := 0; i < NumTypes; i++ {
		if typeNames[i] == name {
			return Type(i)
		}
	}
	return Invalid
}

// String returns the header name of the type
func (t Type) String() string {
	if t > Invalid {
		return typeNames[Invalid]
	}
	return typeNames[t]
}

// Size returns the width in bytes of the type in the binary encodings
func (t Type) Size() int {
	if !t.Valid() {
		return 0
	}
	return typeSizes[t]
}

// Valid reports whether t is one of the scalar types
func (t Type) Valid() bool {
	return t < Invalid
}

// IsFloat reports whether t is a floating-point type
func (t Type) IsFloat() bool {
	return t == Float || t == Double
}

// IsSigned reports whether t is a signed integer type
func (t Type) IsSigned() bool {
	return t == Char || t == Short || t == Int || t == Long
}

// Format is the encoding of the row data following the header
type Format uint8

const (
	Unspecified Format = iota
	ASCII
	BinaryLittleEndian
	BinaryBigEndian
)

var formatNames = [...]string{
	"unspecified",
	"ascii",
	"binary_little_endian",
	"binary_big_endian",
}

// ParseFormat returns the format named by name, ignoring case.
// Unspecified is never returned with ok set.
func ParseFormat(name string) (f Format, ok bool) {
	name = strings.ToLower(name)
	for i := ASCII; i <= BinaryBigEndian; i++ {
		if formatNames[i] == name {
			return i, true
		}
	}
	return Unspecified, false
}

func (f Format) String() string {
	if int(f) >= len(formatNames) {
		return formatNames[Unspecified]
	}
	return formatNames[f]
}

// Kind tells whether a property holds one scalar per row or a list per row
type Kind uint8

const (
	Value Kind = iota
	List
)

func (k Kind) String() string {
	if k == List {
		return "list"
	}
	return "value"
}
