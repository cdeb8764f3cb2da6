// Package ply reads and writes polygon files (PLY).
//
// A polygon file is a small text header describing a schema followed by row
// data in one of three encodings. The package keeps the schema and the data in
// memory as a tree of File, Element and Property values, and lets every
// property choose an in-memory type independently of the type it has on disk.
//
// # File Layout
//
// The header is a sequence of text lines:
//
//	ply
//	format ascii 1.0
//	comment made by hand
//	element vertex 8
//	property float x
//	property float y
//	property float z
//	element face 6
//	property list uchar int vertex_indices
//	end_header
//
// Lines:
//   - ply: the magic line, must come first
//   - format: the encoding (ascii, binary_little_endian, binary_big_endian) and a MAJOR.MINOR version
//   - comment: free text, kept in File.Comments and written back on save
//   - element: a name and a row count
//   - property: a scalar TYPE NAME, or list SIZETYPE TYPE NAME, belonging to the last element
//   - end_header: the last header line
//
// Unknown lines are logged and ignored. Scalar type names are char, uchar,
// short, ushort, int, uint, long, ulong, float and double with widths
// 1, 1, 2, 2, 4, 4, 8, 8, 4 and 8 bytes.
//
// # Content
//
// Rows are stored element by element, in declaration order. Within a row every
// property follows in declaration order. A list is its length, encoded with the
// size type, followed by that many values.
//
// In the ascii encoding each row is one line of whitespace separated tokens. In
// the binary encodings every value is written with its fixed width in the
// declared byte order, with no padding and no separators.
//
// # Memory Types
//
// Each property has a file type, used on disk, and a memory type, used for its
// storage. Values read from a file are converted to the memory type, and values
// written are converted back to the file type. Conversions follow Go's numeric
// conversion rules: narrowing integers wraps, float to integer truncates toward
// zero. SetMemType converts storage that is already allocated.
//
// Storage is exposed through the generic accessors:
//
//	f, err := ply.ReadFile("cube.ply")
//	if err != nil {
//	    return err
//	}
//	x := f.Element("vertex").Property("x")
//	x.SetMemType(ply.Double)
//	xs, ok := ply.Values[float64](x)
//
// # Error Handling
//
// Every failure is a *Error. Its Kind is one of ErrMalformedHeader,
// ErrMalformedContent, ErrIO, ErrUnsupportedFormat or ErrSchema and works with
// errors.Is. The error text names the path, line, element, row and property
// when they are known. Parsing stops at the first error and leaves the File
// invalid.
//
// # Thread Safety
//
// A File and everything it owns must be used by one goroutine at a time.
package ply
