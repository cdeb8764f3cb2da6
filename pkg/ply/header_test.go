package ply

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadHeader(t *testing.T) {
	text := strings.Join([]string{
		"ply",
		"format binary_big_endian 1.0",
		"comment exported from somewhere",
		"obj_info not a keyword",
		"",
		"element vertex 3",
		"property FLOAT x",
		"property double y",
		"element face 2",
		"property list uchar uint vertex_indices",
		"property uchar flags",
		"end_header",
	}, "\n") + "\n"

	f := &File{}
	offset, err := f.readHeader(bufioReader(text), "mesh.ply")
	require.NoError(t, err)
	assert.Equal(t, int64(len(text)), offset)
	assert.Equal(t, int64(len(text)), f.ContentOffset())
	assert.True(t, f.Valid())
	assert.Equal(t, BinaryBigEndian, f.Format)
	assert.Equal(t, "ply", f.FileType)
	assert.Equal(t, []string{"exported from somewhere"}, f.Comments)

	require.Equal(t, 2, f.NumElements())
	vertex := f.Element("vertex")
	require.NotNil(t, vertex)
	assert.Equal(t, 3, vertex.Len())
	assert.Equal(t, []string{"x", "y"}, vertex.PropertyNames())
	assert.Equal(t, Float, vertex.Property("x").FileType())
	assert.Equal(t, Float, vertex.Property("x").MemType())
	assert.Equal(t, Double, vertex.Property("y").FileType())

	face := f.ElementAt(1)
	assert.Equal(t, "face", face.Name())
	idx := face.Property("vertex_indices")
	require.NotNil(t, idx)
	assert.Equal(t, List, idx.Kind())
	assert.Equal(t, UChar, idx.SizeType())
	assert.Equal(t, UInt, idx.FileType())
	assert.Equal(t, Value, face.Property("flags").Kind())
}

func TestReadHeaderRejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
		kind   error
		line   int
		msg    string
	}{
		{
			name:   "bad magic",
			header: "plx\nformat ascii 1.0\nend_header\n",
			kind:   ErrMalformedHeader,
			line:   1,
			msg:    "first line must be 'ply'",
		},
		{
			name:   "empty input",
			header: "",
			kind:   ErrMalformedHeader,
			msg:    "first line must be 'ply'",
		},
		{
			name:   "property before element",
			header: "ply\nformat ascii 1.0\nproperty float x\nend_header\n",
			kind:   ErrMalformedHeader,
			line:   3,
			msg:    "property defined outside any element",
		},
		{
			name:   "element before format",
			header: "ply\nelement vertex 1\nend_header\n",
			kind:   ErrMalformedHeader,
			line:   2,
			msg:    "after the format",
		},
		{
			name:   "float list count",
			header: "ply\nformat ascii 1.0\nelement face 1\nproperty list float int vertex_indices\nend_header\n",
			kind:   ErrMalformedHeader,
			line:   4,
			msg:    "element count is invalid",
		},
		{
			name:   "duplicate element",
			header: "ply\nformat ascii 1.0\nelement vertex 1\nelement vertex 2\nend_header\n",
			kind:   ErrMalformedHeader,
			line:   4,
			msg:    "already an element called 'vertex'",
		},
		{
			name:   "duplicate property",
			header: "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty int x\nend_header\n",
			kind:   ErrMalformedHeader,
			line:   5,
			msg:    "already a property called 'x'",
		},
		{
			name:   "format twice",
			header: "ply\nformat ascii 1.0\nformat ascii 1.0\nend_header\n",
			kind:   ErrMalformedHeader,
			line:   3,
			msg:    "already been specified",
		},
		{
			name:   "unknown format",
			header: "ply\nformat binary_middle_endian 1.0\nend_header\n",
			kind:   ErrMalformedHeader,
			line:   2,
			msg:    "unknown format",
		},
		{
			name:   "bad version",
			header: "ply\nformat ascii one\nend_header\n",
			kind:   ErrMalformedHeader,
			line:   2,
			msg:    "MAJOR.MINOR",
		},
		{
			name:   "unknown type",
			header: "ply\nformat ascii 1.0\nelement vertex 1\nproperty float3 x\nend_header\n",
			kind:   ErrMalformedHeader,
			line:   4,
			msg:    "'float3'",
		},
		{
			name:   "bad element size",
			header: "ply\nformat ascii 1.0\nelement vertex -1\nend_header\n",
			kind:   ErrMalformedHeader,
			line:   3,
			msg:    "element size",
		},
		{
			name:   "three field property",
			header: "ply\nformat ascii 1.0\nelement vertex 1\nproperty list int x\nend_header\n",
			kind:   ErrMalformedHeader,
			line:   4,
		},
		{
			name:   "missing end_header",
			header: "ply\nformat ascii 1.0\nelement vertex 1\n",
			kind:   ErrMalformedHeader,
			msg:    "end_header not found",
		},
		{
			name:   "no format",
			header: "ply\nend_header\n",
			kind:   ErrMalformedHeader,
			line:   2,
			msg:    "format is not specified",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &File{}
			_, err := f.readHeader(bufioReader(tt.header), "bad.ply")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			assert.False(t, f.Valid())

			var perr *Error
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, "bad.ply", perr.Path)
			if tt.line > 0 {
				assert.Equal(t, tt.line, perr.Line)
			}
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestReadHeaderKeepsPartialSchema(t *testing.T) {
	header := "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty list double int bad\nend_header\n"
	f := &File{}
	_, err := f.readHeader(bufioReader(header), "")
	require.Error(t, err)
	require.NotNil(t, f.Element("vertex"))
	assert.Equal(t, []string{"x"}, f.Element("vertex").PropertyNames())
}

func TestWriteHeader(t *testing.T) {
	f := New()
	f.Format = ASCII
	f.Comments = []string{"one", "two words"}
	el, err := f.CreateElement("face", 0)
	require.NoError(t, err)
	_, err = el.CreateList("vertex_indices", UChar, Int, UInt)
	require.NoError(t, err)
	_, err = el.CreateValue("red", UChar, Float)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Encode(&buf))
	assert.Equal(t, strings.Join([]string{
		"ply",
		"format ascii 1.0",
		"comment one",
		"comment two words",
		"element face 0",
		"property list uchar int vertex_indices",
		"property uchar red",
		"end_header",
	}, "\n")+"\n", buf.String())
}

func TestParseType(t *testing.T) {
	tests := []struct {
		name string
		want Type
		size int
	}{
		{"char", Char, 1},
		{"UCHAR", UChar, 1},
		{"short", Short, 2},
		{"ushort", UShort, 2},
		{"Int", Int, 4},
		{"uint", UInt, 4},
		{"long", Long, 8},
		{"ulong", ULong, 8},
		{"float", Float, 4},
		{"double", Double, 8},
		{"int8", Invalid, 0},
		{"", Invalid, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseType(tt.name)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.size, got.Size())
		})
	}

	assert.Equal(t, "invalid", Invalid.String())
	assert.Equal(t, "ushort", UShort.String())
}

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat("Binary_Little_Endian")
	assert.True(t, ok)
	assert.Equal(t, BinaryLittleEndian, f)

	_, ok = ParseFormat("unspecified")
	assert.False(t, ok)
	assert.Equal(t, "ascii", ASCII.String())
}
