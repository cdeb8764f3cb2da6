//go:build fuzz
// +build fuzz

package ply

import (
	"bytes"
	"errors"
	"testing"
)

// FuzzDecode feeds arbitrary bytes to the decoder. Every failure must be a
// *Error, and every success must survive a re-encode.
func FuzzDecode(f *testing.F) {
	f.Add([]byte(vertexFaceHeader + "0.0 0.0\n1.0 1.0\n3 0 1 1\n"))
	f.Add([]byte("ply\nformat binary_little_endian 1.0\nelement e 1\nproperty list uchar short v\nend_header\n\x02\x01\x00\x02\x00"))
	f.Add([]byte("ply\nformat binary_big_endian 1.0\nelement e 2\nproperty double d\nend_header\n"))
	f.Add([]byte("ply\n"))

	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) > 1<<16 {
			t.Skip("Input too large for fuzz test")
		}

		file, err := Decode(bytes.NewReader(data))
		if err != nil {
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("Decode returned %T: %v", err, err)
			}
			return
		}

		var buf bytes.Buffer
		if err := file.Encode(&buf); err != nil {
			t.Fatalf("Encode failed after successful decode: %v", err)
		}
		if _, err := Decode(bytes.NewReader(buf.Bytes())); err != nil {
			t.Fatalf("Decode of re-encoded data failed: %v", err)
		}
	})
}
