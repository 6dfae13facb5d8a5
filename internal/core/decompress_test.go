package core

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"repo-mirror/internal/types"
)

func gzipText(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(text))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecompressGzipRoundTrip(t *testing.T) {
	texts := []string{
		"",
		"Package: curl\nVersion: 8.1.0\n",
		"Package: naïve\nDescription: ünïcödé text\n",
		string(bytes.Repeat([]byte("Package: x\nVersion: 1\n\n"), 5000)),
	}
	for _, text := range texts {
		first, err := Decompress(gzipText(t, text))
		require.NoError(t, err)
		second, err := Decompress(gzipText(t, first))
		require.NoError(t, err)
		if diff := cmp.Diff(text, second); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestDecompressMultiMemberGzip(t *testing.T) {
	data := append(gzipText(t, "Package: a\n"), gzipText(t, "Package: b\n")...)
	text, err := Decompress(data)
	require.NoError(t, err)
	require.Equal(t, "Package: a\nPackage: b\n", text)
}

func TestDecompressXZ(t *testing.T) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write([]byte("Package: xz-utils\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	text, err := Decompress(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, "Package: xz-utils\n", text)
}

func TestDecompressZstd(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	data := enc.EncodeAll([]byte("Package: zstd\n"), nil)
	require.NoError(t, enc.Close())

	text, err := Decompress(data)
	require.NoError(t, err)
	require.Equal(t, "Package: zstd\n", text)
}

func TestDecompressInvalidUTF8IsReplaced(t *testing.T) {
	text, err := Decompress(gzipText(t, "Description: bad \xff byte\n"))
	require.NoError(t, err)
	require.Equal(t, "Description: bad � byte\n", text)
}

func TestDecompressErrors(t *testing.T) {
	truncated := gzipText(t, "Package: curl\nVersion: 8.1.0\n")
	truncated = truncated[:len(truncated)-6]

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "plain text", data: []byte("Package: curl\n")},
		{name: "truncated gzip", data: truncated},
		{name: "corrupt header", data: []byte{0x1f, 0x8b, 0x00, 0x00}},
		{name: "binary content", data: gzipText(t, "Package: a\x00b\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decompress(tt.data)
			require.Error(t, err)
			var decodeErr *types.DecodeError
			require.True(t, errors.As(err, &decodeErr), "expected DecodeError, got %T", err)
		})
	}
}

func TestDetectCompression(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Compression
		ok   bool
	}{
		{name: "gzip", data: []byte{0x1f, 0x8b, 0x08}, want: CompressionGzip, ok: true},
		{name: "xz", data: []byte{0xfd, '7', 'z', 'X', 'Z', 0x00, 0x01}, want: CompressionXZ, ok: true},
		{name: "zstd", data: []byte{0x28, 0xb5, 0x2f, 0xfd, 0x00}, want: CompressionZstd, ok: true},
		{name: "unknown", data: []byte("PK"), want: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectCompression(tt.data)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}
