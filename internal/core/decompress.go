package core

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"repo-mirror/internal/types"
)

type Compression string

const (
	CompressionGzip Compression = "gzip"
	CompressionXZ   Compression = "xz"
	CompressionZstd Compression = "zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// DetectCompression identifies the container format from its magic bytes.
func DetectCompression(data []byte) (Compression, bool) {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return CompressionGzip, true
	case bytes.HasPrefix(data, xzMagic):
		return CompressionXZ, true
	case bytes.HasPrefix(data, zstdMagic):
		return CompressionZstd, true
	default:
		return "", false
	}
}

// Decompress turns a compressed index buffer into text. Invalid UTF-8 is
// replaced rather than rejected; content with NUL bytes is not index text.
func Decompress(data []byte) (string, error) {
	if len(data) == 0 {
		return "", &types.DecodeError{Reason: "empty buffer"}
	}
	compression, ok := DetectCompression(data)
	if !ok {
		return "", &types.DecodeError{Reason: "unrecognized compression format"}
	}
	raw, err := decompressWith(compression, data)
	if err != nil {
		return "", &types.DecodeError{Reason: "invalid " + string(compression) + " stream", Err: err}
	}
	if bytes.IndexByte(raw, 0) >= 0 {
		return "", &types.DecodeError{Reason: "content is not text"}
	}
	if !utf8.Valid(raw) {
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError)), nil
	}
	return string(raw), nil
}

func decompressWith(compression Compression, data []byte) ([]byte, error) {
	src := bytes.NewReader(data)
	switch compression {
	case CompressionGzip:
		gz, err := gzip.NewReader(src)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(gz)
	case CompressionXZ:
		xr, err := xz.NewReader(src)
		if err != nil {
			return nil, err
		}
		return io.ReadAll(xr)
	case CompressionZstd:
		zr, err := zstd.NewReader(src)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	default:
		return nil, fmt.Errorf("unsupported compression %q", compression)
	}
}
