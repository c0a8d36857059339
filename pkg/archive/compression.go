package archive

import (
	"io"
	"strings"

	"github.com/arthur-debert/dotseed/pkg/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression selects the codec wrapped around the tar stream.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// ParseCompression parses a compression name. The empty string means none.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, nil
	case "gzip", "gz":
		return CompressionGzip, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	default:
		return CompressionNone, errors.Newf(errors.ErrInvalidInput, "unknown compression %q (want none, gzip or zstd)", name)
	}
}

func (c Compression) String() string { return string(c) }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// wrap returns a writer that compresses into w. Closing it flushes the codec
// but does not close w.
func (c Compression) wrap(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CompressionNone, "":
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "cannot create zstd encoder")
		}
		return enc, nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown compression %q", string(c))
	}
}
