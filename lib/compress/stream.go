/*package compress handles compressed generator output. Event files are
large, highly repetitive text, and are often kept zstd-, zlib- or
gzip-compressed. Open detects the compression of an input file from its
leading bytes and Create picks the compression of an output file from its
extension, so the rest of the code only ever sees plain text streams.
*/
package compress

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/DataDog/zstd"
)

// Method is a stream compression method.
type Method int
const (
	None Method = iota
	ZStd
	ZLib
	GZip
)

// ZStdLevel is the compression level of zstd output.
const ZStdLevel = 3

var (
	zstdMagic = []byte{ 0x28, 0xb5, 0x2f, 0xfd }
	gzipMagic = []byte{ 0x1f, 0x8b }
	// Extensions maps output file extensions to compression methods.
	Extensions = map[string]Method{
		".zst": ZStd, ".zstd": ZStd, ".zz": ZLib, ".zlib": ZLib, ".gz": GZip,
	}
)

func (m Method) String() string {
	switch m {
	case None: return "none"
	case ZStd: return "zstd"
	case ZLib: return "zlib"
	case GZip: return "gzip"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Detect identifies the compression method of a stream from its first bytes.
func Detect(head []byte) Method {
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return ZStd
	case bytes.HasPrefix(head, gzipMagic):
		return GZip
	case isZLibHeader(head):
		return ZLib
	}
	return None
}

// isZLibHeader checks the CMF/FLG pair of RFC 1950: deflate with a window of
// at most 32 KiB, no preset dictionary and a valid check value.
func isZLibHeader(head []byte) bool {
	if len(head) < 2 { return false }
	cmf, flg := head[0], head[1]
	if cmf & 0x0f != 8 || cmf >> 4 > 7 || flg & 0x20 != 0 { return false }
	return (uint16(cmf) << 8 | uint16(flg)) % 31 == 0
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && first == nil { first = err }
	}
	return first
}

// NewReader wraps rd in a decompressor for its detected method. Text which
// isn't compressed is passed through unchanged.
func NewReader(rd io.Reader) (io.ReadCloser, Method, error) {
	buf := bufio.NewReaderSize(rd, 64*1024)
	head, err := buf.Peek(4)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, None, err
	}

	method := Detect(head)
	switch method {
	case ZStd:
		zrd := zstd.NewReader(buf)
		return &readCloser{ zrd, []io.Closer{ zrd } }, method, nil
	case ZLib:
		zrd, err := zlib.NewReader(buf)
		if err != nil { return nil, method, err }
		return &readCloser{ zrd, []io.Closer{ zrd } }, method, nil
	case GZip:
		zrd, err := gzip.NewReader(buf)
		if err != nil { return nil, method, err }
		return &readCloser{ zrd, []io.Closer{ zrd } }, method, nil
	}
	return io.NopCloser(buf), None, nil
}

// Open opens a file for reading, decompressing it if needed. Closing the
// returned value closes the file.
func Open(fname string) (io.ReadCloser, error) {
	f, err := os.Open(fname)
	if err != nil { return nil, err }

	rd, _, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("Could not read compressed file %s: %w", fname, err)
	}
	return &readCloser{ rd, []io.Closer{ rd, f } }, nil
}

// MethodOf returns the compression method implied by a file name's
// extension.
func MethodOf(fname string) Method { return Extensions[filepath.Ext(fname)] }

type writeCloser struct {
	io.Writer
	closers []io.Closer
}

func (wc *writeCloser) Close() error {
	var first error
	for _, c := range wc.closers {
		if err := c.Close(); err != nil && first == nil { first = err }
	}
	return first
}

// NewWriter wraps wr in a compressor. Closing the returned value flushes the
// compressor but doesn't close wr.
func NewWriter(wr io.Writer, method Method) (io.WriteCloser, error) {
	switch method {
	case None:
		return &writeCloser{ wr, nil }, nil
	case ZStd:
		zwr := zstd.NewWriterLevel(wr, ZStdLevel)
		return &writeCloser{ zwr, []io.Closer{ zwr } }, nil
	case ZLib:
		zwr := zlib.NewWriter(wr)
		return &writeCloser{ zwr, []io.Closer{ zwr } }, nil
	case GZip:
		zwr := gzip.NewWriter(wr)
		return &writeCloser{ zwr, []io.Closer{ zwr } }, nil
	}
	return nil, fmt.Errorf("Unrecognized compression method %d.", int(method))
}

// Create creates a file, compressing what's written to it according to its
// extension. Closing the returned value closes the file.
func Create(fname string) (io.WriteCloser, error) {
	f, err := os.Create(fname)
	if err != nil { return nil, err }

	wr, err := NewWriter(f, MethodOf(fname))
	if err != nil {
		f.Close()
		return nil, err
	}
	return &writeCloser{ wr, []io.Closer{ wr, f } }, nil
}

// Compress compresses a whole buffer with zstd.
func Compress(b []byte) ([]byte, error) {
	return zstd.CompressLevel(nil, b, ZStdLevel)
}
