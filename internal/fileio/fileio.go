// Package fileio opens filter inputs and outputs.
//
// The path "-" (or an empty path) means standard input or standard output.
// Compressed input is detected from its leading magic bytes, so a gzip or
// zstd file reads the same whatever its name. Output is compressed when its
// path ends in ".gz" or ".zst".
package fileio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Stdio is the path that selects standard input or output.
const Stdio = "-"

// Compression names a stream encoding.
type Compression string

const (
	None Compression = "none"
	Gzip Compression = "gzip"
	Zstd Compression = "zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Input is an opened input stream.
type Input struct {
	io.Reader
	name        string
	size        int64
	compression Compression
	closers     []func() error
}

// Name is the path, or "stdin".
func (in *Input) Name() string { return in.name }

// Size is the on-disk size in bytes, or -1 when unknown.
func (in *Input) Size() int64 { return in.size }

// Compression reports the detected encoding.
func (in *Input) Compression() Compression { return in.compression }

// Close releases the decoder and the underlying file.
func (in *Input) Close() error {
	return closeAll(in.closers)
}

// OpenInput opens path for reading with transparent decompression.
func OpenInput(path string) (*Input, error) {
	if path == "" || path == Stdio {
		return WrapInput(os.Stdin, "stdin")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	in := &Input{name: path, size: -1, closers: []func() error{f.Close}}
	if st, err := f.Stat(); err == nil && st.Mode().IsRegular() {
		in.size = st.Size()
	}
	if err := in.detect(f); err != nil {
		in.Close()
		return nil, err
	}
	return in, nil
}

// WrapInput wraps an already open reader, such as standard input, with the
// same compression detection as OpenInput. Closing the Input releases only
// the decoder; r stays open.
func WrapInput(r io.Reader, name string) (*Input, error) {
	in := &Input{name: name, size: -1}
	if err := in.detect(r); err != nil {
		in.Close()
		return nil, err
	}
	return in, nil
}

// detect peeks at the first bytes of src and installs a decoder when they
// carry a gzip or zstd magic number.
func (in *Input) detect(src io.Reader) error {
	br := bufio.NewReader(src)
	in.Reader = br
	in.compression = None

	head, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read input %s: %w", in.name, err)
	}

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return fmt.Errorf("open gzip input %s: %w", in.name, err)
		}
		in.Reader = zr
		in.compression = Gzip
		in.closers = append([]func() error{zr.Close}, in.closers...)
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return fmt.Errorf("open zstd input %s: %w", in.name, err)
		}
		in.Reader = zr
		in.compression = Zstd
		in.closers = append([]func() error{func() error { zr.Close(); return nil }}, in.closers...)
	}
	return nil
}

// Output is an opened output stream. Close must be called to flush any
// compressor and close the file.
type Output struct {
	io.Writer
	name        string
	compression Compression
	closers     []func() error
	enc         encoder  // nil when uncompressed
	file        *os.File // nil for a wrapped writer
}

// encoder is satisfied by both the gzip and the zstd writer.
type encoder interface {
	io.WriteCloser
	Reset(w io.Writer)
}

// Name is the path, or "stdout".
func (out *Output) Name() string { return out.name }

// Compression reports the encoding chosen from the path.
func (out *Output) Compression() Compression { return out.compression }

// Close flushes the encoder, then closes the file. Standard output is
// never closed.
func (out *Output) Close() error {
	return closeAll(out.closers)
}

// Abort closes the file without finishing the encoder, for use once a write
// has already failed: the encoder is pointed at io.Discard before it is
// closed, so nothing more is written to the file. The file is left as the
// failed write left it.
func (out *Output) Abort() error {
	if out.enc != nil {
		out.enc.Reset(io.Discard)
		out.enc.Close()
	}
	if out.file == nil {
		return nil
	}
	return out.file.Close()
}

// CreateOutput creates or truncates path for writing.
func CreateOutput(path string) (*Output, error) {
	if path == "" || path == Stdio {
		return WrapOutput(os.Stdout, "stdout"), nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	out := &Output{Writer: f, name: path, compression: CompressionFor(path), file: f}

	switch out.compression {
	case Gzip:
		zw := gzip.NewWriter(f)
		out.Writer, out.enc = zw, zw
		out.closers = append(out.closers, zw.Close)
	case Zstd:
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create zstd output %s: %w", path, err)
		}
		out.Writer, out.enc = zw, zw
		out.closers = append(out.closers, zw.Close)
	}
	out.closers = append(out.closers, f.Close)
	return out, nil
}

// WrapOutput wraps an already open writer, such as standard output. Its
// Close is a no-op; w is never compressed or closed.
func WrapOutput(w io.Writer, name string) *Output {
	return &Output{Writer: w, name: name, compression: None}
}

// CompressionFor picks the output encoding from a path's extension.
func CompressionFor(path string) Compression {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return Gzip
	case strings.HasSuffix(path, ".zst"):
		return Zstd
	default:
		return None
	}
}

// closeAll runs every closer in order and returns the first error.
func closeAll(closers []func() error) error {
	var first error
	for _, c := range closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
