package fileio

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "chr1\t100\t200\nchr2\t300\t400\n"

func writeThrough(t *testing.T, path, content string) {
	t.Helper()
	out, err := CreateOutput(path)
	require.NoError(t, err)
	_, err = io.WriteString(out, content)
	require.NoError(t, err)
	require.NoError(t, out.Close())
}

func readAll(t *testing.T, path string) (string, *Input) {
	t.Helper()
	in, err := OpenInput(path)
	require.NoError(t, err)
	defer in.Close()
	data, err := io.ReadAll(in)
	require.NoError(t, err)
	return string(data), in
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		file string
		want Compression
	}{
		{"plain", "rows.tsv", None},
		{"gzip", "rows.tsv.gz", Gzip},
		{"zstd", "rows.tsv.zst", Zstd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			writeThrough(t, path, sample)

			got, in := readAll(t, path)
			assert.Equal(t, sample, got)
			assert.Equal(t, tt.want, in.Compression())
			assert.Equal(t, path, in.Name())
			assert.Positive(t, in.Size())
		})
	}
}

func TestCompressedOutputIsNotPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.gz")
	writeThrough(t, path, sample)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, gzipMagic, raw[:2])
	assert.NotContains(t, string(raw), "chr1")
}

func TestInputDetectionIgnoresName(t *testing.T) {
	dir := t.TempDir()
	compressed := filepath.Join(dir, "rows.gz")
	writeThrough(t, compressed, sample)

	renamed := filepath.Join(dir, "rows.tsv")
	require.NoError(t, os.Rename(compressed, renamed))

	got, in := readAll(t, renamed)
	assert.Equal(t, sample, got)
	assert.Equal(t, Gzip, in.Compression())
}

func TestOpenInputPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.tsv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	got, in := readAll(t, path)
	assert.Equal(t, sample, got)
	assert.Equal(t, None, in.Compression())
	assert.Equal(t, int64(len(sample)), in.Size())
}

func TestOpenInputShortAndEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{"empty": "", "one": "x", "gzipish": "\x1f"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		got, in := readAll(t, path)
		assert.Equal(t, content, got, name)
		assert.Equal(t, None, in.Compression(), name)
	}
}

func TestOpenInputMissing(t *testing.T) {
	_, err := OpenInput(filepath.Join(t.TempDir(), "nope.tsv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenInputCorruptGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gz")
	require.NoError(t, os.WriteFile(path, []byte{0x1f, 0x8b, 0x00, 0x00}, 0o644))

	_, err := OpenInput(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open gzip input")
}

func TestCreateOutputBadDirectory(t *testing.T) {
	_, err := CreateOutput(filepath.Join(t.TempDir(), "missing", "out.tsv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStdout(t *testing.T) {
	out, err := CreateOutput(Stdio)
	require.NoError(t, err)
	assert.Equal(t, "stdout", out.Name())
	assert.Equal(t, None, out.Compression())
	assert.NoError(t, out.Close())
}

func TestWrapInputDetectsGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := io.WriteString(zw, sample)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	in, err := WrapInput(&buf, "stdin")
	require.NoError(t, err)
	defer in.Close()

	assert.Equal(t, "stdin", in.Name())
	assert.Equal(t, Gzip, in.Compression())
	assert.Equal(t, int64(-1), in.Size())
	data, err := io.ReadAll(in)
	require.NoError(t, err)
	assert.Equal(t, sample, string(data))
}

func TestWrapInputPlain(t *testing.T) {
	in, err := WrapInput(bytes.NewBufferString(sample), "stdin")
	require.NoError(t, err)
	assert.Equal(t, None, in.Compression())
	data, err := io.ReadAll(in)
	require.NoError(t, err)
	assert.Equal(t, sample, string(data))
	assert.NoError(t, in.Close())
}

func TestWrapOutput(t *testing.T) {
	var buf bytes.Buffer
	out := WrapOutput(&buf, "stdout")
	_, err := io.WriteString(out, sample)
	require.NoError(t, err)
	require.NoError(t, out.Close())
	assert.Equal(t, sample, buf.String())
	assert.Equal(t, None, out.Compression())
}

func TestAbortLeavesEncoderUnfinished(t *testing.T) {
	for _, file := range []string{"rows.tsv.gz", "rows.tsv.zst"} {
		t.Run(file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), file)
			out, err := CreateOutput(path)
			require.NoError(t, err)
			_, err = io.WriteString(out, sample)
			require.NoError(t, err)
			require.NoError(t, out.Abort())

			// The encoder was never finished, so the file does not decode back
			// to what was written.
			var got []byte
			in, err := OpenInput(path)
			if err == nil {
				got, err = io.ReadAll(in)
				in.Close()
			}
			assert.False(t, err == nil && string(got) == sample, "aborted output decoded in full")
		})
	}
}

func TestAbortPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.tsv")
	out, err := CreateOutput(path)
	require.NoError(t, err)
	_, err = io.WriteString(out, sample)
	require.NoError(t, err)
	require.NoError(t, out.Abort())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sample, string(raw))
}

func TestAbortWrappedOutput(t *testing.T) {
	var buf bytes.Buffer
	out := WrapOutput(&buf, "stdout")
	_, err := io.WriteString(out, sample)
	require.NoError(t, err)
	assert.NoError(t, out.Abort())
	assert.Equal(t, sample, buf.String())
}

func TestCompressionFor(t *testing.T) {
	assert.Equal(t, Gzip, CompressionFor("a.tsv.gz"))
	assert.Equal(t, Zstd, CompressionFor("a.zst"))
	assert.Equal(t, None, CompressionFor("a.tsv"))
	assert.Equal(t, None, CompressionFor("gz"))
}
