package linefile

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
)

const sampleData = `# x y sigma
1 0.5 0.1
2, 1.5, 0.2
3	2.5	0.1
`

func TestReadData(t *testing.T) {
	d, err := ReadData(strings.NewReader(sampleData))
	require.NoError(t, err)

	require.Equal(t, 3, d.Len())
	require.Equal(t, []float64{1, 2, 3}, d.X)
	require.Equal(t, []float64{0.5, 1.5, 2.5}, d.Y)
	require.Equal(t, []float64{0.1, 0.2, 0.1}, d.Sigma)
}

func TestReadDataWithoutSigma(t *testing.T) {
	d, err := ReadData(strings.NewReader("0 1\n1 2\n"))
	require.NoError(t, err)
	require.Nil(t, d.Sigma)
	require.Equal(t, 2, d.Len())
}

func TestReadDataDropsNonFiniteRows(t *testing.T) {
	d, err := ReadData(strings.NewReader("1 0.5 0.1\n2 NaN 0.1\nInf 1 0.1\n3 2.5 0.2\n"))
	require.NoError(t, err)

	require.Equal(t, 2, d.Dropped)
	require.Equal(t, []float64{1, 3}, d.X)
	require.Equal(t, []float64{0.5, 2.5}, d.Y)
	require.Equal(t, []float64{0.1, 0.2}, d.Sigma)
}

func TestReadDataErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"one column", "1\n"},
		{"four columns", "1 2 3 4\n"},
		{"mixed sigma", "1 2 0.1\n2 3\n"},
		{"not a number", "1 y\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadData(strings.NewReader(tc.in))
			require.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestChecksum(t *testing.T) {
	a, err := ReadData(strings.NewReader(sampleData))
	require.NoError(t, err)

	b, err := ReadData(strings.NewReader(sampleData))
	require.NoError(t, err)

	require.Equal(t, a.Checksum(), b.Checksum())

	b.Y[1] = 1.5000000001
	require.NotEqual(t, a.Checksum(), b.Checksum())

	b.Y[1] = a.Y[1]
	b.Sigma = nil
	require.NotEqual(t, a.Checksum(), b.Checksum())
}

func writeCompressed(t *testing.T, path string, wrap func(io.Writer) (io.WriteCloser, error)) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	defer f.Close()

	w, err := wrap(f)
	require.NoError(t, err)

	_, err = io.WriteString(w, sampleData)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestReadDataFileCompressed(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		wrap func(io.Writer) (io.WriteCloser, error)
	}{
		{"data.txt", func(w io.Writer) (io.WriteCloser, error) { return nopCloser{w}, nil }},
		{"data.txt.gz", func(w io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(w), nil }},
		{"data.txt.zst", func(w io.Writer) (io.WriteCloser, error) { return zstd.NewWriter(w) }},
		{"data.txt.lz4", func(w io.Writer) (io.WriteCloser, error) { return lz4.NewWriter(w), nil }},
	}

	want, err := ReadData(strings.NewReader(sampleData))
	require.NoError(t, err)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name)
			writeCompressed(t, path, tc.wrap)

			got, err := ReadDataFile(path)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestWithinAndSubtract(t *testing.T) {
	d, err := ReadData(strings.NewReader(sampleData))
	require.NoError(t, err)

	in := d.Within(1.5, 3)
	require.Equal(t, []float64{2, 3}, in.X)
	require.Equal(t, []float64{1.5, 2.5}, in.Y)
	require.Equal(t, []float64{0.2, 0.1}, in.Sigma)

	require.Zero(t, d.Within(5, 6).Len())

	net := d.Subtract([]float64{0.5, 0.5, 1})
	require.Equal(t, []float64{0, 1, 1.5}, net.Y)
	require.Equal(t, d.X, net.X)
	require.Equal(t, []float64{0.5, 1.5, 2.5}, d.Y, "Subtract must not modify the receiver")
}

func TestReadDataFileErrors(t *testing.T) {
	_, err := ReadDataFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.gz")
	require.NoError(t, os.WriteFile(bad, []byte("not gzip"), 0o600))

	_, err = ReadDataFile(bad)
	require.Error(t, err)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
