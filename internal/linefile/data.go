package linefile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/cwbudde/algo-vecmath"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Data is a sample set read from a data file. Sigma is nil when the file
// has no uncertainty column.
type Data struct {
	X, Y, Sigma []float64

	// Dropped counts rows skipped because x or y was NaN or infinite.
	Dropped int
}

// Len returns the number of samples.
func (d Data) Len() int { return len(d.X) }

// Within returns the samples with lo <= x <= hi, in file order.
func (d Data) Within(lo, hi float64) Data {
	out := Data{Dropped: d.Dropped}

	for i, x := range d.X {
		if x < lo || x > hi {
			continue
		}

		out.X = append(out.X, x)
		out.Y = append(out.Y, d.Y[i])

		if d.Sigma != nil {
			out.Sigma = append(out.Sigma, d.Sigma[i])
		}
	}

	return out
}

// Subtract returns a copy of d with base removed from Y. base has one
// value per sample.
func (d Data) Subtract(base []float64) Data {
	y := slices.Clone(base[:d.Len()])
	vecmath.ScaleBlockInPlace(y, -1)
	vecmath.AddBlockInPlace(y, d.Y)

	return Data{X: d.X, Y: y, Sigma: d.Sigma, Dropped: d.Dropped}
}

// Checksum returns the xxHash64 of the samples' IEEE-754 bits, in file
// order. It identifies the data a report was produced from.
func (d Data) Checksum() uint64 {
	h := xxhash.New()
	buf := make([]byte, 0, 24)

	for i := range d.X {
		buf = binary.LittleEndian.AppendUint64(buf[:0], math.Float64bits(d.X[i]))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(d.Y[i]))

		if d.Sigma != nil {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(d.Sigma[i]))
		}

		_, _ = h.Write(buf)
	}

	return h.Sum64()
}

// ReadData parses whitespace- or comma-separated columns "x y [sigma]".
// Either every row has a sigma or none does. Rows whose x or y is NaN or
// infinite mark bad samples and are dropped.
func ReadData(r io.Reader) (Data, error) {
	var d Data

	withSigma := -1

	err := scanLines(r, func(n int, fields []string) error {
		if len(fields) != 2 && len(fields) != 3 {
			return fmt.Errorf("%w: line %d: want 2 or 3 columns, got %d", ErrSyntax, n, len(fields))
		}

		cols := len(fields) - 2
		if withSigma < 0 {
			withSigma = cols
		} else if cols != withSigma {
			return fmt.Errorf("%w: line %d: sigma column present on some rows only", ErrSyntax, n)
		}

		var v [3]float64

		for i, f := range fields {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return fmt.Errorf("%w: line %d: %q is not a number", ErrSyntax, n, f)
			}

			v[i] = x
		}

		if !finite(v[0]) || !finite(v[1]) {
			d.Dropped++
			return nil
		}

		d.X = append(d.X, v[0])
		d.Y = append(d.Y, v[1])

		if withSigma == 1 {
			d.Sigma = append(d.Sigma, v[2])
		}

		return nil
	})
	if err != nil {
		return Data{}, err
	}

	return d, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ReadDataFile opens path with Open and parses it with ReadData.
func ReadDataFile(path string) (Data, error) {
	rc, err := Open(path)
	if err != nil {
		return Data{}, err
	}
	defer rc.Close()

	d, err := ReadData(rc)
	if err != nil {
		return Data{}, fmt.Errorf("%s: %w", path, err)
	}

	return d, nil
}

// Open opens path for reading, decompressing it according to its
// extension: .gz (gzip), .zst (zstd) or .lz4 (lz4 frame). Other files are
// returned as is.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("linefile: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("linefile: %s: %w", path, err)
		}

		return &stackedReader{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case ".zst":
		zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("linefile: %s: %w", path, err)
		}

		return &stackedReader{Reader: zr, closers: []io.Closer{zr.IOReadCloser(), f}}, nil
	case ".lz4":
		return &stackedReader{Reader: lz4.NewReader(f), closers: []io.Closer{f}}, nil
	default:
		return f, nil
	}
}

// stackedReader reads from a decompressor and closes it and the
// underlying file in order.
type stackedReader struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedReader) Close() error {
	var first error

	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}
