package linefile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-linefit/fit/line"
)

// ErrSyntax is returned for malformed configuration or data lines.
var ErrSyntax = errors.New("linefile: syntax error")

// ReadLines parses a line configuration: one profile per line,
//
//	kind scale centre width [lorentz-width]
//
// where kind is gauss, gaussian, lorentz, lorentzian or voigt. A number
// ending in '*' is held fixed during the fit. Blank lines and lines
// starting with '#' or '!' are ignored.
func ReadLines(r io.Reader) ([]line.Profile, error) {
	var profiles []line.Profile

	err := scanLines(r, func(n int, fields []string) error {
		kind, err := line.ParseKind(fields[0])
		if err != nil {
			return fmt.Errorf("%w: line %d: %w", ErrSyntax, n, err)
		}

		want := kind.NumParams()
		if len(fields)-1 != want {
			return fmt.Errorf("%w: line %d: %v takes %d values, got %d", ErrSyntax, n, kind, want, len(fields)-1)
		}

		values := make([]float64, want)
		fixed := make([]bool, want)

		for i, f := range fields[1:] {
			if s, ok := strings.CutSuffix(f, "*"); ok {
				f = s
				fixed[i] = true
			}

			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return fmt.Errorf("%w: line %d: %q is not a number", ErrSyntax, n, f)
			}

			values[i] = v
		}

		p, err := line.NewProfile(kind, values...)
		if err != nil {
			return fmt.Errorf("%w: line %d: %w", ErrSyntax, n, err)
		}

		for i, param := range p.Params() {
			param.Fixed = fixed[i]
		}

		profiles = append(profiles, p)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return profiles, nil
}

// scanLines calls fn with the 1-based line number and the fields of every
// non-comment line of r. Fields are separated by whitespace or commas.
func scanLines(r io.Reader, fn func(n int, fields []string) error) error {
	sc := bufio.NewScanner(r)
	n := 0

	for sc.Scan() {
		n++

		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' || text[0] == '!' {
			continue
		}

		fields := strings.FieldsFunc(text, func(c rune) bool {
			return c == ',' || c == ' ' || c == '\t'
		})

		if err := fn(n, fields); err != nil {
			return err
		}
	}

	if err := sc.Err(); err != nil {
		return fmt.Errorf("linefile: read: %w", err)
	}

	return nil
}
