package linefile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-linefit/fit/line"
)

func TestReadLines(t *testing.T) {
	const cfg = `# two blended lines
gauss 10 5 1.5
! a fixed-centre Lorentzian
lorentz, 3, 7.25*, 0.5

voigt 2 9 0.4 0.2*
`

	profiles, err := ReadLines(strings.NewReader(cfg))
	require.NoError(t, err)
	require.Len(t, profiles, 3)

	require.Equal(t, line.KindGaussian, profiles[0].Kind())
	require.Equal(t, []float64{10, 5, 1.5}, line.Values(profiles[0]))

	l := profiles[1]
	require.Equal(t, line.KindLorentzian, l.Kind())
	require.Equal(t, 7.25, l.Centre())
	require.True(t, l.Params()[line.IndexCentre].Fixed)
	require.False(t, l.Params()[line.IndexScale].Fixed)

	v := profiles[2].(*line.Voigt)
	require.InDelta(t, 0.2, v.LorentzWidth(), 0)
	require.True(t, v.Params()[line.IndexLorentzWidth].Fixed)
	require.False(t, v.Params()[line.IndexWidth].Fixed)
}

func TestReadLinesErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  string
	}{
		{"unknown kind", "sinc 1 2 3\n"},
		{"too few values", "gauss 1 2\n"},
		{"voigt needs four", "voigt 1 2 3\n"},
		{"not a number", "gauss 1 two 3\n"},
		{"bad fixed marker", "gauss 1 2 *\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadLines(strings.NewReader(tc.cfg))
			require.ErrorIs(t, err, ErrSyntax)
			require.Contains(t, err.Error(), "line 1")
		})
	}
}

func TestReadLinesEmpty(t *testing.T) {
	profiles, err := ReadLines(strings.NewReader("# nothing\n\n"))
	require.NoError(t, err)
	require.Empty(t, profiles)
}
