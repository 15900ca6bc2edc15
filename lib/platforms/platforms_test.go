package platforms

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatDelta(t *testing.T) {
	testCases := []struct {
		diff     int
		expected string
	}{
		{200, "+200"},
		{-100, "-100"},
		{0, "0"},
		{1, "+1"},
		{-1, "-1"},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, FormatDelta(test.diff))
	}
}

func TestDeltasFromRatings(t *testing.T) {
	require.Equal(
		t,
		[]string{"+200", "-100"},
		DeltasFromRatings([]int{1000, 1200, 1100}),
	)
	require.Equal(
		t,
		[]string{"0"},
		DeltasFromRatings([]int{1500, 1500}),
	)
	require.Empty(t, DeltasFromRatings(nil))
	require.Empty(t, DeltasFromRatings([]int{1400}))

	// only the last 6 entries of a long history participate
	long := []int{100, 200, 300, 400, 500, 600, 700, 800}
	require.Equal(
		t,
		[]string{"+100", "+100", "+100", "+100", "+100"},
		DeltasFromRatings(long),
	)
}
