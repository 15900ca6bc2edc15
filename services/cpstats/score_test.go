package cpstats

import (
	"testing"

	"cpstats-backend/lib/platforms"

	"github.com/stretchr/testify/require"
)

func TestToScore(t *testing.T) {
	// unrated and nonsense ratings are sentinels, never "0%"
	require.Equal(t, "N/A", ToScore(0, platforms.Codeforces))
	require.Equal(t, "N/A", ToScore(-200, platforms.LeetCode))

	// at or above the platform ceiling the score pins to 99
	require.Equal(t, "99%", ToScore(2800, platforms.Codeforces))
	require.Equal(t, "99%", ToScore(3500, platforms.Codeforces))
	require.Equal(t, "99%", ToScore(2400, platforms.AtCoder))

	// tiny positive ratings clamp up to the floor
	require.Equal(t, "30%", ToScore(1, platforms.Codeforces))
	require.Equal(t, "30%", ToScore(300, platforms.CodeChef))

	require.Equal(t, "57%", ToScore(1600, platforms.Codeforces))
	require.Equal(t, "50%", ToScore(1200, platforms.AtCoder))

	// platforms without a ceiling fall back to the default target
	require.Equal(t, "50%", ToScore(1500, platforms.GFG))
}
