package codeforces

import (
	"context"
	"testing"

	"cpstats-backend/lib/platforms"

	"github.com/stretchr/testify/require"
)

func TestFetchWithoutHandle(t *testing.T) {
	client := NewClient("")

	stats, err := client.Fetch(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, platforms.Stats{}, stats)
}

func TestRatingStats(t *testing.T) {
	history := []ratingChange{
		{ContestName: "Round 1", Rank: 512, OldRating: 0, NewRating: 1000, RatingUpdateTimeSeconds: 100},
		{ContestName: "Round 2", Rank: 301, OldRating: 1000, NewRating: 1200, RatingUpdateTimeSeconds: 200},
		{ContestName: "Round 3", Rank: 899, OldRating: 1200, NewRating: 1100, RatingUpdateTimeSeconds: 300},
	}

	contests, changes, latest := ratingStats(history)
	require.Equal(t, 3, contests)
	require.Equal(t, []string{"+1000", "+200", "-100"}, changes)
	require.NotNil(t, latest)
	require.Equal(t, "Round 3", latest.Name)
	require.Equal(t, "899", latest.Rank)
	require.Equal(t, "-100", latest.Delta)
	require.Equal(t, int64(300), latest.Ts)

	contests, changes, latest = ratingStats(nil)
	require.Zero(t, contests)
	require.Nil(t, changes)
	require.Nil(t, latest)
}

func TestCountSolved(t *testing.T) {
	subs := []submission{
		{Verdict: "OK"},
		{Verdict: "WRONG_ANSWER"},
		{Verdict: "OK"},
	}
	subs[0].Problem.Name = "A"
	subs[1].Problem.Name = "B"
	// resubmission of an already accepted problem must not double count
	subs[2].Problem.Name = "A"

	require.Equal(t, 1, countSolved(subs))
}

func TestBadgeFor(t *testing.T) {
	require.Equal(t, "Expert", badgeFor(1600))
	require.Equal(t, "Specialist", badgeFor(1400))
	require.Equal(t, "Pupil", badgeFor(1))
	require.Equal(t, "Newbie", badgeFor(0))
}
