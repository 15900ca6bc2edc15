package cpstats

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"cpstats-backend/lib/platforms"

	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	stats platforms.Stats
	err   error
	calls atomic.Int64
}

func (f *fakeFetcher) Fetch(ctx context.Context, handle string) (platforms.Stats, error) {
	f.calls.Add(1)
	if handle == "" {
		return platforms.Stats{}, nil
	}
	return f.stats, f.err
}

func fetcherMap(stats map[platforms.Platform]platforms.Stats) map[platforms.Platform]platforms.Fetcher {
	out := map[platforms.Platform]platforms.Fetcher{}
	for _, platform := range platforms.All {
		out[platform] = &fakeFetcher{stats: stats[platform]}
	}
	return out
}

func TestSnapshotSinglePlatform(t *testing.T) {
	accounts := Accounts{Main: Handles{Codeforces: "abc"}}
	agg := NewAggregator(accounts, fetcherMap(map[platforms.Platform]platforms.Stats{
		platforms.Codeforces: {
			Rating:    1600,
			MaxRating: 1700,
			Solved:    250,
			Contests:  40,
			Changes:   []string{"+80", "-20"},
			Badge:     "Expert",
		},
		// unconfigured platforms must contribute nothing even if the
		// fake would report data for them
		platforms.CodeChef: {Rating: 2000, Solved: 999, Contests: 99},
	}))

	snapshot := agg.Snapshot(context.Background(), IdentityMain)

	require.Equal(t, 250, snapshot.OverallStats.TotalSolved)
	require.Equal(t, 40, snapshot.OverallStats.TotalContests)
	require.Equal(t, 40, snapshot.OverallStats.ActiveDays)
	require.Equal(t, 1700, snapshot.OverallStats.PeakRating)
	require.Equal(t, "Top 3%", snapshot.OverallStats.OverallPercentile)

	require.Len(t, snapshot.PlatformReviews, 1)
	review := snapshot.PlatformReviews[0]
	require.Equal(t, "Codeforces", review.Name)
	require.Equal(t, "57%", review.Score)
	require.Equal(t, "1600", review.RawRating)
	require.Equal(t, "Expert", review.Badge)
	require.Equal(t, "text-amber-500", review.Color)
	require.Equal(t, "bg-amber-500", review.Bg)
	require.Equal(t, []string{"+80", "-20"}, review.Changes)

	require.Len(t, snapshot.RatingEvolution, 9)
	require.Equal(t, 1700, snapshot.RatingEvolution[8].Rating)
}

func TestSnapshotAllAdaptersFail(t *testing.T) {
	accounts := Accounts{Main: Handles{
		Codeforces: "a", LeetCode: "b", CodeChef: "c", AtCoder: "d", GFG: "e",
	}}
	fetchers := map[platforms.Platform]platforms.Fetcher{}
	for _, platform := range platforms.All {
		fetchers[platform] = &fakeFetcher{err: errors.New("upstream down")}
	}
	agg := NewAggregator(accounts, fetchers)

	snapshot := agg.Snapshot(context.Background(), IdentityMain)

	require.Zero(t, snapshot.OverallStats.TotalSolved)
	require.Zero(t, snapshot.OverallStats.TotalContests)
	require.Zero(t, snapshot.OverallStats.PeakRating)

	// configured platforms still get a breakdown row, just an empty one
	require.Len(t, snapshot.PlatformReviews, 4)
	for _, review := range snapshot.PlatformReviews {
		require.Equal(t, "N/A", review.Score)
		require.Equal(t, "0", review.RawRating)
		require.NotNil(t, review.Changes)
	}

	require.Empty(t, snapshot.ContestHighlights)
	// the backdrop curve still ends on its placeholder peak
	require.Equal(t, 2350, snapshot.RatingEvolution[8].Rating)
}

func TestSnapshotReviewOrder(t *testing.T) {
	accounts := Accounts{Main: Handles{
		Codeforces: "a", LeetCode: "b", CodeChef: "c", AtCoder: "d",
	}}
	agg := NewAggregator(accounts, fetcherMap(nil))

	snapshot := agg.Snapshot(context.Background(), IdentityMain)

	names := []string{}
	for _, review := range snapshot.PlatformReviews {
		names = append(names, review.Name)
	}
	require.Equal(t, []string{"Codeforces", "LeetCode", "AtCoder", "CodeChef"}, names)
}

func TestSnapshotHighlightOrdering(t *testing.T) {
	accounts := Accounts{Main: Handles{
		Codeforces: "a", LeetCode: "b", CodeChef: "c", AtCoder: "d",
	}}
	agg := NewAggregator(accounts, fetcherMap(map[platforms.Platform]platforms.Stats{
		platforms.Codeforces: {LatestContest: &platforms.Highlight{Name: "cf", Ts: 100}},
		platforms.LeetCode:   {LatestContest: &platforms.Highlight{Name: "lc", Ts: 400}},
		platforms.AtCoder:    {LatestContest: &platforms.Highlight{Name: "ac", Ts: 300}},
		platforms.CodeChef:   {LatestContest: &platforms.Highlight{Name: "cc", Ts: 200}},
	}))

	snapshot := agg.Snapshot(context.Background(), IdentityMain)

	names := []string{}
	for _, h := range snapshot.ContestHighlights {
		names = append(names, h.Name)
	}
	require.Equal(t, []string{"lc", "ac", "cc", "cf"}, names)
}

func TestCombine(t *testing.T) {
	main := Snapshot{
		OverallStats: OverallStats{
			TotalSolved:       100,
			TotalContests:     10,
			ActiveDays:        10,
			PeakRating:        1700,
			OverallPercentile: "Top 3%",
		},
		PlatformReviews: []PlatformReview{{Name: "Codeforces", Score: "57%"}},
		ContestHighlights: []platforms.Highlight{
			{Name: "m1", Ts: 500}, {Name: "m2", Ts: 100},
		},
	}
	alt := Snapshot{
		OverallStats: OverallStats{TotalSolved: 40, TotalContests: 5, PeakRating: 1900},
		PlatformReviews: []PlatformReview{
			{Name: "Codeforces", Score: "40%"}, {Name: "LeetCode", Score: "50%"},
		},
		ContestHighlights: []platforms.Highlight{
			{Name: "a1", Ts: 700}, {Name: "a2", Ts: 300},
		},
	}

	combined := Combine(main, alt)

	require.Equal(t, 140, combined.OverallStats.TotalSolved)
	require.Equal(t, 15, combined.OverallStats.TotalContests)
	require.Equal(t, 15, combined.OverallStats.ActiveDays)
	require.Equal(t, 1900, combined.OverallStats.PeakRating)

	// the breakdown stays main's, the alt rows would double platforms up
	require.Equal(t, main.PlatformReviews, combined.PlatformReviews)

	names := []string{}
	for _, h := range combined.ContestHighlights {
		names = append(names, h.Name)
	}
	require.Equal(t, []string{"a1", "m1", "a2", "m2"}, names)
}

func TestHandlesFor(t *testing.T) {
	handles := Handles{Codeforces: "cf", GFG: "gfg"}
	require.Equal(t, "cf", handles.For(platforms.Codeforces))
	require.Equal(t, "gfg", handles.For(platforms.GFG))
	require.Equal(t, "", handles.For(platforms.LeetCode))
}
