package cpstats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cpstats-backend/lib/platforms"
	"cpstats-backend/lib/testutil"
	"cpstats-backend/lib/timezone"
	"cpstats-backend/services/cpstats/db"

	"github.com/stretchr/testify/require"
)

func setupTestService(t *testing.T) (Service, map[platforms.Platform]*fakeFetcher) {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "cpstats",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	fetchers := map[platforms.Platform]*fakeFetcher{}
	asInterface := map[platforms.Platform]platforms.Fetcher{}
	for _, platform := range platforms.All {
		fake := &fakeFetcher{stats: platforms.Stats{
			Rating: 1600, MaxRating: 1700, Solved: 100, Contests: 10, Badge: "Expert",
		}}
		fetchers[platform] = fake
		asInterface[platform] = fake
	}

	accounts := Accounts{
		Main: Handles{Codeforces: "main-cf", LeetCode: "main-lc"},
		Alt:  Handles{Codeforces: "alt-cf"},
	}
	return NewService(result.DB, NewAggregator(accounts, asInterface)), fetchers
}

func totalCalls(fetchers map[platforms.Platform]*fakeFetcher) int64 {
	var total int64
	for _, f := range fetchers {
		total += f.calls.Load()
	}
	return total
}

func TestGetAggregatedStatsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, fetchers := setupTestService(t)

	first, err := svc.GetAggregatedStats(ctx, ViewMain)
	require.NoError(t, err)
	require.Equal(t, int64(5), totalCalls(fetchers))

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(first, &snapshot))
	require.Equal(t, 200, snapshot.OverallStats.TotalSolved)

	// second read is served from the cache, byte for byte
	second, err := svc.GetAggregatedStats(ctx, ViewMain)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, int64(5), totalCalls(fetchers))
}

func TestGetAggregatedStatsExpiry(t *testing.T) {
	ctx := context.Background()
	svc, fetchers := setupTestService(t)

	stale := timezone.Now().Add(-CacheTTL - time.Minute)
	err := svc.qry.UpsertCacheEntry(ctx, db.UpsertCacheEntryParams{
		AccountView: ViewMain,
		Payload:     `{"stale":true}`,
		UpdatedAt:   stale.Unix(),
	})
	require.NoError(t, err)

	payload, err := svc.GetAggregatedStats(ctx, ViewMain)
	require.NoError(t, err)
	require.NotEqual(t, `{"stale":true}`, string(payload))
	require.Equal(t, int64(5), totalCalls(fetchers))

	// the refreshed payload replaced the expired row
	entry, err := svc.qry.GetCacheEntry(ctx, ViewMain)
	require.NoError(t, err)
	require.Equal(t, string(payload), entry.Payload)
	require.GreaterOrEqual(t, entry.UpdatedAt, stale.Unix())
}

func TestGetAggregatedStatsCombined(t *testing.T) {
	ctx := context.Background()
	svc, fetchers := setupTestService(t)

	payload, err := svc.GetAggregatedStats(ctx, ViewCombined)
	require.NoError(t, err)
	// one fan-out per identity
	require.Equal(t, int64(10), totalCalls(fetchers))

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(payload, &snapshot))
	// main has two configured platforms, alt one
	require.Equal(t, 300, snapshot.OverallStats.TotalSolved)
	require.Equal(t, 30, snapshot.OverallStats.TotalContests)
	require.Equal(t, 1700, snapshot.OverallStats.PeakRating)
	require.Len(t, snapshot.PlatformReviews, 2)
}

func TestGetAggregatedStatsStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)
	require.NoError(t, svc.db.Close())

	// a dead store disables caching but never fails the request
	payload, err := svc.GetAggregatedStats(ctx, ViewMain)
	require.NoError(t, err)

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(payload, &snapshot))
	require.Equal(t, 200, snapshot.OverallStats.TotalSolved)
}

func TestGetAggregatedStatsInvalidView(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.GetAggregatedStats(context.Background(), "somebody")
	require.Error(t, err)
}

func TestHandleAggregatedInvalidView(t *testing.T) {
	svc, _ := setupTestService(t)
	mux := http.NewServeMux()
	svc.Register(mux)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/cp-stats/aggregated?accountView=bogus", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Contains(t, envelope["error"], "bogus")
}

func TestHandleAggregatedDefaultsToCombined(t *testing.T) {
	svc, fetchers := setupTestService(t)
	mux := http.NewServeMux()
	svc.Register(mux)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/cp-stats/aggregated", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(10), totalCalls(fetchers))

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	require.Equal(t, "Top 3%", snapshot.OverallStats.OverallPercentile)
}
