package cpstats

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cpstats-backend/lib/timezone"
	"cpstats-backend/services/cpstats/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/cpstats")

// CacheTTL is how long a stored payload stays fresh. Stats move
// slowly, three days keeps upstream traffic negligible.
const CacheTTL = time.Hour * 72

const (
	ViewMain     = "main"
	ViewAlt      = "alt"
	ViewCombined = "combined"
)

var Views = []string{ViewMain, ViewAlt, ViewCombined}

func validView(view string) bool {
	switch view {
	case ViewMain, ViewAlt, ViewCombined:
		return true
	}
	return false
}

type Service struct {
	db  *sql.DB
	qry *db.Queries
	agg Aggregator
}

func NewService(database *sql.DB, agg Aggregator) Service {
	return Service{
		db:  database,
		qry: db.New(database),
		agg: agg,
	}
}

// GetAggregatedStats returns the payload for one account view,
// serving from the cache while the stored entry is fresh. Every store
// failure degrades to recompute-without-caching, the request itself
// only fails if serialization does.
func (s Service) GetAggregatedStats(ctx context.Context, view string) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "GetAggregatedStats")
	defer span.End()
	span.SetAttributes(attribute.String("account_view", view))

	if !validView(view) {
		err := fmt.Errorf("unknown account view '%s'", view)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid account view")
		return nil, err
	}

	now := timezone.Now()

	entry, err := s.qry.GetCacheEntry(ctx, view)
	if err == nil && now.Unix()-entry.UpdatedAt < int64(CacheTTL.Seconds()) {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return json.RawMessage(entry.Payload), nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		slog.WarnContext(ctx, "cache read failed, recomputing", "view", view, "err", err)
	}

	snapshot := s.computeView(ctx, view)
	payload, err := json.Marshal(snapshot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize payload")
		return nil, err
	}

	err = s.qry.UpsertCacheEntry(ctx, db.UpsertCacheEntryParams{
		AccountView: view,
		Payload:     string(payload),
		UpdatedAt:   now.Unix(),
	})
	if err != nil {
		// caching is best effort, the fresh payload still goes out
		slog.WarnContext(ctx, "cache write failed", "view", view, "err", err)
	}

	return payload, nil
}

func (s Service) computeView(ctx context.Context, view string) Snapshot {
	if view != ViewCombined {
		return s.agg.Snapshot(ctx, Identity(view))
	}

	// neither identity depends on the other, fetch them in parallel
	var main, alt Snapshot
	done := make(chan struct{})
	go func() {
		defer close(done)
		alt = s.agg.Snapshot(ctx, IdentityAlt)
	}()
	main = s.agg.Snapshot(ctx, IdentityMain)
	<-done

	return Combine(main, alt)
}

func (s Service) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/cp-stats/aggregated", s.handleAggregated)
}

func (s Service) handleAggregated(w http.ResponseWriter, r *http.Request) {
	view := r.URL.Query().Get("accountView")
	if view == "" {
		view = ViewCombined
	}

	w.Header().Set("content-type", "application/json")

	if !validView(view) {
		w.WriteHeader(http.StatusBadRequest)
		writeErrorEnvelope(w, fmt.Sprintf("unknown account view '%s'", view))
		return
	}

	payload, err := s.GetAggregatedStats(r.Context(), view)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to aggregate stats", "view", view, "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		writeErrorEnvelope(w, "failed to aggregate stats")
		return
	}

	_, err = w.Write(payload)
	if err != nil {
		slog.WarnContext(r.Context(), "failed to write response", "err", err)
	}
}

func writeErrorEnvelope(w http.ResponseWriter, message string) {
	out, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return
	}
	_, _ = w.Write(out)
}

// StartRefreshDaemon rebuilds every view on a fixed interval so the
// first request after an expiry never pays the fan-out latency. A
// non-positive interval disables the daemon.
func (s Service) StartRefreshDaemon(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, view := range Views {
					_, err := s.GetAggregatedStats(ctx, view)
					if err != nil {
						slog.WarnContext(ctx, "background refresh failed", "view", view, "err", err)
					}
				}
			}
		}
	}()
}
