package atcoder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"cpstats-backend/lib/platforms"
	"cpstats-backend/lib/telemetry"
	"cpstats-backend/lib/timezone"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("scrapers/atcoder")

const BaseUrl = "https://atcoder.jp"

// community mirror with per-user accepted-problem counts, the
// official site exposes no equivalent
const SolvedCountUrl = "https://kenkoooo.com/atcoder/atcoder-api/v3/user/ac_rank"

const Color = "text-blue-500"

type Client struct {
	http *resty.Client
}

func NewClient(baseUrl string) *Client {
	if baseUrl == "" {
		baseUrl = BaseUrl
	}
	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(time.Second * 10)

	telemetry.InstrumentResty(client, "scrapers/atcoder/http")

	return &Client{http: client}
}

type historyEntry struct {
	ContestName string `json:"ContestName"`
	Place       int    `json:"Place"`
	OldRating   int    `json:"OldRating"`
	NewRating   int    `json:"NewRating"`
}

func (c *Client) Fetch(ctx context.Context, handle string) (platforms.Stats, error) {
	if handle == "" {
		return platforms.Stats{}, nil
	}

	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("handle", handle))

	stats := platforms.Stats{Badge: "Kyu"}

	solved, err := c.solvedCount(ctx, handle)
	if err != nil {
		slog.WarnContext(ctx, "atcoder ac_rank degraded", "handle", handle, "err", err)
	} else {
		stats.Solved = solved
	}

	history, err := c.ratingHistory(ctx, handle)
	if err != nil {
		slog.WarnContext(ctx, "atcoder history degraded", "handle", handle, "err", err)
		return stats, nil
	}
	applyHistory(&stats, history, timezone.Now())
	return stats, nil
}

func (c *Client) solvedCount(ctx context.Context, handle string) (int, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("user", handle).
		Get(SolvedCountUrl)
	if err != nil {
		return 0, err
	}
	var out struct {
		Count int `json:"count"`
	}
	err = json.Unmarshal(res.Body(), &out)
	if err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) ratingHistory(ctx context.Context, handle string) ([]historyEntry, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/users/%s/history/json", handle))
	if err != nil {
		return nil, err
	}
	var history []historyEntry
	err = json.Unmarshal(res.Body(), &history)
	if err != nil {
		return nil, err
	}
	return history, nil
}

// applyHistory folds the (time-ascending) contest history into the
// record: current rating is the last entry, max is scanned, deltas
// come from the suffix window of new ratings.
func applyHistory(stats *platforms.Stats, history []historyEntry, now time.Time) {
	if len(history) == 0 {
		return
	}

	stats.Contests = len(history)
	stats.Rating = history[len(history)-1].NewRating
	for _, h := range history {
		if h.NewRating > stats.MaxRating {
			stats.MaxRating = h.NewRating
		}
	}

	ratings := make([]int, len(history))
	for i, h := range history {
		ratings[i] = h.NewRating
	}
	stats.Changes = platforms.DeltasFromRatings(ratings)

	last := history[len(history)-1]
	stats.LatestContest = &platforms.Highlight{
		Name:  last.ContestName,
		Rank:  fmt.Sprintf("%d", last.Place),
		Delta: platforms.FormatDelta(last.NewRating - last.OldRating),
		Date:  "recently",
		Color: Color,
		// the history feed carries no usable event timestamp
		Ts: now.Unix(),
	}
}
