package codeforces

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"cpstats-backend/lib/platforms"
	"cpstats-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("scrapers/codeforces")

const BaseUrl = "https://codeforces.com/api"

const Color = "text-amber-500"

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

	telemetry.InstrumentResty(client, "scrapers/codeforces/http")

	return &Client{http: client}
}

type userInfo struct {
	Rating    int `json:"rating"`
	MaxRating int `json:"maxRating"`
}

type ratingChange struct {
	ContestName             string `json:"contestName"`
	Rank                    int    `json:"rank"`
	OldRating               int    `json:"oldRating"`
	NewRating               int    `json:"newRating"`
	RatingUpdateTimeSeconds int64  `json:"ratingUpdateTimeSeconds"`
}

type submission struct {
	Verdict string `json:"verdict"`
	Problem struct {
		Name string `json:"name"`
	} `json:"problem"`
}

// Fetch aggregates user.info, user.rating and user.status for one
// handle. Each upstream call degrades independently: a failed call
// contributes zeros while the rest of the record is still filled in.
func (c *Client) Fetch(ctx context.Context, handle string) (platforms.Stats, error) {
	if handle == "" {
		return platforms.Stats{}, nil
	}

	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("handle", handle))

	var stats platforms.Stats

	info, err := c.userInfo(ctx, handle)
	if err != nil {
		slog.WarnContext(ctx, "codeforces user.info degraded", "handle", handle, "err", err)
	} else {
		stats.Rating = info.Rating
		stats.MaxRating = info.MaxRating
	}

	history, err := c.ratingHistory(ctx, handle)
	if err != nil {
		slog.WarnContext(ctx, "codeforces user.rating degraded", "handle", handle, "err", err)
	} else {
		stats.Contests, stats.Changes, stats.LatestContest = ratingStats(history)
	}

	solved, err := c.solvedCount(ctx, handle)
	if err != nil {
		slog.WarnContext(ctx, "codeforces user.status degraded", "handle", handle, "err", err)
	} else {
		stats.Solved = solved
	}

	stats.Badge = badgeFor(stats.Rating)
	return stats, nil
}

func (c *Client) userInfo(ctx context.Context, handle string) (userInfo, error) {
	var out struct {
		Status string     `json:"status"`
		Result []userInfo `json:"result"`
	}
	err := c.call(ctx, "/user.info", map[string]string{"handles": handle}, &out)
	if err != nil {
		return userInfo{}, err
	}
	if out.Status != "OK" || len(out.Result) == 0 {
		return userInfo{}, fmt.Errorf("user.info returned status %q", out.Status)
	}
	return out.Result[0], nil
}

func (c *Client) ratingHistory(ctx context.Context, handle string) ([]ratingChange, error) {
	var out struct {
		Status string         `json:"status"`
		Result []ratingChange `json:"result"`
	}
	err := c.call(ctx, "/user.rating", map[string]string{"handle": handle}, &out)
	if err != nil {
		return nil, err
	}
	if out.Status != "OK" {
		return nil, fmt.Errorf("user.rating returned status %q", out.Status)
	}
	return out.Result, nil
}

func (c *Client) solvedCount(ctx context.Context, handle string) (int, error) {
	var out struct {
		Status string       `json:"status"`
		Result []submission `json:"result"`
	}
	err := c.call(ctx, "/user.status", map[string]string{"handle": handle}, &out)
	if err != nil {
		return 0, err
	}
	if out.Status != "OK" {
		return 0, fmt.Errorf("user.status returned status %q", out.Status)
	}
	return countSolved(out.Result), nil
}

func (c *Client) call(ctx context.Context, method string, params map[string]string, out any) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(method)
	if err != nil {
		return err
	}
	return json.Unmarshal(res.Body(), out)
}

// the rating history list is ascending by update time; the suffix
// window is what keeps deltas anchored to the most recent contests
func ratingStats(history []ratingChange) (contests int, changes []string, latest *platforms.Highlight) {
	if len(history) == 0 {
		return 0, nil, nil
	}

	contests = len(history)

	window := history
	if len(window) > 5 {
		window = window[len(window)-5:]
	}
	changes = []string{}
	for _, r := range window {
		changes = append(changes, platforms.FormatDelta(r.NewRating-r.OldRating))
	}

	last := history[len(history)-1]
	latest = &platforms.Highlight{
		Name:  last.ContestName,
		Rank:  fmt.Sprintf("%d", last.Rank),
		Delta: platforms.FormatDelta(last.NewRating - last.OldRating),
		Date:  "recently",
		Color: Color,
		Ts:    last.RatingUpdateTimeSeconds,
	}
	return contests, changes, latest
}

func countSolved(subs []submission) int {
	accepted := map[string]bool{}
	for _, sub := range subs {
		if sub.Verdict == "OK" {
			accepted[sub.Problem.Name] = true
		}
	}
	return len(accepted)
}

func badgeFor(rating int) string {
	switch {
	case rating >= 1600:
		return "Expert"
	case rating >= 1400:
		return "Specialist"
	case rating > 0:
		return "Pupil"
	default:
		return "Newbie"
	}
}
