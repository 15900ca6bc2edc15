package leetcode

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"cpstats-backend/lib/platforms"
	"cpstats-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("scrapers/leetcode")

const BaseUrl = "https://leetcode.com"

const Color = "text-emerald-500"

// users without a contest ranking badge get the entry tier
const defaultBadge = "Knight"

const solvedQuery = `query getUserProfile($username: String!) { matchedUser(username: $username) { submitStats { acSubmissionNum { count difficulty } } } }`

const contestQuery = `query userContestRankingInfo($username: String!) { userContestRanking(username: $username) { rating topPercentage badge { name } } userContestRankingHistory(username: $username) { attended rating contest { title startTime } } }`

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

	telemetry.InstrumentResty(client, "scrapers/leetcode/http")

	return &Client{http: client}
}

type solvedData struct {
	MatchedUser *struct {
		SubmitStats struct {
			AcSubmissionNum []struct {
				Count      int    `json:"count"`
				Difficulty string `json:"difficulty"`
			} `json:"acSubmissionNum"`
		} `json:"submitStats"`
	} `json:"matchedUser"`
}

type historyEntry struct {
	Attended *bool   `json:"attended"`
	Rating   float64 `json:"rating"`
	Contest  struct {
		Title     string `json:"title"`
		StartTime int64  `json:"startTime"`
	} `json:"contest"`
}

type contestData struct {
	UserContestRanking *struct {
		Rating float64 `json:"rating"`
		Badge  *struct {
			Name string `json:"name"`
		} `json:"badge"`
	} `json:"userContestRanking"`
	UserContestRankingHistory []historyEntry `json:"userContestRankingHistory"`
}

func (c *Client) Fetch(ctx context.Context, handle string) (platforms.Stats, error) {
	if handle == "" {
		return platforms.Stats{}, nil
	}

	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("handle", handle))

	stats := platforms.Stats{Badge: defaultBadge}

	var solved solvedData
	err := c.graphql(ctx, solvedQuery, handle, &solved)
	if err != nil {
		slog.WarnContext(ctx, "leetcode solved query degraded", "handle", handle, "err", err)
	} else if solved.MatchedUser != nil && len(solved.MatchedUser.SubmitStats.AcSubmissionNum) > 0 {
		// index 0 is the "All" difficulty bucket
		stats.Solved = solved.MatchedUser.SubmitStats.AcSubmissionNum[0].Count
	}

	var contest contestData
	err = c.graphql(ctx, contestQuery, handle, &contest)
	if err != nil {
		slog.WarnContext(ctx, "leetcode contest query degraded", "handle", handle, "err", err)
		return stats, nil
	}

	if contest.UserContestRanking != nil {
		stats.Rating = int(contest.UserContestRanking.Rating)
		if contest.UserContestRanking.Badge != nil {
			stats.Badge = contest.UserContestRanking.Badge.Name
		}
	}
	// the contest API exposes no historical max, so max mirrors the
	// live rating; downstream tolerates max < rating from elsewhere
	stats.MaxRating = stats.Rating
	stats.Contests, stats.Changes, stats.LatestContest = contestStats(contest.UserContestRankingHistory)
	return stats, nil
}

// graphql posts a single operation and unwraps the data envelope.
func (c *Client) graphql(ctx context.Context, query, username string, out any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": map[string]string{"username": username},
	})
	if err != nil {
		return err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetBody(body).
		Post("/graphql")
	if err != nil {
		return err
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	err = json.Unmarshal(res.Body(), &envelope)
	if err != nil {
		return err
	}
	return json.Unmarshal(envelope.Data, out)
}

// contestStats reduces a chronologically ascending contest ranking
// history to the fields the unified record carries. Entries the user
// skipped (not attended, zero rating) are dropped first.
func contestStats(history []historyEntry) (contests int, changes []string, latest *platforms.Highlight) {
	attended := []historyEntry{}
	for _, h := range history {
		if (h.Attended == nil || *h.Attended) || h.Rating > 0 {
			attended = append(attended, h)
		}
	}
	if len(attended) == 0 {
		return 0, nil, nil
	}

	contests = len(attended)

	ratings := make([]int, len(attended))
	for i, h := range attended {
		ratings[i] = int(math.Round(h.Rating))
	}
	changes = platforms.DeltasFromRatings(ratings)
	if len(changes) > 5 {
		changes = changes[len(changes)-5:]
	}

	lastDelta := 0
	if len(ratings) > 1 {
		lastDelta = ratings[len(ratings)-1] - ratings[len(ratings)-2]
	}
	last := attended[len(attended)-1]
	latest = &platforms.Highlight{
		Name:  last.Contest.Title,
		Rank:  "Rank Hidden",
		Delta: platforms.FormatDelta(lastDelta),
		Date:  "recently",
		Color: Color,
		Ts:    last.Contest.StartTime,
	}
	return contests, changes, latest
}
