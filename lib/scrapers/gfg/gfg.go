package gfg

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cpstats-backend/lib/platforms"
	"cpstats-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/gfg")

const BaseUrl = "https://api.firecrawl.dev"

const ProfileUrl = "https://www.geeksforgeeks.org/profile/"

// GFG has no usable public API; the profile page is rendered
// client-side, so extraction goes through the firecrawl scrape API.
// Calls are billed per page, hence the memoization below.
type Client struct {
	http   *resty.Client
	apiKey string
	memo   *expirable.LRU[string, int]
}

func NewClient(baseUrl, apiKey string) *Client {
	if baseUrl == "" {
		baseUrl = BaseUrl
	}
	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/gfg/http")

	return &Client{
		http:   client,
		apiKey: apiKey,
		memo:   expirable.NewLRU[string, int](256, nil, time.Hour),
	}
}

// Fetch extracts the solved-problem count for a profile. Without an
// api key the adapter is unconfigured and reports the zero record.
// GFG carries no rating or contest concept in this pipeline.
func (c *Client) Fetch(ctx context.Context, handle string) (platforms.Stats, error) {
	if handle == "" || c.apiKey == "" {
		return platforms.Stats{}, nil
	}

	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("handle", handle))

	if solved, hit := c.memo.Get(handle); hit {
		span.SetAttributes(attribute.Bool("memoized", true))
		return solvedStats(solved), nil
	}

	body := map[string]any{
		"url":     ProfileUrl + handle,
		"formats": []string{"extract"},
		"extract": map[string]any{
			"schema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"total_problems_solved": map[string]any{"type": "integer"},
				},
			},
		},
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetHeader("content-type", "application/json").
		SetBody(body).
		Post("/v1/scrape")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to call scrape api")
		return platforms.Stats{}, err
	}

	solved, err := parseScrapeResponse(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse scrape response")
		return platforms.Stats{}, err
	}

	c.memo.Add(handle, solved)
	return solvedStats(solved), nil
}

func parseScrapeResponse(body []byte) (int, error) {
	var out struct {
		Success bool `json:"success"`
		Data    struct {
			Extract struct {
				TotalProblemsSolved int `json:"total_problems_solved"`
			} `json:"extract"`
		} `json:"data"`
	}
	err := json.Unmarshal(body, &out)
	if err != nil {
		return 0, err
	}
	if !out.Success {
		return 0, fmt.Errorf("scrape api reported failure")
	}
	return out.Data.Extract.TotalProblemsSolved, nil
}

func solvedStats(solved int) platforms.Stats {
	return platforms.Stats{
		Solved:  solved,
		Changes: []string{},
		Badge:   "Active",
	}
}
