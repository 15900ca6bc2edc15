package codechef

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/cookiejar"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cpstats-backend/lib/htmlutil"
	"cpstats-backend/lib/platforms"
	"cpstats-backend/lib/telemetry"
	"cpstats-backend/lib/timezone"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/codechef")

const BaseUrl = "https://www.codechef.com"

const Color = "text-purple-500"

type Client struct {
	http *resty.Client
}

func NewClient(baseUrl string) (*Client, error) {
	if baseUrl == "" {
		baseUrl = BaseUrl
	}
	client := resty.New()
	client.SetBaseURL(baseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	// the profile pages sit behind cloudflare
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 10)

	telemetry.InstrumentResty(client, "scrapers/codechef/http")

	return &Client{http: client}, nil
}

func (c *Client) Fetch(ctx context.Context, handle string) (platforms.Stats, error) {
	if handle == "" {
		return platforms.Stats{}, nil
	}

	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("handle", handle))

	res, err := c.http.R().
		SetContext(ctx).
		Get("/users/" + handle)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch profile page")
		return platforms.Stats{}, err
	}

	stats, err := parseProfile(res.Body(), timezone.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse profile page")
		return platforms.Stats{}, err
	}
	return stats, nil
}

// the profile page embeds the full rating history as a javascript
// literal; there is no public endpoint for it
var allRatingRegex = regexp.MustCompile(`var all_rating = (\[.*?\]);`)

var digitsRegex = regexp.MustCompile(`\d+`)

type historyEntry struct {
	Name     string `json:"name"`
	Rating   string `json:"rating"`
	Rank     string `json:"rank"`
	Getmonth string `json:"getmonth"`
	Getyear  string `json:"getyear"`
}

func parseProfile(body []byte, now time.Time) (platforms.Stats, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return platforms.Stats{}, err
	}

	var stats platforms.Stats
	stats.Changes = []string{}

	// "1616?" when a provisional marker is attached
	ratingText := htmlutil.CleanText(doc.Find("div.rating-number").First().Text())
	ratingText = strings.TrimSpace(strings.Split(ratingText, "?")[0])
	stats.Rating, _ = strconv.Atoi(ratingText)

	doc.Find("h5").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := htmlutil.GetText(sel.Nodes[0])
		if !strings.Contains(text, "Fully Solved") {
			return true
		}
		if m := digitsRegex.FindString(text); m != "" {
			stats.Solved, _ = strconv.Atoi(m)
		}
		return false
	})

	stats.Badge = htmlutil.CleanText(doc.Find("span.rating").First().Text())
	if stats.Badge == "" {
		stats.Badge = "1 Star"
	}

	stats.MaxRating = stats.Rating

	match := allRatingRegex.FindSubmatch(body)
	if match == nil {
		return stats, nil
	}
	var history []historyEntry
	err = json.Unmarshal(match[1], &history)
	if err != nil {
		// a malformed history blob loses the contest fields only
		return stats, nil
	}

	stats.Contests = len(history)
	for _, h := range history {
		if r, err := strconv.Atoi(h.Rating); err == nil && r > stats.MaxRating {
			stats.MaxRating = r
		}
	}
	// successive entries carry no old-rating column, so per-contest
	// deltas stay empty for this platform
	if len(history) > 0 {
		last := history[len(history)-1]
		stats.LatestContest = &platforms.Highlight{
			Name:  last.Name,
			Rank:  last.Rank,
			Delta: last.Rating,
			Date:  fmt.Sprintf("%s %s", last.Getmonth, last.Getyear),
			Color: Color,
			Ts:    now.Unix(),
		}
	}
	return stats, nil
}
