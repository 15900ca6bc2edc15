package platforms

import (
	"context"
	"strconv"
)

type Platform string

const (
	Codeforces Platform = "Codeforces"
	LeetCode   Platform = "LeetCode"
	CodeChef   Platform = "CodeChef"
	AtCoder    Platform = "AtCoder"
	GFG        Platform = "GFG"
)

// All lists every supported platform in declaration order.
var All = []Platform{Codeforces, LeetCode, CodeChef, AtCoder, GFG}

// Highlight is the most recent rated contest a platform reported for a
// handle. Ts is a best-effort sort key: platforms that expose no event
// timestamp get the wall clock at fetch time substituted instead, so
// ordering across platforms is approximate.
type Highlight struct {
	Name  string `json:"name"`
	Rank  string `json:"rank"`
	Delta string `json:"delta"`
	Date  string `json:"date"`
	Color string `json:"color"`
	Ts    int64  `json:"ts"`
}

// Stats is the normalized per-platform, per-handle record every
// fetcher produces. The zero value doubles as the canonical
// "not configured / fully degraded" record.
//
// MaxRating >= Rating is NOT guaranteed: some platforms report a live
// rating alongside a separately computed (possibly stale) max.
type Stats struct {
	Rating    int
	MaxRating int
	Solved    int
	Contests  int
	// signed delta strings for the most recent rated contests,
	// most recent last, at most 5 entries
	Changes       []string
	Badge         string
	LatestContest *Highlight
}

// Fetcher is the uniform capability every platform adapter exposes.
//
// An empty handle must return the zero Stats with a nil error and no
// network traffic. Failures of individual upstream calls degrade that
// call's contribution inside the adapter; only a total fetch failure
// surfaces as an error, which callers are expected to collapse back
// to the zero record.
type Fetcher interface {
	Fetch(ctx context.Context, handle string) (Stats, error)
}

// FormatDelta renders a rating difference the way the site widgets
// expect: "+N" when positive, plain decimal otherwise (0 is "0").
func FormatDelta(diff int) string {
	if diff > 0 {
		return "+" + strconv.Itoa(diff)
	}
	return strconv.Itoa(diff)
}

// DeltasFromRatings computes successive rating differences over the
// suffix of a chronologically ascending rating list. Only the last 6
// entries participate, so the result holds at most 5 deltas.
func DeltasFromRatings(ratings []int) []string {
	const window = 6
	if len(ratings) > window {
		ratings = ratings[len(ratings)-window:]
	}

	changes := []string{}
	for i := 1; i < len(ratings); i++ {
		changes = append(changes, FormatDelta(ratings[i]-ratings[i-1]))
	}
	return changes
}
