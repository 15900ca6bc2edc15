package commands

import (
	"fmt"
	"os"
	"strings"

	"cpstats-backend/lib/platforms"
	"cpstats-backend/lib/scrapers/atcoder"
	"cpstats-backend/lib/scrapers/codechef"
	"cpstats-backend/lib/scrapers/codeforces"
	"cpstats-backend/lib/scrapers/gfg"
	"cpstats-backend/lib/scrapers/leetcode"
	"cpstats-backend/lib/serviceutil"

	"github.com/antzucaro/matchr"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var fetchApiKey *string

func init() {
	fetchApiKey = fetchCmd.Flags().String("firecrawl-key", "", "The firecrawl api key, only needed for gfg.")
	rootCmd.AddCommand(fetchCmd)
}

func newFetchers(firecrawlApiKey string) map[platforms.Platform]platforms.Fetcher {
	codechefClient, err := codechef.NewClient("")
	if err != nil {
		serviceutil.Fatal("failed to create codechef client", err)
	}
	return map[platforms.Platform]platforms.Fetcher{
		platforms.Codeforces: codeforces.NewClient(""),
		platforms.LeetCode:   leetcode.NewClient(""),
		platforms.CodeChef:   codechefClient,
		platforms.AtCoder:    atcoder.NewClient(""),
		platforms.GFG:        gfg.NewClient("", firecrawlApiKey),
	}
}

// resolvePlatform matches a case-insensitive platform name, suggesting
// the closest known one on a miss.
func resolvePlatform(name string) (platforms.Platform, error) {
	var closest platforms.Platform
	var closestSim float64
	for _, platform := range platforms.All {
		if strings.EqualFold(name, string(platform)) {
			return platform, nil
		}
		sim := matchr.JaroWinkler(strings.ToLower(name), strings.ToLower(string(platform)), false)
		if sim > closestSim {
			closestSim = sim
			closest = platform
		}
	}
	return "", fmt.Errorf("unknown platform '%s', did you mean '%s'?", name, closest)
}

func renderStats(platform platforms.Platform, stats platforms.Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Platform", "Rating", "Max", "Solved", "Contests", "Badge", "Changes"})
	t.AppendRow(table.Row{
		platform,
		stats.Rating,
		stats.MaxRating,
		stats.Solved,
		stats.Contests,
		stats.Badge,
		strings.Join(stats.Changes, " "),
	})
	t.SetStyle(table.StyleRounded)
	t.Render()

	if stats.LatestContest != nil {
		h := stats.LatestContest
		fmt.Printf("latest contest: %s (rank %s, delta %s, %s)\n", h.Name, h.Rank, h.Delta, h.Date)
	}
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <platform> <handle>",
	Short: "Fetches live stats for a single handle from one platform.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		platform, err := resolvePlatform(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		fetchers := newFetchers(*fetchApiKey)
		stats, err := fetchers[platform].Fetch(cmd.Context(), args[1])
		if err != nil {
			serviceutil.Fatal("failed to fetch stats", err)
		}
		renderStats(platform, stats)
	},
}
