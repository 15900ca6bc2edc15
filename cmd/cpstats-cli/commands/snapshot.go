package commands

import (
	"fmt"
	"os"

	"cpstats-backend/lib/configutil"
	"cpstats-backend/lib/serviceutil"
	"cpstats-backend/services/cpstats"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type Config struct {
	Accounts        cpstats.Accounts `json:"accounts"`
	FirecrawlApiKey string           `json:"firecrawl_api_key"`
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <main|alt>",
	Short: "Aggregates a full live snapshot for one identity, bypassing the cache.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		identity := cpstats.Identity(args[0])
		if identity != cpstats.IdentityMain && identity != cpstats.IdentityAlt {
			fmt.Fprintf(os.Stderr, "unknown identity '%s', expected main or alt\n", args[0])
			os.Exit(1)
		}

		cfg, err := configutil.ReadRecursively[Config]("config.json5")
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		agg := cpstats.NewAggregator(cfg.Accounts, newFetchers(cfg.FirecrawlApiKey))
		snapshot := agg.Snapshot(cmd.Context(), identity)

		overall := table.NewWriter()
		overall.SetOutputMirror(os.Stdout)
		overall.AppendHeader(table.Row{"Solved", "Contests", "Peak Rating"})
		overall.AppendRow(table.Row{
			snapshot.OverallStats.TotalSolved,
			snapshot.OverallStats.TotalContests,
			snapshot.OverallStats.PeakRating,
		})
		overall.SetStyle(table.StyleRounded)
		overall.Render()

		reviews := table.NewWriter()
		reviews.SetOutputMirror(os.Stdout)
		reviews.AppendHeader(table.Row{"Platform", "Score", "Rating", "Badge"})
		for _, review := range snapshot.PlatformReviews {
			reviews.AppendRow(table.Row{review.Name, review.Score, review.RawRating, review.Badge})
		}
		reviews.SetStyle(table.StyleRounded)
		reviews.Render()

		for _, h := range snapshot.ContestHighlights {
			fmt.Printf("%s: rank %s, delta %s (%s)\n", h.Name, h.Rank, h.Delta, h.Date)
		}
	},
}
