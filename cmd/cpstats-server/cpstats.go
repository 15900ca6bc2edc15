package main

import (
	"context"
	"net/http"
	"time"

	configlibsql "cpstats-backend/lib/configutil/libsql"
	"cpstats-backend/lib/platforms"
	"cpstats-backend/lib/scrapers/atcoder"
	"cpstats-backend/lib/scrapers/codechef"
	"cpstats-backend/lib/scrapers/codeforces"
	"cpstats-backend/lib/scrapers/gfg"
	"cpstats-backend/lib/scrapers/leetcode"
	"cpstats-backend/lib/serviceutil"
	"cpstats-backend/services/cpstats"
	"cpstats-backend/services/cpstats/db"
)

type CpstatsConfig struct {
	Database configlibsql.Struct `json:"database"`
	Accounts cpstats.Accounts    `json:"accounts"`
	// firecrawl key for the GFG adapter, optional
	FirecrawlApiKey string `json:"firecrawl_api_key"`
	// e.g. "6h", empty disables background refresh
	RefreshInterval string `json:"refresh_interval"`
}

func InitCpstats(ctx context.Context, config CpstatsConfig, mux *http.ServeMux) {
	database, err := config.Database.OpenDB(db.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open cpstats database", err)
	}

	codechefClient, err := codechef.NewClient("")
	if err != nil {
		serviceutil.Fatal("failed to create codechef client", err)
	}

	fetchers := map[platforms.Platform]platforms.Fetcher{
		platforms.Codeforces: codeforces.NewClient(""),
		platforms.LeetCode:   leetcode.NewClient(""),
		platforms.CodeChef:   codechefClient,
		platforms.AtCoder:    atcoder.NewClient(""),
		platforms.GFG:        gfg.NewClient("", config.FirecrawlApiKey),
	}

	service := cpstats.NewService(database, cpstats.NewAggregator(config.Accounts, fetchers))
	service.Register(mux)

	if config.RefreshInterval != "" {
		interval, err := time.ParseDuration(config.RefreshInterval)
		if err != nil {
			serviceutil.Fatal("failed to parse refresh_interval", err)
		}
		service.StartRefreshDaemon(ctx, interval)
	}
}
