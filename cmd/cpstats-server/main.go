package main

import (
	"flag"
	"net/http"

	"cpstats-backend/lib/configutil"
	"cpstats-backend/lib/serviceutil"
)

type Config struct {
	Port    int           `json:"port"`
	Cpstats CpstatsConfig `json:"cpstats"`
}

func main() {
	verbose := flag.Bool("v", false, "enable verbose logging")
	flag.Parse()

	ctx := serviceutil.SignalContext()
	InitTelemetry(ctx, *verbose)

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config.json5", err)
	}

	mux := http.NewServeMux()
	InitCpstats(ctx, config.Cpstats, mux)

	port := config.Port
	if port == 0 {
		port = 8000
	}
	serviceutil.StartHttpServer(port, mux)
}
