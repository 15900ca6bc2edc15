package main

import (
	"context"
	"log/slog"

	"cpstats-backend/lib/serviceutil"
	"cpstats-backend/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	_, err := telemetry.SetupFromEnv(ctx, "cpstats-server")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		err := telemetry.Shutdown(context.Background())
		if err != nil {
			slog.Error("failed to shutdown telemetry", "err", err)
		}
	}()

	telemetry.InstrumentPerfStats(ctx)
}
