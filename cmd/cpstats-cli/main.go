package main

import (
	"context"

	"cpstats-backend/cmd/cpstats-cli/commands"
	"cpstats-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "cpstats-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
