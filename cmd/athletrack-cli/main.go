package main

import (
	"context"

	"athletrack-backend/cmd/athletrack-cli/commands"
	"athletrack-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "athletrack-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
