package main

import (
	"context"
	"sunbridge-backend/cmd/sunbridge-cli/commands"
	"sunbridge-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "sunbridge-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
