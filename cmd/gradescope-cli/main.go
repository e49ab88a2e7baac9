package main

import (
	"gradescope-api/cmd/gradescope-cli/commands"
	"gradescope-api/lib/serviceutil"
	"gradescope-api/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "gradescope-cli")
	telemetry.InitSlog(true)
	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
