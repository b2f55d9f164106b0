package main

import (
	"context"
	"errors"
	"hrtools/cmd/hr-cli/commands"
	"hrtools/lib/serviceutil"
	"hrtools/lib/telemetry"
	"log/slog"
	"os"
)

func main() {
	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "hr-cli")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to setup telemetry", "err", err)
	}
	defer tel.Shutdown(context.Background())

	commands.ExecuteContext(ctx)
}
