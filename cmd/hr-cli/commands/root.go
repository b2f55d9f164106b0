package commands

import (
	"context"
	"fmt"
	"hrtools/lib/credstore"
	"hrtools/lib/telemetry"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	profile    string
	debug      bool
	dumpHttp   string
)

var rootCmd = &cobra.Command{
	Use:   "hr-cli",
	Short: "hr-cli reads horses, layers and the daily rollover from Horse Reality.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(debug)
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "hrtools.json5", "The config file to read, <name>.local.json5 next to it overrides it.")
	flags.StringVar(&profile, "profile", credstore.DefaultProfile, "The keyring profile holding the remember credential.")
	flags.BoolVarP(&debug, "debug", "d", false, "Log debug output.")
	flags.StringVar(&dumpHttp, "dump-http", "", "Write every http exchange to this directory.")
}

// instrumentProcess reports process stats for long running commands, a
// failure only costs the metrics.
func instrumentProcess(ctx context.Context) func() {
	stats, err := telemetry.InstrumentProcess(ctx)
	if err != nil {
		slog.Warn("failed to instrument process stats", "err", err)
		return func() {}
	}
	return func() {
		rss, cpu, err := stats.Sample(context.Background())
		if err == nil {
			slog.Info("process stats", "rss_bytes", rss, "cpu_percent", cpu)
		}
		err = stats.Stop()
		if err != nil {
			slog.Warn("failed to stop process stats", "err", err)
		}
	}
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
