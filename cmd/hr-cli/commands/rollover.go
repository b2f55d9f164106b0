package commands

import (
	"context"
	"hrtools/lib/chrono"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

var rolloverDaily bool

func init() {
	rolloverCmd.Flags().BoolVar(&rolloverDaily, "daily", false, "Keep running and complete the rollover every day after midnight game time.")
	rootCmd.AddCommand(rolloverCmd)
}

var rolloverCmd = &cobra.Command{
	Use:   "rollover [--daily]",
	Short: "Completes the daily rollover.",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := setupClients()
		if err != nil {
			return err
		}
		defer c.Close()

		ctx := cmd.Context()
		err = c.core.Rollover(ctx)
		if err != nil {
			return err
		}
		slog.Info("rollover done")
		if !rolloverDaily {
			return nil
		}

		stop := instrumentProcess(ctx)
		defer stop()

		cron := chrono.NewStandardCron()
		defer cron.Stop()

		err = cron.Cron(chrono.DailyRolloverSpec, func() {
			ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			defer cancel()
			err := c.core.Rollover(ctx)
			if err != nil {
				slog.Error("daily rollover failed", "err", err)
				return
			}
			slog.Info("daily rollover done")
		})
		if err != nil {
			return err
		}

		slog.Info("waiting for the next rollover", "at", chrono.NextRollover(chrono.StandardImpl{}.Now()))
		<-ctx.Done()
		return nil
	},
}
