package commands

import (
	"fmt"
	"hrtools/lib/horsestore"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var (
	scrapeDb          string
	scrapeConcurrency int
	scrapeFoals       bool
	scrapeQuiet       bool
)

func init() {
	flags := scrapeCmd.Flags()
	flags.StringVar(&scrapeDb, "db", "horses.db", "The sqlite archive to write to.")
	flags.IntVar(&scrapeConcurrency, "concurrency", 2, "How many horses to fetch at once.")
	flags.BoolVar(&scrapeFoals, "foals", false, "Also archive the foals shown on dams' pages.")
	flags.BoolVarP(&scrapeQuiet, "quiet", "q", false, "Do not draw a progress bar.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <lifenumber or url>...",
	Short: "Fetches horses and archives them in a sqlite database.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lifenumbers := make([]int, 0, len(args))
		for _, arg := range args {
			lifenumber, err := parseLifenumber(arg)
			if err != nil {
				return err
			}
			lifenumbers = append(lifenumbers, lifenumber)
		}

		ctx := cmd.Context()
		store, err := horsestore.Open(ctx, scrapeDb)
		if err != nil {
			return err
		}
		defer store.Close()

		c, err := setupClients()
		if err != nil {
			return err
		}
		defer c.Close()

		opts := horsestore.ScrapeOptions{
			Concurrency: scrapeConcurrency,
			Foals:       scrapeFoals,
		}
		var progress *mpb.Progress
		var bar *mpb.Bar
		if !scrapeQuiet {
			progress = mpb.NewWithContext(ctx, mpb.WithWidth(48), mpb.WithOutput(os.Stderr))
			bar = progress.AddBar(
				int64(len(lifenumbers)),
				mpb.PrependDecorators(
					decor.Name("horses "),
					decor.CountersNoUnit("%d / %d"),
				),
				mpb.AppendDecorators(
					decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO), "done"),
				),
			)
			opts.Progress = bar.Increment
		}

		summary, err := horsestore.Scrape(ctx, c.view, store, lifenumbers, opts)
		if progress != nil {
			if err != nil {
				bar.Abort(false)
			}
			progress.Wait()
		}
		slog.Info("scrape finished", "stored", summary.Stored, "failed", summary.Failed, "db", scrapeDb)
		if err != nil {
			return fmt.Errorf("scrape interrupted: %w", err)
		}
		return nil
	},
}
