package commands

import (
	"encoding/json"
	"fmt"
	"hrtools/lib/scrapers/horsereality/view"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	horseJson bool
	horseFoal bool
)

func init() {
	horseCmd.Flags().BoolVar(&horseJson, "json", false, "Print the horses as json.")
	horseCmd.Flags().BoolVar(&horseFoal, "foal", false, "Also fetch the foal shown on a dam's page.")
	rootCmd.AddCommand(horseCmd)
}

func parseLifenumber(arg string) (int, error) {
	if lifenumber, ok := view.LifenumberFromUrl(arg); ok {
		return lifenumber, nil
	}
	if view.IsSiteUrl(arg) {
		return 0, fmt.Errorf("%q is not a horse page", arg)
	}
	lifenumber, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil {
		return 0, fmt.Errorf("%q is neither a lifenumber nor a horse url", arg)
	}
	return lifenumber, nil
}

func renderHorses(horses []view.Horse) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Lifenumber", "Name", "Sex", "Breed", "Age", "Birthdate", "Owner", "Layers"})
	for _, h := range horses {
		breed := h.RawBreed
		if h.Breed == "" {
			breed += " (?)"
		}
		layers := make([]string, 0, len(h.Layers()))
		for _, l := range h.Layers() {
			layers = append(layers, l.String())
		}
		t.AppendRow(table.Row{
			h.Lifenumber, h.Name, h.Sex, breed, h.Age, h.Birthdate, h.Owner,
			strings.Join(layers, "\n"),
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

var horseCmd = &cobra.Command{
	Use:   "horse <lifenumber or url>...",
	Short: "Fetches and prints horses.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := setupClients()
		if err != nil {
			return err
		}
		defer c.Close()

		var horses []view.Horse
		for _, arg := range args {
			lifenumber, err := parseLifenumber(arg)
			if err != nil {
				return err
			}
			horse, err := c.view.GetHorse(cmd.Context(), lifenumber)
			if err != nil {
				return err
			}
			horses = append(horses, horse)

			if horseFoal && horse.FoalLifenumber != 0 {
				foal, err := c.view.FetchFoal(cmd.Context(), horse)
				if err != nil {
					return err
				}
				horses = append(horses, foal)
			}
		}

		if horseJson {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(horses)
		}
		renderHorses(horses)
		return nil
	},
}
