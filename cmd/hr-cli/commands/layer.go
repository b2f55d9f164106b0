package commands

import (
	"context"
	"fmt"
	"hrtools/lib/scrapers/horsereality/view"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	layerSize string
	layerOut  string
)

func init() {
	layerCmd.Flags().StringVar(&layerSize, "size", "", "Size to download: small, medium or large. Defaults to the size in the url.")
	layerCmd.Flags().StringVarP(&layerOut, "out", "o", ".", "Directory to write the pngs to.")
	rootCmd.AddCommand(layerCmd)
}

type layerReader interface {
	CreateLayer(url string) (view.Layer, error)
	ReadLayer(ctx context.Context, layer view.Layer, size view.Size) ([]byte, error)
}

func layerFilename(layer view.Layer, size view.Size) string {
	if size == "" {
		size = layer.Size
	}
	return fmt.Sprintf("%s_%s_%s_%s_%s.png", layer.Category, layer.HorseType, layer.BodyPart, size, layer.ID)
}

// saveLayers downloads every layer url into `dir`, returning the written paths.
func saveLayers(ctx context.Context, fs afero.Fs, dir string, reader layerReader, urls []string, size view.Size) ([]string, error) {
	err := fs.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, url := range urls {
		layer, err := reader.CreateLayer(url)
		if err != nil {
			return written, err
		}
		data, err := reader.ReadLayer(ctx, layer, size)
		if err != nil {
			return written, err
		}

		path := filepath.Join(dir, layerFilename(layer, size))
		err = afero.WriteFile(fs, path, data, 0644)
		if err != nil {
			return written, err
		}
		slog.Info("wrote layer", "path", path, "bytes", len(data))
		written = append(written, path)
	}
	return written, nil
}

var layerCmd = &cobra.Command{
	Use:   "layer <layer url>...",
	Short: "Downloads image layers.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		size := view.Size(layerSize)
		if size != "" && size != view.SizeSmall && size != view.SizeMedium && size != view.SizeLarge {
			return fmt.Errorf("unknown size %q", layerSize)
		}

		c, err := setupClients()
		if err != nil {
			return err
		}
		defer c.Close()

		_, err = saveLayers(cmd.Context(), afero.NewOsFs(), layerOut, c.view, args, size)
		return err
	},
}
