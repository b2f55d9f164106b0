package commands

import (
	"context"
	"errors"
	"hrtools/lib/scrapers/horsereality/view"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type fakeLayers struct {
	reads []view.Size
}

func (f *fakeLayers) CreateLayer(url string) (view.Layer, error) {
	if url == "bad" {
		return view.Layer{}, errors.New("not a layer url")
	}
	return view.Layer{
		Category:  view.CategoryColours,
		HorseType: "mares",
		BodyPart:  view.BodyMane,
		Size:      view.SizeLarge,
		ID:        url,
	}, nil
}

func (f *fakeLayers) ReadLayer(ctx context.Context, layer view.Layer, size view.Size) ([]byte, error) {
	f.reads = append(f.reads, size)
	return []byte("png:" + layer.ID), nil
}

func TestSaveLayers(t *testing.T) {
	fs := afero.NewMemMapFs()
	reader := &fakeLayers{}

	written, err := saveLayers(context.Background(), fs, "/out", reader, []string{"a1", "b2"}, view.SizeSmall)
	require.NoError(t, err)
	require.Equal(t, []string{
		"/out/colours_mares_mane_small_a1.png",
		"/out/colours_mares_mane_small_b2.png",
	}, written)
	require.Equal(t, []view.Size{view.SizeSmall, view.SizeSmall}, reader.reads)

	data, err := afero.ReadFile(fs, written[1])
	require.NoError(t, err)
	require.Equal(t, "png:b2", string(data))
}

func TestSaveLayersKeepsUrlSize(t *testing.T) {
	fs := afero.NewMemMapFs()

	written, err := saveLayers(context.Background(), fs, "out", &fakeLayers{}, []string{"a1", "bad"}, "")
	require.Error(t, err)
	require.Equal(t, []string{"out/colours_mares_mane_large_a1.png"}, written)

	exists, err := afero.Exists(fs, written[0])
	require.NoError(t, err)
	require.True(t, exists)
}
