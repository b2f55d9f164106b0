package view

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

type LayerCategory string

const (
	CategoryColours LayerCategory = "colours"
	CategoryWhites  LayerCategory = "whites"
)

func parseCategory(value string) (LayerCategory, error) {
	switch value {
	case "colours", "colors":
		return CategoryColours, nil
	case "whites":
		return CategoryWhites, nil
	}
	return "", fmt.Errorf("unknown layer category %q", value)
}

type BodyPart string

const (
	BodyBody BodyPart = "body"
	BodyMane BodyPart = "mane"
	BodyTail BodyPart = "tail"
)

type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

func (s Size) valid() bool {
	return s == SizeSmall || s == SizeMedium || s == SizeLarge
}

// horse types as they appear in layer paths
const (
	HorseTypeMares     = "mares"
	HorseTypeStallions = "stallions"
	HorseTypeFoals     = "foals"
)

const siteOrigin = "https://www.horsereality.com"

var layerPathRegex = regexp.MustCompile(`^(?:https://(?:(?:www|v2)\.)?horsereality\.com)?(/upload/[a-z]+/[a-z]+/[a-z]+/[a-z]+/[a-z0-9]+)\.png$`)

// layerUrlRegex finds layer urls inside markup, blank placeholders live
// outside /upload and never match.
var layerUrlRegex = regexp.MustCompile(`/upload/[a-z]+/[a-z]+/[a-z]+/[a-z]+/[a-z0-9]+\.png`)

// Layer is one image of the stack that makes up a horse's picture. Ids are
// not unique across categories or body parts.
type Layer struct {
	Category  LayerCategory `json:"type"`
	HorseType string        `json:"horse_type"`
	BodyPart  BodyPart      `json:"body_part"`
	Size      Size          `json:"size"`
	ID        string        `json:"id"`
}

// ParseLayer reads a layer from its url, which may be a path or an
// absolute url on the site.
func ParseLayer(url string) (Layer, error) {
	match := layerPathRegex.FindStringSubmatch(url)
	if match == nil || match[1] == "" {
		return Layer{}, fmt.Errorf("invalid layer url %q", url)
	}
	// "", "upload", category, horse type, body part, size, id
	parts := strings.Split(match[1], "/")

	category, err := parseCategory(parts[2])
	if err != nil {
		return Layer{}, err
	}
	size := Size(parts[5])
	if !size.valid() {
		return Layer{}, fmt.Errorf("unknown layer size %q", parts[5])
	}
	return Layer{
		Category:  category,
		HorseType: parts[3],
		BodyPart:  BodyPart(parts[4]),
		Size:      size,
		ID:        parts[6],
	}, nil
}

func (l Layer) String() string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", l.Category, l.HorseType, l.BodyPart, l.Size, l.ID)
}

// Path returns the path of the layer in `size`, the empty size is the
// layer's own.
func (l Layer) Path(size Size) (string, error) {
	if size == "" {
		size = l.Size
	}
	if !size.valid() {
		return "", fmt.Errorf("unknown layer size %q", size)
	}
	return fmt.Sprintf("/upload/%s/%s/%s/%s/%s.png", l.Category, l.HorseType, l.BodyPart, size, l.ID), nil
}

func (l Layer) URL(size Size) (string, error) {
	path, err := l.Path(size)
	if err != nil {
		return "", err
	}
	return siteOrigin + path, nil
}

type LayerReader interface {
	ReadLayer(ctx context.Context, path string) ([]byte, error)
}

// Read downloads the png of the layer in `size`.
func (l Layer) Read(ctx context.Context, reader LayerReader, size Size) ([]byte, error) {
	path, err := l.Path(size)
	if err != nil {
		return nil, err
	}
	return reader.ReadLayer(ctx, path)
}

// layersFromMarkup parses every layer url found in `markup`, in order.
func layersFromMarkup(markup string) ([]Layer, error) {
	urls := layerUrlRegex.FindAllString(markup, -1)
	out := make([]Layer, 0, len(urls))
	for _, u := range urls {
		layer, err := ParseLayer(u)
		if err != nil {
			return nil, err
		}
		out = append(out, layer)
	}
	return out, nil
}
