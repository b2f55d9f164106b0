package view

import (
	"bytes"
	"fmt"
	"hrtools/lib/chrono"
	"hrtools/lib/htmlutil"
	"hrtools/lib/scrapers/horsereality/core"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PageAlertError is an error the site shows in an alert box, it still
// answers such pages with 200.
type PageAlertError struct {
	Message string
}

func (e PageAlertError) Error() string {
	return fmt.Sprintf("horsereality: page alert: %s", e.Message)
}

type Horse struct {
	Lifenumber int    `json:"lifenumber"`
	Name       string `json:"name"`
	Sex        string `json:"sex"`
	// RawBreed is the breed as displayed, Breed is empty when it could not
	// be matched to a known breed.
	RawBreed   string `json:"raw_breed"`
	Breed      Breed  `json:"breed"`
	Age        string `json:"age"`
	Birthdate  string `json:"birthdate"`
	Height     string `json:"height"`
	Location   string `json:"location"`
	Owner      string `json:"owner"`
	Registry   string `json:"registry"`
	Predicates string `json:"predicates"`

	// LookingAt is "dam" or "foal" when the page shows both.
	LookingAt      string  `json:"looking_at,omitempty"`
	AdultLayers    []Layer `json:"adult_layers"`
	FoalLayers     []Layer `json:"foal_layers"`
	FoalLifenumber int     `json:"foal_lifenumber,omitempty"`
}

func (h Horse) MultipleOnPage() bool {
	return h.LookingAt != ""
}

func (h Horse) IsFoal() bool {
	return len(h.FoalLayers) > 0 &&
		(h.LookingAt == "foal" || len(h.AdultLayers) < 1)
}

// Layers returns the layers of whichever horse on the page is being looked at.
func (h Horse) Layers() []Layer {
	if h.IsFoal() {
		return h.FoalLayers
	}
	return h.AdultLayers
}

// BirthdateTime parses the day-month-year birthdate, in game time.
func (h Horse) BirthdateTime() (time.Time, error) {
	parts := strings.Split(h.Birthdate, "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid birthdate %q", h.Birthdate)
	}
	var values [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid birthdate %q: %w", h.Birthdate, err)
		}
		values[i] = v
	}
	day, month, year := values[0], values[1], values[2]
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid birthdate %q", h.Birthdate)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, chrono.Location), nil
}

func (h Horse) PredicateList() []string {
	var out []string
	for _, p := range strings.Split(h.Predicates, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (h Horse) String() string {
	return fmt.Sprintf("#%d %s (foal: %v)", h.Lifenumber, h.Name, h.IsFoal())
}

var titleSuffix = regexp.MustCompile(` - Horse Reality$`)

const lookingAtPrefix = "You're currently looking at the"

func extractionError(format string, args ...any) error {
	return &core.Error{Kind: core.ErrExtractionFailed, Err: fmt.Errorf(format, args...)}
}

// ParseHorse reads a horse page.
func ParseHorse(page []byte) (Horse, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return Horse{}, extractionError("parse html: %w", err)
	}

	alert := doc.Find(".error").First()
	if alert.Length() > 0 && alert.AttrOr("style", "") != "display:none;" {
		message := ""
		strs := htmlutil.StrippedStrings(alert)
		if len(strs) > 0 {
			message = strs[len(strs)-1]
		}
		return Horse{}, PageAlertError{Message: message}
	}

	var horse Horse

	horse.Name = strings.TrimSpace(doc.Find(".horse_left>h1").First().Text())
	if horse.Name == "" {
		horse.Name = titleSuffix.ReplaceAllString(strings.TrimSpace(doc.Find("title").First().Text()), "")
	}
	if alt, ok := doc.Find("img.icon16").First().Attr("alt"); ok {
		horse.Sex = strings.ToLower(strings.TrimSpace(alt))
	}

	info := map[string]string{}
	left := doc.Find("div.horse_left .infotext .left")
	right := doc.Find("div.horse_left .infotext .right")
	for i := 0; i < left.Length() && i < right.Length(); i++ {
		key := strings.ToLower(strings.TrimSpace(left.Eq(i).Text()))
		key = strings.ReplaceAll(key, " ", "_")
		info[key] = strings.TrimSpace(right.Eq(i).Text())
	}

	rawLifenumber, ok := info["lifenumber"]
	if !ok {
		return Horse{}, extractionError("horse page has no lifenumber")
	}
	horse.Lifenumber, err = strconv.Atoi(strings.TrimPrefix(rawLifenumber, "#"))
	if err != nil {
		return Horse{}, extractionError("invalid lifenumber %q: %w", rawLifenumber, err)
	}

	horse.RawBreed = info["breed"]
	horse.Breed, _ = ParseBreed(horse.RawBreed)
	horse.Age = info["age"]
	horse.Birthdate = info["birthdate"]
	horse.Height = info["horse_height"]
	horse.Location = info["location"]
	horse.Owner = info["owner"]
	horse.Registry = info["registry"]
	horse.Predicates = info["predicates"]

	// a dam with a foal has two photos, the foal's container has the "foal" class
	photos := doc.Find("div.horse_photo")
	var parseErr error
	photos.EachWithBreak(func(_ int, photo *goquery.Selection) bool {
		markup, err := goquery.OuterHtml(photo)
		if err != nil {
			parseErr = err
			return false
		}
		layers, err := layersFromMarkup(markup)
		if err != nil {
			parseErr = err
			return false
		}
		if len(layers) == 0 {
			return true
		}
		if photo.Parent().HasClass("foal") || layers[0].HorseType == HorseTypeFoals {
			horse.FoalLayers = append(horse.FoalLayers, layers...)
		} else {
			horse.AdultLayers = append(horse.AdultLayers, layers...)
		}
		return true
	})
	if parseErr != nil {
		return Horse{}, extractionError("read layers: %w", parseErr)
	}

	// the class is also used for unrelated notes like "standing at stud"
	lookingAt := strings.TrimSpace(doc.Find(".looking_at>p>strong").First().Text())
	if strings.Contains(lookingAt, "looking at") {
		horse.LookingAt = strings.TrimSpace(strings.Replace(lookingAt, lookingAtPrefix, "", 1))
	}

	if horse.LookingAt == "dam" && photos.Length() > 1 {
		// a > div.horse_photocon.foal > div.horse_photo
		href := photos.Eq(1).Parent().Parent().AttrOr("href", "")
		horse.FoalLifenumber, _ = LifenumberFromUrl(href)
	}

	return horse, nil
}
