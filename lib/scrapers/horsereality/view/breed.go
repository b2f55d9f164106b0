package view

import (
	"hrtools/lib/textutil"
	"strings"
)

// Breed is the normalized key of a breed, e.g. "akhal_teke".
type Breed string

const (
	BreedAkhalTeke        Breed = "akhal_teke"
	BreedArabianHorse     Breed = "arabian_horse"
	BreedBrabantHorse     Breed = "brabant_horse"
	BreedBrumbyHorse      Breed = "brumby_horse"
	BreedCamargueHorse    Breed = "camargue_horse"
	BreedClevelandBay     Breed = "cleveland_bay"
	BreedExmoorPony       Breed = "exmoor_pony"
	BreedFinnhorse        Breed = "finnhorse"
	BreedFjordHorse       Breed = "fjord_horse"
	BreedFriesianHorse    Breed = "friesian_horse"
	BreedHaflingerHorse   Breed = "haflinger_horse"
	BreedIcelandicHorse   Breed = "icelandic_horse"
	BreedIrishCobHorse    Breed = "irish_cob_horse"
	BreedKladruberHorse   Breed = "kladruber_horse"
	BreedKnabstrupper     Breed = "knabstrupper"
	BreedLusitano         Breed = "lusitano"
	BreedMustangHorse     Breed = "mustang_horse"
	BreedNamibDesertHorse Breed = "namib_desert_horse"
	BreedNorikerHorse     Breed = "noriker_horse"
	BreedNormanCob        Breed = "norman_cob"
	BreedOldenburgHorse   Breed = "oldenburg_horse"
	BreedPuraRazaEspanola Breed = "pura_raza_española"
	BreedQuarterHorse     Breed = "quarter_horse"
	BreedShireHorse       Breed = "shire_horse"
	BreedSuffolkPunch     Breed = "suffolk_punch"
	BreedThoroughbred     Breed = "thoroughbred"
	BreedTrakehnerHorse   Breed = "trakehner_horse"
	BreedWelshPony        Breed = "welsh_pony"
)

var breedLabels = map[Breed]string{
	BreedAkhalTeke:        "Akhal-Teke",
	BreedArabianHorse:     "Arabian Horse",
	BreedBrabantHorse:     "Brabant Horse",
	BreedBrumbyHorse:      "Brumby Horse",
	BreedCamargueHorse:    "Camargue Horse",
	BreedClevelandBay:     "Cleveland Bay",
	BreedExmoorPony:       "Exmoor Pony",
	BreedFinnhorse:        "Finnhorse",
	BreedFjordHorse:       "Fjord Horse",
	BreedFriesianHorse:    "Friesian Horse",
	BreedHaflingerHorse:   "Haflinger Horse",
	BreedIcelandicHorse:   "Icelandic Horse",
	BreedIrishCobHorse:    "Irish Cob Horse",
	BreedKladruberHorse:   "Kladruber Horse",
	BreedKnabstrupper:     "Knabstrupper",
	BreedLusitano:         "Lusitano",
	BreedMustangHorse:     "Mustang Horse",
	BreedNamibDesertHorse: "Namib Desert Horse",
	BreedNorikerHorse:     "Noriker Horse",
	BreedNormanCob:        "Norman Cob",
	BreedOldenburgHorse:   "Oldenburg Horse",
	BreedPuraRazaEspanola: "Pura Raza Española",
	BreedQuarterHorse:     "Quarter Horse",
	BreedShireHorse:       "Shire Horse",
	BreedSuffolkPunch:     "Suffolk Punch",
	BreedThoroughbred:     "Thoroughbred",
	BreedTrakehnerHorse:   "Trakehner Horse",
	BreedWelshPony:        "Welsh Pony",
}

// BreedOrder is the order in which the body part layers of a breed are
// stacked, bottom first.
type BreedOrder struct {
	Stallion []BodyPart
	Mare     []BodyPart
}

var breedOrders = map[Breed]BreedOrder{
	BreedAkhalTeke: {
		Stallion: []BodyPart{BodyTail, BodyMane, BodyBody},
		Mare:     []BodyPart{BodyMane, BodyBody, BodyTail},
	},
	BreedArabianHorse: {
		Stallion: []BodyPart{BodyTail, BodyBody, BodyMane},
		Mare:     []BodyPart{BodyBody, BodyTail, BodyMane},
	},
	BreedBrabantHorse: {
		Stallion: []BodyPart{BodyBody, BodyTail, BodyMane},
		Mare:     []BodyPart{BodyBody, BodyTail, BodyMane},
	},
	BreedBrumbyHorse: {
		Stallion: []BodyPart{BodyTail, BodyBody, BodyMane},
		Mare:     []BodyPart{BodyTail, BodyBody, BodyMane},
	},
	BreedCamargueHorse: {
		Stallion: []BodyPart{BodyBody, BodyMane, BodyTail},
		Mare:     []BodyPart{BodyBody, BodyMane, BodyTail},
	},
	BreedClevelandBay: {
		Stallion: []BodyPart{BodyBody, BodyMane, BodyTail},
		Mare:     []BodyPart{BodyBody, BodyMane, BodyTail},
	},
	BreedExmoorPony: {
		Stallion: []BodyPart{BodyBody, BodyMane, BodyTail},
		Mare:     []BodyPart{BodyTail, BodyBody, BodyMane},
	},
	BreedFinnhorse: {
		Stallion: []BodyPart{BodyTail, BodyBody, BodyMane},
		Mare:     []BodyPart{BodyTail, BodyBody, BodyMane},
	},
	BreedFjordHorse: {
		Stallion: []BodyPart{BodyBody, BodyTail, BodyMane},
		Mare:     []BodyPart{BodyBody, BodyTail, BodyMane},
	},
	BreedFriesianHorse: {
		Stallion: []BodyPart{BodyTail, BodyBody, BodyMane},
		Mare:     []BodyPart{BodyTail, BodyBody, BodyMane},
	},
	BreedHaflingerHorse: {
		Stallion: []BodyPart{BodyTail, BodyBody, BodyMane},
		Mare:     []BodyPart{BodyTail, BodyBody, BodyMane},
	},
	BreedIcelandicHorse: {
		Stallion: []BodyPart{BodyBody, BodyMane, BodyTail},
		Mare:     []BodyPart{BodyBody, BodyMane, BodyTail},
	},
	BreedIrishCobHorse: {
		Stallion: []BodyPart{BodyTail, BodyBody, BodyMane},
		Mare:     []BodyPart{BodyTail, BodyBody, BodyMane},
	},
	BreedKladruberHorse: {
		Stallion: []BodyPart{BodyBody, BodyMane, BodyTail},
		Mare:     []BodyPart{BodyBody, BodyMane, BodyTail},
	},
	BreedKnabstrupper: {
		Stallion: []BodyPart{BodyBody, BodyMane, BodyTail},
		Mare:     []BodyPart{BodyBody, BodyMane, BodyTail},
	},
	BreedLusitano: {
		Stallion: []BodyPart{BodyBody, BodyMane, BodyTail},
		Mare:     []BodyPart{BodyTail, BodyBody, BodyMane},
	},
	BreedMustangHorse: {
		Stallion: []BodyPart{BodyBody, BodyMane, BodyTail},
		Mare:     []BodyPart{BodyBody, BodyMane, BodyTail},
	},
	BreedNamibDesertHorse: {
		Stallion: []BodyPart{BodyTail, BodyBody, BodyMane},
		Mare:     []BodyPart{BodyTail, BodyBody, BodyMane},
	},
	BreedNorikerHorse: {
		Stallion: []BodyPart{BodyBody, BodyMane, BodyTail},
		Mare:     []BodyPart{BodyBody, BodyMane, BodyTail},
	},
	BreedNormanCob: {
		Stallion: []BodyPart{BodyBody, BodyMane, BodyTail},
		Mare:     []BodyPart{BodyBody, BodyMane, BodyTail},
	},
	BreedOldenburgHorse: {
		Stallion: []BodyPart{BodyBody, BodyMane, BodyTail},
		Mare:     []BodyPart{BodyBody, BodyMane, BodyTail},
	},
	BreedPuraRazaEspanola: {
		Stallion: []BodyPart{BodyTail, BodyBody, BodyMane},
		Mare:     []BodyPart{BodyTail, BodyBody, BodyMane},
	},
	BreedQuarterHorse: {
		Stallion: []BodyPart{BodyTail, BodyBody, BodyMane},
		Mare:     []BodyPart{BodyBody, BodyMane, BodyTail},
	},
	BreedShireHorse: {
		Stallion: []BodyPart{BodyBody, BodyMane, BodyTail},
		Mare:     []BodyPart{BodyBody, BodyMane, BodyTail},
	},
	BreedSuffolkPunch: {
		Stallion: []BodyPart{BodyBody, BodyMane, BodyTail},
		Mare:     []BodyPart{BodyBody, BodyMane, BodyTail},
	},
	BreedThoroughbred: {
		Stallion: []BodyPart{BodyTail, BodyBody, BodyMane},
		Mare:     []BodyPart{BodyTail, BodyBody, BodyMane},
	},
	BreedTrakehnerHorse: {
		Stallion: []BodyPart{BodyBody, BodyMane, BodyTail},
		Mare:     []BodyPart{BodyBody, BodyMane, BodyTail},
	},
	BreedWelshPony: {
		Stallion: []BodyPart{BodyBody, BodyMane, BodyTail},
		Mare:     []BodyPart{BodyBody, BodyMane, BodyTail},
	},
}

// Breeds returns every known breed.
func Breeds() []Breed {
	out := make([]Breed, 0, len(breedLabels))
	for breed := range breedLabels {
		out = append(out, breed)
	}
	return out
}

// Label is the breed as the site displays it.
func (b Breed) Label() string {
	return breedLabels[b]
}

func (b Breed) Known() bool {
	_, ok := breedLabels[b]
	return ok
}

// Order returns the layer order of the breed, ok is false for unknown breeds.
func (b Breed) Order() (BreedOrder, bool) {
	order, ok := breedOrders[b]
	return order, ok
}

// LayerOrder picks the stallion or mare order depending on `sex`, geldings
// share the stallion order.
func (b Breed) LayerOrder(sex string) []BodyPart {
	order, ok := breedOrders[b]
	if !ok {
		return nil
	}
	switch strings.ToLower(sex) {
	case "stallion", "gelding", "colt":
		return order.Stallion
	}
	return order.Mare
}

const breedMatchThreshold = 0.9

// ParseBreed maps a breed label to its Breed. Labels that are not known
// verbatim are matched to the closest known breed, so new spellings on the
// site (or a missing accent) still resolve.
func ParseBreed(label string) (Breed, bool) {
	key := Breed(textutil.NormalizeName(label))
	if key == "" {
		return "", false
	}
	if key.Known() {
		return key, true
	}

	candidates := make([]string, 0, len(breedLabels))
	for breed := range breedLabels {
		candidates = append(candidates, string(breed))
	}
	match, ok := textutil.ClosestMatch(label, candidates, breedMatchThreshold)
	if !ok {
		return "", false
	}
	return Breed(match), true
}
