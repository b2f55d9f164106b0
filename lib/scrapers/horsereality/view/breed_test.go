package view

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBreed(t *testing.T) {
	testCases := []struct {
		label    string
		expected Breed
		ok       bool
	}{
		{"Akhal-Teke", BreedAkhalTeke, true},
		{"Pura Raza Española", BreedPuraRazaEspanola, true},
		{"Pura Raza Espanola", BreedPuraRazaEspanola, true},
		{"Thoroughbred ", BreedThoroughbred, true},
		{"Unicorn", "", false},
		{"", "", false},
	}
	for _, test := range testCases {
		breed, ok := ParseBreed(test.label)
		require.Equal(t, test.ok, ok, test.label)
		require.Equal(t, test.expected, breed, test.label)
	}
}

func TestBreedTables(t *testing.T) {
	require.Len(t, Breeds(), 28)
	for _, breed := range Breeds() {
		require.NotEmpty(t, breed.Label(), breed)
		order, ok := breed.Order()
		require.True(t, ok, breed)
		require.ElementsMatch(t, []BodyPart{BodyBody, BodyMane, BodyTail}, order.Stallion, breed)
		require.ElementsMatch(t, []BodyPart{BodyBody, BodyMane, BodyTail}, order.Mare, breed)
	}

	require.Equal(t, []BodyPart{BodyTail, BodyMane, BodyBody}, BreedAkhalTeke.LayerOrder("stallion"))
	require.Equal(t, []BodyPart{BodyMane, BodyBody, BodyTail}, BreedAkhalTeke.LayerOrder("Mare"))
	require.Nil(t, Breed("unicorn").LayerOrder("mare"))
}
