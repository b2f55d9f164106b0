package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	testCases := []struct {
		in     string
		expect string
	}{
		{in: "Akhal-Teke", expect: "akhal_teke"},
		{in: " Pura Raza Española ", expect: "pura_raza_española"},
		{in: "Irish  Cob Horse", expect: "irish_cob_horse"},
		{in: "Finnhorse", expect: "finnhorse"},
	}
	for _, test := range testCases {
		require.Equal(t, test.expect, NormalizeName(test.in))
	}
}

func TestClosestMatch(t *testing.T) {
	candidates := []string{"thoroughbred", "trakehner_horse", "shire_horse"}

	match, ok := ClosestMatch("Thoroughbredd", candidates, 0.9)
	require.True(t, ok)
	require.Equal(t, "thoroughbred", match)

	_, ok = ClosestMatch("Unicorn", candidates, 0.9)
	require.False(t, ok)
}
