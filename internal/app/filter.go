package app

import (
	"strconv"
	"strings"

	"tourbot/internal/domain"
)

// NormalizePrice rewrites the first formatting comma of a
// provider-supplied price string to a dot. Source data uses either
// separator; running it on an already-dot-formatted string is a no-op.
func NormalizePrice(s string) string {
	return strings.Replace(s, ",", ".", 1)
}

// ParsePrice turns a display price like "$75" or "$82,50" into a
// per-night numeric value.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(NormalizePrice(s))
	s = strings.TrimPrefix(s, "$")
	return strconv.ParseFloat(s, 64)
}

// FilterByRange keeps candidates whose price and distance both fall
// inside the inclusive bands, preserving provider order. Candidates
// whose display price does not parse are dropped.
func FilterByRange(cands []domain.HotelCandidate, priceMin, priceMax int, distMin, distMax float64) []domain.HotelCandidate {
	var out []domain.HotelCandidate
	for _, c := range cands {
		price, err := ParsePrice(c.DisplayPrice)
		if err != nil {
			continue
		}
		if price < float64(priceMin) || price > float64(priceMax) {
			continue
		}
		if c.Distance < distMin || c.Distance > distMax {
			continue
		}
		out = append(out, c)
	}
	return out
}
