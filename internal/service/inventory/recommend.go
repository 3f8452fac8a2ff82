package inventory

import (
	"math"
	"sort"
	"strings"

	"github.com/mamadbah2/smartstore/internal/domain/models"
)

const recommendationNeighbors = 3

var defaultRecommendation = models.Recommendation{
	OptimalTemp:     4,
	OptimalHumidity: 90,
	ShelfLifeDays:   14,
}

// RecommendConditions returns the stored profile for a known item type. For an
// unknown one it blends the three profiles whose names share the most characters
// (Jaccard over lower-cased character sets), weighting by similarity.
func (e *Engine) RecommendConditions(itemName string) models.Recommendation {
	for _, p := range e.cfg.Profiles {
		if p.Name == itemName {
			return models.Recommendation{
				OptimalTemp:     p.OptimalTemp,
				OptimalHumidity: p.OptimalHumidity,
				ShelfLifeDays:   p.ShelfLifeDays,
				Exact:           true,
				Basis:           []string{p.Name},
			}
		}
	}

	if len(e.cfg.Profiles) == 0 {
		return defaultRecommendation
	}

	type candidate struct {
		profile    models.StorageProfile
		similarity float64
	}

	target := charSet(itemName)
	candidates := make([]candidate, 0, len(e.cfg.Profiles))
	for _, p := range e.cfg.Profiles {
		candidates = append(candidates, candidate{profile: p, similarity: jaccard(target, charSet(p.Name))})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].similarity > candidates[j].similarity
	})
	if len(candidates) > recommendationNeighbors {
		candidates = candidates[:recommendationNeighbors]
	}

	var total, temp, humidity, shelfLife float64
	var basis []string
	for _, c := range candidates {
		if c.similarity == 0 {
			continue
		}
		total += c.similarity
		temp += c.similarity * c.profile.OptimalTemp
		humidity += c.similarity * c.profile.OptimalHumidity
		shelfLife += c.similarity * c.profile.ShelfLifeDays
		basis = append(basis, c.profile.Name)
	}

	// No shared characters with any profile leaves nothing to weight.
	if total == 0 {
		return defaultRecommendation
	}

	return models.Recommendation{
		OptimalTemp:     roundOne(temp / total),
		OptimalHumidity: roundOne(humidity / total),
		ShelfLifeDays:   roundOne(shelfLife / total),
		Basis:           basis,
	}
}

func charSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{})
	for _, r := range strings.ToLower(s) {
		set[r] = struct{}{}
	}
	return set
}

func jaccard(a, b map[rune]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for r := range a {
		if _, ok := b[r]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

func roundOne(v float64) float64 {
	return math.Round(v*10) / 10
}
