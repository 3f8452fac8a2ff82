package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/smartstore/internal/domain/models"
)

func TestRecommendConditionsExactMatch(t *testing.T) {
	engine, _ := newTestEngine(t)

	got := engine.RecommendConditions("Tomato")
	assert.Equal(t, models.Recommendation{
		OptimalTemp:     12,
		OptimalHumidity: 85,
		ShelfLifeDays:   7,
		Exact:           true,
		Basis:           []string{"Tomato"},
	}, got)
}

func TestRecommendConditionsBlendsNearestProfiles(t *testing.T) {
	engine, _ := newTestEngine(t)

	tests := []struct {
		name string
		want models.Recommendation
	}{
		{
			name: "Tomatillo",
			want: models.Recommendation{OptimalTemp: 7.5, OptimalHumidity: 89, ShelfLifeDays: 36.6, Basis: []string{"Tomato", "Potato", "Carrot"}},
		},
		{
			// Tomato and Potato tie; table order decides.
			name: "Carrots",
			want: models.Recommendation{OptimalTemp: 4.8, OptimalHumidity: 91.2, ShelfLifeDays: 38.4, Basis: []string{"Carrot", "Tomato", "Potato"}},
		},
		{
			name: "tomato",
			want: models.Recommendation{OptimalTemp: 7.7, OptimalHumidity: 88.8, ShelfLifeDays: 35.7, Basis: []string{"Tomato", "Potato", "Carrot"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.RecommendConditions(tt.name))
		})
	}
}

func TestRecommendConditionsDefaults(t *testing.T) {
	empty := NewEngine(Config{MaxSafeTemp: 25, MaxSafeHumidity: 98}, nil, nil, nil)
	assert.Equal(t, defaultRecommendation, empty.RecommendConditions("Tomato"))

	engine, _ := newTestEngine(t)
	assert.Equal(t, defaultRecommendation, engine.RecommendConditions(""))
	assert.Equal(t, defaultRecommendation, engine.RecommendConditions("xyz"))
}

func TestJaccard(t *testing.T) {
	assert.Zero(t, jaccard(charSet(""), charSet("")))
	assert.Equal(t, 1.0, jaccard(charSet("abc"), charSet("CBA")))
	assert.InDelta(t, 2.0/3.0, jaccard(charSet("tomatillo"), charSet("Tomato")), 1e-9)
}
