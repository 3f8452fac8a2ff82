package inventory

import "github.com/mamadbah2/smartstore/internal/domain/models"

const (
	DefaultMaxSafeTemp     = 25.0
	DefaultMaxSafeHumidity = 98.0
	DefaultSoonWindowDays  = 2
)

// Config holds the engine thresholds and the known storage profiles.
type Config struct {
	MaxSafeTemp     float64
	MaxSafeHumidity float64
	// SoonWindowDays bounds the "expiring soon" FIFO warning window.
	SoonWindowDays int
	// Profiles is ordered; ties in the recommendation ranking keep this order.
	Profiles []models.StorageProfile
}

// DefaultConfig returns the documented thresholds with the built-in profile table.
func DefaultConfig() Config {
	return Config{
		MaxSafeTemp:     DefaultMaxSafeTemp,
		MaxSafeHumidity: DefaultMaxSafeHumidity,
		SoonWindowDays:  DefaultSoonWindowDays,
		Profiles:        DefaultProfiles(),
	}
}

// DefaultProfiles is the built-in table of vegetable storage conditions.
func DefaultProfiles() []models.StorageProfile {
	return []models.StorageProfile{
		{Name: "Tomato", OptimalTemp: 12, OptimalHumidity: 85, ShelfLifeDays: 7},
		{Name: "Potato", OptimalTemp: 7, OptimalHumidity: 90, ShelfLifeDays: 90},
		{Name: "Carrot", OptimalTemp: 0, OptimalHumidity: 95, ShelfLifeDays: 28},
		{Name: "Lettuce", OptimalTemp: 1, OptimalHumidity: 95, ShelfLifeDays: 10},
		{Name: "Onion", OptimalTemp: 2, OptimalHumidity: 70, ShelfLifeDays: 120},
		{Name: "Cucumber", OptimalTemp: 10, OptimalHumidity: 95, ShelfLifeDays: 10},
		{Name: "Spinach", OptimalTemp: 0, OptimalHumidity: 95, ShelfLifeDays: 10},
		{Name: "Broccoli", OptimalTemp: 0, OptimalHumidity: 95, ShelfLifeDays: 14},
		{Name: "Bell Pepper", OptimalTemp: 8, OptimalHumidity: 92, ShelfLifeDays: 14},
		{Name: "Cabbage", OptimalTemp: 0, OptimalHumidity: 95, ShelfLifeDays: 60},
	}
}
