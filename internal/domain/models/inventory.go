package models

import "time"

// StorageProfile describes ideal storage conditions for a known item type.
type StorageProfile struct {
	Name            string  `json:"name" yaml:"name"`
	OptimalTemp     float64 `json:"optimal_temp" yaml:"optimal_temp"`
	OptimalHumidity float64 `json:"optimal_humidity" yaml:"optimal_humidity"`
	ShelfLifeDays   float64 `json:"shelf_life_days" yaml:"shelf_life_days"`
}

// Recommendation is the answer to a storage-conditions lookup.
type Recommendation struct {
	OptimalTemp     float64  `json:"optimal_temp"`
	OptimalHumidity float64  `json:"optimal_humidity"`
	ShelfLifeDays   float64  `json:"shelf_life_days"`
	Exact           bool     `json:"exact"`
	Basis           []string `json:"basis,omitempty"`
}

// BinStatus reports capacity figures measured in units, not records.
type BinStatus struct {
	BinID             string  `json:"bin_id" bson:"bin_id"`
	CurrentCapacity   int     `json:"current_capacity" bson:"current_capacity"`
	MaxCapacity       int     `json:"max_capacity" bson:"max_capacity"`
	AvailableCapacity int     `json:"available_capacity" bson:"available_capacity"`
	ItemCount         int     `json:"item_count" bson:"item_count"`
	AtCapacity        bool    `json:"at_capacity" bson:"at_capacity"`
	Temperature       float64 `json:"temperature" bson:"temperature"`
	Humidity          float64 `json:"humidity" bson:"humidity"`
}

// SafetyReport is the on-demand safety evaluation of one bin.
type SafetyReport struct {
	BinID           string  `json:"bin_id"`
	Temperature     float64 `json:"temperature"`
	Humidity        float64 `json:"humidity"`
	TemperatureSafe bool    `json:"temperature_safe"`
	HumiditySafe    bool    `json:"humidity_safe"`
	Safe            bool    `json:"safe"`
}

// ViolationKind names the breached environmental dimension.
type ViolationKind string

const (
	ViolationTemperature ViolationKind = "temperature"
	ViolationHumidity    ViolationKind = "humidity"
)

// Violation records one threshold breach and its size.
type Violation struct {
	Kind      ViolationKind `json:"kind" bson:"kind"`
	Value     float64       `json:"value" bson:"value"`
	Threshold float64       `json:"threshold" bson:"threshold"`
	Excess    float64       `json:"excess" bson:"excess"`
}

// SafetyViolation groups the breaches of a single bin.
type SafetyViolation struct {
	BinID      string      `json:"bin_id" bson:"bin_id"`
	Violations []Violation `json:"violations" bson:"violations"`
}

// SafetySummary aggregates safety across every bin.
type SafetySummary struct {
	TotalBins      int     `json:"total_bins" bson:"total_bins"`
	SafeBins       int     `json:"safe_bins" bson:"safe_bins"`
	UnsafeBins     int     `json:"unsafe_bins" bson:"unsafe_bins"`
	SafePercentage float64 `json:"safe_percentage" bson:"safe_percentage"`
}

// RemovedItem identifies stock taken out of a bin by the expiry sweep.
type RemovedItem struct {
	LotID      string    `json:"lot_id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	ExpiryDate time.Time `json:"expiry_date"`
}

// FifoWarnings is the outcome of a FIFO status check.
type FifoWarnings struct {
	BinID         string        `json:"bin_id"`
	Expired       []RemovedItem `json:"expired"`
	ExpiringToday []Item        `json:"expiring_today"`
	ExpiringSoon  []Item        `json:"expiring_soon"`
}
