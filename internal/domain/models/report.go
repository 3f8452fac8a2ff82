package models

import (
	"errors"
	"time"
)

// ErrReportNotFound indicates no report has been stored yet.
var ErrReportNotFound = errors.New("report not found")

// InventoryReport represents the daily inventory snapshot stored in MongoDB.
type InventoryReport struct {
	Date       time.Time         `bson:"date" json:"date"`
	Bins       []BinStatus       `bson:"bins" json:"bins"`
	TotalUnits int               `bson:"total_units" json:"total_units"`
	Safety     SafetySummary     `bson:"safety" json:"safety"`
	Violations []SafetyViolation `bson:"violations" json:"violations"`
	CreatedAt  time.Time         `bson:"created_at" json:"created_at"`
}
