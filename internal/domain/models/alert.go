package models

import "time"

// Severity ranks alerts.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Alert is a structured notification produced by the inventory engine.
type Alert struct {
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	BinID     string    `json:"bin_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
