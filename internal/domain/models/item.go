package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format accepted for expiry dates.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// ErrInvalidDateFormat indicates an expiry date that is not a YYYY-MM-DD calendar date.
var ErrInvalidDateFormat = errors.New("invalid date format")

// Item is one lot of a perishable good stored in a bin.
type Item struct {
	LotID       string    `json:"lot_id" bson:"lot_id"`
	Name        string    `json:"name" bson:"name"`
	Quantity    int       `json:"quantity" bson:"quantity"`
	Temperature float64   `json:"temperature" bson:"temperature"`
	Humidity    float64   `json:"humidity" bson:"humidity"`
	ExpiryDate  time.Time `json:"expiry_date" bson:"expiry_date"`
	AddedAt     time.Time `json:"added_at" bson:"added_at"`
}

// NewItem builds an Item, parsing expiry as a calendar date.
func NewItem(name string, quantity int, temperature, humidity float64, expiry string, now time.Time) (Item, error) {
	expiryDate, err := ParseDate(expiry)
	if err != nil {
		return Item{}, err
	}

	return Item{
		LotID:       uuid.NewString(),
		Name:        name,
		Quantity:    quantity,
		Temperature: temperature,
		Humidity:    humidity,
		ExpiryDate:  expiryDate,
		AddedAt:     DateOf(now),
	}, nil
}

// DaysUntilExpiry returns the whole calendar days between now and the expiry date.
// It goes negative once the item has expired.
func (i Item) DaysUntilExpiry(now time.Time) int {
	return int((DateOf(i.ExpiryDate).Unix() - DateOf(now).Unix()) / secondsPerDay)
}

func (i Item) String() string {
	return fmt.Sprintf("%s (Qty: %d, Temp: %.1f, Humidity: %.1f, Exp: %s)",
		i.Name, i.Quantity, i.Temperature, i.Humidity, i.ExpiryDate.Format(DateLayout))
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight date.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, value)
	}
	return parsed, nil
}

// DateOf truncates t to its calendar date at midnight UTC, keeping t's own wall-clock date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
