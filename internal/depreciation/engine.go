// Package depreciation computes asset values under a straight-line
// depreciation model. All functions are pure and never touch storage.
package depreciation

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidAcquisitionDate reports an acquisition date that cannot be
// interpreted. Callers decide whether to skip the asset or abort.
var ErrInvalidAcquisitionDate = errors.New("depreciation: invalid acquisition date")

// DaysPerYear averages leap years over the useful life.
const DaysPerYear = 365.25

// DefaultUsefulLifeYears is the straight-line horizon applied when a
// deployment does not override it.
const DefaultUsefulLifeYears = 5

// Engine computes current values for a fixed useful life.
type Engine struct {
	usefulLifeYears int
}

// NewEngine builds an engine. A non-positive useful life falls back to
// the default horizon.
func NewEngine(usefulLifeYears int) *Engine {
	if usefulLifeYears <= 0 {
		usefulLifeYears = DefaultUsefulLifeYears
	}
	return &Engine{usefulLifeYears: usefulLifeYears}
}

// UsefulLifeYears returns the configured horizon.
func (e *Engine) UsefulLifeYears() int {
	return e.usefulLifeYears
}

// CurrentValue returns the asset's value at asOf. The value decreases
// linearly from purchaseValue to zero over the useful life and is
// clamped to [0, purchaseValue]. Zero elapsed time or a future
// acquisition date yields the purchase value unchanged.
func (e *Engine) CurrentValue(purchaseValue float64, acquiredAt, asOf time.Time) float64 {
	if purchaseValue <= 0 {
		return 0
	}
	elapsedDays := asOf.Sub(acquiredAt).Hours() / 24
	if elapsedDays <= 0 {
		return purchaseValue
	}
	annualRate := 1.0 / float64(e.usefulLifeYears)
	accumulated := purchaseValue * annualRate * (elapsedDays / DaysPerYear)
	value := purchaseValue - accumulated
	if value < 0 {
		return 0
	}
	if value > purchaseValue {
		return purchaseValue
	}
	return value
}

// acquisition dates arrive either from the API or from legacy rows
var acquisitionLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	time.RFC3339,
}

// ParseAcquisitionDate interprets an acquisition date string in the
// accepted layouts. An empty or unparsable input returns
// ErrInvalidAcquisitionDate.
func ParseAcquisitionDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidAcquisitionDate)
	}
	for _, layout := range acquisitionLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidAcquisitionDate, raw)
}
