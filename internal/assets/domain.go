// Package assets is the ledger over asset records. It shapes reads and
// writes around the detected schema capabilities, fills in computed
// values when the store has no persisted current value, and emits one
// audit movement per lifecycle transition.
package assets

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Lifecycle statuses. Active is the initial status; written off is
// terminal.
const (
	StatusActive           = "active"
	StatusUnderMaintenance = "under_maintenance"
	StatusWrittenOff       = "written_off"
	StatusMissing          = "missing"
)

// Physical conditions.
const (
	ConditionNew  = "new"
	ConditionGood = "good"
	ConditionFair = "fair"
	ConditionPoor = "poor"
)

var (
	ErrNotFound          = errors.New("assets: asset not found")
	ErrDuplicateSerial   = errors.New("assets: serial number already registered")
	ErrAlreadyWrittenOff = errors.New("assets: asset already written off")
	ErrInvalidTransition = errors.New("assets: status transition not allowed")
)

// Asset is one tracked physical item. RetiredAt is set exactly when
// the status is written off.
type Asset struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	SerialNumber  string     `json:"serial_number"`
	PurchaseValue float64    `json:"purchase_value"`
	AcquiredAt    time.Time  `json:"acquired_at"`
	Condition     string     `json:"condition"`
	CategoryID    int64      `json:"category_id"`
	SupplierID    *int64     `json:"supplier_id,omitempty"`
	SectorID      int64      `json:"sector_id"`
	Status        string     `json:"status"`
	RetiredAt     *time.Time `json:"retired_at,omitempty"`

	// Optional columns, populated only when the schema carries them.
	CurrentValue  *float64 `json:"current_value,omitempty"`
	Quantity      *int     `json:"quantity,omitempty"`
	InvoiceNumber *string  `json:"invoice_number,omitempty"`

	// ComputedValue is filled on reads when no current value column
	// exists. Display only, never written back.
	ComputedValue *float64 `json:"computed_value,omitempty"`

	// ValuationStale flags an asset whose acquisition date could not
	// be interpreted during a batch listing.
	ValuationStale bool `json:"valuation_stale,omitempty"`
}

// Input carries the caller-supplied attributes for create and update.
type Input struct {
	Name          string  `json:"name" validate:"required"`
	Description   string  `json:"description"`
	SerialNumber  string  `json:"serial_number" validate:"required"`
	PurchaseValue float64 `json:"purchase_value" validate:"gte=0"`
	AcquiredAt    string  `json:"acquired_at" validate:"required"`
	Condition     string  `json:"condition" validate:"required,oneof=new good fair poor"`
	CategoryID    int64   `json:"category_id" validate:"required,gt=0"`
	SupplierID    *int64  `json:"supplier_id"`
	SectorID      int64   `json:"sector_id" validate:"required,gt=0"`
	Status        string  `json:"status" validate:"required,oneof=active under_maintenance missing"`
	Quantity      *int    `json:"quantity"`
	InvoiceNumber *string `json:"invoice_number"`
}

// Filters narrow a listing. Zero values mean no constraint; all
// supplied filters combine with AND semantics.
type Filters struct {
	Text       string
	CategoryID int64
	SectorID   int64
	Status     string
}

// ValidationError reports field-level input problems before any store
// access is attempted.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "assets: validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("assets: validation failed: %s", strings.Join(names, ", "))
}

// allowedTransitions holds every permitted status change. Written off
// is reached only through WriteOff and has no outgoing edges.
var allowedTransitions = map[string][]string{
	StatusActive:           {StatusUnderMaintenance, StatusMissing},
	StatusUnderMaintenance: {StatusActive},
	StatusMissing:          {StatusActive},
}

func transitionAllowed(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether status is one of the lifecycle statuses.
func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusUnderMaintenance, StatusWrittenOff, StatusMissing:
		return true
	}
	return false
}
