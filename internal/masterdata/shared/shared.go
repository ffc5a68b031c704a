// Package shared holds types common to the masterdata packages.
package shared

import "errors"

var (
	ErrNotFound  = errors.New("resource not found")
	ErrDuplicate = errors.New("duplicate entry")
	ErrInUse     = errors.New("resource still referenced")
)

const (
	DefaultPage  = 1
	DefaultLimit = 50
)

// ListFilters represents standard list filters.
type ListFilters struct {
	Page   int
	Limit  int
	Search string
}

// Normalize fills in pagination defaults.
func (f *ListFilters) Normalize() {
	if f.Page <= 0 {
		f.Page = DefaultPage
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
}
