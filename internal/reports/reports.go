// Package reports aggregates the asset base by sector and category and
// projects depreciation schedules. Aggregates are cached briefly since
// the underlying listing revalues assets as a side effect.
package reports

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/zecadelgado/patp/internal/assets"
	"github.com/zecadelgado/patp/internal/depreciation"
	"github.com/zecadelgado/patp/internal/platform/cache"
)

// SummaryRow is one aggregate bucket.
type SummaryRow struct {
	GroupID       int64   `json:"group_id"`
	GroupName     string  `json:"group_name,omitempty"`
	Count         int     `json:"count"`
	TotalPurchase float64 `json:"total_purchase"`
	TotalCurrent  float64 `json:"total_current"`
}

// AssetSource lists assets with their valuation filled in.
type AssetSource interface {
	List(ctx context.Context, filters assets.Filters) ([]assets.Asset, error)
	Get(ctx context.Context, id int64) (assets.Asset, error)
}

// NameSource resolves group ids to display names.
type NameSource interface {
	Name(ctx context.Context, id int64) (string, error)
}

type Service struct {
	source  AssetSource
	sectors NameSource
	engine  *depreciation.Engine
	cache   *cache.Cache
	logger  *slog.Logger
}

func NewService(
	source AssetSource,
	sectors NameSource,
	engine *depreciation.Engine,
	c *cache.Cache,
	logger *slog.Logger,
) *Service {
	return &Service{
		source:  source,
		sectors: sectors,
		engine:  engine,
		cache:   c,
		logger:  logger,
	}
}

// BySector aggregates active assets per sector.
func (s *Service) BySector(ctx context.Context) ([]SummaryRow, error) {
	key, err := s.cache.BuildKey(ctx, "patp", "reports", "sector")
	if err != nil {
		s.logger.Warn("report cache unavailable", "error", err)
		return s.bySector(ctx)
	}

	var rows []SummaryRow
	err = s.cache.FetchJSON(ctx, key, &rows, func(ctx context.Context) (any, error) {
		return s.bySector(ctx)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) bySector(ctx context.Context) ([]SummaryRow, error) {
	rows, err := s.aggregate(ctx, func(a assets.Asset) int64 { return a.SectorID })
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if name, err := s.sectors.Name(ctx, rows[i].GroupID); err == nil {
			rows[i].GroupName = name
		}
	}
	return rows, nil
}

// ByCategory aggregates active assets per category.
func (s *Service) ByCategory(ctx context.Context) ([]SummaryRow, error) {
	key, err := s.cache.BuildKey(ctx, "patp", "reports", "category")
	if err != nil {
		s.logger.Warn("report cache unavailable", "error", err)
		return s.aggregate(ctx, func(a assets.Asset) int64 { return a.CategoryID })
	}

	var rows []SummaryRow
	err = s.cache.FetchJSON(ctx, key, &rows, func(ctx context.Context) (any, error) {
		return s.aggregate(ctx, func(a assets.Asset) int64 { return a.CategoryID })
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) aggregate(ctx context.Context, groupBy func(assets.Asset) int64) ([]SummaryRow, error) {
	items, err := s.source.List(ctx, assets.Filters{Status: assets.StatusActive})
	if err != nil {
		return nil, fmt.Errorf("reports: aggregate: %w", err)
	}

	buckets := map[int64]*SummaryRow{}
	for _, a := range items {
		id := groupBy(a)
		row, ok := buckets[id]
		if !ok {
			row = &SummaryRow{GroupID: id}
			buckets[id] = row
		}
		row.Count++
		row.TotalPurchase += a.PurchaseValue
		row.TotalCurrent += valuation(a)
	}

	rows := make([]SummaryRow, 0, len(buckets))
	for _, row := range buckets {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].GroupID < rows[j].GroupID })
	return rows, nil
}

// DashboardStats is the landing-page summary of the whole asset base.
// Counts cover every status; the totals cover active assets only, since
// a written off or missing asset no longer carries book value.
type DashboardStats struct {
	TotalAssets    int            `json:"total_assets"`
	CountsByStatus map[string]int `json:"counts_by_status"`
	TotalPurchase  float64        `json:"total_purchase"`
	TotalCurrent   float64        `json:"total_current"`
}

// Dashboard returns the cached asset-base summary.
func (s *Service) Dashboard(ctx context.Context) (DashboardStats, error) {
	key, err := s.cache.BuildKey(ctx, "patp", "reports", "dashboard")
	if err != nil {
		s.logger.Warn("report cache unavailable", "error", err)
		return s.dashboard(ctx)
	}

	var stats DashboardStats
	err = s.cache.FetchJSON(ctx, key, &stats, func(ctx context.Context) (any, error) {
		return s.dashboard(ctx)
	})
	if err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}

func (s *Service) dashboard(ctx context.Context) (DashboardStats, error) {
	items, err := s.source.List(ctx, assets.Filters{})
	if err != nil {
		return DashboardStats{}, fmt.Errorf("reports: dashboard: %w", err)
	}

	stats := DashboardStats{CountsByStatus: map[string]int{}}
	for _, a := range items {
		stats.TotalAssets++
		stats.CountsByStatus[a.Status]++
		if a.Status != assets.StatusActive {
			continue
		}
		stats.TotalPurchase += a.PurchaseValue
		stats.TotalCurrent += valuation(a)
	}
	return stats, nil
}

// DepreciationFilters narrows the depreciation listing.
type DepreciationFilters struct {
	Text       string
	CategoryID int64
}

// DepreciationRow is one active asset with its book value broken down.
type DepreciationRow struct {
	AssetID       int64     `json:"asset_id"`
	Name          string    `json:"name"`
	SerialNumber  string    `json:"serial_number"`
	AcquiredAt    time.Time `json:"acquired_at"`
	PurchaseValue float64   `json:"purchase_value"`
	CurrentValue  float64   `json:"current_value"`
	Accumulated   float64   `json:"accumulated"`
	Stale         bool      `json:"stale,omitempty"`
}

// Depreciation lists active assets with purchase value, current value
// and accumulated depreciation. Filters vary per request, so unlike the
// aggregates this listing is never cached. A row with a broken
// acquisition date is flagged stale at its purchase value.
func (s *Service) Depreciation(ctx context.Context, filters DepreciationFilters) ([]DepreciationRow, error) {
	items, err := s.source.List(ctx, assets.Filters{
		Status:     assets.StatusActive,
		Text:       filters.Text,
		CategoryID: filters.CategoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("reports: depreciation: %w", err)
	}

	rows := make([]DepreciationRow, 0, len(items))
	for _, a := range items {
		row := DepreciationRow{
			AssetID:       a.ID,
			Name:          a.Name,
			SerialNumber:  a.SerialNumber,
			AcquiredAt:    a.AcquiredAt,
			PurchaseValue: a.PurchaseValue,
		}
		if a.ValuationStale {
			row.Stale = true
			row.CurrentValue = a.PurchaseValue
		} else {
			row.CurrentValue = valuation(a)
			row.Accumulated = a.PurchaseValue - row.CurrentValue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AssetID < rows[j].AssetID })
	return rows, nil
}

// Schedule projects an asset's monthly depreciation until fully
// depreciated.
func (s *Service) Schedule(ctx context.Context, assetID int64) ([]depreciation.ScheduleEntry, error) {
	a, err := s.source.Get(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if a.AcquiredAt.IsZero() {
		return nil, fmt.Errorf("reports: asset %d: %w", assetID, depreciation.ErrInvalidAcquisitionDate)
	}
	return s.engine.MonthlySchedule(a.PurchaseValue, a.AcquiredAt), nil
}

// Invalidate drops every cached aggregate.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func valuation(a assets.Asset) float64 {
	if a.CurrentValue != nil {
		return *a.CurrentValue
	}
	if a.ComputedValue != nil {
		return *a.ComputedValue
	}
	return a.PurchaseValue
}
