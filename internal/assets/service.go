package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zecadelgado/patp/internal/depreciation"
	"github.com/zecadelgado/patp/internal/movements"
	"github.com/zecadelgado/patp/internal/schema"
)

// revalueConcurrency caps the parallel updates triggered by a listing.
// Each update targets a disjoint row, so ordering does not matter.
const revalueConcurrency = 8

// MovementLog appends audit entries for lifecycle transitions.
type MovementLog interface {
	Append(ctx context.Context, entry movements.Entry) (movements.Movement, error)
}

// CapabilitySource exposes the current schema capability snapshot.
type CapabilitySource interface {
	Current() schema.Capabilities
}

// SectorDirectory resolves sector names for movement origin and
// destination text.
type SectorDirectory interface {
	Name(ctx context.Context, id int64) (string, error)
}

// TransitionResult reports a completed lifecycle transition. Warning
// is set when the primary mutation succeeded but the audit append did
// not; the asset state is authoritative and is never rolled back for
// an audit failure.
type TransitionResult struct {
	Asset    Asset               `json:"asset"`
	Movement *movements.Movement `json:"movement,omitempty"`
	Warning  string              `json:"warning,omitempty"`
}

// Service orchestrates asset reads and lifecycle transitions.
type Service struct {
	repo    Repository
	log     MovementLog
	caps    CapabilitySource
	sectors SectorDirectory
	engine  *depreciation.Engine
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(
	repo Repository,
	log MovementLog,
	caps CapabilitySource,
	sectors SectorDirectory,
	engine *depreciation.Engine,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:    repo,
		log:     log,
		caps:    caps,
		sectors: sectors,
		engine:  engine,
		logger:  logger,
		now:     time.Now,
	}
}

// List returns assets matching all supplied filters. When the schema
// has a persisted current value column, active assets are revalued in
// place as a side effect. Otherwise each active asset gets a computed,
// display-only value. A single asset with a broken acquisition date is
// flagged and skipped, never aborting the listing.
func (s *Service) List(ctx context.Context, filters Filters) ([]Asset, error) {
	if filters.Status != "" && !ValidStatus(filters.Status) {
		return nil, &ValidationError{Fields: map[string]string{"status": "invalid"}}
	}

	caps := s.caps.Current()
	items, err := s.repo.List(ctx, filters, caps)
	if err != nil {
		return nil, fmt.Errorf("assets: list: %w", err)
	}

	if caps.CurrentValue {
		if err := s.revalue(ctx, items); err != nil {
			return nil, err
		}
		return items, nil
	}

	asOf := s.now()
	for i := range items {
		a := &items[i]
		if a.Status != StatusActive {
			continue
		}
		if a.AcquiredAt.IsZero() {
			a.ValuationStale = true
			continue
		}
		v := s.engine.CurrentValue(a.PurchaseValue, a.AcquiredAt, asOf)
		a.ComputedValue = &v
	}
	return items, nil
}

// revalue recomputes and persists the current value of every active
// asset in items, mutating the slice in place.
func (s *Service) revalue(ctx context.Context, items []Asset) error {
	asOf := s.now()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(revalueConcurrency)

	for i := range items {
		a := &items[i]
		if a.Status != StatusActive {
			continue
		}
		if a.AcquiredAt.IsZero() {
			a.ValuationStale = true
			continue
		}
		// Each goroutine owns its slice element; rows are disjoint.
		g.Go(func() error {
			v := s.engine.CurrentValue(a.PurchaseValue, a.AcquiredAt, asOf)
			if err := s.repo.UpdateCurrentValue(ctx, a.ID, v); err != nil {
				return fmt.Errorf("assets: revalue %d: %w", a.ID, err)
			}
			a.CurrentValue = &v
			return nil
		})
	}
	return g.Wait()
}

// Get returns one asset. Unlike List, a broken acquisition date here
// fails loud.
func (s *Service) Get(ctx context.Context, id int64) (Asset, error) {
	caps := s.caps.Current()
	a, err := s.repo.Get(ctx, id, caps)
	if err != nil {
		return Asset{}, err
	}
	if a.Status == StatusActive && !caps.CurrentValue {
		if a.AcquiredAt.IsZero() {
			return Asset{}, fmt.Errorf("assets: asset %d: %w", id, depreciation.ErrInvalidAcquisitionDate)
		}
		v := s.engine.CurrentValue(a.PurchaseValue, a.AcquiredAt, s.now())
		a.ComputedValue = &v
	}
	return a, nil
}

// Create registers a new asset and records the inbound movement. When
// the schema carries a current value column it is initialised to the
// engine's value as of now, so a freshly created asset already
// reflects its acquisition date.
func (s *Service) Create(ctx context.Context, actorID int64, in Input) (TransitionResult, error) {
	acquiredAt, err := validateInput(in)
	if err != nil {
		return TransitionResult{}, err
	}

	caps := s.caps.Current()
	a := assetFromInput(in, acquiredAt, caps)
	if caps.CurrentValue {
		v := s.engine.CurrentValue(a.PurchaseValue, a.AcquiredAt, s.now())
		a.CurrentValue = &v
	}

	created, err := s.repo.Insert(ctx, a, caps)
	if err != nil {
		return TransitionResult{}, err
	}

	return s.appendTransition(ctx, created, movements.Entry{
		AssetID:     created.ID,
		ActorID:     actorID,
		Kind:        movements.KindInbound,
		Destination: s.sectorName(ctx, created.SectorID),
	})
}

// Update replaces the mutable attributes of an existing asset. A
// written off asset can no longer be edited, and the lifecycle status
// only changes through WriteOff, Transfer and SetStatus so every
// transition leaves a movement behind.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Asset, error) {
	acquiredAt, err := validateInput(in)
	if err != nil {
		return Asset{}, err
	}

	caps := s.caps.Current()
	existing, err := s.repo.Get(ctx, id, caps)
	if err != nil {
		return Asset{}, err
	}
	if existing.Status == StatusWrittenOff {
		return Asset{}, ErrAlreadyWrittenOff
	}
	if in.Status != existing.Status {
		return Asset{}, &ValidationError{Fields: map[string]string{
			"status": "changed outside the lifecycle operations",
		}}
	}

	a := assetFromInput(in, acquiredAt, caps)
	a.ID = id
	if caps.CurrentValue {
		v := s.engine.CurrentValue(a.PurchaseValue, a.AcquiredAt, s.now())
		a.CurrentValue = &v
	}

	if err := s.repo.Update(ctx, id, a, caps); err != nil {
		return Asset{}, err
	}
	return s.repo.Get(ctx, id, caps)
}

// WriteOff retires an asset. The status mutation happens before the
// audit append and is never undone when the append fails; in that case
// the result carries a warning instead of an error.
func (s *Service) WriteOff(ctx context.Context, id, actorID int64) (TransitionResult, error) {
	a, err := s.repo.Get(ctx, id, s.caps.Current())
	if err != nil {
		return TransitionResult{}, err
	}
	if a.Status == StatusWrittenOff {
		return TransitionResult{}, ErrAlreadyWrittenOff
	}

	retiredAt := s.now()
	if err := s.repo.UpdateStatus(ctx, id, StatusWrittenOff, &retiredAt); err != nil {
		return TransitionResult{}, fmt.Errorf("assets: write off %d: %w", id, err)
	}
	a.Status = StatusWrittenOff
	a.RetiredAt = &retiredAt

	return s.appendTransition(ctx, a, movements.Entry{
		AssetID:     id,
		ActorID:     actorID,
		Kind:        movements.KindWriteOff,
		Origin:      s.sectorName(ctx, a.SectorID),
		Destination: "written off",
	})
}

// Transfer moves an asset to another sector.
func (s *Service) Transfer(ctx context.Context, id, actorID, toSectorID int64, notes string) (TransitionResult, error) {
	if toSectorID <= 0 {
		return TransitionResult{}, &ValidationError{Fields: map[string]string{"sector_id": "required"}}
	}

	a, err := s.repo.Get(ctx, id, s.caps.Current())
	if err != nil {
		return TransitionResult{}, err
	}
	if a.Status == StatusWrittenOff {
		return TransitionResult{}, ErrAlreadyWrittenOff
	}

	origin := s.sectorName(ctx, a.SectorID)
	if err := s.repo.UpdateSector(ctx, id, toSectorID); err != nil {
		return TransitionResult{}, fmt.Errorf("assets: transfer %d: %w", id, err)
	}
	a.SectorID = toSectorID

	return s.appendTransition(ctx, a, movements.Entry{
		AssetID:     id,
		ActorID:     actorID,
		Kind:        movements.KindTransfer,
		Origin:      origin,
		Destination: s.sectorName(ctx, toSectorID),
		Notes:       notes,
	})
}

// SetStatus performs a non-terminal lifecycle transition. Write off
// has its own operation and cannot be reached from here.
func (s *Service) SetStatus(ctx context.Context, id, actorID int64, status, notes string) (TransitionResult, error) {
	if status == StatusWrittenOff || !ValidStatus(status) {
		return TransitionResult{}, &ValidationError{Fields: map[string]string{"status": "invalid"}}
	}

	a, err := s.repo.Get(ctx, id, s.caps.Current())
	if err != nil {
		return TransitionResult{}, err
	}
	if a.Status == StatusWrittenOff {
		return TransitionResult{}, ErrAlreadyWrittenOff
	}
	if a.Status == status {
		return TransitionResult{Asset: a}, nil
	}
	if !transitionAllowed(a.Status, status) {
		return TransitionResult{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, a.Status, status)
	}

	if err := s.repo.UpdateStatus(ctx, id, status, nil); err != nil {
		return TransitionResult{}, fmt.Errorf("assets: set status %d: %w", id, err)
	}
	previous := a.Status
	a.Status = status

	location := s.sectorName(ctx, a.SectorID)
	return s.appendTransition(ctx, a, movements.Entry{
		AssetID:     id,
		ActorID:     actorID,
		Kind:        movementKindFor(previous, status),
		Origin:      location,
		Destination: location,
		Notes:       notes,
	})
}

// RevalueAll recomputes the persisted current value of every active
// asset. No-op when the schema has no current value column.
func (s *Service) RevalueAll(ctx context.Context) (int, error) {
	caps := s.caps.Current()
	if !caps.CurrentValue {
		return 0, nil
	}
	items, err := s.repo.List(ctx, Filters{Status: StatusActive}, caps)
	if err != nil {
		return 0, fmt.Errorf("assets: revalue all: %w", err)
	}
	if err := s.revalue(ctx, items); err != nil {
		return 0, err
	}
	count := 0
	for _, a := range items {
		if !a.ValuationStale {
			count++
		}
	}
	return count, nil
}

// appendTransition records one movement for an already persisted
// mutation. An append failure is downgraded to a warning.
func (s *Service) appendTransition(ctx context.Context, a Asset, entry movements.Entry) (TransitionResult, error) {
	m, err := s.log.Append(ctx, entry)
	if err != nil {
		if errors.Is(err, movements.ErrAppendFailed) {
			s.logger.Warn("transition recorded without audit entry",
				"asset_id", a.ID, "kind", entry.Kind, "error", err)
			return TransitionResult{
				Asset:   a,
				Warning: "status updated, but the movement could not be recorded",
			}, nil
		}
		return TransitionResult{}, err
	}
	return TransitionResult{Asset: a, Movement: &m}, nil
}

func (s *Service) sectorName(ctx context.Context, id int64) string {
	if s.sectors == nil {
		return strconv.FormatInt(id, 10)
	}
	name, err := s.sectors.Name(ctx, id)
	if err != nil || name == "" {
		return strconv.FormatInt(id, 10)
	}
	return name
}

func movementKindFor(from, to string) string {
	switch to {
	case StatusUnderMaintenance:
		return movements.KindMaintenance
	case StatusMissing:
		return movements.KindOutbound
	default:
		// Back to active from maintenance or found after missing.
		return movements.KindInbound
	}
}

func assetFromInput(in Input, acquiredAt time.Time, caps schema.Capabilities) Asset {
	a := Asset{
		Name:          in.Name,
		Description:   in.Description,
		SerialNumber:  in.SerialNumber,
		PurchaseValue: in.PurchaseValue,
		AcquiredAt:    acquiredAt,
		Condition:     in.Condition,
		CategoryID:    in.CategoryID,
		SupplierID:    in.SupplierID,
		SectorID:      in.SectorID,
		Status:        in.Status,
	}
	if caps.Quantity {
		a.Quantity = in.Quantity
	}
	if caps.InvoiceNumber {
		a.InvoiceNumber = in.InvoiceNumber
	}
	return a
}
