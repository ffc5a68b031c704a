package movements

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Service appends and queries audit movements. It never retries a
// failed append; compensation policy belongs to the caller.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Append writes exactly one movement. A failed write is reported as
// ErrAppendFailed so callers can tell it apart from their own errors.
func (s *Service) Append(ctx context.Context, entry Entry) (Movement, error) {
	if entry.AssetID <= 0 {
		return Movement{}, fmt.Errorf("%w: asset id required", ErrAppendFailed)
	}
	if entry.ActorID <= 0 {
		return Movement{}, fmt.Errorf("%w: actor id required", ErrAppendFailed)
	}
	if !ValidKind(entry.Kind) {
		return Movement{}, fmt.Errorf("%w: unknown kind %q", ErrAppendFailed, entry.Kind)
	}

	ref := uuid.NewString()
	m, err := s.repo.Insert(ctx, entry, ref)
	if err != nil {
		s.logger.Error("movement append failed",
			"asset_id", entry.AssetID, "kind", entry.Kind, "error", err)
		return Movement{}, fmt.Errorf("%w: %v", ErrAppendFailed, err)
	}
	return m, nil
}

// History lists movements newest first.
func (s *Service) History(ctx context.Context, filters HistoryFilters) ([]Movement, int, error) {
	if filters.Kind != "" && !ValidKind(filters.Kind) {
		return nil, 0, fmt.Errorf("movements: unknown kind %q", filters.Kind)
	}
	return s.repo.History(ctx, filters)
}
