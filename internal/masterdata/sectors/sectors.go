// Package sectors manages physical locations assets are assigned to.
package sectors

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zecadelgado/patp/internal/masterdata/shared"
)

type Sector struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Sector, error)
	Get(ctx context.Context, id int64) (Sector, error)
	Create(ctx context.Context, sector Sector) (Sector, error)
	Update(ctx context.Context, id int64, sector Sector) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Sector, error) {
	filters.Normalize()
	query := `SELECT id, name, location, created_at FROM sectors`
	args := []interface{}{}
	if filters.Search != "" {
		query += ` WHERE name ILIKE $1 OR location ILIKE $1`
		args = append(args, "%"+filters.Search+"%")
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Sector
	for rows.Next() {
		var s Sector
		if err := rows.Scan(&s.ID, &s.Name, &s.Location, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Sector, error) {
	var s Sector
	err := r.db.QueryRow(ctx,
		`SELECT id, name, location, created_at FROM sectors WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Location, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sector{}, shared.ErrNotFound
	}
	return s, err
}

func (r *repository) Create(ctx context.Context, sector Sector) (Sector, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO sectors (name, location, created_at) VALUES ($1, $2, NOW()) RETURNING id, created_at`,
		sector.Name, sector.Location).Scan(&sector.ID, &sector.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Sector{}, shared.ErrDuplicate
	}
	if err != nil {
		return Sector{}, err
	}
	return sector, nil
}

func (r *repository) Update(ctx context.Context, id int64, sector Sector) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE sectors SET name = $1, location = $2 WHERE id = $3`,
		sector.Name, sector.Location, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Sector, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Sector, error) {
	if id <= 0 {
		return Sector{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, sector Sector) (Sector, error) {
	sector.Name = strings.TrimSpace(sector.Name)
	if sector.Name == "" {
		return Sector{}, errors.New("sectors: name is required")
	}
	return s.repo.Create(ctx, sector)
}

func (s *Service) Update(ctx context.Context, id int64, sector Sector) error {
	sector.Name = strings.TrimSpace(sector.Name)
	if sector.Name == "" {
		return errors.New("sectors: name is required")
	}
	return s.repo.Update(ctx, id, sector)
}

// Name resolves a sector's display name. Missing sectors resolve to an
// empty string so callers can fall back to the raw id.
func (s *Service) Name(ctx context.Context, id int64) (string, error) {
	sector, err := s.Get(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return sector.Name, nil
}
