// Package categories manages the asset category catalogue.
package categories

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

// defaultNames is seeded on startup so a fresh database always offers
// the base catalogue.
var defaultNames = []string{"Eletronico", "Imobilizado", "Movel", "Utilitarios"}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Category, error)
	Get(ctx context.Context, id int64) (Category, error)
	Create(ctx context.Context, name string) (Category, error)
	EnsureDefaults(ctx context.Context) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Category, error) {
	filters.Normalize()
	query := `SELECT id, name, created_at FROM categories`
	args := []interface{}{}
	if filters.Search != "" {
		query += ` WHERE name ILIKE $1`
		args = append(args, "%"+filters.Search+"%")
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, name string) (Category, error) {
	var c Category
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (name, created_at) VALUES ($1, NOW()) RETURNING id, name, created_at`,
		name).Scan(&c.ID, &c.Name, &c.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Category{}, shared.ErrDuplicate
	}
	return c, err
}

func (r *repository) EnsureDefaults(ctx context.Context) error {
	for _, name := range defaultNames {
		_, err := r.db.Exec(ctx,
			`INSERT INTO categories (name, created_at) VALUES ($1, NOW()) ON CONFLICT (name) DO NOTHING`,
			name)
		if err != nil {
			return err
		}
	}
	return nil
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Category, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	if id <= 0 {
		return Category{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, errors.New("categories: name is required")
	}
	return s.repo.Create(ctx, name)
}

// EnsureDefaults seeds the base catalogue, ignoring names that exist.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	return s.repo.EnsureDefaults(ctx)
}
