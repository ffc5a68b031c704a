package movements

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists movements. Insert assigns the id, ref and the
// server-side timestamp; there is no update or delete.
type Repository interface {
	Insert(ctx context.Context, entry Entry, ref string) (Movement, error)
	History(ctx context.Context, filters HistoryFilters) ([]Movement, int, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, entry Entry, ref string) (Movement, error) {
	query := `INSERT INTO asset_movements (ref, asset_id, actor_id, kind, origin, destination, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at`

	m := Movement{
		Ref:         ref,
		AssetID:     entry.AssetID,
		ActorID:     entry.ActorID,
		Kind:        entry.Kind,
		Origin:      entry.Origin,
		Destination: entry.Destination,
		Notes:       entry.Notes,
	}
	err := r.db.QueryRow(ctx, query,
		ref, entry.AssetID, entry.ActorID, entry.Kind,
		entry.Origin, entry.Destination, entry.Notes,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return Movement{}, err
	}
	return m, nil
}

func (r *repository) History(ctx context.Context, filters HistoryFilters) ([]Movement, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.AssetID > 0 {
		argCount++
		where += ` AND asset_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.AssetID)
	}
	if filters.Kind != "" {
		argCount++
		where += ` AND kind = $` + strconv.Itoa(argCount)
		args = append(args, filters.Kind)
	}
	if !filters.From.IsZero() {
		argCount++
		where += ` AND created_at >= $` + strconv.Itoa(argCount)
		args = append(args, filters.From)
	}
	if !filters.To.IsZero() {
		argCount++
		where += ` AND created_at <= $` + strconv.Itoa(argCount)
		args = append(args, filters.To)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM asset_movements` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, ref, asset_id, actor_id, kind, origin, destination, notes, created_at
		FROM asset_movements` + where + ` ORDER BY created_at DESC, id DESC`

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := filters.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var history []Movement
	for rows.Next() {
		var m Movement
		err := rows.Scan(&m.ID, &m.Ref, &m.AssetID, &m.ActorID, &m.Kind,
			&m.Origin, &m.Destination, &m.Notes, &m.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		history = append(history, m)
	}
	return history, total, rows.Err()
}
