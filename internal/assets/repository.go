package assets

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zecadelgado/patp/internal/schema"
)

// Repository persists asset records. Every method takes the capability
// snapshot so queries only touch columns that exist.
type Repository interface {
	List(ctx context.Context, filters Filters, caps schema.Capabilities) ([]Asset, error)
	Get(ctx context.Context, id int64, caps schema.Capabilities) (Asset, error)
	Insert(ctx context.Context, asset Asset, caps schema.Capabilities) (Asset, error)
	Update(ctx context.Context, id int64, asset Asset, caps schema.Capabilities) error
	UpdateCurrentValue(ctx context.Context, id int64, value float64) error
	UpdateSector(ctx context.Context, id int64, sectorID int64) error
	UpdateStatus(ctx context.Context, id int64, status string, retiredAt *time.Time) error
}

type repository struct {
	db    *pgxpool.Pool
	table string
}

func NewRepository(db *pgxpool.Pool, table string) Repository {
	return &repository{db: db, table: table}
}

var baseColumns = []string{
	"id", "name", "description", "serial_no", "purchase_value",
	"acquired_at", "condition", "category_id", "supplier_id",
	"sector_id", "status", "retired_at",
}

func selectColumns(caps schema.Capabilities) []string {
	cols := append([]string{}, baseColumns...)
	if caps.CurrentValue {
		cols = append(cols, schema.ColumnCurrentValue)
	}
	if caps.Quantity {
		cols = append(cols, schema.ColumnQuantity)
	}
	if caps.InvoiceNumber {
		cols = append(cols, schema.ColumnInvoiceNumber)
	}
	return cols
}

func scanDest(a *Asset, caps schema.Capabilities) []interface{} {
	dest := []interface{}{
		&a.ID, &a.Name, &a.Description, &a.SerialNumber, &a.PurchaseValue,
		&a.AcquiredAt, &a.Condition, &a.CategoryID, &a.SupplierID,
		&a.SectorID, &a.Status, &a.RetiredAt,
	}
	if caps.CurrentValue {
		dest = append(dest, &a.CurrentValue)
	}
	if caps.Quantity {
		dest = append(dest, &a.Quantity)
	}
	if caps.InvoiceNumber {
		dest = append(dest, &a.InvoiceNumber)
	}
	return dest
}

func (r *repository) List(ctx context.Context, filters Filters, caps schema.Capabilities) ([]Asset, error) {
	query := `SELECT ` + strings.Join(selectColumns(caps), ", ") + ` FROM ` + r.table + ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Text != "" {
		argCount++
		p := strconv.Itoa(argCount)
		query += ` AND (name ILIKE $` + p + ` OR description ILIKE $` + p + ` OR serial_no ILIKE $` + p + `)`
		args = append(args, "%"+filters.Text+"%")
	}
	if filters.CategoryID > 0 {
		argCount++
		query += ` AND category_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.CategoryID)
	}
	if filters.SectorID > 0 {
		argCount++
		query += ` AND sector_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.SectorID)
	}
	if filters.Status != "" {
		argCount++
		query += ` AND status = $` + strconv.Itoa(argCount)
		args = append(args, filters.Status)
	}

	query += ` ORDER BY name ASC, id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Asset
	for rows.Next() {
		var a Asset
		if err := rows.Scan(scanDest(&a, caps)...); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64, caps schema.Capabilities) (Asset, error) {
	query := `SELECT ` + strings.Join(selectColumns(caps), ", ") + ` FROM ` + r.table + ` WHERE id = $1`

	var a Asset
	err := r.db.QueryRow(ctx, query, id).Scan(scanDest(&a, caps)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Asset{}, ErrNotFound
	}
	if err != nil {
		return Asset{}, err
	}
	return a, nil
}

func (r *repository) Insert(ctx context.Context, asset Asset, caps schema.Capabilities) (Asset, error) {
	cols := []string{
		"name", "description", "serial_no", "purchase_value",
		"acquired_at", "condition", "category_id", "supplier_id",
		"sector_id", "status",
	}
	args := []interface{}{
		asset.Name, asset.Description, asset.SerialNumber, asset.PurchaseValue,
		asset.AcquiredAt, asset.Condition, asset.CategoryID, asset.SupplierID,
		asset.SectorID, asset.Status,
	}
	if caps.CurrentValue {
		cols = append(cols, schema.ColumnCurrentValue)
		args = append(args, asset.CurrentValue)
	}
	if caps.Quantity {
		cols = append(cols, schema.ColumnQuantity)
		args = append(args, asset.Quantity)
	}
	if caps.InvoiceNumber {
		cols = append(cols, schema.ColumnInvoiceNumber)
		args = append(args, asset.InvoiceNumber)
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	query := `INSERT INTO ` + r.table + ` (` + strings.Join(cols, ", ") + `)
		VALUES (` + strings.Join(placeholders, ", ") + `) RETURNING id`

	if err := r.db.QueryRow(ctx, query, args...).Scan(&asset.ID); err != nil {
		return Asset{}, mapWriteError(err)
	}
	return asset, nil
}

func (r *repository) Update(ctx context.Context, id int64, asset Asset, caps schema.Capabilities) error {
	sets := []string{
		"name", "description", "serial_no", "purchase_value",
		"acquired_at", "condition", "category_id", "supplier_id",
		"sector_id", "status",
	}
	args := []interface{}{
		asset.Name, asset.Description, asset.SerialNumber, asset.PurchaseValue,
		asset.AcquiredAt, asset.Condition, asset.CategoryID, asset.SupplierID,
		asset.SectorID, asset.Status,
	}
	if caps.CurrentValue {
		sets = append(sets, schema.ColumnCurrentValue)
		args = append(args, asset.CurrentValue)
	}
	if caps.Quantity {
		sets = append(sets, schema.ColumnQuantity)
		args = append(args, asset.Quantity)
	}
	if caps.InvoiceNumber {
		sets = append(sets, schema.ColumnInvoiceNumber)
		args = append(args, asset.InvoiceNumber)
	}

	clauses := make([]string, len(sets))
	for i, col := range sets {
		clauses[i] = col + " = $" + strconv.Itoa(i+1)
	}
	args = append(args, id)
	query := `UPDATE ` + r.table + ` SET ` + strings.Join(clauses, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateCurrentValue(ctx context.Context, id int64, value float64) error {
	query := `UPDATE ` + r.table + ` SET current_value = $1 WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, value, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateSector(ctx context.Context, id int64, sectorID int64) error {
	query := `UPDATE ` + r.table + ` SET sector_id = $1 WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, sectorID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status string, retiredAt *time.Time) error {
	query := `UPDATE ` + r.table + ` SET status = $1, retired_at = $2 WHERE id = $3`
	tag, err := r.db.Exec(ctx, query, status, retiredAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateSerial
	}
	return err
}
