// Package schema detects which optional asset columns exist in the
// underlying database so the rest of the application can adapt its
// queries to older installations.
package schema

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Column names whose presence is optional across deployments.
const (
	ColumnCurrentValue  = "current_value"
	ColumnQuantity      = "quantity"
	ColumnInvoiceNumber = "invoice_no"
)

// Capabilities reports which optional columns the asset table carries.
type Capabilities struct {
	CurrentValue  bool
	Quantity      bool
	InvoiceNumber bool
}

// ColumnSource lists the column names of a table.
type ColumnSource interface {
	Columns(ctx context.Context, table string) ([]string, error)
}

// PGColumnSource reads column metadata from information_schema.
type PGColumnSource struct {
	pool *pgxpool.Pool
}

// NewPGColumnSource builds a column source backed by the given pool.
func NewPGColumnSource(pool *pgxpool.Pool) *PGColumnSource {
	return &PGColumnSource{pool: pool}
}

// Columns returns the column names of table in the current schema.
func (s *PGColumnSource) Columns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1`, table)
	if err != nil {
		return nil, fmt.Errorf("schema: query columns: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("schema: scan column: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schema: read columns: %w", err)
	}
	return names, nil
}

// Probe caches the capability snapshot for the asset table. The snapshot
// is replaced wholesale on Refresh, never mutated in place.
type Probe struct {
	source ColumnSource
	table  string
	logger *slog.Logger

	current atomic.Pointer[Capabilities]
}

// NewProbe builds a probe for the given table. Until the first successful
// Refresh, Current reports no optional columns.
func NewProbe(source ColumnSource, table string, logger *slog.Logger) *Probe {
	p := &Probe{source: source, table: table, logger: logger}
	p.current.Store(&Capabilities{})
	return p
}

// Refresh re-reads the table's columns and swaps in a fresh snapshot.
// On failure the previous snapshot is kept.
func (p *Probe) Refresh(ctx context.Context) error {
	names, err := p.source.Columns(ctx, p.table)
	if err != nil {
		return fmt.Errorf("schema: refresh capabilities: %w", err)
	}

	caps := &Capabilities{}
	for _, name := range names {
		switch name {
		case ColumnCurrentValue:
			caps.CurrentValue = true
		case ColumnQuantity:
			caps.Quantity = true
		case ColumnInvoiceNumber:
			caps.InvoiceNumber = true
		}
	}
	p.current.Store(caps)

	p.logger.Info("schema capabilities refreshed",
		"table", p.table,
		"current_value", caps.CurrentValue,
		"quantity", caps.Quantity,
		"invoice_no", caps.InvoiceNumber,
	)
	return nil
}

// Current returns the latest capability snapshot.
func (p *Probe) Current() Capabilities {
	return *p.current.Load()
}
