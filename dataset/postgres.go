package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Querier is the part of pgx.Conn and pgxpool.Pool the descriptor needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PGDescriptor describes the base tables of one PostgreSQL schema. Values
// are read as text, rows ordered by every column so the output is stable.
type PGDescriptor struct {
	db     Querier
	schema string
}

func NewPGDescriptor(db Querier, schema string) *PGDescriptor {
	if schema == "" {
		schema = "public"
	}
	return &PGDescriptor{db: db, schema: schema}
}

func (d *PGDescriptor) Tables(ctx context.Context) ([]string, error) {
	rows, err := d.db.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`, d.schema)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (d *PGDescriptor) TableColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := d.db.Query(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, d.schema, table)
	if err != nil {
		return nil, err
	}
	cols, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s.%s has no columns or does not exist", d.schema, table)
	}
	return cols, nil
}

func (d *PGDescriptor) TableValues(ctx context.Context, table string) ([]Row, error) {
	cols, err := d.TableColumns(ctx, table)
	if err != nil {
		return nil, err
	}

	selects := make([]string, len(cols))
	order := make([]string, len(cols))
	for i, c := range cols {
		selects[i] = pgx.Identifier{c}.Sanitize() + "::text"
		order[i] = fmt.Sprint(i + 1)
	}
	sql := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(selects, ", "),
		pgx.Identifier{d.schema, table}.Sanitize(),
		strings.Join(order, ", "))

	rows, err := d.db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		row := make(Row, len(cols))
		dest := make([]any, len(cols))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
