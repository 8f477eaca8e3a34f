package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

const createCacheTable = `
CREATE TABLE IF NOT EXISTS cache (
	brand TEXT,
	model TEXT,
	min_mileage INTEGER,
	max_mileage INTEGER,
	timestamp TEXT,
	filename TEXT
)`

const createLookupIndex = `CREATE INDEX IF NOT EXISTS idx_cache_lookup ON cache (brand, model, max_mileage, timestamp)`

// SchemaStatus describes the cache table.
type SchemaStatus struct {
	Columns []string
	Entries int
}

// migrate creates the cache table and applies additive upgrades to tables
// written by older versions (which had no min_mileage column).
func (d *Database) migrate(ctx context.Context) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createCacheTable); err != nil {
		return errors.Wrap(err, "failed to create cache table")
	}

	columns, err := tableColumns(ctx, tx, cacheTable)
	if err != nil {
		return err
	}

	if !contains(columns, "min_mileage") {
		d.log.Info().Msg("Adding min_mileage column to cache table")
		if _, err := tx.ExecContext(ctx, "ALTER TABLE cache ADD COLUMN min_mileage INTEGER DEFAULT 0"); err != nil {
			return errors.Wrap(err, "failed to add min_mileage column")
		}
	}

	if _, err := tx.ExecContext(ctx, createLookupIndex); err != nil {
		return errors.Wrap(err, "failed to create lookup index")
	}

	return tx.Commit()
}

// Status reports the current columns and the number of cache entries.
func (d *Database) Status(ctx context.Context) (*SchemaStatus, error) {
	columns, err := tableColumns(ctx, d.db, cacheTable)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{Columns: columns}
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cache").Scan(&status.Entries); err != nil {
		return nil, errors.Wrap(err, "failed to count cache entries")
	}

	return status, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func tableColumns(ctx context.Context, q querier, table string) ([]string, error) {
	rows, err := q.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read table info")
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, errors.Wrap(err, "failed to scan table info")
		}
		columns = append(columns, name)
	}

	return columns, errors.Wrap(rows.Err(), "failed to read table info")
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
