package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"carscout/internal/models"
)

const cacheTable = "cache"

type Database struct {
	db       *sql.DB
	log      zerolog.Logger
	squirrel sq.StatementBuilderType
}

// NewDatabase opens the cache database and brings its schema up to date.
func NewDatabase(dbPath string, log zerolog.Logger) (*Database, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	database := &Database{
		db:       db,
		log:      log.With().Str("module", "database").Logger(),
		squirrel: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}

	if err := database.migrate(context.Background()); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to initialize schema")
	}

	return database, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// LatestEntry returns the most recent cache entry for the given search, or
// nil when there is none. Brand and model match case-insensitively.
func (d *Database) LatestEntry(ctx context.Context, brand, model string, maxMileage int) (*models.CacheEntry, error) {
	query, args, err := d.selectEntries().
		Where(sq.Expr("brand = ? COLLATE NOCASE", brand)).
		Where(sq.Expr("model = ? COLLATE NOCASE", model)).
		Where(sq.Eq{"max_mileage": maxMileage}).
		OrderBy("timestamp DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	d.log.Trace().Str("query", query).Interface("args", args).Msg("LatestEntry")

	entry, err := scanEntry(d.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up cache entry")
	}

	return entry, nil
}

// InsertEntry appends a cache entry. Rows are never updated or removed.
func (d *Database) InsertEntry(ctx context.Context, entry models.CacheEntry) error {
	query, args, err := d.squirrel.
		Insert(cacheTable).
		Columns("brand", "model", "min_mileage", "max_mileage", "timestamp", "filename").
		Values(entry.Brand, entry.Model, entry.MinMileage, entry.MaxMileage, entry.Timestamp, entry.Filename).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	d.log.Trace().Str("query", query).Interface("args", args).Msg("InsertEntry")

	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "failed to insert cache entry")
	}

	return nil
}

// ListEntries returns the newest entries first. A limit of 0 returns all.
func (d *Database) ListEntries(ctx context.Context, limit int) ([]models.CacheEntry, error) {
	builder := d.selectEntries().OrderBy("timestamp DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list cache entries")
	}
	defer rows.Close()

	var entries []models.CacheEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error scanning row")
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating rows")
	}

	return entries, nil
}

func (d *Database) selectEntries() sq.SelectBuilder {
	return d.squirrel.
		Select("brand", "model", "COALESCE(min_mileage, 0)", "max_mileage", "timestamp", "filename").
		From(cacheTable)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*models.CacheEntry, error) {
	var entry models.CacheEntry
	var brand, model, timestamp, filename sql.NullString
	var maxMileage sql.NullInt64

	if err := row.Scan(&brand, &model, &entry.MinMileage, &maxMileage, &timestamp, &filename); err != nil {
		return nil, err
	}

	entry.Brand = brand.String
	entry.Model = model.String
	entry.MaxMileage = int(maxMileage.Int64)
	entry.Timestamp = timestamp.String
	entry.Filename = filename.String

	return &entry, nil
}
