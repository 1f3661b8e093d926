package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS scrape_jobs (
	id                 TEXT PRIMARY KEY,
	url                TEXT        NOT NULL,
	month              INTEGER     NOT NULL,
	year               INTEGER     NOT NULL,
	total_listings     INTEGER     NOT NULL DEFAULT 0,
	processed_listings INTEGER     NOT NULL DEFAULT 0,
	status             TEXT        NOT NULL,
	listings           JSONB       NOT NULL DEFAULT '[]',
	error_message      TEXT        NOT NULL DEFAULT '',
	created_date       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scrape_jobs_created ON scrape_jobs(created_date DESC);
`

const selectColumns = `id, url, month, year, total_listings, processed_listings, status, listings, error_message, created_date`

// PostgresStore persists records in the scrape_jobs table.
type PostgresStore struct{ pool *pgxpool.Pool }

// NewPostgresStore creates the table if needed.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Insert(ctx context.Context, rec *Record) error {
	listings, err := json.Marshal(nonNilListings(rec.Listings))
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO scrape_jobs (`+selectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.URL, rec.Month, rec.Year, rec.TotalListings, rec.ProcessedListings,
		string(rec.Status), listings, rec.ErrorMessage, rec.CreatedDate)
	if err != nil {
		return fmt.Errorf("insert job %s: %w", rec.ID, err)
	}
	return nil
}

func (s *PostgresStore) UpdateFields(ctx context.Context, id string, f Fields) error {
	query, args, err := buildUpdate(id, f)
	if err != nil {
		return err
	}
	if query == "" {
		return nil
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// buildUpdate renders an UPDATE touching only the set fields.
func buildUpdate(id string, f Fields) (string, []any, error) {
	if f.Empty() {
		return "", nil, nil
	}
	var sets []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if f.Status != nil {
		add("status", string(*f.Status))
	}
	if f.TotalListings != nil {
		add("total_listings", *f.TotalListings)
	}
	if f.ProcessedListings != nil {
		add("processed_listings", *f.ProcessedListings)
	}
	if f.Listings != nil {
		b, err := json.Marshal(f.Listings)
		if err != nil {
			return "", nil, err
		}
		add("listings", b)
	}
	if f.ErrorMessage != nil {
		add("error_message", *f.ErrorMessage)
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE scrape_jobs SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	return query, args, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM scrape_jobs WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return rec, nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = RecentLimit
	}
	rows, err := s.pool.Query(ctx, `SELECT `+selectColumns+` FROM scrape_jobs ORDER BY created_date DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent jobs: %w", err)
	}
	defer rows.Close()

	out := []*Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		rec      Record
		status   string
		listings []byte
	)
	if err := row.Scan(&rec.ID, &rec.URL, &rec.Month, &rec.Year, &rec.TotalListings,
		&rec.ProcessedListings, &status, &listings, &rec.ErrorMessage, &rec.CreatedDate); err != nil {
		return nil, err
	}
	rec.Status = Status(status)
	if !IsKnownStatus(rec.Status) {
		return nil, fmt.Errorf("job %s has unknown status %q", rec.ID, status)
	}
	if err := json.Unmarshal(listings, &rec.Listings); err != nil {
		return nil, fmt.Errorf("decode listings for %s: %w", rec.ID, err)
	}
	rec.Listings = nonNilListings(rec.Listings)
	return &rec, nil
}

func nonNilListings(l []Listing) []Listing {
	if l == nil {
		return []Listing{}
	}
	return l
}
