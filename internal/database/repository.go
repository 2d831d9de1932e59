package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-jobtailor/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type Repository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// Poolers in transaction mode do not support prepared statements
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS tracked_jobs (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	company     TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	url         TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'Saved',
	date_saved  TEXT NOT NULL DEFAULT '',
	notes       TEXT NOT NULL DEFAULT '',
	match_score INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS saved_searches (
	id         TEXT PRIMARY KEY,
	query      TEXT NOT NULL,
	location   TEXT NOT NULL DEFAULT '',
	match_key  TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// EnsureSchema creates the tables when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// ---------------- TRACKED JOBS ----------------

const trackedJobColumns = `id, title, company, location, description, url, status, date_saved, notes, match_score, created_at, updated_at`

func scanTrackedJob(row pgx.Row) (*models.TrackedJob, error) {
	var (
		j      models.TrackedJob
		status string
	)
	err := row.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Description, &j.URL,
		&status, &j.DateSaved, &j.Notes, &j.MatchScore, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.Status = models.JobStatus(status)
	return &j, nil
}

// TrackJob inserts job unless its id is already tracked, in which case the
// stored record is returned unchanged and created is false.
func (r *Repository) TrackJob(ctx context.Context, job *models.TrackedJob) (*models.TrackedJob, bool, error) {
	if err := job.Normalize(time.Now()); err != nil {
		return nil, false, err
	}

	query := `
		INSERT INTO tracked_jobs (id, title, company, location, description, url, status, date_saved, notes, match_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
		RETURNING ` + trackedJobColumns
	saved, err := scanTrackedJob(r.db.QueryRow(ctx, query, job.ID, job.Title, job.Company, job.Location,
		job.Description, job.URL, string(job.Status), job.DateSaved, job.Notes, job.MatchScore))
	if err == nil {
		return saved, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to track job: %w", err)
	}

	existing, err := r.GetTrackedJob(ctx, job.ID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *Repository) GetTrackedJob(ctx context.Context, id string) (*models.TrackedJob, error) {
	job, err := scanTrackedJob(r.db.QueryRow(ctx, `SELECT `+trackedJobColumns+` FROM tracked_jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("tracked job %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tracked job: %w", err)
	}
	return job, nil
}

func (r *Repository) ListTrackedJobs(ctx context.Context) ([]models.TrackedJob, error) {
	rows, err := r.db.Query(ctx, `SELECT `+trackedJobColumns+` FROM tracked_jobs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked jobs: %w", err)
	}
	defer rows.Close()

	jobs := []models.TrackedJob{}
	for rows.Next() {
		j, err := scanTrackedJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tracked job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// UpdateJobStatus moves a tracked job to status.
func (r *Repository) UpdateJobStatus(ctx context.Context, id string, status models.JobStatus) (*models.TrackedJob, error) {
	query := `UPDATE tracked_jobs SET status = $1, updated_at = now() WHERE id = $2 RETURNING ` + trackedJobColumns
	job, err := scanTrackedJob(r.db.QueryRow(ctx, query, string(status), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("tracked job %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}
	return job, nil
}

// DeleteTrackedJob is a no-op for unknown ids.
func (r *Repository) DeleteTrackedJob(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM tracked_jobs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete tracked job: %w", err)
	}
	return nil
}

// ---------------- SAVED SEARCHES ----------------

const savedSearchColumns = `id, query, location, created_at`

func scanSavedSearch(row pgx.Row) (*models.SavedSearch, error) {
	var s models.SavedSearch
	if err := row.Scan(&s.ID, &s.Query, &s.Location, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSearch stores s unless an equivalent search exists (see MatchKey), in
// which case that one is returned and created is false.
func (r *Repository) SaveSearch(ctx context.Context, s *models.SavedSearch) (*models.SavedSearch, bool, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	key := s.MatchKey()

	query := `
		INSERT INTO saved_searches (id, query, location, match_key)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (match_key) DO NOTHING
		RETURNING ` + savedSearchColumns
	saved, err := scanSavedSearch(r.db.QueryRow(ctx, query, s.ID, s.Query, s.Location, key))
	if err == nil {
		return saved, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to save search: %w", err)
	}

	existing, err := scanSavedSearch(r.db.QueryRow(ctx, `SELECT `+savedSearchColumns+` FROM saved_searches WHERE match_key = $1`, key))
	if err != nil {
		return nil, false, fmt.Errorf("failed to load existing search: %w", err)
	}
	return existing, false, nil
}

func (r *Repository) ListSavedSearches(ctx context.Context) ([]models.SavedSearch, error) {
	rows, err := r.db.Query(ctx, `SELECT `+savedSearchColumns+` FROM saved_searches ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved searches: %w", err)
	}
	defer rows.Close()

	searches := []models.SavedSearch{}
	for rows.Next() {
		s, err := scanSavedSearch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved search: %w", err)
		}
		searches = append(searches, *s)
	}
	return searches, rows.Err()
}

func (r *Repository) DeleteSavedSearch(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM saved_searches WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete saved search: %w", err)
	}
	return nil
}
