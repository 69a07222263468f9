package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.IndexRunStore = (*IndexRunStore)(nil)

const indexRunColumns = `id, mode, status, document_count, error, started_at, completed_at`

// IndexRunStore implements driven.IndexRunStore using PostgreSQL
type IndexRunStore struct {
	db *DB
}

// NewIndexRunStore creates a new IndexRunStore
func NewIndexRunStore(db *DB) *IndexRunStore {
	return &IndexRunStore{db: db}
}

// Save creates or updates a run
func (s *IndexRunStore) Save(ctx context.Context, run *domain.IndexRun) error {
	query := `
		INSERT INTO index_runs (` + indexRunColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			mode = EXCLUDED.mode,
			status = EXCLUDED.status,
			document_count = EXCLUDED.document_count,
			error = EXCLUDED.error,
			completed_at = EXCLUDED.completed_at
	`

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		string(run.Mode),
		string(run.Status),
		run.DocumentCount,
		run.Error,
		run.StartedAt,
		NullTime(run.CompletedAt),
	)
	return err
}

// Get retrieves a run by ID
func (s *IndexRunStore) Get(ctx context.Context, id string) (*domain.IndexRun, error) {
	query := `SELECT ` + indexRunColumns + ` FROM index_runs WHERE id = $1`
	return scanIndexRun(s.db.QueryRowContext(ctx, query, id))
}

// Latest retrieves the most recently started run
func (s *IndexRunStore) Latest(ctx context.Context) (*domain.IndexRun, error) {
	query := `SELECT ` + indexRunColumns + ` FROM index_runs ORDER BY started_at DESC LIMIT 1`
	return scanIndexRun(s.db.QueryRowContext(ctx, query))
}

// List retrieves the most recent runs, newest first
func (s *IndexRunStore) List(ctx context.Context, limit int) ([]*domain.IndexRun, error) {
	query := `SELECT ` + indexRunColumns + ` FROM index_runs ORDER BY started_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.IndexRun
	for rows.Next() {
		run, err := scanIndexRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIndexRun(row rowScanner) (*domain.IndexRun, error) {
	var run domain.IndexRun
	var mode, status string
	var completedAt sql.NullTime

	err := row.Scan(
		&run.ID,
		&mode,
		&status,
		&run.DocumentCount,
		&run.Error,
		&run.StartedAt,
		&completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	run.Mode = domain.IndexRunMode(mode)
	run.Status = domain.IndexRunStatus(status)
	run.CompletedAt = TimePtr(completedAt)
	return &run, nil
}
