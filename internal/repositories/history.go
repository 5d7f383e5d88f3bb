package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/catx/internal/models"
	"github.com/desertthunder/catx/internal/shared"
)

// SearchHistoryRepository persists [models.SearchRecord] rows.
type SearchHistoryRepository struct {
	db *sql.DB
}

// NewSearchHistoryRepository creates a new SearchHistoryRepository with the given database connection
func NewSearchHistoryRepository(db *sql.DB) *SearchHistoryRepository {
	return &SearchHistoryRepository{db: db}
}

// Create inserts record with a generated ID.
func (r *SearchHistoryRepository) Create(ctx context.Context, record *models.SearchRecord) error {
	if record.RunID == "" {
		return fmt.Errorf("%w: run id is required", shared.ErrValidation)
	}

	record.ID = shared.GenerateID()

	var errText sql.NullString
	if record.Error != "" {
		errText = sql.NullString{String: record.Error, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO search_history (id, run_id, query, tracks, artists, albums, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.RunID, record.Query, record.Tracks, record.Artists, record.Albums, errText, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert search record: %w", err)
	}
	return nil
}

// ListByRun returns the records of one run in insertion order.
func (r *SearchHistoryRepository) ListByRun(ctx context.Context, runID string) ([]models.SearchRecord, error) {
	return r.list(ctx, `
		SELECT id, run_id, query, tracks, artists, albums, error, created_at
		FROM search_history WHERE run_id = ? ORDER BY created_at, rowid
	`, runID)
}

// Recent returns the latest records across all runs, newest first.
func (r *SearchHistoryRepository) Recent(ctx context.Context, limit int) ([]models.SearchRecord, error) {
	return r.list(ctx, `
		SELECT id, run_id, query, tracks, artists, albums, error, created_at
		FROM search_history ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
}

func (r *SearchHistoryRepository) list(ctx context.Context, query string, args ...any) ([]models.SearchRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query search history: %w", err)
	}
	defer rows.Close()

	var records []models.SearchRecord
	for rows.Next() {
		var record models.SearchRecord
		var errText sql.NullString
		if err := rows.Scan(&record.ID, &record.RunID, &record.Query, &record.Tracks, &record.Artists,
			&record.Albums, &errText, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search record: %w", err)
		}
		record.Error = errText.String
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search history: %w", err)
	}
	return records, nil
}

// HistoryRecorder records batch queries through a [SearchHistoryRepository].
type HistoryRecorder struct {
	repo *SearchHistoryRepository
}

// NewHistoryRecorder creates a new HistoryRecorder with the given repository
func NewHistoryRecorder(repo *SearchHistoryRepository) *HistoryRecorder {
	return &HistoryRecorder{repo: repo}
}

// RecordSearch stores the outcome of one batch query.
func (h *HistoryRecorder) RecordSearch(ctx context.Context, runID, query string, results *models.SearchResults, searchErr error) error {
	return h.repo.Create(ctx, models.NewSearchRecord(runID, query, results, searchErr))
}
