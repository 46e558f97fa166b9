package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"catalog-sync/core/syncrun"
	"catalog-sync/feature/catalog/models"

	"gorm.io/gorm"
)

// RunStore persists finalized sync runs for audit.
type RunStore struct {
	db *gorm.DB
}

// NewRunStore creates a run store.
func NewRunStore(db *gorm.DB) *RunStore {
	return &RunStore{db: db}
}

// Save writes a finalized run. Runs are append-only; an existing id is
// never overwritten.
func (s *RunStore) Save(ctx context.Context, run *syncrun.Run) error {
	sourceCounts, err := json.Marshal(run.Sources)
	if err != nil {
		return fmt.Errorf("failed to encode source counts for run %s: %w", run.ID, err)
	}

	record := models.SyncRunRecord{
		ID:           run.ID,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
		Status:       string(run.Outcome),
		SourceCounts: sourceCounts,
		Rejected:     run.Rejected,
		Conflicts:    run.Conflicts,
		Inserts:      run.Inserts,
		Updates:      run.Updates,
		NoOps:        run.NoOps,
		Deletes:      run.Deletes,
		Error:        run.Error,
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return classify(err)
	}
	return nil
}

// Recent returns the most recently started runs, newest first.
func (s *RunStore) Recent(ctx context.Context, limit int) ([]models.SyncRunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var records []models.SyncRunRecord
	if err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, classify(err)
	}
	return records, nil
}
