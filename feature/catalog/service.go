package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"catalog-sync/core/syncrun"
	"catalog-sync/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Syncer is the orchestrator surface the HTTP layer depends on.
type Syncer interface {
	Trigger() (string, error)
	Status() syncrun.Status
}

// Service handles catalog operations.
type Service struct {
	syncer Syncer
	store  *RunStore
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a catalog service.
func NewService(syncer Syncer, store *RunStore, db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		syncer: syncer,
		store:  store,
		db:     db,
		logger: logger,
	}
}

// TriggerSync requests a sync run and returns its id. syncrun.ErrBusy
// passes through when the queue is full.
func (s *Service) TriggerSync() (string, error) {
	return s.syncer.Trigger()
}

// Status returns the orchestrator's current state and last run.
func (s *Service) Status() syncrun.Status {
	return s.syncer.Status()
}

// RecentRuns returns the audit history, newest first.
func (s *Service) RecentRuns(ctx context.Context, limit int) ([]models.SyncRunRecord, error) {
	return s.store.Recent(ctx, limit)
}

// EntryDetail is the API representation of one reconciled entry.
type EntryDetail struct {
	Key         string            `json:"key"`
	Name        string            `json:"name"`
	Fields      map[string]string `json:"fields"`
	Provenance  map[string]string `json:"provenance"`
	ContentHash string            `json:"content_hash"`
	UpdatedAt   string            `json:"updated_at"`
}

// GetEntry looks up one entry by external key. Returns
// gorm.ErrRecordNotFound when the key is unknown.
func (s *Service) GetEntry(ctx context.Context, key string) (*EntryDetail, error) {
	var entry models.Entry
	if err := s.db.WithContext(ctx).
		Where("external_key = ?", key).
		First(&entry).Error; err != nil {
		return nil, err
	}

	detail := &EntryDetail{
		Key:         entry.ExternalKey,
		Name:        entry.Name,
		ContentHash: entry.ContentHash,
		UpdatedAt:   entry.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if len(entry.Payload) > 0 {
		if err := json.Unmarshal(entry.Payload, &detail.Fields); err != nil {
			return nil, fmt.Errorf("corrupt payload for %s: %w", key, err)
		}
	}
	if len(entry.Provenance) > 0 {
		if err := json.Unmarshal(entry.Provenance, &detail.Provenance); err != nil {
			return nil, fmt.Errorf("corrupt provenance for %s: %w", key, err)
		}
	}
	return detail, nil
}
