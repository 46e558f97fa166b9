package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"catalog-sync/core/changeset"
	"catalog-sync/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Writer applies changesets to the catalog tables. It implements the
// orchestrator's persistence boundary.
type Writer struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWriter creates a catalog writer.
func NewWriter(db *gorm.DB, logger *zap.Logger) *Writer {
	return &Writer{db: db, logger: logger}
}

// Snapshot returns the content hash of every persisted entry, keyed by
// external key.
func (w *Writer) Snapshot(ctx context.Context) (changeset.Snapshot, error) {
	var entries []models.Entry
	if err := w.db.WithContext(ctx).
		Select("external_key", "content_hash").
		Find(&entries).Error; err != nil {
		return nil, classify(err)
	}

	snap := make(changeset.Snapshot, len(entries))
	for _, e := range entries {
		snap[e.ExternalKey] = e.ContentHash
	}
	return snap, nil
}

// Apply commits a changeset in one transaction. Inserts and updates go
// through an upsert on the external key, deletes remove the row, no-ops
// are skipped. An op whose content hash already matches the stored row
// degrades to a no-op inside the transaction, so reapplying a changeset
// never rewrites identical rows. Any failure rolls the whole changeset
// back.
func (w *Writer) Apply(ctx context.Context, cs *changeset.Changeset) error {
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored []models.Entry
		if err := tx.Select("external_key", "content_hash").
			Find(&stored).Error; err != nil {
			return err
		}
		hashes := make(map[string]string, len(stored))
		for _, e := range stored {
			hashes[e.ExternalKey] = e.ContentHash
		}

		for _, op := range cs.Operations {
			switch op.Type {
			case changeset.OpInsert, changeset.OpUpdate:
				if hashes[op.Key] == op.Hash {
					continue
				}
				entry, err := entryFromOperation(op)
				if err != nil {
					return err
				}
				if err := tx.Clauses(clause.OnConflict{
					Columns: []clause.Column{{Name: "external_key"}},
					DoUpdates: clause.AssignmentColumns([]string{
						"name", "payload", "provenance", "content_hash", "updated_at",
					}),
				}).Create(entry).Error; err != nil {
					return err
				}
			case changeset.OpDelete:
				if err := tx.Where("external_key = ?", op.Key).
					Delete(&models.Entry{}).Error; err != nil {
					return err
				}
			case changeset.OpNoOp:
				// Already persisted with an equal hash.
			}
		}
		return nil
	})
	if err != nil {
		return classify(err)
	}

	inserts, updates, _, deletes := cs.Counts()
	w.logger.Debug("Changeset applied",
		zap.Int("inserts", inserts),
		zap.Int("updates", updates),
		zap.Int("deletes", deletes))
	return nil
}

func entryFromOperation(op changeset.Operation) (*models.Entry, error) {
	payload, err := json.Marshal(op.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload for %s: %w", op.Key, err)
	}
	provenance, err := json.Marshal(op.Provenance)
	if err != nil {
		return nil, fmt.Errorf("failed to encode provenance for %s: %w", op.Key, err)
	}

	return &models.Entry{
		ExternalKey: op.Key,
		Name:        op.Fields["name"],
		Payload:     payload,
		Provenance:  provenance,
		ContentHash: op.Hash,
	}, nil
}
