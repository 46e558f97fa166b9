package models

import "time"

// Entry is one reconciled catalog entity as persisted.
// Payload carries the full merged field map, Provenance the winning
// source per field; both are stored as jsonb.
type Entry struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	ExternalKey string    `gorm:"column:external_key;size:64;uniqueIndex;not null" json:"key"`
	Name        string    `gorm:"column:name;size:255" json:"name"`
	Payload     []byte    `gorm:"column:payload;type:jsonb" json:"-"`
	Provenance  []byte    `gorm:"column:provenance;type:jsonb" json:"-"`
	ContentHash string    `gorm:"column:content_hash;size:64;not null" json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides the table name.
func (Entry) TableName() string {
	return "catalog_entries"
}

// SyncRunRecord is the audit row for one finalized sync run.
type SyncRunRecord struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	StartedAt    time.Time `gorm:"column:started_at" json:"started_at"`
	FinishedAt   time.Time `gorm:"column:finished_at" json:"finished_at"`
	Status       string    `gorm:"column:status;size:16" json:"status"`
	SourceCounts []byte    `gorm:"column:source_counts;type:jsonb" json:"-"`
	Rejected     int       `gorm:"column:rejected" json:"rejected"`
	Conflicts    int       `gorm:"column:conflicts" json:"conflicts"`
	Inserts      int       `gorm:"column:inserts" json:"inserts"`
	Updates      int       `gorm:"column:updates" json:"updates"`
	NoOps        int       `gorm:"column:noops" json:"noops"`
	Deletes      int       `gorm:"column:deletes" json:"deletes"`
	Error        string    `gorm:"column:error;type:text" json:"error,omitempty"`
}

// TableName overrides the table name.
func (SyncRunRecord) TableName() string {
	return "sync_runs"
}
