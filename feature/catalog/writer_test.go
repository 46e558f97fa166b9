package catalog

import (
	"context"
	"errors"
	"testing"

	"catalog-sync/core/changeset"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB creates a mock GORM DB for testing.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	dialector := postgres.New(postgres.Config{Conn: db})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestWriter_Snapshot(t *testing.T) {
	db, mock := setupMockDB(t)
	writer := NewWriter(db, zap.NewNop())

	rows := sqlmock.NewRows([]string{"external_key", "content_hash"}).
		AddRow("X1", "hash-1").
		AddRow("X2", "hash-2")
	mock.ExpectQuery(`SELECT .* FROM "catalog_entries"`).
		WillReturnRows(rows)

	snap, err := writer.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, changeset.Snapshot{"X1": "hash-1", "X2": "hash-2"}, snap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriter_ApplyUpsertAndDelete(t *testing.T) {
	db, mock := setupMockDB(t)
	writer := NewWriter(db, zap.NewNop())

	cs := &changeset.Changeset{Operations: []changeset.Operation{
		{
			Type:       changeset.OpInsert,
			Key:        "X1",
			Hash:       "hash-1",
			Fields:     map[string]string{"name": "Acme"},
			Provenance: map[string]string{"name": "onec"},
		},
		{Type: changeset.OpNoOp, Key: "X2", Hash: "hash-2"},
		{Type: changeset.OpDelete, Key: "X3"},
	}}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "catalog_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"external_key", "content_hash"}))
	mock.ExpectQuery(`INSERT INTO "catalog_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`DELETE FROM "catalog_entries"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, writer.Apply(context.Background(), cs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriter_ApplySkipsAlreadyAppliedOps(t *testing.T) {
	db, mock := setupMockDB(t)
	writer := NewWriter(db, zap.NewNop())

	cs := &changeset.Changeset{Operations: []changeset.Operation{
		{
			Type:   changeset.OpUpdate,
			Key:    "X1",
			Hash:   "hash-1",
			Fields: map[string]string{"name": "Acme"},
		},
	}}

	// The stored row already carries the op's hash, so reapplying the
	// changeset issues no writes.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "catalog_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"external_key", "content_hash"}).
			AddRow("X1", "hash-1"))
	mock.ExpectCommit()

	require.NoError(t, writer.Apply(context.Background(), cs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriter_ApplyRollsBackOnIntegrityError(t *testing.T) {
	db, mock := setupMockDB(t)
	writer := NewWriter(db, zap.NewNop())

	cs := &changeset.Changeset{Operations: []changeset.Operation{
		{
			Type:   changeset.OpInsert,
			Key:    "X1",
			Hash:   "hash-1",
			Fields: map[string]string{"name": "Acme"},
		},
	}}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "catalog_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"external_key", "content_hash"}))
	mock.ExpectQuery(`INSERT INTO "catalog_entries"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})
	mock.ExpectRollback()

	err := writer.Apply(context.Background(), cs)
	require.Error(t, err)

	var integrity *IntegrityError
	require.True(t, errors.As(err, &integrity))
	assert.False(t, integrity.Retryable())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		retryable bool
	}{
		{"UniqueViolation", "23505", false},
		{"NotNullViolation", "23502", false},
		{"ConnectionFailure", "08006", true},
		{"TooManyConnections", "53300", true},
		{"AdminShutdown", "57P01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(&pgconn.PgError{Code: tt.code})

			var r interface{ Retryable() bool }
			require.True(t, errors.As(err, &r))
			assert.Equal(t, tt.retryable, r.Retryable())
		})
	}

	t.Run("Nil", func(t *testing.T) {
		assert.NoError(t, classify(nil))
	})

	t.Run("PlainError", func(t *testing.T) {
		plain := errors.New("boom")
		assert.Equal(t, plain, classify(plain))
	})
}
