package catalog

import (
	"context"
	"testing"
	"time"

	"catalog-sync/core/syncrun"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStore_Save(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewRunStore(db)

	run := &syncrun.Run{
		ID:         "run-1",
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
		Outcome:    syncrun.OutcomeCompleted,
		Sources: map[string]*syncrun.SourceReport{
			"onec": {Records: 10, Attempts: 1},
		},
		Inserts: 7,
		Updates: 2,
		NoOps:   1,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "sync_runs"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Save(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}
