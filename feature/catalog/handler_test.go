package catalog

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"catalog-sync/core/syncrun"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// stubSyncer scripts orchestrator responses for handler tests.
type stubSyncer struct {
	triggerID  string
	triggerErr error
	status     syncrun.Status
}

func (s *stubSyncer) Trigger() (string, error) { return s.triggerID, s.triggerErr }
func (s *stubSyncer) Status() syncrun.Status   { return s.status }

func newTestApp(syncer Syncer, db *gorm.DB) *fiber.App {
	svc := NewService(syncer, NewRunStore(db), db, zap.NewNop())
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)
	return app
}

func decodeBody(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return body
}

func TestHandleTriggerSync(t *testing.T) {
	t.Run("Accepted", func(t *testing.T) {
		app := newTestApp(&stubSyncer{triggerID: "run-123"}, nil)

		resp, err := app.Test(httptest.NewRequest("POST", "/sync", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
		assert.Equal(t, "run-123", decodeBody(t, resp.Body)["run_id"])
	})

	t.Run("Queue Full", func(t *testing.T) {
		app := newTestApp(&stubSyncer{triggerErr: syncrun.ErrBusy}, nil)

		resp, err := app.Test(httptest.NewRequest("POST", "/sync", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})
}

func TestHandleSyncStatus(t *testing.T) {
	status := syncrun.Status{
		State:   syncrun.StateFetching,
		Pending: 1,
	}
	app := newTestApp(&stubSyncer{status: status}, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/sync/status", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "fetching", body["state"])
	assert.Equal(t, float64(1), body["pending"])
}

func TestHandleSyncRuns(t *testing.T) {
	db, mock := setupMockDB(t)
	app := newTestApp(&stubSyncer{}, db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "started_at", "finished_at", "status", "inserts"}).
		AddRow("run-1", now, now, "completed", 5)
	mock.ExpectQuery(`SELECT \* FROM "sync_runs"`).WillReturnRows(rows)

	resp, err := app.Test(httptest.NewRequest("GET", "/sync/runs?limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var runs []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0]["id"])
	assert.Equal(t, "completed", runs[0]["status"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleGetEntry(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		app := newTestApp(&stubSyncer{}, db)

		rows := sqlmock.NewRows([]string{"id", "external_key", "name", "payload", "provenance", "content_hash"}).
			AddRow(1, "X1", "Acme", []byte(`{"name":"Acme","brand":"ACME GmbH"}`), []byte(`{"name":"sheets","brand":"onec"}`), "hash-1")
		mock.ExpectQuery(`SELECT \* FROM "catalog_entries"`).WillReturnRows(rows)

		resp, err := app.Test(httptest.NewRequest("GET", "/entries/X1", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp.Body)
		assert.Equal(t, "X1", body["key"])

		fields := body["fields"].(map[string]any)
		assert.Equal(t, "ACME GmbH", fields["brand"])
		provenance := body["provenance"].(map[string]any)
		assert.Equal(t, "sheets", provenance["name"])
	})

	t.Run("Not Found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		app := newTestApp(&stubSyncer{}, db)

		mock.ExpectQuery(`SELECT \* FROM "catalog_entries"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		resp, err := app.Test(httptest.NewRequest("GET", "/entries/unknown", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}
