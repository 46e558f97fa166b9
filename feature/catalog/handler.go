package catalog

import (
	"errors"
	"strconv"

	"catalog-sync/core/logger"
	"catalog-sync/core/syncrun"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/sync", h.HandleTriggerSync)
	app.Get("/sync/status", h.HandleSyncStatus)
	app.Get("/sync/runs", h.HandleSyncRuns)
	app.Get("/entries/:key", h.HandleGetEntry)
}

// HandleTriggerSync requests a new sync run.
// @Summary Trigger Sync
// @Description Request a catalog sync run. While a run is active one request is queued; further requests are rejected.
// @Tags sync
// @Produce json
// @Success 202 {object} map[string]string "Run accepted"
// @Failure 409 {object} map[string]string "Run active and queue full"
// @Router /sync [post]
func (h *Handler) HandleTriggerSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := h.service.TriggerSync()
	if err != nil {
		if errors.Is(err, syncrun.ErrBusy) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "sync already running and queue full",
			})
		}
		l.Error("Sync trigger failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	l.Info("Sync run queued", zap.String("run_id", id))
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"run_id": id})
}

// HandleSyncStatus returns the orchestrator state.
// @Summary Sync Status
// @Description Get the current pipeline state, the active run if any, and the last finalized run.
// @Tags sync
// @Produce json
// @Success 200 {object} syncrun.Status "Current status"
// @Router /sync/status [get]
func (h *Handler) HandleSyncStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}

// HandleSyncRuns returns the audit history.
// @Summary Sync Run History
// @Description List recently finalized sync runs, newest first.
// @Tags sync
// @Produce json
// @Param limit query int false "Maximum runs to return (default 20)"
// @Success 200 {array} models.SyncRunRecord "Run history"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/runs [get]
func (h *Handler) HandleSyncRuns(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	runs, err := h.service.RecentRuns(c.Context(), limit)
	if err != nil {
		l.Error("Run history lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(runs)
}

// HandleGetEntry returns one reconciled entry.
// @Summary Get Catalog Entry
// @Description Get a reconciled catalog entry with per-field provenance.
// @Tags entries
// @Produce json
// @Param key path string true "External key (article)"
// @Success 200 {object} EntryDetail "Entry detail"
// @Failure 404 {object} map[string]string "Unknown key"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /entries/{key} [get]
func (h *Handler) HandleGetEntry(c *fiber.Ctx) error {
	key := c.Params("key")
	l := logger.WithRayID(h.service.logger, c)

	detail, err := h.service.GetEntry(c.Context(), key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "entry not found",
			})
		}
		l.Error("Entry lookup failed", zap.String("key", key), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(detail)
}
