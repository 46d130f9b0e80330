package inventory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"inventory-sync/core/logger"
	"inventory-sync/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SyncRequest is the object form of a sync body. A bare JSON array of
// records is accepted as well.
type SyncRequest struct {
	Records []reconcile.Record `json:"records"`
	DryRun  bool               `json:"dry_run"`
}

// Handler handles HTTP requests for the inventory.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the inventory routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/inventory")
	group.Post("/sync", h.HandleSync)
	group.Get("/", h.HandleList)
	group.Get("/:key", h.HandleGet)
}

// HandleSync reconciles a batch of machine snapshots into the store.
// @Summary Sync Snapshots
// @Description Upserts machine snapshots keyed by the configured key field. The body is a JSON array of records or {"records": [...], "dry_run": bool}.
// @Tags inventory
// @Accept json
// @Produce json
// @Param dry_run query boolean false "Plan without writing"
// @Success 200 {object} reconcile.Report "Sync Report"
// @Failure 400 {object} reconcile.Report "Invalid body, empty batch or schema conflict"
// @Failure 500 {object} reconcile.Report "Store failure"
// @Router /inventory/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	req, err := decodeSyncRequest(c.Body())
	if err != nil {
		l.Warn("Rejected sync body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(reconcile.FailedReport(fmt.Errorf("invalid sync body: %w", err)))
	}
	dryRun := req.DryRun || c.QueryBool("dry_run", false)

	l.Info("Sync requested", zap.Int("records", len(req.Records)), zap.Bool("dry_run", dryRun))
	report := h.service.Sync(c.UserContext(), req.Records, dryRun)

	return c.Status(syncStatus(report)).JSON(report)
}

// HandleList returns the whole inventory.
// @Summary List Inventory
// @Description Returns the header row and the data rows, optionally limited.
// @Tags inventory
// @Produce json
// @Param limit query int false "Maximum number of rows"
// @Success 200 {object} View "Inventory"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /inventory [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	view, err := h.service.View(c.UserContext())
	if err != nil {
		l.Error("Failed to read inventory", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	limit := c.QueryInt("limit", 0)
	if limit > 0 && limit < len(view.Rows) {
		trimmed := *view
		trimmed.Rows = view.Rows[:limit]
		view = &trimmed
	}
	return c.JSON(view)
}

// HandleGet returns the latest snapshot of one machine.
// @Summary Get Machine
// @Description Returns one machine's row as an ordered field map.
// @Tags inventory
// @Produce json
// @Param key path string true "Machine key (e.g. 'PC1')"
// @Success 200 {object} map[string]string "Machine"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /inventory/{key} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	key := c.Params("key")

	rec, ok, err := h.service.Machine(c.UserContext(), key)
	if err != nil {
		l.Error("Failed to read machine", zap.String("key", key), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "machine not found", "key": key})
	}
	return c.JSON(rec)
}

func decodeSyncRequest(body []byte) (SyncRequest, error) {
	var req SyncRequest
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return req, errors.New("request body is empty")
	}

	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &req.Records); err != nil {
			return req, err
		}
		return req, nil
	}
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return req, err
	}
	return req, nil
}

func syncStatus(report *reconcile.Report) int {
	err := report.Err()
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, reconcile.ErrEmptyBatch), errors.Is(err, reconcile.ErrSchemaConflict):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
