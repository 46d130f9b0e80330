package integrity

import (
	"inventory-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/store", h.HandleStoreCheck)
	group.Post("/store/fix", h.HandleStoreFix)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/bucket", h.HandleBucketCheck)
	group.Post("/bucket/fix", h.HandleBucketFix)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Checks the store invariants, plus the SQL table and the bucket when those backends are configured.
// @Tags integrity
// @Produce json
// @Success 200 {object} Report "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	report := h.service.Run(c.UserContext())
	if !report.Healthy {
		l.Warn("Integrity problems detected", zap.Int("errors", len(report.Errors)))
	}
	return c.JSON(report)
}

// HandleStoreCheck checks the store without modifying it.
// @Summary Check Store
// @Description Verifies header, key uniqueness, orphan rows, row width and key order.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.StoreReport "Store Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/store [get]
func (h *Handler) HandleStoreCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckStore(c.UserContext())
	if err != nil {
		l.Error("Store check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.Healthy {
		l.Warn("Store invariants violated", zap.Int("issues", len(report.Issues)))
	}
	return c.JSON(report)
}

// HandleStoreFix sorts an unsorted store. Sync requests wait until it finishes.
// @Summary Fix Store Order
// @Description Checks the store and sorts it by key when it is unsorted. Returns the report after the fix.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.StoreReport "Store Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/store/fix [post]
func (h *Handler) HandleStoreFix(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Store fix requested")

	report, err := h.service.FixStore(c.UserContext())
	if err != nil {
		l.Error("Store fix failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.Healthy {
		l.Warn("Store invariants still violated", zap.Int("issues", len(report.Issues)))
	}
	return c.JSON(report)
}

// HandleSchemaCheck checks the SQL sheet table.
// @Summary Check Sheet Table
// @Description Checks that the sheet_rows table has the columns the SQL backend uses.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.SchemaReport "Schema Report"
// @Failure 404 {object} map[string]string "No database configured"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	if !h.service.HasDatabase() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no database configured"})
	}

	report, err := h.service.CheckSchema()
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleBucketCheck checks the sheet bucket.
// @Summary Check Bucket
// @Description Checks that the bucket exists and lists its CSV sheets.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.BucketReport "Bucket Report"
// @Failure 404 {object} map[string]string "No storage configured"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/bucket [get]
func (h *Handler) HandleBucketCheck(c *fiber.Ctx) error {
	return h.bucket(c, false)
}

// HandleBucketFix creates the sheet bucket when it is missing.
// @Summary Fix Bucket
// @Description Checks the bucket and creates it when it does not exist. Returns {"status": "fixed"} after creating it, else the Bucket Report.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.BucketReport "Bucket Report"
// @Failure 404 {object} map[string]string "No storage configured"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/bucket/fix [post]
func (h *Handler) HandleBucketFix(c *fiber.Ctx) error {
	return h.bucket(c, true)
}

func (h *Handler) bucket(c *fiber.Ctx, fix bool) error {
	l := logger.WithRayID(h.service.logger, c)

	if !h.service.HasStorage() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no storage configured"})
	}

	report, err := h.service.CheckBucket(c.UserContext())
	if err != nil {
		l.Error("Bucket check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.Exists && fix {
		l.Info("Attempting to create missing bucket", zap.String("bucket", report.Bucket))
		if err := h.service.FixBucket(c.UserContext()); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to create bucket",
				"details": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "fixed", "bucket": report.Bucket})
	}

	return c.JSON(report)
}
