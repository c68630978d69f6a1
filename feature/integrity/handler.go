package integrity

import (
	"errors"

	"food-index/core/logger"
	"food-index/feature/integrity/checks"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	// Force import for Swagger
	var _ = checks.SchemaReport{}
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/api/admin/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/defaults", h.HandleDefaultsCheck)
	group.Get("/storage", h.HandleStorageCheck)
	group.Get("/thumbnails", h.HandleThumbnailCheck)
}

func section(report any, err error) any {
	if err != nil {
		return fiber.Map{"status": "error", "error": err.Error()}
	}
	return report
}

// HandleIntegrityCheck runs every check.
// @Summary Run All Integrity Checks
// @Description Performs every integrity check (Schema, Defaults, Storage, Thumbnails). Thumbnails lists the whole folder and may take a while.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /api/admin/integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.UserContext()
	report := make(map[string]any)

	schema, err := h.service.CheckSchema()
	report["schema"] = section(schema, err)

	defaults, err := h.service.CheckDefaults(ctx)
	report["defaults"] = section(defaults, err)

	store, err := h.service.CheckStorage(ctx)
	report["storage"] = section(store, err)

	thumbs, err := h.service.CheckThumbnails(ctx)
	report["thumbnails"] = section(thumbs, err)

	return c.JSON(report)
}

// HandleSchemaCheck checks the database schema.
// @Summary Check Schema
// @Description Checks that the tables and columns read by the index exist.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.SchemaReport "Schema Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /api/admin/integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckSchema()
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !report.Matched {
		l.Warn("Schema mismatch detected")
	}
	return c.JSON(report)
}

// HandleDefaultsCheck checks the attribute defaults row.
// @Summary Check Attribute Defaults
// @Description Checks that the global attribute defaults exist.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.DefaultsReport "Defaults Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /api/admin/integrity/defaults [get]
func (h *Handler) HandleDefaultsCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckDefaults(c.UserContext())
	if err != nil {
		l.Error("Defaults check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleStorageCheck checks and optionally fixes the thumbnail folder.
// @Summary Check Storage
// @Description Checks that the bucket and thumbnail folder exist. Optionally creates the folder.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Create the missing folder"
// @Success 200 {object} map[string]interface{} "Storage Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Failure 503 {object} map[string]string "Storage not configured"
// @Router /api/admin/integrity/storage [get]
func (h *Handler) HandleStorageCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	report, err := h.service.CheckStorage(c.UserContext())
	if err != nil {
		return h.storageError(c, l, "Storage check failed", err)
	}

	if !report.PrefixExists {
		l.Warn("Thumbnail folder missing", zap.String("prefix", report.Prefix))

		if fix {
			l.Info("Attempting to create thumbnail folder")
			if err := h.service.FixStorage(c.UserContext()); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to fix storage",
					"details": err.Error(),
				})
			}
			return c.JSON(fiber.Map{
				"status": "fixed",
				"fixed":  report.Prefix,
			})
		}
	}

	return c.JSON(fiber.Map{
		"status": "checked",
		"report": report,
	})
}

// HandleThumbnailCheck compares foods with stored thumbnails.
// @Summary Check Thumbnails
// @Description Lists foods without a thumbnail and thumbnails without a food.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.ThumbnailReport "Thumbnail Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Failure 503 {object} map[string]string "Storage not configured"
// @Router /api/admin/integrity/thumbnails [get]
func (h *Handler) HandleThumbnailCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Starting thumbnail check")

	report, err := h.service.CheckThumbnails(c.UserContext())
	if err != nil {
		return h.storageError(c, l, "Thumbnail check failed", err)
	}

	l.Info("Thumbnail check completed",
		zap.Int("expected", report.Expected),
		zap.Int("found", report.Found))
	return c.JSON(report)
}

func (h *Handler) storageError(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, ErrStorageUnavailable) {
		status = fiber.StatusServiceUnavailable
	}
	l.Error(msg, zap.Error(err))
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
