package foods

import (
	"context"
	"errors"
	"strconv"

	"food-index/core/logger"
	"food-index/feature/foods/index"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for food search and index administration.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RebuildRequest selects the locales of a rebuild or invalidation.
// An empty list means every locale.
type RebuildRequest struct {
	Locales []string `json:"locales"`
}

// RegisterRoutes registers the foods routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/health", h.HandleHealth)

	api := app.Group("/api")
	api.Get("/foods/:locale/search", h.HandleSearch)

	admin := api.Group("/admin/index")
	admin.Post("/rebuild", h.HandleRebuild)
	admin.Post("/invalidate", h.HandleInvalidate)
}

// HandleSearch searches foods and categories.
// @Summary Search Foods
// @Description Searches the food index of a locale. Foods that may not be used in the requested context (recipe or regular food) are left out.
// @Tags foods
// @Produce json
// @Param locale path string true "Locale id, e.g. en_GB"
// @Param description query string true "Search text"
// @Param limit query int false "Maximum number of results"
// @Param isRecipe query boolean false "Search for recipe ingredients"
// @Param hidden query boolean false "Include hidden categories"
// @Success 200 {object} SearchResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Unknown locale"
// @Failure 503 {object} map[string]string "Index not ready"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /api/foods/{locale}/search [get]
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be an integer"})
		}
		limit = n
	}

	req := SearchRequest{
		LocaleID:      c.Params("locale"),
		Description:   c.Query("description"),
		Limit:         limit,
		IsRecipe:      c.QueryBool("isRecipe", false),
		IncludeHidden: c.QueryBool("hidden", false),
	}

	res, err := h.service.Search(c.UserContext(), req)
	if err != nil {
		return h.fail(c, l, "Search failed", err)
	}

	l.Debug("Search served",
		zap.String("locale", req.LocaleID),
		zap.String("description", req.Description),
		zap.Int("foods", len(res.Foods)),
		zap.Int("categories", len(res.Categories)),
	)
	return c.JSON(res)
}

// HandleRebuild rebuilds the index on this replica and waits for the result.
// @Summary Rebuild Index
// @Description Rebuilds the index of the given locales, or of every locale, on the replica serving the request.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body RebuildRequest false "Locales to rebuild"
// @Success 200 {object} map[string]interface{} "Rebuilt"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 500 {object} map[string]string "Rebuild failed"
// @Router /api/admin/index/rebuild [post]
func (h *Handler) HandleRebuild(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	req, err := parseRebuildRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Rebuild requested", zap.Strings("locales", req.Locales))
	if err := h.service.Rebuild(c.UserContext(), req.Locales); err != nil {
		return h.fail(c, l, "Rebuild failed", err)
	}
	return c.JSON(fiber.Map{"status": "rebuilt", "locales": req.Locales})
}

// HandleInvalidate marks locales for rebuild on every replica.
// @Summary Invalidate Index
// @Description Records that the data of the given locales, or of every locale, changed. Every replica rebuilds asynchronously.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body RebuildRequest false "Locales to invalidate"
// @Success 202 {object} map[string]interface{} "Accepted"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /api/admin/index/invalidate [post]
func (h *Handler) HandleInvalidate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	req, err := parseRebuildRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.service.Invalidate(c.UserContext(), req.Locales); err != nil {
		return h.fail(c, l, "Invalidation failed", err)
	}
	l.Info("Invalidation recorded", zap.Strings("locales", req.Locales))
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "pending", "locales": req.Locales})
}

// HandleHealth reports index readiness.
// @Summary Health
// @Description Reports whether the index serves searches and how many worker calls are in flight.
// @Tags health
// @Produce json
// @Success 200 {object} Health
// @Failure 503 {object} Health
// @Router /health [get]
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	health := h.service.Health()
	if !health.Ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(health)
	}
	return c.JSON(health)
}

func parseRebuildRequest(c *fiber.Ctx) (RebuildRequest, error) {
	var req RebuildRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return req, errors.New("invalid request body")
		}
	}
	if locale := c.Query("locale"); locale != "" {
		req.Locales = append(req.Locales, locale)
	}
	return req, nil
}

// fail maps service errors to HTTP statuses.
func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	var rebuildErr *index.RebuildError
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, index.ErrUnknownLocale):
		return fiber.StatusNotFound
	case errors.Is(err, index.ErrIndexNotReady),
		errors.Is(err, index.ErrGatewayClosed),
		errors.Is(err, index.ErrWorkerExited):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, index.ErrCallTimeout), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	case errors.As(err, &rebuildErr):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
