package http

import (
	"errors"
	"net/http"
	"strconv"

	"golang-stock-insight/internal/analysis/service"
	"golang-stock-insight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StockHandler serves the instrument catalog.
type StockHandler struct {
	catalogService service.CatalogService
	logger         *logger.Logger
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(catalogService service.CatalogService, logger *logger.Logger) *StockHandler {
	return &StockHandler{catalogService: catalogService, logger: logger}
}

// RegisterRoutes registers the catalog routes to the Echo group.
func (h *StockHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListByIndustry)
	g.GET("/:code", h.Profile)
}

// Profile godoc
// @Summary Get a stock profile
// @Description Return the catalog entry for one stock with its latest analysis outcome.
// @Tags stocks
// @Produce  json
// @Param   code  path  string true "Six-digit stock code"
// @Success 200 {object} dto.StockProfile
// @Failure 400 {object} echo.Map
// @Failure 404 {object} echo.Map
// @Router /stocks/{code} [get]
func (h *StockHandler) Profile(c echo.Context) error {
	code := c.Param("code")

	profile, err := h.catalogService.Profile(c.Request().Context(), code)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, profile)
}

// ListByIndustry godoc
// @Summary List stocks in an industry
// @Description Return catalog entries filtered by industry.
// @Tags stocks
// @Produce  json
// @Param   industry  query  string true  "Industry name"
// @Param   limit     query  int    false "Maximum number of entries, capped at 100"
// @Success 200 {array} dto.StockProfile
// @Failure 400 {object} echo.Map
// @Router /stocks [get]
func (h *StockHandler) ListByIndustry(c echo.Context) error {
	industry := c.QueryParam("industry")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	profiles, err := h.catalogService.ListByIndustry(c.Request().Context(), industry, limit)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, profiles)
}

func (h *StockHandler) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidStockCode), errors.Is(err, service.ErrIndustryRequired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrStockNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	default:
		h.logger.ErrorContext(c.Request().Context(), "Catalog request failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
}
