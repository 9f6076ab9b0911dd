package http

import (
	"errors"
	"net/http"
	"strconv"

	"golang-stock-insight/internal/analysis/service"
	"golang-stock-insight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalysisHandler handles HTTP requests for stock analysis.
type AnalysisHandler struct {
	analyzerService service.AnalyzerService
	logger          *logger.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analyzerService service.AnalyzerService, logger *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{analyzerService: analyzerService, logger: logger}
}

// RegisterRoutes registers the analysis routes to the Echo group.
func (h *AnalysisHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/:code", h.Analyze)
	g.GET("/:code/risk", h.AssessRisk)
	g.GET("/:code/industry", h.CompareIndustry)
	g.GET("/:code/history", h.History)
}

// Analyze godoc
// @Summary Generate a full analysis report
// @Description Run the multi-dimensional analysis for one stock. Cached reports are returned until expiry unless force_refresh is set.
// @Tags analysis
// @Produce  json
// @Param   code           path   string true  "Six-digit stock code"
// @Param   force_refresh  query  bool   false "Bypass the report cache"
// @Success 200 {object} dto.AnalysisReport
// @Failure 400 {object} echo.Map
// @Failure 502 {object} echo.Map
// @Router /analysis/{code} [post]
func (h *AnalysisHandler) Analyze(c echo.Context) error {
	code := c.Param("code")
	forceRefresh := c.QueryParam("force_refresh") == "true"

	report, err := h.analyzerService.Analyze(c.Request().Context(), code, forceRefresh)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, report)
}

// AssessRisk godoc
// @Summary Assess stock risk
// @Description Score one stock on five weighted risk dimensions.
// @Tags analysis
// @Produce  json
// @Param   code  path  string true "Six-digit stock code"
// @Success 200 {object} dto.RiskAssessment
// @Failure 400 {object} echo.Map
// @Failure 502 {object} echo.Map
// @Router /analysis/{code}/risk [get]
func (h *AnalysisHandler) AssessRisk(c echo.Context) error {
	code := c.Param("code")

	assessment, err := h.analyzerService.AssessRisk(c.Request().Context(), code)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, assessment)
}

// CompareIndustry godoc
// @Summary Compare against industry peers
// @Description Rank one stock against its same-industry peers on valuation, profitability, growth, and size.
// @Tags analysis
// @Produce  json
// @Param   code  path  string true "Six-digit stock code"
// @Success 200 {object} dto.IndustryComparison
// @Failure 400 {object} echo.Map
// @Failure 502 {object} echo.Map
// @Router /analysis/{code}/industry [get]
func (h *AnalysisHandler) CompareIndustry(c echo.Context) error {
	code := c.Param("code")

	comparison, err := h.analyzerService.CompareIndustry(c.Request().Context(), code)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, comparison)
}

// History godoc
// @Summary List past analysis reports
// @Description Return persisted reports for one stock, newest first.
// @Tags analysis
// @Produce  json
// @Param   code   path   string true  "Six-digit stock code"
// @Param   limit  query  int    false "Maximum number of reports, capped at 50"
// @Success 200 {array} dto.AnalysisReport
// @Failure 400 {object} echo.Map
// @Failure 503 {object} echo.Map
// @Router /analysis/{code}/history [get]
func (h *AnalysisHandler) History(c echo.Context) error {
	code := c.Param("code")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	reports, err := h.analyzerService.History(c.Request().Context(), code, limit)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, reports)
}

func (h *AnalysisHandler) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidStockCode):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrQuoteUnavailable):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrHistoryUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
	default:
		h.logger.ErrorContext(c.Request().Context(), "Analysis request failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
}
