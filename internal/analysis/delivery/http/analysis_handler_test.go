package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang-stock-insight/internal/analysis/dto"
	"golang-stock-insight/internal/analysis/service"
	"golang-stock-insight/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzerService struct {
	report       *dto.AnalysisReport
	gotRefresh   bool
	assessment   *dto.RiskAssessment
	comparison   *dto.IndustryComparison
	history      []dto.AnalysisReport
	err          error
	historyLimit int
}

func (f *fakeAnalyzerService) Analyze(ctx context.Context, stockCode string, forceRefresh bool) (*dto.AnalysisReport, error) {
	f.gotRefresh = forceRefresh
	return f.report, f.err
}

func (f *fakeAnalyzerService) AssessRisk(ctx context.Context, stockCode string) (*dto.RiskAssessment, error) {
	return f.assessment, f.err
}

func (f *fakeAnalyzerService) CompareIndustry(ctx context.Context, stockCode string) (*dto.IndustryComparison, error) {
	return f.comparison, f.err
}

func (f *fakeAnalyzerService) History(ctx context.Context, stockCode string, limit int) ([]dto.AnalysisReport, error) {
	f.historyLimit = limit
	return f.history, f.err
}

func newHandlerTest(t *testing.T, svc service.AnalyzerService) (*AnalysisHandler, *echo.Echo) {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)
	return NewAnalysisHandler(svc, log), echo.New()
}

func doRequest(e *echo.Echo, h *AnalysisHandler, method, target, code string, fn echo.HandlerFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/:code")
	c.SetParamNames("code")
	c.SetParamValues(code)
	_ = fn(c)
	return rec
}

func TestAnalysisHandler_Analyze(t *testing.T) {
	svc := &fakeAnalyzerService{report: &dto.AnalysisReport{StockCode: "600519", OverallScore: 7.8}}
	h, e := newHandlerTest(t, svc)

	rec := doRequest(e, h, http.MethodPost, "/600519?force_refresh=true", "600519", h.Analyze)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.gotRefresh)

	var got dto.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "600519", got.StockCode)
	assert.InDelta(t, 7.8, got.OverallScore, 1e-9)
}

func TestAnalysisHandler_InvalidCode(t *testing.T) {
	svc := &fakeAnalyzerService{err: service.ErrInvalidStockCode}
	h, e := newHandlerTest(t, svc)

	rec := doRequest(e, h, http.MethodPost, "/nope", "nope", h.Analyze)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisHandler_QuoteUnavailable(t *testing.T) {
	svc := &fakeAnalyzerService{err: service.ErrQuoteUnavailable}
	h, e := newHandlerTest(t, svc)

	rec := doRequest(e, h, http.MethodPost, "/600519", "600519", h.Analyze)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAnalysisHandler_InternalError(t *testing.T) {
	svc := &fakeAnalyzerService{err: errors.New("boom")}
	h, e := newHandlerTest(t, svc)

	rec := doRequest(e, h, http.MethodGet, "/600519/risk", "600519", h.AssessRisk)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAnalysisHandler_AssessRisk(t *testing.T) {
	svc := &fakeAnalyzerService{assessment: &dto.RiskAssessment{Score: 7.95, RiskLevel: dto.RiskLow}}
	h, e := newHandlerTest(t, svc)

	rec := doRequest(e, h, http.MethodGet, "/600519/risk", "600519", h.AssessRisk)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got dto.RiskAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, dto.RiskLow, got.RiskLevel)
}

func TestAnalysisHandler_History(t *testing.T) {
	svc := &fakeAnalyzerService{history: []dto.AnalysisReport{{StockCode: "600519"}}}
	h, e := newHandlerTest(t, svc)

	rec := doRequest(e, h, http.MethodGet, "/600519/history?limit=5", "600519", h.History)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, svc.historyLimit)
}

func TestAnalysisHandler_HistoryUnavailable(t *testing.T) {
	svc := &fakeAnalyzerService{err: service.ErrHistoryUnavailable}
	h, e := newHandlerTest(t, svc)

	rec := doRequest(e, h, http.MethodGet, "/600519/history", "600519", h.History)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
