package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang-stock-insight/internal/analysis/config"
	"golang-stock-insight/internal/analysis/dto"
	"golang-stock-insight/pkg/common"
	"golang-stock-insight/pkg/logger"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// MarketDataRepository is the raw data provider consumed by the analysis
// engine. Every method may return empty or nil data; callers must treat
// that as "insufficient data", never as fatal.
type MarketDataRepository interface {
	GetQuote(ctx context.Context, stockCode string) (*dto.Quote, error)
	GetCandles(ctx context.Context, stockCode string, period string, count int) (dto.TimeSeries, error)
	GetFinancials(ctx context.Context, stockCode string, periods int) (dto.FinancialHistory, error)
	GetCapitalFlow(ctx context.Context, stockCode string) (*dto.CapitalFlowSnapshot, error)
	GetNews(ctx context.Context, stockCode string, limit int) ([]dto.NewsItem, error)
	GetValuationHistory(ctx context.Context, stockCode string) (*dto.ValuationHistory, error)
	GetPeers(ctx context.Context, stockCode string, limit int) (*dto.PeerGroup, error)
}

type marketDataRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	cache          *gocache.Cache
}

// NewMarketDataRepository creates a provider client with a request rate
// limiter and an in-process cache whose TTLs are tiered per endpoint.
func NewMarketDataRepository(cfg *config.Config, log *logger.Logger) MarketDataRepository {
	perRequest := rate.Limit(float64(cfg.MarketData.MaxRequestPerMinute) / 60.0)
	if cfg.MarketData.MaxRequestPerMinute <= 0 {
		perRequest = rate.Inf
	}
	return &marketDataRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: cfg.MarketData.FetchTimeout,
		},
		requestLimiter: rate.NewLimiter(perRequest, 1),
		cache:          gocache.New(common.CacheTTLCandles, 10*common.CacheTTLCandles),
	}
}

func (r *marketDataRepository) GetQuote(ctx context.Context, stockCode string) (*dto.Quote, error) {
	cacheKey := "quote:" + stockCode
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.(*dto.Quote), nil
	}

	var quote dto.Quote
	if err := r.getJSON(ctx, "/api/v1/quote/"+url.PathEscape(stockCode), nil, &quote); err != nil {
		return nil, err
	}
	if quote.StockCode == "" {
		return nil, nil
	}

	r.cache.Set(cacheKey, &quote, common.CacheTTLQuote)
	return &quote, nil
}

func (r *marketDataRepository) GetCandles(ctx context.Context, stockCode string, period string, count int) (dto.TimeSeries, error) {
	cacheKey := fmt.Sprintf("candles:%s:%s:%d", stockCode, period, count)
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.(dto.TimeSeries), nil
	}

	params := url.Values{}
	params.Set("period", period)
	params.Set("count", fmt.Sprintf("%d", count))

	var candles dto.TimeSeries
	if err := r.getJSON(ctx, "/api/v1/candles/"+url.PathEscape(stockCode), params, &candles); err != nil {
		return nil, err
	}

	r.cache.Set(cacheKey, candles, common.CacheTTLCandles)
	return candles, nil
}

func (r *marketDataRepository) GetFinancials(ctx context.Context, stockCode string, periods int) (dto.FinancialHistory, error) {
	cacheKey := fmt.Sprintf("financials:%s:%d", stockCode, periods)
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.(dto.FinancialHistory), nil
	}

	params := url.Values{}
	params.Set("periods", fmt.Sprintf("%d", periods))

	var history dto.FinancialHistory
	if err := r.getJSON(ctx, "/api/v1/financials/"+url.PathEscape(stockCode), params, &history); err != nil {
		return nil, err
	}

	r.cache.Set(cacheKey, history, common.CacheTTLFinancials)
	return history, nil
}

func (r *marketDataRepository) GetCapitalFlow(ctx context.Context, stockCode string) (*dto.CapitalFlowSnapshot, error) {
	cacheKey := "capital:" + stockCode
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.(*dto.CapitalFlowSnapshot), nil
	}

	var snapshot dto.CapitalFlowSnapshot
	if err := r.getJSON(ctx, "/api/v1/capital-flow/"+url.PathEscape(stockCode), nil, &snapshot); err != nil {
		return nil, err
	}

	r.cache.Set(cacheKey, &snapshot, common.CacheTTLCapital)
	return &snapshot, nil
}

func (r *marketDataRepository) GetNews(ctx context.Context, stockCode string, limit int) ([]dto.NewsItem, error) {
	cacheKey := fmt.Sprintf("news:%s:%d", stockCode, limit)
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.([]dto.NewsItem), nil
	}

	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))

	var items []dto.NewsItem
	if err := r.getJSON(ctx, "/api/v1/news/"+url.PathEscape(stockCode), params, &items); err != nil {
		return nil, err
	}

	r.cache.Set(cacheKey, items, common.CacheTTLNews)
	return items, nil
}

func (r *marketDataRepository) GetValuationHistory(ctx context.Context, stockCode string) (*dto.ValuationHistory, error) {
	cacheKey := "valuation:" + stockCode
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.(*dto.ValuationHistory), nil
	}

	var hist dto.ValuationHistory
	if err := r.getJSON(ctx, "/api/v1/valuation/"+url.PathEscape(stockCode), nil, &hist); err != nil {
		return nil, err
	}

	r.cache.Set(cacheKey, &hist, common.CacheTTLValuation)
	return &hist, nil
}

func (r *marketDataRepository) GetPeers(ctx context.Context, stockCode string, limit int) (*dto.PeerGroup, error) {
	cacheKey := fmt.Sprintf("peers:%s:%d", stockCode, limit)
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.(*dto.PeerGroup), nil
	}

	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))

	var group dto.PeerGroup
	if err := r.getJSON(ctx, "/api/v1/peers/"+url.PathEscape(stockCode), params, &group); err != nil {
		return nil, err
	}

	r.cache.Set(cacheKey, &group, common.CacheTTLPeers)
	return &group, nil
}

func (r *marketDataRepository) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := r.cfg.MarketData.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.ErrorContext(ctx, "Market data request failed", logger.StringField("url", endpoint), logger.ErrorField(err))
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		r.log.ErrorContext(ctx, "Market data request returned non-200",
			logger.StringField("url", endpoint), logger.IntField("status", resp.StatusCode))
		return fmt.Errorf("market data provider returned status %d", resp.StatusCode)
	}

	return json.Unmarshal(body, out)
}
