package service

import (
	"context"
	"testing"

	"golang-stock-insight/internal/analysis/dto"
	"golang-stock-insight/internal/entity"
	"golang-stock-insight/pkg/logger"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeMarketDataRepository returns canned data per source. A nil slot plus
// a nil error mimics the provider returning nothing for that endpoint.
type fakeMarketDataRepository struct {
	quote      *dto.Quote
	quoteErr   error
	candles    dto.TimeSeries
	candlesErr error
	financials dto.FinancialHistory
	flow       *dto.CapitalFlowSnapshot
	flowErr    error
	news       []dto.NewsItem
	valuation  *dto.ValuationHistory
	peers      *dto.PeerGroup
	peersErr   error
}

func (f *fakeMarketDataRepository) GetQuote(ctx context.Context, stockCode string) (*dto.Quote, error) {
	return f.quote, f.quoteErr
}

func (f *fakeMarketDataRepository) GetCandles(ctx context.Context, stockCode string, period string, count int) (dto.TimeSeries, error) {
	return f.candles, f.candlesErr
}

func (f *fakeMarketDataRepository) GetFinancials(ctx context.Context, stockCode string, periods int) (dto.FinancialHistory, error) {
	return f.financials, nil
}

func (f *fakeMarketDataRepository) GetCapitalFlow(ctx context.Context, stockCode string) (*dto.CapitalFlowSnapshot, error) {
	return f.flow, f.flowErr
}

func (f *fakeMarketDataRepository) GetNews(ctx context.Context, stockCode string, limit int) ([]dto.NewsItem, error) {
	return f.news, nil
}

func (f *fakeMarketDataRepository) GetValuationHistory(ctx context.Context, stockCode string) (*dto.ValuationHistory, error) {
	return f.valuation, nil
}

func (f *fakeMarketDataRepository) GetPeers(ctx context.Context, stockCode string, limit int) (*dto.PeerGroup, error) {
	if f.peersErr != nil {
		return nil, f.peersErr
	}
	if f.peers == nil {
		return &dto.PeerGroup{}, nil
	}
	return f.peers, nil
}

// fakeReportsRepository records created reports in memory and serves them
// back for history queries.
type fakeReportsRepository struct {
	created []*entity.AnalysisReport
	listed  []entity.AnalysisReport
	err     error
}

func (f *fakeReportsRepository) Create(ctx context.Context, report *entity.AnalysisReport) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, report)
	return nil
}

func (f *fakeReportsRepository) GetLatest(ctx context.Context, stockCode string) (*entity.AnalysisReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.listed) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &f.listed[0], nil
}

func (f *fakeReportsRepository) ListByStockCode(ctx context.Context, stockCode string, limit int) ([]entity.AnalysisReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.listed) {
		return f.listed[:limit], nil
	}
	return f.listed, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)
	return log
}

// uptrendCandles builds a steady uptrend with a volume surge over the last
// five bars.
func uptrendCandles(n int) dto.TimeSeries {
	candles := make(dto.TimeSeries, n)
	for i := 0; i < n; i++ {
		base := 20 + 0.15*float64(i)
		volume := 1000.0
		if i >= n-5 {
			volume = 1500
		}
		candles[i] = dto.Candle{
			Open:   base - 0.1,
			High:   base + 0.2,
			Low:    base - 0.2,
			Close:  base,
			Volume: volume,
		}
	}
	return candles
}

func downtrendCandles(n int) dto.TimeSeries {
	candles := make(dto.TimeSeries, n)
	for i := 0; i < n; i++ {
		base := 80 - 0.3*float64(i)
		candles[i] = dto.Candle{
			Open:   base + 0.1,
			High:   base + 0.2,
			Low:    base - 0.2,
			Close:  base,
			Volume: 1000,
		}
	}
	return candles
}
