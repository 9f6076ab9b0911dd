package service

import (
	"context"
	"testing"
	"time"

	"golang-stock-insight/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeStocksRepository struct {
	stocks   map[string]entity.Stock
	industry []entity.Stock
	gotLimit int
}

func (f *fakeStocksRepository) GetByCode(ctx context.Context, code string) (*entity.Stock, error) {
	if stock, ok := f.stocks[code]; ok {
		return &stock, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStocksRepository) GetByIndustry(ctx context.Context, industry string, limit int) ([]entity.Stock, error) {
	f.gotLimit = limit
	return f.industry, nil
}

func TestCatalogService_Profile(t *testing.T) {
	stocks := &fakeStocksRepository{stocks: map[string]entity.Stock{
		"600519": {Code: "600519", Name: "Alpha Spirits", Industry: "Beverages"},
	}}
	generatedAt := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	reports := &fakeReportsRepository{listed: []entity.AnalysisReport{
		{StockCode: "600519", OverallScore: 7.5, Recommendation: "buy", GeneratedAt: generatedAt},
	}}
	svc := NewCatalogService(stocks, reports, testLogger(t))

	profile, err := svc.Profile(context.Background(), "600519")
	require.NoError(t, err)

	assert.Equal(t, "Alpha Spirits", profile.StockName)
	assert.Equal(t, "Beverages", profile.Industry)
	require.NotNil(t, profile.LatestScore)
	assert.InDelta(t, 7.5, *profile.LatestScore, 1e-9)
	assert.Equal(t, "buy", profile.LatestRecommendation)
	assert.Equal(t, generatedAt.Unix(), profile.LastAnalyzedAt)
}

func TestCatalogService_ProfileWithoutReports(t *testing.T) {
	stocks := &fakeStocksRepository{stocks: map[string]entity.Stock{
		"600519": {Code: "600519", Name: "Alpha Spirits", Industry: "Beverages"},
	}}
	svc := NewCatalogService(stocks, &fakeReportsRepository{}, testLogger(t))

	profile, err := svc.Profile(context.Background(), "600519")
	require.NoError(t, err)

	assert.Nil(t, profile.LatestScore)
	assert.Empty(t, profile.LatestRecommendation)
}

func TestCatalogService_ProfileNotFound(t *testing.T) {
	svc := NewCatalogService(&fakeStocksRepository{}, nil, testLogger(t))

	_, err := svc.Profile(context.Background(), "600519")
	assert.ErrorIs(t, err, ErrStockNotFound)
}

func TestCatalogService_ProfileRejectsInvalidCode(t *testing.T) {
	svc := NewCatalogService(&fakeStocksRepository{}, nil, testLogger(t))

	_, err := svc.Profile(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidStockCode)
}

func TestCatalogService_ListByIndustry(t *testing.T) {
	stocks := &fakeStocksRepository{industry: []entity.Stock{
		{Code: "600519", Name: "Alpha Spirits", Industry: "Beverages"},
		{Code: "000858", Name: "Beta Brewing", Industry: "Beverages"},
	}}
	svc := NewCatalogService(stocks, nil, testLogger(t))

	profiles, err := svc.ListByIndustry(context.Background(), "Beverages", 0)
	require.NoError(t, err)

	require.Len(t, profiles, 2)
	assert.Equal(t, "600519", profiles[0].StockCode)
	assert.Equal(t, defaultIndustryListLimit, stocks.gotLimit)
}

func TestCatalogService_ListByIndustryRequiresIndustry(t *testing.T) {
	svc := NewCatalogService(&fakeStocksRepository{}, nil, testLogger(t))

	_, err := svc.ListByIndustry(context.Background(), "", 10)
	assert.ErrorIs(t, err, ErrIndustryRequired)
}
