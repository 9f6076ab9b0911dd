package service

import (
	"context"
	"errors"
	"fmt"

	"golang-stock-insight/internal/analysis/dto"
	"golang-stock-insight/internal/analysis/repository"
	"golang-stock-insight/pkg/logger"

	"gorm.io/gorm"
)

var (
	// ErrStockNotFound marks a code absent from the instrument catalog.
	ErrStockNotFound = errors.New("stock not found in catalog")
	// ErrIndustryRequired marks an industry listing request without an
	// industry filter.
	ErrIndustryRequired = errors.New("industry is required")
)

const (
	defaultIndustryListLimit = 20
	maxIndustryListLimit     = 100
)

// CatalogService serves the instrument catalog, joining each entry with
// its latest persisted analysis outcome.
type CatalogService interface {
	Profile(ctx context.Context, stockCode string) (*dto.StockProfile, error)
	ListByIndustry(ctx context.Context, industry string, limit int) ([]dto.StockProfile, error)
}

type catalogService struct {
	stocks  repository.StocksRepository
	reports repository.AnalysisReportRepository
	log     *logger.Logger
}

func NewCatalogService(stocks repository.StocksRepository, reports repository.AnalysisReportRepository, log *logger.Logger) CatalogService {
	return &catalogService{stocks: stocks, reports: reports, log: log}
}

func (s *catalogService) Profile(ctx context.Context, stockCode string) (*dto.StockProfile, error) {
	if !stockCodePattern.MatchString(stockCode) {
		return nil, ErrInvalidStockCode
	}

	stock, err := s.stocks.GetByCode(ctx, stockCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrStockNotFound, stockCode)
		}
		return nil, fmt.Errorf("fetch stock: %w", err)
	}

	profile := &dto.StockProfile{
		StockCode: stock.Code,
		StockName: stock.Name,
		Industry:  stock.Industry,
	}
	s.attachLatestReport(ctx, profile)
	return profile, nil
}

func (s *catalogService) ListByIndustry(ctx context.Context, industry string, limit int) ([]dto.StockProfile, error) {
	if industry == "" {
		return nil, ErrIndustryRequired
	}
	if limit <= 0 {
		limit = defaultIndustryListLimit
	}
	limit = min(limit, maxIndustryListLimit)

	stocks, err := s.stocks.GetByIndustry(ctx, industry, limit)
	if err != nil {
		return nil, fmt.Errorf("list stocks by industry: %w", err)
	}

	profiles := make([]dto.StockProfile, 0, len(stocks))
	for _, stock := range stocks {
		profiles = append(profiles, dto.StockProfile{
			StockCode: stock.Code,
			StockName: stock.Name,
			Industry:  stock.Industry,
		})
	}
	return profiles, nil
}

// attachLatestReport is best-effort; a catalog entry with no analysis yet
// simply has no latest fields.
func (s *catalogService) attachLatestReport(ctx context.Context, profile *dto.StockProfile) {
	if s.reports == nil {
		return
	}
	latest, err := s.reports.GetLatest(ctx, profile.StockCode)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.WarnContext(ctx, "Failed to fetch latest report for profile",
				logger.StringField("stock_code", profile.StockCode), logger.ErrorField(err))
		}
		return
	}
	score := latest.OverallScore
	profile.LatestScore = &score
	profile.LatestRecommendation = latest.Recommendation
	profile.LastAnalyzedAt = latest.GeneratedAt.Unix()
}
