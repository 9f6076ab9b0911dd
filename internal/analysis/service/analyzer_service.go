package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang-stock-insight/internal/analysis/config"
	"golang-stock-insight/internal/analysis/dto"
	"golang-stock-insight/internal/analysis/repository"
	"golang-stock-insight/internal/entity"
	"golang-stock-insight/pkg/common"
	"golang-stock-insight/pkg/logger"
	"golang-stock-insight/pkg/redis"
	"golang-stock-insight/pkg/telegram"
	"golang-stock-insight/pkg/utils"

	"gorm.io/datatypes"
)

// Dimension weights for the overall score, sum 1.0.
const (
	weightFundamental = 0.35
	weightTechnical   = 0.25
	weightCapital     = 0.20
	weightValuation   = 0.15
	weightSentiment   = 0.05
)

var (
	// ErrInvalidStockCode marks a symbol that is not a six-digit code.
	ErrInvalidStockCode = errors.New("stock code must be exactly six digits")
	// ErrQuoteUnavailable marks a symbol whose real-time quote could not
	// be fetched; analysis cannot proceed without it.
	ErrQuoteUnavailable = errors.New("quote data unavailable")
	// ErrHistoryUnavailable is returned when report persistence is not
	// configured.
	ErrHistoryUnavailable = errors.New("report history unavailable")
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
)

var stockCodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// AnalyzerService orchestrates data fetching, dimension analysis, and
// report assembly.
type AnalyzerService interface {
	Analyze(ctx context.Context, stockCode string, forceRefresh bool) (*dto.AnalysisReport, error)
	AssessRisk(ctx context.Context, stockCode string) (*dto.RiskAssessment, error)
	CompareIndustry(ctx context.Context, stockCode string) (*dto.IndustryComparison, error)
	History(ctx context.Context, stockCode string, limit int) ([]dto.AnalysisReport, error)
}

type analyzerService struct {
	cfg         *config.Config
	log         *logger.Logger
	marketData  repository.MarketDataRepository
	reports     repository.AnalysisReportRepository
	redisClient *redis.Client
	notifier    telegram.Notifier

	fundamental *FundamentalAnalyzer
	technical   *TechnicalAnalyzer
	capitalFlow *CapitalFlowAnalyzer
	sentiment   *SentimentAnalyzer
	riskScorer  *RiskScorer
	comparator  *IndustryComparator
}

// NewAnalyzerService creates the analysis orchestrator. The notifier may
// be nil when Telegram is not configured.
func NewAnalyzerService(
	cfg *config.Config,
	log *logger.Logger,
	marketData repository.MarketDataRepository,
	reports repository.AnalysisReportRepository,
	redisClient *redis.Client,
	notifier telegram.Notifier,
) AnalyzerService {
	return &analyzerService{
		cfg:         cfg,
		log:         log,
		marketData:  marketData,
		reports:     reports,
		redisClient: redisClient,
		notifier:    notifier,
		fundamental: NewFundamentalAnalyzer(log),
		technical:   NewTechnicalAnalyzer(log),
		capitalFlow: NewCapitalFlowAnalyzer(log),
		sentiment:   NewSentimentAnalyzer(log),
		riskScorer:  NewRiskScorer(log),
		comparator:  NewIndustryComparator(marketData, cfg.MarketData.PeerLimit, log),
	}
}

// analysisData is the immutable input snapshot shared by all dimension
// analyzers. Nil or empty slots mean that source failed or returned
// nothing; analyzers degrade to neutral scores instead of failing.
type analysisData struct {
	quote      *dto.Quote
	candles    dto.TimeSeries
	financials dto.FinancialHistory
	flow       *dto.CapitalFlowSnapshot
	news       []dto.NewsItem
	valuation  *dto.ValuationHistory
}

// Analyze produces (or returns a cached) full report for one stock.
// Within the cache TTL repeated calls return the identical report unless
// forceRefresh bypasses the read.
func (s *analyzerService) Analyze(ctx context.Context, stockCode string, forceRefresh bool) (*dto.AnalysisReport, error) {
	if !stockCodePattern.MatchString(stockCode) {
		return nil, ErrInvalidStockCode
	}

	cacheKey := common.CacheKeyAnalysisReport + stockCode
	if !forceRefresh {
		if report := s.getCachedReport(ctx, cacheKey); report != nil {
			s.log.DebugContext(ctx, "Returning cached analysis report", logger.StringField("stock_code", stockCode))
			return report, nil
		}
	}

	data := s.fetchAnalysisData(ctx, stockCode)
	if data.quote == nil {
		return nil, fmt.Errorf("%w: %s", ErrQuoteUnavailable, stockCode)
	}

	var (
		fundamental dto.FundamentalAnalysis
		technical   dto.TechnicalAnalysis
		capitalFlow dto.CapitalFlowAnalysis
		industry    *dto.IndustryComparison
		wg          sync.WaitGroup
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		fundamental = s.fundamental.Analyze(data.quote, data.financials, data.valuation)
	}()
	go func() {
		defer wg.Done()
		technical = s.technical.Analyze(data.candles)
	}()
	go func() {
		defer wg.Done()
		capitalFlow = s.capitalFlow.Analyze(data.flow, data.quote)
	}()
	go func() {
		defer wg.Done()
		comparison, err := s.comparator.Compare(ctx, stockCode)
		if err != nil {
			s.log.ErrorContext(ctx, "Industry comparison failed",
				logger.StringField("stock_code", stockCode), logger.ErrorField(err))
			return
		}
		if comparison != nil && comparison.Target != nil {
			industry = comparison
		}
	}()
	wg.Wait()

	sentiment := s.sentiment.Analyze(data.news)
	valuationScore := fundamental.ValuationScore

	overall := utils.Round1(
		fundamental.Score*weightFundamental +
			technical.Score*weightTechnical +
			capitalFlow.Score*weightCapital +
			valuationScore*weightValuation +
			sentiment.Score*weightSentiment)

	report := &dto.AnalysisReport{
		StockCode:          stockCode,
		StockName:          data.quote.StockName,
		Fundamental:        fundamental,
		Technical:          technical,
		CapitalFlow:        capitalFlow,
		Sentiment:          sentiment,
		IndustryComparison: industry,
		OverallScore:       overall,
		RiskLevel:          s.assessReportRisk(overall, data.quote),
		Recommendation:     recommend(overall),
		Confidence:         s.assessConfidence(data, fundamental.Score, technical.Score, capitalFlow.Score, valuationScore, sentiment.Score),
		Summary:            buildReportSummary(fundamental, technical, capitalFlow, overall),
		GeneratedAt:        time.Now().Unix(),
	}

	s.cacheReport(ctx, cacheKey, report)
	s.persistReport(ctx, report)
	s.notifyBuySignal(ctx, report)

	return report, nil
}

// AssessRisk runs the standalone risk assessment. It fetches only the
// inputs the risk dimensions need and never touches the report cache.
func (s *analyzerService) AssessRisk(ctx context.Context, stockCode string) (*dto.RiskAssessment, error) {
	if !stockCodePattern.MatchString(stockCode) {
		return nil, ErrInvalidStockCode
	}

	quote, err := s.marketData.GetQuote(ctx, stockCode)
	if err != nil || quote == nil {
		return nil, fmt.Errorf("%w: %s", ErrQuoteUnavailable, stockCode)
	}

	financials, err := s.marketData.GetFinancials(ctx, stockCode, s.cfg.MarketData.FinancialPeriods)
	if err != nil {
		s.log.WarnContext(ctx, "Financials unavailable for risk assessment",
			logger.StringField("stock_code", stockCode), logger.ErrorField(err))
		financials = nil
	}
	flow, err := s.marketData.GetCapitalFlow(ctx, stockCode)
	if err != nil {
		s.log.WarnContext(ctx, "Capital flow unavailable for risk assessment",
			logger.StringField("stock_code", stockCode), logger.ErrorField(err))
		flow = nil
	}

	assessment := s.riskScorer.Assess(quote, financials, flow)
	return &assessment, nil
}

// CompareIndustry runs the standalone peer comparison.
func (s *analyzerService) CompareIndustry(ctx context.Context, stockCode string) (*dto.IndustryComparison, error) {
	if !stockCodePattern.MatchString(stockCode) {
		return nil, ErrInvalidStockCode
	}
	return s.comparator.Compare(ctx, stockCode)
}

// History returns the persisted reports for one stock, newest first.
// Records whose payload no longer decodes are skipped rather than failing
// the whole listing.
func (s *analyzerService) History(ctx context.Context, stockCode string, limit int) ([]dto.AnalysisReport, error) {
	if !stockCodePattern.MatchString(stockCode) {
		return nil, ErrInvalidStockCode
	}
	if s.reports == nil {
		return nil, ErrHistoryUnavailable
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	records, err := s.reports.ListByStockCode(ctx, stockCode, limit)
	if err != nil {
		return nil, fmt.Errorf("list report history: %w", err)
	}

	reports := make([]dto.AnalysisReport, 0, len(records))
	for _, rec := range records {
		var report dto.AnalysisReport
		if err := json.Unmarshal(rec.Payload, &report); err != nil {
			s.log.WarnContext(ctx, "Skipping undecodable report payload",
				logger.StringField("stock_code", stockCode), logger.ErrorField(err))
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// fetchAnalysisData pulls all six sources concurrently. Individual
// failures are logged and leave their slot empty.
func (s *analyzerService) fetchAnalysisData(ctx context.Context, stockCode string) *analysisData {
	data := &analysisData{}
	var wg sync.WaitGroup

	wg.Add(6)
	go func() {
		defer wg.Done()
		quote, err := s.marketData.GetQuote(ctx, stockCode)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to fetch quote", logger.StringField("stock_code", stockCode), logger.ErrorField(err))
			return
		}
		data.quote = quote
	}()
	go func() {
		defer wg.Done()
		candles, err := s.marketData.GetCandles(ctx, stockCode, "1d", s.cfg.MarketData.CandleCount)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to fetch candles", logger.StringField("stock_code", stockCode), logger.ErrorField(err))
			return
		}
		data.candles = candles
	}()
	go func() {
		defer wg.Done()
		financials, err := s.marketData.GetFinancials(ctx, stockCode, s.cfg.MarketData.FinancialPeriods)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to fetch financials", logger.StringField("stock_code", stockCode), logger.ErrorField(err))
			return
		}
		data.financials = financials
	}()
	go func() {
		defer wg.Done()
		flow, err := s.marketData.GetCapitalFlow(ctx, stockCode)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to fetch capital flow", logger.StringField("stock_code", stockCode), logger.ErrorField(err))
			return
		}
		data.flow = flow
	}()
	go func() {
		defer wg.Done()
		news, err := s.marketData.GetNews(ctx, stockCode, s.cfg.MarketData.NewsLimit)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to fetch news", logger.StringField("stock_code", stockCode), logger.ErrorField(err))
			return
		}
		data.news = news
	}()
	go func() {
		defer wg.Done()
		valuation, err := s.marketData.GetValuationHistory(ctx, stockCode)
		if err != nil {
			s.log.WarnContext(ctx, "Failed to fetch valuation history", logger.StringField("stock_code", stockCode), logger.ErrorField(err))
			return
		}
		data.valuation = valuation
	}()
	wg.Wait()

	return data
}

// assessConfidence combines dimension score dispersion with how many data
// sources actually delivered. Balanced dimensions built on rich data rate
// high; conflicting dimensions or thin data rate low.
func (s *analyzerService) assessConfidence(data *analysisData, scores ...float64) string {
	mean := 0.0
	for _, v := range scores {
		mean += v
	}
	mean /= float64(len(scores))
	variance := 0.0
	for _, v := range scores {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(scores))
	std := math.Sqrt(variance)

	avail := 0
	if len(data.financials) > 0 {
		avail++
	}
	if len(data.candles) > 60 {
		avail++
	}
	if data.flow != nil {
		avail++
	}
	if len(data.news) > 0 {
		avail++
	}
	if data.quote != nil {
		avail++
	}

	switch {
	case avail >= 4 && std < 1.5:
		return dto.ConfidenceHigh
	case avail >= 3 && std < 2.5:
		return dto.ConfidenceMedium
	default:
		return dto.ConfidenceLow
	}
}

// assessReportRisk bands the overall score, then applies volatility,
// liquidity, and special-treatment adjustments. A strong score does not
// exempt a volatile illiquid name from elevated risk.
func (s *analyzerService) assessReportRisk(overall float64, quote *dto.Quote) string {
	risk := dto.RiskHigh
	switch {
	case overall >= 7.0:
		risk = dto.RiskLow
	case overall >= 5.0:
		risk = dto.RiskMedium
	}

	if quote != nil {
		if quote.Amplitude > 5 && risk == dto.RiskLow {
			risk = dto.RiskMedium
		}
		if quote.TurnoverRate > 0 && quote.TurnoverRate < 0.3 && risk == dto.RiskLow {
			risk = dto.RiskMedium
		}
		if strings.Contains(quote.StockName, "ST") {
			risk = dto.RiskHigh
		}
	}

	return risk
}

func recommend(overall float64) string {
	switch {
	case overall >= 7.0:
		return dto.RecommendationBuy
	case overall >= 5.5:
		return dto.RecommendationHold
	case overall >= 4.0:
		return dto.RecommendationWatch
	default:
		return dto.RecommendationSell
	}
}

func buildReportSummary(fundamental dto.FundamentalAnalysis, technical dto.TechnicalAnalysis, capitalFlow dto.CapitalFlowAnalysis, overall float64) string {
	return fmt.Sprintf("Fundamental: %s Technical: %s Capital flow: %s Overall score %.1f. This analysis is for reference only and is not investment advice.",
		fundamental.Summary, technical.Summary, capitalFlow.Summary, overall)
}

func (s *analyzerService) getCachedReport(ctx context.Context, key string) *dto.AnalysisReport {
	if s.redisClient == nil {
		return nil
	}
	raw, err := s.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var report dto.AnalysisReport
	if err := json.Unmarshal(raw, &report); err != nil {
		s.log.WarnContext(ctx, "Failed to decode cached report", logger.StringField("key", key), logger.ErrorField(err))
		return nil
	}
	return &report
}

func (s *analyzerService) cacheReport(ctx context.Context, key string, report *dto.AnalysisReport) {
	if s.redisClient == nil {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to encode report for cache", logger.ErrorField(err))
		return
	}
	ttl := s.cfg.Analyzer.ReportCacheTTL
	if err := s.redisClient.Set(ctx, key, raw, ttl).Err(); err != nil {
		s.log.ErrorContext(ctx, "Failed to cache report", logger.StringField("key", key), logger.ErrorField(err))
	}
}

// persistReport stores the report for history queries. Persistence
// failures are logged but never fail the analysis request.
func (s *analyzerService) persistReport(ctx context.Context, report *dto.AnalysisReport) {
	if s.reports == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to encode report payload", logger.ErrorField(err))
		return
	}
	record := &entity.AnalysisReport{
		StockCode:      report.StockCode,
		OverallScore:   report.OverallScore,
		RiskLevel:      report.RiskLevel,
		Recommendation: report.Recommendation,
		Confidence:     report.Confidence,
		Payload:        datatypes.JSON(payload),
		GeneratedAt:    time.Unix(report.GeneratedAt, 0),
	}
	if err := s.reports.Create(ctx, record); err != nil {
		s.log.ErrorContext(ctx, "Failed to persist analysis report",
			logger.StringField("stock_code", report.StockCode), logger.ErrorField(err))
	}
}

// notifyBuySignal pushes high-confidence buy recommendations to Telegram.
func (s *analyzerService) notifyBuySignal(ctx context.Context, report *dto.AnalysisReport) {
	if s.notifier == nil {
		return
	}
	if report.Recommendation != dto.RecommendationBuy || report.Confidence != dto.ConfidenceHigh {
		return
	}
	if err := s.notifier.SendMessage(telegram.FormatBuySignalMessage(report)); err != nil {
		s.log.ErrorContext(ctx, "Failed to send buy signal notification",
			logger.StringField("stock_code", report.StockCode), logger.ErrorField(err))
	}
}
