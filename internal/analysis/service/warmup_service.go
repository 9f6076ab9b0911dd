package service

import (
	"context"
	"time"

	"golang-stock-insight/internal/analysis/config"
	"golang-stock-insight/pkg/logger"

	"github.com/robfig/cron/v3"
)

// WarmupService periodically re-analyzes the configured watchlist so the
// report cache stays hot for the stocks users query most.
type WarmupService struct {
	cfg      *config.Config
	log      *logger.Logger
	analyzer AnalyzerService
	cron     *cron.Cron
}

func NewWarmupService(cfg *config.Config, log *logger.Logger, analyzer AnalyzerService) *WarmupService {
	return &WarmupService{
		cfg:      cfg,
		log:      log,
		analyzer: analyzer,
		cron:     cron.New(),
	}
}

// Start registers the warmup schedule and launches the cron runner. It is
// a no-op when warmup is disabled or the watchlist is empty.
func (s *WarmupService) Start() error {
	if !s.cfg.Warmup.Enabled || len(s.cfg.Warmup.Watchlist) == 0 {
		s.log.Info("Cache warmup disabled")
		return nil
	}

	schedule := s.cfg.Warmup.Schedule
	if schedule == "" {
		schedule = "@every 30m"
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("Cache warmup started",
		logger.StringField("schedule", schedule),
		logger.IntField("watchlist_size", len(s.cfg.Warmup.Watchlist)))
	return nil
}

// Stop halts the cron runner and waits for an in-flight run to finish.
func (s *WarmupService) Stop() {
	<-s.cron.Stop().Done()
}

// run refreshes each watchlist entry sequentially. The market data
// repository already rate-limits requests, so fanning out here would only
// queue on the limiter.
func (s *WarmupService) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	for _, code := range s.cfg.Warmup.Watchlist {
		if _, err := s.analyzer.Analyze(ctx, code, true); err != nil {
			s.log.ErrorContext(ctx, "Watchlist warmup failed",
				logger.StringField("stock_code", code), logger.ErrorField(err))
			continue
		}
		s.log.DebugContext(ctx, "Watchlist entry warmed", logger.StringField("stock_code", code))
	}
}
