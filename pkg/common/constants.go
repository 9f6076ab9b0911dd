package common

import "time"

const (
	// Report cache, shared across instances via Redis.
	CacheKeyAnalysisReport = "analysis:report:"

	// Sub-fetch cache TTLs, tiered by data volatility.
	CacheTTLReport     = time.Hour
	CacheTTLQuote      = 10 * time.Second
	CacheTTLCandles    = 5 * time.Minute
	CacheTTLCapital    = 5 * time.Minute
	CacheTTLNews       = 30 * time.Minute
	CacheTTLFinancials = 6 * time.Hour
	CacheTTLValuation  = 6 * time.Hour
	CacheTTLPeers      = time.Hour
)
