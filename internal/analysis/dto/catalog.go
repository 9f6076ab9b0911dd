package dto

// StockProfile is a catalog entry enriched with the latest persisted
// analysis outcome when one exists.
type StockProfile struct {
	StockCode            string   `json:"stock_code"`
	StockName            string   `json:"stock_name"`
	Industry             string   `json:"industry"`
	LatestScore          *float64 `json:"latest_score,omitempty"`
	LatestRecommendation string   `json:"latest_recommendation,omitempty"`
	LastAnalyzedAt       int64    `json:"last_analyzed_at,omitempty"`
}
