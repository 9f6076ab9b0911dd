package dto

// Trend labels shared by the technical and capital-flow analyzers.
const (
	TrendStrongUp     = "strong_up"
	TrendWeakUp       = "weak_up"
	TrendStrongDown   = "strong_down"
	TrendWeakDown     = "weak_down"
	TrendRanging      = "ranging"
	TrendUndetermined = "undetermined"
)

const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

const (
	RecommendationBuy   = "buy"
	RecommendationHold  = "hold"
	RecommendationWatch = "watch"
	RecommendationSell  = "sell"
)

const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// DuPontAnalysis decomposes ROE into margin, turnover and leverage and
// names the dominant driver.
type DuPontAnalysis struct {
	ROE              float64 `json:"roe"`
	NetProfitMargin  float64 `json:"net_profit_margin"`
	AssetTurnover    float64 `json:"asset_turnover"`
	EquityMultiplier float64 `json:"equity_multiplier"`
	Driver           string  `json:"driver"`
}

// DCFValuation is the two-stage discounted-cash-flow result. It is absent
// from the report when EPS is non-positive or the discount rate does not
// exceed the terminal growth rate.
type DCFValuation struct {
	IntrinsicValue   float64 `json:"intrinsic_value"`
	MarginOfSafety20 float64 `json:"margin_of_safety_20"`
	MarginOfSafety30 float64 `json:"margin_of_safety_30"`
	DiscountRate     float64 `json:"discount_rate"`
	TerminalGrowth   float64 `json:"terminal_growth"`
	Stage1Years      int     `json:"stage1_years"`
}

// ValuationDetail carries the raw valuation inputs plus the optional
// history percentiles and DCF result.
type ValuationDetail struct {
	PE           float64       `json:"pe"`
	PB           float64       `json:"pb"`
	MarketCap    float64       `json:"market_cap"`
	PEPercentile *float64      `json:"pe_percentile,omitempty"`
	PBPercentile *float64      `json:"pb_percentile,omitempty"`
	DCF          *DCFValuation `json:"dcf,omitempty"`
}

// FundamentalAnalysis is the fundamental dimension result.
type FundamentalAnalysis struct {
	Score           float64         `json:"score"`
	ValuationScore  float64         `json:"valuation_score"`
	Profitability   float64         `json:"profitability_score"`
	Growth          float64         `json:"growth_score"`
	Health          float64         `json:"health_score"`
	QualityScore    float64         `json:"quality_score"`
	TrendAdjustment float64         `json:"trend_adjustment"`
	Valuation       ValuationDetail `json:"valuation"`
	DuPont          *DuPontAnalysis `json:"dupont,omitempty"`
	Summary         string          `json:"summary"`
}

// TechnicalIndicators holds the latest value of each computed indicator.
// A nil field means that indicator could not be resolved for this series;
// it is omitted from the JSON payload rather than failing the analysis.
type TechnicalIndicators struct {
	MA5       *float64 `json:"ma5,omitempty"`
	MA10      *float64 `json:"ma10,omitempty"`
	MA20      *float64 `json:"ma20,omitempty"`
	MA60      *float64 `json:"ma60,omitempty"`
	RSI14     *float64 `json:"rsi14,omitempty"`
	MACDDIF   *float64 `json:"macd_dif,omitempty"`
	MACDDEA   *float64 `json:"macd_dea,omitempty"`
	KDJK      *float64 `json:"kdj_k,omitempty"`
	KDJD      *float64 `json:"kdj_d,omitempty"`
	KDJJ      *float64 `json:"kdj_j,omitempty"`
	BollUpper *float64 `json:"boll_upper,omitempty"`
	BollMid   *float64 `json:"boll_mid,omitempty"`
	BollLower *float64 `json:"boll_lower,omitempty"`
	ADX       *float64 `json:"adx,omitempty"`
	PlusDI    *float64 `json:"plus_di,omitempty"`
	MinusDI   *float64 `json:"minus_di,omitempty"`
	VolRatio  *float64 `json:"vol_ratio,omitempty"`
}

// TechnicalAnalysis is the technical dimension result. Support levels are
// strictly below the current price and resistance levels strictly above,
// both sorted nearest-first, at most three per side.
type TechnicalAnalysis struct {
	Score            float64             `json:"score"`
	Trend            string              `json:"trend"`
	SupportLevels    []float64           `json:"support_levels"`
	ResistanceLevels []float64           `json:"resistance_levels"`
	Indicators       TechnicalIndicators `json:"indicators"`
	Summary          string              `json:"summary"`
}

// CapitalFlowAnalysis is the capital-flow dimension result.
type CapitalFlowAnalysis struct {
	Score               float64 `json:"score"`
	MainNetInflow       float64 `json:"main_net_inflow"`
	MainNetInflow5D     float64 `json:"main_net_inflow_5d"`
	MainNetInflow10D    float64 `json:"main_net_inflow_10d"`
	SuperLargeNetInflow float64 `json:"super_large_net_inflow"`
	LargeNetInflow      float64 `json:"large_net_inflow"`
	NormalizedInflowPct float64 `json:"normalized_inflow_pct"`
	Trend               string  `json:"trend"`
	Momentum            string  `json:"momentum"`
	Summary             string  `json:"summary"`
}

// SentimentAnalysis is the news dimension result. NoData distinguishes a
// neutral score computed from balanced coverage from one defaulted in the
// absence of any news.
type SentimentAnalysis struct {
	Score         float64 `json:"score"`
	PositiveScore float64 `json:"positive_score"`
	NegativeScore float64 `json:"negative_score"`
	ArticleCount  int     `json:"article_count"`
	NoData        bool    `json:"no_data"`
	Summary       string  `json:"summary"`
}

// ComparisonMetric is one ranked metric within an industry comparison.
type ComparisonMetric struct {
	Metric      string  `json:"metric"`
	Label       string  `json:"label"`
	TargetValue float64 `json:"target_value"`
	IndustryAvg float64 `json:"industry_avg"`
	Rank        int     `json:"rank"`
	Total       int     `json:"total"`
	Percentile  float64 `json:"percentile"`
	VsAverage   string  `json:"vs_average"`
}

// IndustryComparison ranks the target against its industry peers.
type IndustryComparison struct {
	Industry string             `json:"industry"`
	Target   *PeerSnapshot      `json:"target"`
	Peers    []PeerSnapshot     `json:"peers"`
	Metrics  []ComparisonMetric `json:"comparison_metrics"`
	Position string             `json:"industry_position"`
}

// RiskBreakdown holds the per-dimension risk sub-scores, each in [1,10]
// with higher meaning safer.
type RiskBreakdown struct {
	Financial  float64 `json:"financial"`
	Valuation  float64 `json:"valuation"`
	Liquidity  float64 `json:"liquidity"`
	Volatility float64 `json:"volatility"`
	Event      float64 `json:"event"`
}

// RiskAssessment is the standalone risk result, independent of the
// investment score. Computed on demand and never cached.
type RiskAssessment struct {
	Score     float64       `json:"score"`
	RiskLevel string        `json:"risk_level"`
	Details   RiskBreakdown `json:"details"`
}

// AnalysisReport fuses all dimension results. Reports are immutable once
// produced; a refresh creates a new report.
type AnalysisReport struct {
	StockCode          string              `json:"stock_code"`
	StockName          string              `json:"stock_name"`
	Fundamental        FundamentalAnalysis `json:"fundamental"`
	Technical          TechnicalAnalysis   `json:"technical"`
	CapitalFlow        CapitalFlowAnalysis `json:"capital_flow"`
	Sentiment          SentimentAnalysis   `json:"sentiment"`
	IndustryComparison *IndustryComparison `json:"industry_comparison,omitempty"`
	OverallScore       float64             `json:"overall_score"`
	RiskLevel          string              `json:"risk_level"`
	Recommendation     string              `json:"recommendation"`
	Confidence         string              `json:"confidence"`
	Summary            string              `json:"summary"`
	GeneratedAt        int64               `json:"generated_at"`
}
