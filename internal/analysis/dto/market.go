package dto

import "time"

// Quote is a real-time snapshot for one instrument. Numeric fields use the
// provider convention that zero means "not reported"; analyzers treat zero
// valuation ratios as missing data rather than literal values.
type Quote struct {
	StockCode            string  `json:"stock_code"`
	StockName            string  `json:"stock_name"`
	Price                float64 `json:"price"`
	Change               float64 `json:"change"`
	PctChange            float64 `json:"pct_change"`
	Open                 float64 `json:"open"`
	High                 float64 `json:"high"`
	Low                  float64 `json:"low"`
	PreClose             float64 `json:"pre_close"`
	Volume               float64 `json:"volume"`
	Amount               float64 `json:"amount"`
	TurnoverRate         float64 `json:"turnover_rate"`
	Amplitude            float64 `json:"amplitude"`
	Change60D            float64 `json:"change_60d"`
	PE                   float64 `json:"pe"`
	PB                   float64 `json:"pb"`
	MarketCap            float64 `json:"market_cap"`
	CirculatingMarketCap float64 `json:"circulating_market_cap"`
}

// Candle is one OHLCV bar.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Amount    float64   `json:"amount"`
}

// TimeSeries is an ordered bar sequence, oldest first, strictly increasing
// timestamps.
type TimeSeries []Candle

// Closes extracts the close series.
func (ts TimeSeries) Closes() []float64 {
	out := make([]float64, len(ts))
	for i, c := range ts {
		out[i] = c.Close
	}
	return out
}

// Highs extracts the high series.
func (ts TimeSeries) Highs() []float64 {
	out := make([]float64, len(ts))
	for i, c := range ts {
		out[i] = c.High
	}
	return out
}

// Lows extracts the low series.
func (ts TimeSeries) Lows() []float64 {
	out := make([]float64, len(ts))
	for i, c := range ts {
		out[i] = c.Low
	}
	return out
}

// Volumes extracts the volume series.
func (ts TimeSeries) Volumes() []float64 {
	out := make([]float64, len(ts))
	for i, c := range ts {
		out[i] = c.Volume
	}
	return out
}

// FinancialRecord is one reporting period's fundamentals. Ratio fields are
// percentages (ROE 15 means 15%).
type FinancialRecord struct {
	Period          string  `json:"period"`
	EPS             float64 `json:"eps"`
	ROE             float64 `json:"roe"`
	GrossMargin     float64 `json:"gross_margin"`
	NetMargin       float64 `json:"net_margin"`
	RevenueGrowth   float64 `json:"revenue_growth"`
	NetProfitGrowth float64 `json:"net_profit_growth"`
	DebtRatio       float64 `json:"debt_ratio"`
	CurrentRatio    float64 `json:"current_ratio"`
}

// FinancialHistory is chronologically ordered, oldest first.
type FinancialHistory []FinancialRecord

// Latest returns the most recent record, or false when the history is empty.
func (h FinancialHistory) Latest() (FinancialRecord, bool) {
	if len(h) == 0 {
		return FinancialRecord{}, false
	}
	return h[len(h)-1], true
}

// CapitalFlowSnapshot aggregates net order flow by size tier over several
// horizons. Tiers are mutually exclusive; the main inflow is the
// super-large plus large tiers.
type CapitalFlowSnapshot struct {
	MainNetInflow         float64 `json:"main_net_inflow"`
	MainNetInflowPct      float64 `json:"main_net_inflow_pct"`
	MainNetInflow5D       float64 `json:"main_net_inflow_5d"`
	MainNetInflow10D      float64 `json:"main_net_inflow_10d"`
	MainNetInflow20D      float64 `json:"main_net_inflow_20d"`
	SuperLargeNetInflow   float64 `json:"super_large_net_inflow"`
	LargeNetInflow        float64 `json:"large_net_inflow"`
	MediumNetInflow       float64 `json:"medium_net_inflow"`
	SmallNetInflow        float64 `json:"small_net_inflow"`
	SuperLargeNetInflow5D float64 `json:"super_large_net_inflow_5d"`
	LargeNetInflow5D      float64 `json:"large_net_inflow_5d"`
}

// NewsItem is one article or announcement. Lists are ranked most recent
// first; the sentiment analyzer relies on that ordering for time decay.
type NewsItem struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// ValuationHistory holds where the current PE/PB sit within their own
// historical distributions.
type ValuationHistory struct {
	PEPercentile float64 `json:"pe_percentile"`
	PBPercentile float64 `json:"pb_percentile"`
}

// PeerSnapshot is one stock's metrics inside an industry peer set. Zero
// means the peer lacks that metric and it is skipped during ranking.
type PeerSnapshot struct {
	StockCode       string  `json:"stock_code"`
	StockName       string  `json:"stock_name"`
	PE              float64 `json:"pe"`
	PB              float64 `json:"pb"`
	ROE             float64 `json:"roe"`
	RevenueGrowth   float64 `json:"revenue_growth"`
	NetProfitGrowth float64 `json:"net_profit_growth"`
	MarketCap       float64 `json:"market_cap"`
	PctChange       float64 `json:"pct_change"`
}

// PeerGroup is the target plus its same-industry peers.
type PeerGroup struct {
	Industry string         `json:"industry"`
	Target   *PeerSnapshot  `json:"target"`
	Peers    []PeerSnapshot `json:"peers"`
}
