package service

import (
	"testing"

	"golang-stock-insight/internal/analysis/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundamentalAnalyzer_ScoreValuation(t *testing.T) {
	analyzer := NewFundamentalAnalyzer(testLogger(t))

	tests := []struct {
		name string
		pe   float64
		pb   float64
		want float64
	}{
		{"deep value", 8, 0.8, 10.0},
		{"cheap", 12, 1.5, 8.0},
		{"fair", 20, 3, 6.0},
		{"expensive", 50, 6, 2.0},
		{"missing ratios", 0, 0, 5.0},
		{"negative pe ignored", -5, 1.5, 6.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analyzer.ScoreValuation(tt.pe, tt.pb))
		})
	}
}

func TestFundamentalAnalyzer_TrendAdjustment(t *testing.T) {
	analyzer := NewFundamentalAnalyzer(testLogger(t))

	// Improving ROE, rock-steady margins, accelerating growth: every trend
	// component fires positive and the bonus caps at +0.8.
	history := dto.FinancialHistory{
		{Period: "2023Q1", ROE: 8, GrossMargin: 40, NetProfitGrowth: 5},
		{Period: "2023Q2", ROE: 10, GrossMargin: 40, NetProfitGrowth: 8},
		{Period: "2023Q3", ROE: 12, GrossMargin: 40, NetProfitGrowth: 10},
		{Period: "2023Q4", ROE: 15, GrossMargin: 40, NetProfitGrowth: 15},
	}

	assert.InDelta(t, 0.8, analyzer.trendAdjustment(history), 1e-9)
}

func TestFundamentalAnalyzer_TrendAdjustmentNeedsHistory(t *testing.T) {
	analyzer := NewFundamentalAnalyzer(testLogger(t))

	history := dto.FinancialHistory{
		{Period: "2023Q4", ROE: 15},
		{Period: "2024Q1", ROE: 20},
	}
	assert.Zero(t, analyzer.trendAdjustment(history))
}

func TestFundamentalAnalyzer_CalculateDCF(t *testing.T) {
	analyzer := NewFundamentalAnalyzer(testLogger(t))

	dcf := analyzer.CalculateDCF(2.0, 20)
	require.NotNil(t, dcf)
	assert.InDelta(t, 50.47, dcf.IntrinsicValue, 0.01)
	assert.InDelta(t, 40.38, dcf.MarginOfSafety20, 0.01)
	assert.InDelta(t, 35.33, dcf.MarginOfSafety30, 0.01)
	assert.Less(t, dcf.MarginOfSafety30, dcf.MarginOfSafety20)
	assert.Less(t, dcf.MarginOfSafety20, dcf.IntrinsicValue)
}

func TestFundamentalAnalyzer_CalculateDCFNonPositiveEPS(t *testing.T) {
	analyzer := NewFundamentalAnalyzer(testLogger(t))

	assert.Nil(t, analyzer.CalculateDCF(0, 20))
	assert.Nil(t, analyzer.CalculateDCF(-1.5, 20))
}

func TestFundamentalAnalyzer_CalculateDCFGrowthClamp(t *testing.T) {
	analyzer := NewFundamentalAnalyzer(testLogger(t))

	// Growth beyond 50% is capped, so 80% and 200% produce the same value.
	high := analyzer.CalculateDCF(1.0, 80)
	extreme := analyzer.CalculateDCF(1.0, 200)
	require.NotNil(t, high)
	require.NotNil(t, extreme)
	assert.Equal(t, high.IntrinsicValue, extreme.IntrinsicValue)
}

func TestFundamentalAnalyzer_AnalyzeStrongCompany(t *testing.T) {
	analyzer := NewFundamentalAnalyzer(testLogger(t))

	quote := &dto.Quote{PE: 18, PB: 3, MarketCap: 80e9}
	history := dto.FinancialHistory{
		{Period: "2023Q1", ROE: 18, EPS: 1.5, GrossMargin: 55, NetMargin: 22, RevenueGrowth: 15, NetProfitGrowth: 18, DebtRatio: 35, CurrentRatio: 2.1},
		{Period: "2023Q2", ROE: 19, EPS: 1.6, GrossMargin: 56, NetMargin: 23, RevenueGrowth: 16, NetProfitGrowth: 20, DebtRatio: 34, CurrentRatio: 2.2},
		{Period: "2023Q3", ROE: 20, EPS: 1.7, GrossMargin: 56, NetMargin: 23, RevenueGrowth: 17, NetProfitGrowth: 22, DebtRatio: 33, CurrentRatio: 2.2},
		{Period: "2023Q4", ROE: 22, EPS: 1.9, GrossMargin: 57, NetMargin: 24, RevenueGrowth: 18, NetProfitGrowth: 25, DebtRatio: 32, CurrentRatio: 2.3},
	}

	result := analyzer.Analyze(quote, history, &dto.ValuationHistory{PEPercentile: 40, PBPercentile: 35})

	assert.Greater(t, result.Score, 7.0)
	assert.Greater(t, result.Profitability, 7.0)
	assert.Greater(t, result.Health, 7.0)
	assert.Greater(t, result.TrendAdjustment, 0.0)
	require.NotNil(t, result.Valuation.PEPercentile)
	assert.Equal(t, 40.0, *result.Valuation.PEPercentile)
	require.NotNil(t, result.Valuation.DCF)
	require.NotNil(t, result.DuPont)
	assert.Equal(t, 22.0, result.DuPont.ROE)
}

func TestFundamentalAnalyzer_AnalyzeNoData(t *testing.T) {
	analyzer := NewFundamentalAnalyzer(testLogger(t))

	result := analyzer.Analyze(nil, nil, nil)

	// Missing everything lands near neutral, never at an extreme.
	assert.GreaterOrEqual(t, result.Score, 2.0)
	assert.LessOrEqual(t, result.Score, 6.0)
	assert.Nil(t, result.DuPont)
	assert.Nil(t, result.Valuation.DCF)
	assert.Nil(t, result.Valuation.PEPercentile)
}
