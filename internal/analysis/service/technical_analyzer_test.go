package service

import (
	"testing"

	"golang-stock-insight/internal/analysis/dto"
	"golang-stock-insight/pkg/indicators"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dipRecoverCandles builds a long uptrend, an eight-bar pullback and a
// sharp five-bar recovery on elevated volume, so the MACD golden cross
// lands on the final bar while the MA stack stays bullish.
func dipRecoverCandles() dto.TimeSeries {
	const n = 90
	candles := make(dto.TimeSeries, n)
	level := 0.0
	for i := 0; i < n; i++ {
		switch {
		case i < n-13:
			level = 20 + 0.15*float64(i)
		case i < n-5:
			level -= 0.15
		default:
			level += 0.5
		}
		volume := 1000.0
		if i >= n-5 {
			volume = 1500
		}
		candles[i] = dto.Candle{
			Open:   level - 0.1,
			High:   level + 0.2,
			Low:    level - 0.2,
			Close:  level,
			Volume: volume,
		}
	}
	return candles
}

func TestTechnicalAnalyzer_InsufficientData(t *testing.T) {
	analyzer := NewTechnicalAnalyzer(testLogger(t))

	result := analyzer.Analyze(uptrendCandles(10))

	assert.Equal(t, 5.0, result.Score)
	assert.Equal(t, dto.TrendUndetermined, result.Trend)
	assert.Empty(t, result.SupportLevels)
	assert.Empty(t, result.ResistanceLevels)
}

func TestTechnicalAnalyzer_StrongUptrend(t *testing.T) {
	analyzer := NewTechnicalAnalyzer(testLogger(t))
	candles := uptrendCandles(90)
	price := candles[len(candles)-1].Close

	result := analyzer.Analyze(candles)

	assert.Equal(t, dto.TrendStrongUp, result.Trend)
	assert.GreaterOrEqual(t, result.Score, 7.5)

	require.NotNil(t, result.Indicators.MA5)
	require.NotNil(t, result.Indicators.MA20)
	assert.Greater(t, *result.Indicators.MA5, *result.Indicators.MA20)
	require.NotNil(t, result.Indicators.ADX)
	assert.Greater(t, *result.Indicators.ADX, 25.0)

	// Support levels sit strictly below price, nearest first.
	require.NotEmpty(t, result.SupportLevels)
	prev := price
	for _, level := range result.SupportLevels {
		assert.Less(t, level, price)
		assert.LessOrEqual(t, level, prev)
		prev = level
	}

	// Resistance levels sit strictly above price, nearest first.
	require.NotEmpty(t, result.ResistanceLevels)
	prev = price
	for _, level := range result.ResistanceLevels {
		assert.Greater(t, level, price)
		assert.GreaterOrEqual(t, level, prev)
		prev = level
	}

	assert.LessOrEqual(t, len(result.SupportLevels), 3)
	assert.LessOrEqual(t, len(result.ResistanceLevels), 3)
}

func TestTechnicalAnalyzer_Downtrend(t *testing.T) {
	analyzer := NewTechnicalAnalyzer(testLogger(t))

	result := analyzer.Analyze(downtrendCandles(90))

	assert.Contains(t, []string{dto.TrendStrongDown, dto.TrendWeakDown}, result.Trend)
	assert.Less(t, result.Score, 5.0)
}

func TestTechnicalAnalyzer_FreshGoldenCrossConfluence(t *testing.T) {
	analyzer := NewTechnicalAnalyzer(testLogger(t))

	result := analyzer.Analyze(dipRecoverCandles())

	assert.Equal(t, dto.TrendStrongUp, result.Trend)
	assert.GreaterOrEqual(t, result.Score, 8.0)
	assert.InDelta(t, 8.8, result.Score, 1e-9)
	assert.Contains(t, result.Summary, "MACD golden cross")

	require.NotNil(t, result.Indicators.ADX)
	assert.Greater(t, *result.Indicators.ADX, 25.0)
	require.NotNil(t, result.Indicators.VolRatio)
	assert.Greater(t, *result.Indicators.VolRatio, 1.3)
}

func TestScoreSignalsConfluenceBonus(t *testing.T) {
	analyzer := NewTechnicalAnalyzer(testLogger(t))
	alignment := indicators.MAAlignment{Bullish: true}

	// Alignment, ADX direction and a fresh golden cross stack up to three
	// bullish signals, unlocking the extra half point.
	score, bullish, bearish := analyzer.scoreSignals(
		dto.TrendStrongUp, alignment,
		indicators.MACDCross{GoldenCross: true, DIF: 1.0, DEA: 0.5},
		indicators.Divergence{},
		50, 50, 50, 30, 32, 28, 30, 30, 10, 1.0)
	assert.InDelta(t, 8.8, score, 1e-9)
	assert.Equal(t, 3, bullish)
	assert.Equal(t, 0, bearish)

	// Without the cross only two bullish signals remain, so no bonus.
	score, bullish, bearish = analyzer.scoreSignals(
		dto.TrendStrongUp, alignment,
		indicators.MACDCross{DIF: 0.4, DEA: 0.5},
		indicators.Divergence{},
		50, 50, 50, 30, 32, 28, 30, 30, 10, 1.0)
	assert.InDelta(t, 7.3, score, 1e-9)
	assert.Equal(t, 2, bullish)
	assert.Equal(t, 0, bearish)
}

func TestTechnicalAnalyzer_ScoreStaysInRange(t *testing.T) {
	analyzer := NewTechnicalAnalyzer(testLogger(t))

	for _, candles := range []dto.TimeSeries{
		uptrendCandles(90),
		downtrendCandles(90),
		uptrendCandles(25),
	} {
		result := analyzer.Analyze(candles)
		assert.GreaterOrEqual(t, result.Score, 0.0)
		assert.LessOrEqual(t, result.Score, 10.0)
	}
}
