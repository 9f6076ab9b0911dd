package service

import (
	"fmt"
	"math"
	"sort"

	"golang-stock-insight/internal/analysis/dto"
	"golang-stock-insight/pkg/indicators"
	"golang-stock-insight/pkg/logger"
	"golang-stock-insight/pkg/utils"
)

const (
	minBarsForAnalysis  = 20
	swingLookbackBars   = 120
	swingWindow         = 5
	levelClusterPct     = 0.01
	swingClusterPct     = 0.015
	levelMaxDistancePct = 0.15
)

// TechnicalAnalyzer scores price action from indicator confluence and
// derives trend, support and resistance levels.
type TechnicalAnalyzer struct {
	log *logger.Logger
}

func NewTechnicalAnalyzer(log *logger.Logger) *TechnicalAnalyzer {
	return &TechnicalAnalyzer{log: log}
}

// Analyze produces the technical dimension result. Fewer than 20 bars
// yields the neutral "insufficient data" result rather than an error.
func (a *TechnicalAnalyzer) Analyze(candles dto.TimeSeries) dto.TechnicalAnalysis {
	if len(candles) < minBarsForAnalysis {
		return dto.TechnicalAnalysis{
			Score:            5.0,
			Trend:            dto.TrendUndetermined,
			SupportLevels:    []float64{},
			ResistanceLevels: []float64{},
			Summary:          "Insufficient price history for technical analysis.",
		}
	}

	closes := candles.Closes()
	highs := candles.Highs()
	lows := candles.Lows()
	volumes := candles.Volumes()
	currentPrice := closes[len(closes)-1]

	alignment := indicators.DetectMAAlignment(closes)
	macdCross := indicators.DetectMACDCross(closes)

	rsiSeries := indicators.RSI(closes, 14)
	rsi14 := lastOr(rsiSeries, 50)

	kSeries, dSeries, jSeries := indicators.KDJ(highs, lows, closes, 9, 3, 3)
	kVal := lastOr(kSeries, 50)
	dVal := lastOr(dSeries, 50)
	jVal := lastOr(jSeries, 50)

	bollUpperS, bollMidS, bollLowerS := indicators.Bollinger(closes, 20, 2.0)
	bollUpper := lastOr(bollUpperS, currentPrice)
	bollMid := lastOr(bollMidS, currentPrice)
	bollLower := lastOr(bollLowerS, currentPrice)

	adxSeries, plusDISeries, minusDISeries := indicators.ADX(highs, lows, closes, 14)
	adxVal := lastOr(adxSeries, 20)
	plusDI := lastOr(plusDISeries, 0)
	minusDI := lastOr(minusDISeries, 0)

	volRatio := 1.0
	vol5 := lastOr(indicators.VolumeMA(volumes, 5), math.NaN())
	vol20 := lastOr(indicators.VolumeMA(volumes, 20), math.NaN())
	if !math.IsNaN(vol5) && !math.IsNaN(vol20) && vol20 > 0 {
		volRatio = vol5 / vol20
	}

	trend := a.classifyTrend(alignment, adxVal)

	var divergence indicators.Divergence
	if len(closes) >= 30 {
		divergence = indicators.DetectRSIDivergence(closes, rsiSeries, 20)
	}

	score, _, _ := a.scoreSignals(trend, alignment, macdCross, divergence,
		rsi14, kVal, dVal, currentPrice, bollUpper, bollLower, adxVal, plusDI, minusDI, volRatio)

	support := a.findSupportLevels(lows, currentPrice, alignment, bollLower)
	resistance := a.findResistanceLevels(highs, currentPrice, alignment, bollUpper)

	summary := a.buildSummary(trend, alignment, macdCross, divergence, rsi14, kVal, dVal, adxVal, score)

	return dto.TechnicalAnalysis{
		Score:            score,
		Trend:            trend,
		SupportLevels:    support,
		ResistanceLevels: resistance,
		Indicators: dto.TechnicalIndicators{
			MA5:       floatPtr(alignment.MA5),
			MA10:      floatPtr(alignment.MA10),
			MA20:      floatPtr(alignment.MA20),
			MA60:      floatPtr(alignment.MA60),
			RSI14:     floatPtr(utils.Round1(rsi14)),
			MACDDIF:   floatPtr(macdCross.DIF),
			MACDDEA:   floatPtr(macdCross.DEA),
			KDJK:      floatPtr(utils.Round1(kVal)),
			KDJD:      floatPtr(utils.Round1(dVal)),
			KDJJ:      floatPtr(utils.Round1(jVal)),
			BollUpper: floatPtr(utils.Round2(bollUpper)),
			BollMid:   floatPtr(utils.Round2(bollMid)),
			BollLower: floatPtr(utils.Round2(bollLower)),
			ADX:       floatPtr(utils.Round1(adxVal)),
			PlusDI:    floatPtr(utils.Round1(plusDI)),
			MinusDI:   floatPtr(utils.Round1(minusDI)),
			VolRatio:  floatPtr(utils.Round2(volRatio)),
		},
		Summary: summary,
	}
}

func (a *TechnicalAnalyzer) classifyTrend(alignment indicators.MAAlignment, adx float64) string {
	switch {
	case alignment.Bullish:
		if adx > 25 {
			return dto.TrendStrongUp
		}
		return dto.TrendWeakUp
	case alignment.Bearish:
		if adx > 25 {
			return dto.TrendStrongDown
		}
		return dto.TrendWeakDown
	}
	if !math.IsNaN(alignment.MA5) && !math.IsNaN(alignment.MA20) {
		if alignment.MA5 > alignment.MA20 {
			return dto.TrendWeakUp
		}
		return dto.TrendWeakDown
	}
	return dto.TrendRanging
}

func (a *TechnicalAnalyzer) scoreSignals(
	trend string,
	alignment indicators.MAAlignment,
	macdCross indicators.MACDCross,
	divergence indicators.Divergence,
	rsi14, kVal, dVal, currentPrice, bollUpper, bollLower, adx, plusDI, minusDI, volRatio float64,
) (score float64, bullishSignals, bearishSignals int) {
	score = 5.0
	uptrend := trend == dto.TrendStrongUp || trend == dto.TrendWeakUp
	downtrend := trend == dto.TrendStrongDown || trend == dto.TrendWeakDown

	// MA alignment (±1.5)
	if alignment.Bullish {
		score += 1.5
		bullishSignals++
	} else if alignment.Bearish {
		score -= 1.5
		bearishSignals++
	}

	// ADX-confirmed direction (±0.5)
	if adx > 25 {
		if plusDI > minusDI {
			score += 0.5
			bullishSignals++
		} else {
			score -= 0.5
			bearishSignals++
		}
	}

	// MACD cross (±1.0), partial credit for DIF above DEA without a fresh cross
	switch {
	case macdCross.GoldenCross:
		score += 1.0
		bullishSignals++
	case macdCross.DeathCross:
		score -= 1.0
		bearishSignals++
	case !math.IsNaN(macdCross.DIF) && !math.IsNaN(macdCross.DEA) && macdCross.DIF > macdCross.DEA:
		score += 0.3
	}

	// RSI extremes and neutral zone
	switch {
	case rsi14 <= 30:
		score += 0.8
		bullishSignals++
	case rsi14 >= 70:
		score -= 0.5
		bearishSignals++
	case rsi14 > 40 && rsi14 < 60:
		score += 0.3
	}

	// KDJ cross (±0.5)
	if kVal > dVal && kVal < 80 {
		score += 0.5
		bullishSignals++
	} else if kVal < dVal && kVal > 20 {
		score -= 0.5
		bearishSignals++
	}

	// Bollinger band breach (±0.5)
	if currentPrice < bollLower {
		score += 0.5
		bullishSignals++
	} else if currentPrice > bollUpper {
		score -= 0.5
		bearishSignals++
	}

	// RSI/price divergence (±0.8)
	if divergence.Bullish {
		score += 0.8
		bullishSignals++
	}
	if divergence.Bearish {
		score -= 0.8
		bearishSignals++
	}

	// Volume confirmation
	switch {
	case volRatio > 1.3 && uptrend:
		score += 0.8
		bullishSignals++
	case volRatio > 1.5 && downtrend:
		score -= 0.5
		bearishSignals++
	case volRatio < 0.6 && uptrend:
		score -= 0.3
	}

	// Confluence bonus (±0.5) when three or more directional signals agree.
	if bullishSignals >= 3 {
		score += 0.5
	} else if bearishSignals >= 3 {
		score -= 0.5
	}

	return utils.Round1(utils.Clamp(score, 0, 10)), bullishSignals, bearishSignals
}

// findSupportLevels combines swing lows, dynamic MA levels, the lower
// Bollinger band and the nearest round number, clusters them into zones and
// returns the three nearest strictly below the current price.
func (a *TechnicalAnalyzer) findSupportLevels(lows []float64, currentPrice float64, alignment indicators.MAAlignment, bollLower float64) []float64 {
	var candidates []float64

	for _, z := range clusterLevels(a.swingPoints(lows, false), swingClusterPct) {
		if z < currentPrice*0.995 {
			candidates = append(candidates, z)
		}
	}

	for _, ma := range []float64{alignment.MA20, alignment.MA60, alignment.MA10} {
		if !math.IsNaN(ma) && ma < currentPrice*0.998 {
			candidates = append(candidates, utils.Round2(ma))
		}
	}
	if !math.IsNaN(bollLower) && bollLower < currentPrice*0.998 {
		candidates = append(candidates, utils.Round2(bollLower))
	}
	if round, ok := roundNumberBelow(currentPrice); ok {
		candidates = append(candidates, round)
	}

	candidates = clusterLevels(candidates, levelClusterPct)

	lowerBound := currentPrice * (1 - levelMaxDistancePct)
	filtered := candidates[:0]
	for _, c := range candidates {
		if c > lowerBound && c < currentPrice*0.998 {
			filtered = append(filtered, c)
		}
	}

	// Nearest-first: highest supports are closest to price.
	sort.Sort(sort.Reverse(sort.Float64Slice(filtered)))
	if len(filtered) > 3 {
		filtered = filtered[:3]
	}
	if filtered == nil {
		filtered = []float64{}
	}
	return filtered
}

// findResistanceLevels mirrors findSupportLevels above the current price.
func (a *TechnicalAnalyzer) findResistanceLevels(highs []float64, currentPrice float64, alignment indicators.MAAlignment, bollUpper float64) []float64 {
	var candidates []float64

	for _, z := range clusterLevels(a.swingPoints(highs, true), swingClusterPct) {
		if z > currentPrice*1.005 {
			candidates = append(candidates, z)
		}
	}

	for _, ma := range []float64{alignment.MA20, alignment.MA60, alignment.MA10} {
		if !math.IsNaN(ma) && ma > currentPrice*1.002 {
			candidates = append(candidates, utils.Round2(ma))
		}
	}
	if !math.IsNaN(bollUpper) && bollUpper > currentPrice*1.002 {
		candidates = append(candidates, utils.Round2(bollUpper))
	}
	if round, ok := roundNumberAbove(currentPrice); ok {
		candidates = append(candidates, round)
	}

	candidates = clusterLevels(candidates, levelClusterPct)

	upperBound := currentPrice * (1 + levelMaxDistancePct)
	filtered := candidates[:0]
	for _, c := range candidates {
		if c > currentPrice*1.002 && c < upperBound {
			filtered = append(filtered, c)
		}
	}

	sort.Float64s(filtered)
	if len(filtered) > 3 {
		filtered = filtered[:3]
	}
	if filtered == nil {
		filtered = []float64{}
	}
	return filtered
}

// swingPoints returns strict local extrema over a ±swingWindow bar window
// within the trailing swingLookbackBars bars.
func (a *TechnicalAnalyzer) swingPoints(values []float64, wantHighs bool) []float64 {
	lookback := len(values)
	if lookback > swingLookbackBars {
		values = values[lookback-swingLookbackBars:]
		lookback = swingLookbackBars
	}
	if lookback < 3*swingWindow {
		return nil
	}

	var points []float64
	for i := swingWindow; i < lookback-swingWindow; i++ {
		extreme := true
		for x := i - swingWindow; x <= i+swingWindow; x++ {
			if x == i {
				continue
			}
			if wantHighs && values[x] > values[i] {
				extreme = false
				break
			}
			if !wantHighs && values[x] < values[i] {
				extreme = false
				break
			}
		}
		if extreme {
			points = append(points, values[i])
		}
	}
	return points
}

func (a *TechnicalAnalyzer) buildSummary(
	trend string,
	alignment indicators.MAAlignment,
	macdCross indicators.MACDCross,
	divergence indicators.Divergence,
	rsi14, kVal, dVal, adx, score float64,
) string {
	var signals []string
	if alignment.Bullish {
		signals = append(signals, "bullish MA stack")
	} else if alignment.Bearish {
		signals = append(signals, "bearish MA stack")
	}
	if macdCross.GoldenCross {
		signals = append(signals, "MACD golden cross")
	} else if macdCross.DeathCross {
		signals = append(signals, "MACD death cross")
	}
	if rsi14 < 30 {
		signals = append(signals, "RSI oversold")
	} else if rsi14 > 70 {
		signals = append(signals, "RSI overbought")
	}
	if kVal > dVal && kVal < 80 {
		signals = append(signals, "KDJ golden cross")
	}
	if divergence.Bullish {
		signals = append(signals, "bullish RSI divergence")
	}
	if divergence.Bearish {
		signals = append(signals, "bearish RSI divergence")
	}
	if adx > 25 {
		signals = append(signals, fmt.Sprintf("strong trend (ADX=%.0f)", adx))
	}

	signalText := "no notable signals"
	if len(signals) > 0 {
		signalText = joinList(signals)
	}
	return fmt.Sprintf("Trend: %s. Signals: %s. RSI=%.0f. Technical score %.1f.", trend, signalText, rsi14, score)
}

// clusterLevels merges price levels within thresholdPct of each other into
// their cluster average, turning individual touches into zones.
func clusterLevels(levels []float64, thresholdPct float64) []float64 {
	if len(levels) == 0 {
		return nil
	}
	sorted := append([]float64(nil), levels...)
	sort.Float64s(sorted)

	var out []float64
	clusterSum := sorted[0]
	clusterCount := 1
	prev := sorted[0]
	for _, v := range sorted[1:] {
		ref := math.Max(prev, 1e-9)
		if math.Abs(v-prev)/ref < thresholdPct {
			clusterSum += v
			clusterCount++
		} else {
			out = append(out, utils.Round2(clusterSum/float64(clusterCount)))
			clusterSum = v
			clusterCount = 1
		}
		prev = v
	}
	out = append(out, utils.Round2(clusterSum/float64(clusterCount)))
	return out
}

// roundNumberBelow returns the nearest psychological level under the price.
func roundNumberBelow(price float64) (float64, bool) {
	if price <= 10 {
		return 0, false
	}
	step := 5.0
	if price > 50 {
		step = 10.0
	}
	level := math.Floor(price/step) * step
	if level < price*0.998 {
		return level, true
	}
	return 0, false
}

// roundNumberAbove returns the nearest psychological level over the price.
func roundNumberAbove(price float64) (float64, bool) {
	if price <= 10 {
		return 0, false
	}
	step := 5.0
	if price > 50 {
		step = 10.0
	}
	level := (math.Floor(price/step) + 1) * step
	if level > price*1.002 {
		return level, true
	}
	return 0, false
}
