package indicators

import (
	"math"
	"sort"
)

// MAAlignment describes the ordering of the short, medium and long moving
// averages on the most recent bar.
type MAAlignment struct {
	Bullish bool
	Bearish bool
	MA5     float64
	MA10    float64
	MA20    float64
	MA60    float64
}

// DetectMAAlignment reports whether the moving averages are stacked
// bullishly (MA5 > MA10 > MA20, and above MA60 when it exists) or bearishly
// (the mirror ordering). With fewer than 20 bars neither flag is set.
func DetectMAAlignment(closes []float64) MAAlignment {
	ma5 := last(SMA(closes, 5))
	ma10 := last(SMA(closes, 10))
	ma20 := last(SMA(closes, 20))
	ma60 := last(SMA(closes, 60))

	out := MAAlignment{MA5: ma5, MA10: ma10, MA20: ma20, MA60: ma60}
	if math.IsNaN(ma5) || math.IsNaN(ma10) || math.IsNaN(ma20) {
		return out
	}

	if ma5 > ma10 && ma10 > ma20 {
		out.Bullish = math.IsNaN(ma60) || ma20 > ma60
	} else if ma5 < ma10 && ma10 < ma20 {
		out.Bearish = math.IsNaN(ma60) || ma20 < ma60
	}
	return out
}

// MACDCross describes the MACD state on the most recent bar.
type MACDCross struct {
	GoldenCross bool
	DeathCross  bool
	DIF         float64
	DEA         float64
	Hist        float64
}

// DetectMACDCross reports whether DIF crossed DEA on the latest bar. A
// golden cross requires DIF above DEA now and at or below it on the prior
// bar; the death cross is the mirror.
func DetectMACDCross(closes []float64) MACDCross {
	dif, dea, hist := MACD(closes, 12, 26, 9)
	n := len(closes)
	out := MACDCross{DIF: math.NaN(), DEA: math.NaN(), Hist: math.NaN()}
	if n < 2 {
		return out
	}
	out.DIF = dif[n-1]
	out.DEA = dea[n-1]
	out.Hist = hist[n-1]
	if math.IsNaN(out.DIF) || math.IsNaN(out.DEA) || math.IsNaN(dif[n-2]) || math.IsNaN(dea[n-2]) {
		return out
	}
	if dif[n-1] > dea[n-1] && dif[n-2] <= dea[n-2] {
		out.GoldenCross = true
	} else if dif[n-1] < dea[n-1] && dif[n-2] >= dea[n-2] {
		out.DeathCross = true
	}
	return out
}

// Divergence describes an RSI/price divergence over a trailing window.
type Divergence struct {
	Bullish bool
	Bearish bool
}

// DetectRSIDivergence scans the trailing `lookback` bars. A bullish
// divergence requires the latest close near its window low (at or below the
// 15th percentile) while the current RSI exceeds the RSI recorded at that
// low by more than 3 points; the bearish case mirrors this at the 85th
// percentile.
func DetectRSIDivergence(closes, rsi []float64, lookback int) Divergence {
	var out Divergence
	n := len(closes)
	if n < lookback || len(rsi) != n || lookback < 2 {
		return out
	}

	window := closes[n-lookback:]
	rsiWindow := rsi[n-lookback:]
	current := window[len(window)-1]
	currentRSI := rsiWindow[len(rsiWindow)-1]
	if math.IsNaN(currentRSI) {
		return out
	}

	lowIdx, highIdx := 0, 0
	for i, v := range window {
		if v < window[lowIdx] {
			lowIdx = i
		}
		if v > window[highIdx] {
			highIdx = i
		}
	}

	rsiAtLow := rsiWindow[lowIdx]
	if !math.IsNaN(rsiAtLow) && current <= quantile(window, 0.15) && currentRSI > rsiAtLow+3 {
		out.Bullish = true
	}
	rsiAtHigh := rsiWindow[highIdx]
	if !math.IsNaN(rsiAtHigh) && current >= quantile(window, 0.85) && currentRSI < rsiAtHigh-3 {
		out.Bearish = true
	}
	return out
}

// quantile returns the linearly interpolated q-quantile of values.
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}
