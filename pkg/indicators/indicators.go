package indicators

import "math"

// Indicator functions operate on ordered series (oldest first) and return
// series of the same length. Positions that cannot be resolved yet, because
// the window has not filled, hold NaN. Callers are expected to guard reads
// with math.IsNaN; no function here panics on short or empty input.

// SMA returns the simple moving average over the given period.
func SMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA returns the exponential moving average with the standard span
// multiplier 2/(period+1), seeded at the first value.
func EMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) == 0 {
		return out
	}
	mult := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*mult + out[i-1]
	}
	return out
}

// MACD returns the DIF, DEA and histogram series.
// DIF = EMA(fast) - EMA(slow); DEA = EMA(DIF, signal); hist = 2*(DIF-DEA).
func MACD(closes []float64, fastPeriod, slowPeriod, signalPeriod int) (dif, dea, hist []float64) {
	n := len(closes)
	dif = nanSlice(n)
	hist = nanSlice(n)
	if n == 0 {
		return dif, nanSlice(n), hist
	}
	fast := EMA(closes, fastPeriod)
	slow := EMA(closes, slowPeriod)
	for i := 0; i < n; i++ {
		dif[i] = fast[i] - slow[i]
	}
	dea = EMA(dif, signalPeriod)
	for i := 0; i < n; i++ {
		hist[i] = 2 * (dif[i] - dea[i])
	}
	return dif, dea, hist
}

// RSI returns the Wilder-smoothed relative strength index. The average gain
// and loss are seeded with a simple mean over the first period of changes
// and then smoothed with alpha = 1/period. A flat series, where both
// averages are zero, resolves to the neutral 50 rather than NaN.
func RSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	alpha := 1.0 / float64(period)
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = avgGain + alpha*(gain-avgGain)
		avgLoss = avgLoss + alpha*(loss-avgLoss)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// KDJ returns the K, D and J series. RSV is the close position within the
// n-bar high/low range scaled to 100, smoothed twice with alpha = 1/m.
// When the range is zero the RSV resolves to the neutral 50.
func KDJ(highs, lows, closes []float64, n, m1, m2 int) (k, d, j []float64) {
	size := len(closes)
	k = nanSlice(size)
	d = nanSlice(size)
	j = nanSlice(size)
	if n <= 0 || size < n || len(highs) != size || len(lows) != size {
		return k, d, j
	}

	hh := rollingMax(highs, n)
	ll := rollingMin(lows, n)
	alphaK := 1.0 / float64(m1)
	alphaD := 1.0 / float64(m2)

	prevK, prevD := 50.0, 50.0
	for i := n - 1; i < size; i++ {
		rsv := 50.0
		if rng := hh[i] - ll[i]; rng > 0 {
			rsv = (closes[i] - ll[i]) / rng * 100
		}
		prevK = prevK + alphaK*(rsv-prevK)
		prevD = prevD + alphaD*(prevK-prevD)
		k[i] = prevK
		d[i] = prevD
		j[i] = 3*prevK - 2*prevD
	}
	return k, d, j
}

// Bollinger returns the upper, middle and lower band series using a rolling
// mean and population standard deviation.
func Bollinger(closes []float64, period int, stdDev float64) (upper, mid, lower []float64) {
	size := len(closes)
	upper = nanSlice(size)
	lower = nanSlice(size)
	mid = SMA(closes, period)
	if period <= 0 || size < period {
		return upper, mid, lower
	}
	for i := period - 1; i < size; i++ {
		variance := 0.0
		for x := i - period + 1; x <= i; x++ {
			delta := closes[x] - mid[i]
			variance += delta * delta
		}
		sd := math.Sqrt(variance / float64(period))
		upper[i] = mid[i] + stdDev*sd
		lower[i] = mid[i] - stdDev*sd
	}
	return upper, mid, lower
}

// ATR returns the Wilder-smoothed average true range.
func ATR(highs, lows, closes []float64, period int) []float64 {
	size := len(closes)
	out := nanSlice(size)
	if period <= 0 || size < period+1 || len(highs) != size || len(lows) != size {
		return out
	}

	tr := trueRange(highs, lows, closes)
	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += tr[i]
	}
	atr := sum / float64(period)
	out[period] = atr
	for i := period + 1; i < size; i++ {
		atr = (atr*float64(period-1) + tr[i]) / float64(period)
		out[i] = atr
	}
	return out
}

// ADX returns the average directional index with its +DI and -DI series,
// following the Wilder construction: smoothed directional movement over
// smoothed true range, then a smoothed average of the directional index.
func ADX(highs, lows, closes []float64, period int) (adx, plusDI, minusDI []float64) {
	size := len(closes)
	adx = nanSlice(size)
	plusDI = nanSlice(size)
	minusDI = nanSlice(size)
	if period <= 0 || size < 2*period+1 || len(highs) != size || len(lows) != size {
		return adx, plusDI, minusDI
	}

	tr := trueRange(highs, lows, closes)
	plusDM := make([]float64, size)
	minusDM := make([]float64, size)
	for i := 1; i < size; i++ {
		upMove := highs[i] - highs[i-1]
		downMove := lows[i-1] - lows[i]
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
	}

	// Wilder smoothing of TR and DM, seeded with the first period sums.
	smTR, smPlus, smMinus := 0.0, 0.0, 0.0
	for i := 1; i <= period; i++ {
		smTR += tr[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}

	dx := nanSlice(size)
	for i := period; i < size; i++ {
		if i > period {
			smTR = smTR - smTR/float64(period) + tr[i]
			smPlus = smPlus - smPlus/float64(period) + plusDM[i]
			smMinus = smMinus - smMinus/float64(period) + minusDM[i]
		}
		if smTR > 0 {
			plusDI[i] = 100 * smPlus / smTR
			minusDI[i] = 100 * smMinus / smTR
		} else {
			plusDI[i] = 0
			minusDI[i] = 0
		}
		diSum := plusDI[i] + minusDI[i]
		if diSum > 0 {
			dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / diSum
		} else {
			dx[i] = 0
		}
	}

	sum := 0.0
	for i := period; i < 2*period; i++ {
		sum += dx[i]
	}
	cur := sum / float64(period)
	adx[2*period-1] = cur
	for i := 2 * period; i < size; i++ {
		cur = (cur*float64(period-1) + dx[i]) / float64(period)
		adx[i] = cur
	}
	return adx, plusDI, minusDI
}

// VolumeMA returns the rolling mean of a volume series.
func VolumeMA(volumes []float64, period int) []float64 {
	return SMA(volumes, period)
}

func trueRange(highs, lows, closes []float64) []float64 {
	tr := make([]float64, len(closes))
	for i := range closes {
		if i == 0 {
			tr[i] = highs[i] - lows[i]
			continue
		}
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

func rollingMax(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	for i := period - 1; i < len(values); i++ {
		maxV := values[i-period+1]
		for x := i - period + 2; x <= i; x++ {
			if values[x] > maxV {
				maxV = values[x]
			}
		}
		out[i] = maxV
	}
	return out
}

func rollingMin(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	for i := period - 1; i < len(values); i++ {
		minV := values[i-period+1]
		for x := i - period + 2; x <= i; x++ {
			if values[x] < minV {
				minV = values[x]
			}
		}
		out[i] = minV
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
