package service

import (
	"fmt"
	"math"

	"golang-stock-insight/internal/analysis/dto"
	"golang-stock-insight/pkg/logger"
	"golang-stock-insight/pkg/utils"
)

const (
	dcfDiscountRate   = 0.10
	dcfTerminalGrowth = 0.03
	dcfStage1Years    = 5
)

// FundamentalAnalyzer scores valuation, profitability, growth and financial
// health, and derives the quality signal, trend adjustment, DuPont
// decomposition and DCF intrinsic value.
type FundamentalAnalyzer struct {
	log *logger.Logger
}

func NewFundamentalAnalyzer(log *logger.Logger) *FundamentalAnalyzer {
	return &FundamentalAnalyzer{log: log}
}

// Analyze produces the fundamental dimension result. A nil quote or empty
// history degrades to neutral sub-scores; it never fails.
func (a *FundamentalAnalyzer) Analyze(quote *dto.Quote, financials dto.FinancialHistory, valuationHist *dto.ValuationHistory) dto.FundamentalAnalysis {
	var pe, pb, marketCap float64
	if quote != nil {
		pe = quote.PE
		pb = quote.PB
		marketCap = quote.MarketCap
	}

	var latest dto.FinancialRecord
	if rec, ok := financials.Latest(); ok {
		latest = rec
	}

	valuationScore := a.ScoreValuation(pe, pb)
	profitability := a.scoreProfitability(latest.ROE, latest.EPS, latest.GrossMargin, latest.NetMargin)
	growth := a.scoreGrowth(latest.RevenueGrowth, latest.NetProfitGrowth)
	health := a.scoreHealth(latest.DebtRatio, latest.CurrentRatio)
	quality := a.qualitySignals(financials)
	trendAdj := a.trendAdjustment(financials)

	raw := profitability*0.35 + growth*0.30 + health*0.20 + quality*0.15 + trendAdj
	score := utils.Round1(utils.Clamp(raw, 0, 10))

	valuation := dto.ValuationDetail{PE: pe, PB: pb, MarketCap: marketCap}
	if valuationHist != nil {
		pePct := valuationHist.PEPercentile
		pbPct := valuationHist.PBPercentile
		valuation.PEPercentile = &pePct
		valuation.PBPercentile = &pbPct
	}
	valuation.DCF = a.CalculateDCF(latest.EPS, latest.NetProfitGrowth)

	return dto.FundamentalAnalysis{
		Score:           score,
		ValuationScore:  valuationScore,
		Profitability:   profitability,
		Growth:          growth,
		Health:          health,
		QualityScore:    quality,
		TrendAdjustment: trendAdj,
		Valuation:       valuation,
		DuPont:          a.duPont(latest),
		Summary:         a.buildSummary(valuationScore, profitability, growth, trendAdj, score),
	}
}

// ScoreValuation rates PE/PB on a 5.0 base. Non-positive ratios are treated
// as missing data and contribute nothing. Exported because the aggregator
// reuses it as the standalone valuation dimension.
func (a *FundamentalAnalyzer) ScoreValuation(pe, pb float64) float64 {
	score := 5.0
	if pe > 0 {
		switch {
		case pe < 10:
			score += 3.0
		case pe < 15:
			score += 2.0
		case pe < 25:
			score += 1.0
		case pe < 40:
			score -= 1.0
		default:
			score -= 2.0
		}
	}
	if pb > 0 {
		switch {
		case pb < 1:
			score += 2.0
		case pb < 2:
			score += 1.0
		case pb < 5:
			// fairly valued, no adjustment
		default:
			score -= 1.0
		}
	}
	return utils.Clamp(score, 0, 10)
}

func (a *FundamentalAnalyzer) scoreProfitability(roe, eps, grossMargin, netMargin float64) float64 {
	score := 5.0

	// ROE dominates the profitability assessment.
	switch {
	case roe > 20:
		score += 3.0
	case roe > 15:
		score += 2.0
	case roe > 10:
		score += 1.0
	case roe > 5:
		// acceptable, no adjustment
	case roe > 0:
		score -= 1.0
	default:
		score -= 3.0
	}

	if eps > 0 {
		score += 0.5
	} else {
		score -= 0.5
	}

	switch {
	case grossMargin > 60:
		score += 1.0
	case grossMargin > 40:
		score += 0.5
	case grossMargin > 20:
		// ordinary margins
	case grossMargin > 0:
		score -= 0.5
		// zero means the margin was not reported; no penalty
	}

	if netMargin > 20 {
		score += 0.5
	} else if netMargin < 0 {
		score -= 0.5
	}

	return utils.Clamp(score, 0, 10)
}

func (a *FundamentalAnalyzer) scoreGrowth(revenueGrowth, profitGrowth float64) float64 {
	score := 5.0

	switch {
	case profitGrowth > 30:
		score += 3.0
	case profitGrowth > 15:
		score += 2.0
	case profitGrowth > 5:
		score += 1.0
	case profitGrowth > 0:
		// flat
	case profitGrowth > -10:
		score -= 1.0
	default:
		score -= 3.0
	}

	switch {
	case revenueGrowth > 20:
		score += 1.5
	case revenueGrowth > 10:
		score += 1.0
	case revenueGrowth > 0:
		score += 0.5
	default:
		score -= 1.0
	}

	// Earnings-quality consistency check: profit growing without revenue
	// suggests one-off gains or cost cutting, not durable growth.
	if profitGrowth > 20 && revenueGrowth < 0 {
		score -= 0.5
	} else if revenueGrowth > 10 && profitGrowth > 10 {
		score += 0.5
	}

	return utils.Clamp(score, 0, 10)
}

func (a *FundamentalAnalyzer) scoreHealth(debtRatio, currentRatio float64) float64 {
	score := 5.0

	switch {
	case debtRatio < 30:
		score += 3.0
	case debtRatio < 50:
		score += 1.5
	case debtRatio < 65:
		// typical leverage
	case debtRatio < 80:
		score -= 1.5
	default:
		score -= 3.0
	}

	switch {
	case currentRatio > 2:
		score += 1.5
	case currentRatio > 1.5:
		score += 1.0
	case currentRatio > 1:
		// solvent
	default:
		score -= 1.5
	}

	return utils.Clamp(score, 0, 10)
}

// qualitySignals is a Piotroski-style checklist: six static checks on the
// latest period plus three period-over-period improvement checks, mapped
// from 0-9 points onto [0,10]. With no prior period the trend checks earn
// a neutral one of three points.
func (a *FundamentalAnalyzer) qualitySignals(financials dto.FinancialHistory) float64 {
	latest, ok := financials.Latest()
	if !ok {
		return 5.0
	}

	points := 0
	if latest.ROE > 0 {
		points++
	}
	if latest.EPS > 0 {
		points++
	}
	if latest.GrossMargin > 20 {
		points++
	}
	if latest.NetMargin > 0 {
		points++
	}
	if latest.CurrentRatio > 1 {
		points++
	}
	if latest.DebtRatio < 70 {
		points++
	}

	if len(financials) >= 2 {
		prior := financials[len(financials)-2]
		if latest.ROE > prior.ROE {
			points++
		}
		if latest.GrossMargin > prior.GrossMargin {
			points++
		}
		if latest.DebtRatio < prior.DebtRatio {
			points++
		}
	} else {
		points++
	}

	return utils.Round1(float64(points) / 9.0 * 10.0)
}

// trendAdjustment compares the first and second halves of the trailing
// four periods and returns a bonus or penalty capped at ±0.8.
func (a *FundamentalAnalyzer) trendAdjustment(financials dto.FinancialHistory) float64 {
	if len(financials) < 3 {
		return 0
	}
	recent := financials
	if len(financials) > 4 {
		recent = financials[len(financials)-4:]
	}

	bonus := 0.0

	// ROE direction: second-half average vs first-half average.
	half := len(recent) / 2
	firstAvg, secondAvg := 0.0, 0.0
	for _, rec := range recent[:half] {
		firstAvg += rec.ROE
	}
	firstAvg /= float64(half)
	for _, rec := range recent[half:] {
		secondAvg += rec.ROE
	}
	secondAvg /= float64(len(recent) - half)
	if secondAvg > firstAvg+1 {
		bonus += 0.3
	} else if secondAvg < firstAvg-1 {
		bonus -= 0.3
	}

	// Gross-margin stability via coefficient of variation.
	var gmVals []float64
	for _, rec := range recent {
		if rec.GrossMargin > 0 {
			gmVals = append(gmVals, rec.GrossMargin)
		}
	}
	if len(gmVals) >= 3 {
		mean := 0.0
		for _, v := range gmVals {
			mean += v
		}
		mean /= float64(len(gmVals))
		if mean > 0 {
			variance := 0.0
			for _, v := range gmVals {
				variance += (v - mean) * (v - mean)
			}
			cv := math.Sqrt(variance/float64(len(gmVals))) / mean
			if cv < 0.05 {
				bonus += 0.3
			} else if cv > 0.20 {
				bonus -= 0.3
			}
		}
	}

	// Growth acceleration: newest vs oldest period in the window.
	newest := recent[len(recent)-1].NetProfitGrowth
	oldest := recent[0].NetProfitGrowth
	if newest > oldest+5 {
		bonus += 0.2
	} else if newest < oldest-10 {
		bonus -= 0.2
	}

	return utils.Clamp(utils.Round2(bonus), -0.8, 0.8)
}

// duPont decomposes ROE into margin, turnover and leverage. It requires a
// non-zero ROE and net margin and a debt ratio under 100%.
func (a *FundamentalAnalyzer) duPont(latest dto.FinancialRecord) *dto.DuPontAnalysis {
	if latest.ROE == 0 || latest.NetMargin == 0 || latest.DebtRatio >= 100 {
		return nil
	}

	equityMultiplier := utils.Round2(1.0 / (1.0 - latest.DebtRatio/100.0))
	denom := latest.NetMargin * equityMultiplier
	if denom == 0 {
		return nil
	}
	assetTurnover := utils.Round2(latest.ROE / denom)

	driver := "margin"
	best := math.Abs(latest.NetMargin)
	if v := math.Abs(assetTurnover); v > best {
		driver = "turnover"
		best = v
	}
	if v := math.Abs(equityMultiplier - 1); v > best {
		driver = "leverage"
	}

	return &dto.DuPontAnalysis{
		ROE:              utils.Round2(latest.ROE),
		NetProfitMargin:  utils.Round2(latest.NetMargin),
		AssetTurnover:    assetTurnover,
		EquityMultiplier: equityMultiplier,
		Driver:           driver,
	}
}

// CalculateDCF runs the two-stage model: five explicit years with the
// capped growth rate decaying 10% per year, then a Gordon-growth terminal
// value, all discounted at 10%. Returns nil when EPS is non-positive or the
// discount rate does not exceed the terminal growth.
func (a *FundamentalAnalyzer) CalculateDCF(eps, growthRatePct float64) *dto.DCFValuation {
	if eps <= 0 || dcfDiscountRate <= dcfTerminalGrowth {
		return nil
	}

	g := utils.Clamp(growthRatePct/100.0, -0.05, 0.50)

	currentEPS := eps
	pvStage1 := 0.0
	for yr := 1; yr <= dcfStage1Years; yr++ {
		yrGrowth := g * (1 - 0.1*float64(yr-1))
		currentEPS *= 1 + yrGrowth
		pvStage1 += currentEPS / math.Pow(1+dcfDiscountRate, float64(yr))
	}

	terminalEPS := currentEPS * (1 + dcfTerminalGrowth)
	terminalValue := terminalEPS / (dcfDiscountRate - dcfTerminalGrowth)
	pvTerminal := terminalValue / math.Pow(1+dcfDiscountRate, dcfStage1Years)

	intrinsic := utils.Round2(pvStage1 + pvTerminal)
	return &dto.DCFValuation{
		IntrinsicValue:   intrinsic,
		MarginOfSafety20: utils.Round2(intrinsic * 0.80),
		MarginOfSafety30: utils.Round2(intrinsic * 0.70),
		DiscountRate:     dcfDiscountRate,
		TerminalGrowth:   dcfTerminalGrowth,
		Stage1Years:      dcfStage1Years,
	}
}

func (a *FundamentalAnalyzer) buildSummary(valuation, profitability, growth, trendAdj, score float64) string {
	var parts []string

	switch {
	case valuation >= 7:
		parts = append(parts, "attractively valued")
	case valuation >= 5:
		parts = append(parts, "fairly valued")
	default:
		parts = append(parts, "richly valued")
	}

	switch {
	case profitability >= 7:
		parts = append(parts, "strong profitability")
	case profitability >= 5:
		parts = append(parts, "average profitability")
	default:
		parts = append(parts, "weak profitability")
	}

	switch {
	case growth >= 7:
		parts = append(parts, "good growth")
	case growth >= 5:
		parts = append(parts, "moderate growth")
	default:
		parts = append(parts, "lacking growth")
	}

	if trendAdj > 0.3 {
		parts = append(parts, "improving financial trend")
	} else if trendAdj < -0.3 {
		parts = append(parts, "deteriorating financial trend")
	}

	return fmt.Sprintf("%s. Fundamental score %.1f.", joinList(parts), score)
}
