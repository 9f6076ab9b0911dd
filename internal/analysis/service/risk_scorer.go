package service

import (
	"fmt"
	"math"
	"strings"

	"golang-stock-insight/internal/analysis/dto"
	"golang-stock-insight/pkg/logger"
	"golang-stock-insight/pkg/utils"
)

// Dimension weights, sum 1.0. Financial health dominates because balance
// sheet deterioration is the slowest risk to reverse.
const (
	riskWeightFinancial  = 0.30
	riskWeightValuation  = 0.25
	riskWeightLiquidity  = 0.20
	riskWeightVolatility = 0.15
	riskWeightEvent      = 0.10
)

// RiskScorer rates a stock 1-10 on five weighted risk dimensions. Higher
// is safer. Missing inputs score their dimension neutral rather than
// failing the assessment.
type RiskScorer struct {
	log *logger.Logger
}

func NewRiskScorer(log *logger.Logger) *RiskScorer {
	return &RiskScorer{log: log}
}

// Assess combines the five dimension scores into a weighted composite,
// clamped to [1, 10], and maps it to a risk level band.
func (r *RiskScorer) Assess(quote *dto.Quote, financials dto.FinancialHistory, flow *dto.CapitalFlowSnapshot) dto.RiskAssessment {
	breakdown := dto.RiskBreakdown{
		Financial:  utils.Round2(r.scoreFinancial(financials)),
		Valuation:  utils.Round2(r.scoreValuation(quote)),
		Liquidity:  utils.Round2(r.scoreLiquidity(quote)),
		Volatility: utils.Round2(r.scoreVolatility(quote)),
		Event:      utils.Round2(r.scoreEvent(quote, flow)),
	}

	total := breakdown.Financial*riskWeightFinancial +
		breakdown.Valuation*riskWeightValuation +
		breakdown.Liquidity*riskWeightLiquidity +
		breakdown.Volatility*riskWeightVolatility +
		breakdown.Event*riskWeightEvent
	total = utils.Clamp(total, 1, 10)

	return dto.RiskAssessment{
		Score:     utils.Round2(total),
		RiskLevel: riskLevel(total),
		Details:   breakdown,
	}
}

func riskLevel(score float64) string {
	switch {
	case score >= 7:
		return dto.RiskLow
	case score >= 4:
		return dto.RiskMedium
	default:
		return dto.RiskHigh
	}
}

// scoreFinancial rates debt load, short-term solvency, and profitability
// from the most recent reporting period.
func (r *RiskScorer) scoreFinancial(financials dto.FinancialHistory) float64 {
	latest, ok := financials.Latest()
	if !ok {
		return 5.0
	}

	score := 5.0

	switch debt := latest.DebtRatio; {
	case debt < 30:
		score += 2
	case debt < 50:
		score += 1
	case debt > 70:
		score -= 2
	case debt > 60:
		score -= 1
	}

	switch cr := latest.CurrentRatio; {
	case cr > 2:
		score += 1.5
	case cr > 1.5:
		score += 0.5
	case cr < 1:
		score -= 1.5
	}

	switch roe := latest.ROE; {
	case roe > 15:
		score += 1
	case roe < 0:
		score -= 2
	case roe < 5:
		score -= 1
	}

	return utils.Clamp(score, 1, 10)
}

// scoreValuation penalizes multiple extremes. Zero PE/PB means the ratio
// was not reported and the input is skipped; a negative PE means the
// company is loss-making.
func (r *RiskScorer) scoreValuation(quote *dto.Quote) float64 {
	if quote == nil {
		return 6.0
	}

	score := 6.0

	switch pe := quote.PE; {
	case pe > 0 && pe < 15:
		score += 2
	case pe > 0 && pe < 30:
		score += 1
	case pe > 100:
		score -= 3
	case pe > 60:
		score -= 2
	case pe < 0:
		score -= 2
	}

	switch pb := quote.PB; {
	case pb > 0 && pb < 2:
		score += 1
	case pb > 10:
		score -= 2
	case pb > 5:
		score -= 1
	}

	return utils.Clamp(score, 1, 10)
}

// scoreLiquidity rates how easily a position could be exited: market cap
// tier, turnover rate band, and traded amount.
func (r *RiskScorer) scoreLiquidity(quote *dto.Quote) float64 {
	if quote == nil {
		return 5.0
	}

	score := 5.0

	switch mcap := quote.MarketCap; {
	case mcap > 50e9:
		score += 2
	case mcap > 10e9:
		score += 1
	case mcap > 0 && mcap < 2e9:
		score -= 2
	case mcap > 0 && mcap < 5e9:
		score -= 1
	}

	switch tr := quote.TurnoverRate; {
	case tr > 1 && tr < 10:
		score += 1.5
	case tr < 0.5:
		score -= 1.5
	case tr > 20:
		score -= 1
	}

	switch amount := quote.Amount; {
	case amount > 1e9:
		score += 0.5
	case amount < 1e7:
		score -= 1.5
	}

	return utils.Clamp(score, 1, 10)
}

// scoreVolatility rates intraday amplitude, today's move, and the 60-day
// change magnitude.
func (r *RiskScorer) scoreVolatility(quote *dto.Quote) float64 {
	if quote == nil {
		return 6.0
	}

	score := 6.0

	switch amp := math.Abs(quote.Amplitude); {
	case amp > 8:
		score -= 2
	case amp > 5:
		score -= 1
	case amp < 2:
		score += 1
	}

	switch pct := math.Abs(quote.PctChange); {
	case pct > 8:
		score -= 2
	case pct > 5:
		score -= 1
	}

	switch change := math.Abs(quote.Change60D); {
	case change > 50:
		score -= 1.5
	case change > 30:
		score -= 0.5
	}

	return utils.Clamp(score, 1, 10)
}

// scoreEvent handles discrete risk markers: a special-treatment name flag
// and sustained main capital outflow.
func (r *RiskScorer) scoreEvent(quote *dto.Quote, flow *dto.CapitalFlowSnapshot) float64 {
	score := 6.0

	if quote != nil && strings.Contains(quote.StockName, "ST") {
		score -= 4
	}

	if flow != nil {
		switch main := flow.MainNetInflow; {
		case main < -5e7:
			score -= 2
		case main < -1e7:
			score -= 1
		case main > 5e7:
			score += 1.5
		}
	}

	return utils.Clamp(score, 1, 10)
}

// Summarize renders a one-line explanation for the dominant risk driver.
func (r *RiskScorer) Summarize(assessment dto.RiskAssessment) string {
	b := assessment.Details
	lowest := "financial"
	lowestScore := b.Financial
	for _, dim := range []struct {
		name  string
		score float64
	}{
		{"valuation", b.Valuation},
		{"liquidity", b.Liquidity},
		{"volatility", b.Volatility},
		{"event", b.Event},
	} {
		if dim.score < lowestScore {
			lowest, lowestScore = dim.name, dim.score
		}
	}
	return fmt.Sprintf("Overall risk %s (score %.2f); weakest dimension is %s at %.2f.",
		assessment.RiskLevel, assessment.Score, lowest, lowestScore)
}
