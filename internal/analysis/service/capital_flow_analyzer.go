package service

import (
	"fmt"
	"math"

	"golang-stock-insight/internal/analysis/dto"
	"golang-stock-insight/pkg/logger"
	"golang-stock-insight/pkg/utils"
)

// Capital-flow trend and momentum labels.
const (
	FlowSustainedInflow  = "sustained_inflow"
	FlowInflow           = "inflow"
	FlowSustainedOutflow = "sustained_outflow"
	FlowOutflow          = "outflow"
	FlowBalanced         = "balanced"

	MomentumAccelerating = "accelerating"
	MomentumDecelerating = "decelerating"
	MomentumSteady       = "steady"
)

// CapitalFlowAnalyzer scores size-normalized order flow across multiple
// timeframes.
type CapitalFlowAnalyzer struct {
	log *logger.Logger
}

func NewCapitalFlowAnalyzer(log *logger.Logger) *CapitalFlowAnalyzer {
	return &CapitalFlowAnalyzer{log: log}
}

// Analyze produces the capital-flow dimension result. A nil snapshot yields
// the neutral "no data" result.
func (a *CapitalFlowAnalyzer) Analyze(flow *dto.CapitalFlowSnapshot, quote *dto.Quote) dto.CapitalFlowAnalysis {
	if flow == nil {
		return dto.CapitalFlowAnalysis{
			Score:   5.0,
			Trend:   dto.TrendUndetermined,
			Summary: "Capital flow data unavailable.",
		}
	}

	// Normalize by circulating market cap when the quote carries it,
	// falling back to the provider's raw percentage.
	normPct := flow.MainNetInflowPct
	if quote != nil && quote.CirculatingMarketCap > 0 {
		normPct = flow.MainNetInflow / quote.CirculatingMarketCap * 100
	}

	todayDir := sign(flow.MainNetInflow)
	fiveDir := sign(flow.MainNetInflow5D)
	tenDir := sign(flow.MainNetInflow10D)
	consistency := todayDir + fiveDir + tenDir

	trend := FlowBalanced
	switch {
	case consistency >= 2:
		trend = FlowSustainedInflow
	case todayDir > 0:
		trend = FlowInflow
	case consistency <= -2:
		trend = FlowSustainedOutflow
	case todayDir < 0:
		trend = FlowOutflow
	}

	avg5 := flow.MainNetInflow5D / 5
	avg10 := flow.MainNetInflow10D / 10
	momentum := MomentumSteady
	if avg5 > avg10*1.3 && avg5 != 0 {
		momentum = MomentumAccelerating
	} else if avg10 != 0 && avg5 < avg10*0.7 {
		momentum = MomentumDecelerating
	}

	score := 5.0

	// Today's direction (±1.0)
	score += float64(todayDir) * 1.0

	// Multi-timeframe consistency (±1.5 / ±0.5)
	switch {
	case consistency >= 2:
		score += 1.5
	case consistency <= -2:
		score -= 1.5
	case consistency == 1:
		score += 0.5
	case consistency == -1:
		score -= 0.5
	}

	// Size-normalized magnitude (±1.0 / ±0.5)
	if math.Abs(normPct) > 2 {
		score += math.Copysign(1.0, normPct)
	} else if math.Abs(normPct) > 0.5 {
		score += math.Copysign(0.5, normPct)
	}

	// Super-large tier as an institutional-intent proxy (+0.8 / -0.5)
	if flow.SuperLargeNetInflow > 0 {
		score += 0.8
	} else if flow.SuperLargeNetInflow < 0 {
		score -= 0.5
	}

	// Momentum aligned with direction (±0.5)
	if momentum == MomentumAccelerating {
		if flow.MainNetInflow > 0 {
			score += 0.5
		} else if flow.MainNetInflow < 0 {
			score -= 0.5
		}
	}

	// 20-day context agreement (±0.3)
	if flow.MainNetInflow20D > 0 && flow.MainNetInflow5D > 0 {
		score += 0.3
	} else if flow.MainNetInflow20D < 0 && flow.MainNetInflow5D < 0 {
		score -= 0.3
	}

	score = utils.Round1(utils.Clamp(score, 0, 10))

	return dto.CapitalFlowAnalysis{
		Score:               score,
		MainNetInflow:       flow.MainNetInflow,
		MainNetInflow5D:     flow.MainNetInflow5D,
		MainNetInflow10D:    flow.MainNetInflow10D,
		SuperLargeNetInflow: flow.SuperLargeNetInflow,
		LargeNetInflow:      flow.LargeNetInflow,
		NormalizedInflowPct: utils.Round2(normPct),
		Trend:               trend,
		Momentum:            momentum,
		Summary:             a.buildSummary(flow, trend, momentum, score),
	}
}

func (a *CapitalFlowAnalyzer) buildSummary(flow *dto.CapitalFlowSnapshot, trend, momentum string, score float64) string {
	direction := "inflow"
	if flow.MainNetInflow < 0 {
		direction = "outflow"
	}
	summary := fmt.Sprintf("Main capital %s (%s). Today net %s %s",
		trend, momentum, direction, utils.FormatAmount(math.Abs(flow.MainNetInflow)))
	if flow.SuperLargeNetInflow != 0 {
		slDirection := "inflow"
		if flow.SuperLargeNetInflow < 0 {
			slDirection = "outflow"
		}
		summary += fmt.Sprintf(", super-large net %s %s", slDirection, utils.FormatAmount(math.Abs(flow.SuperLargeNetInflow)))
	}
	summary += fmt.Sprintf(". 5-day cumulative %s. Capital-flow score %.1f.", utils.FormatAmount(flow.MainNetInflow5D), score)
	return summary
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
