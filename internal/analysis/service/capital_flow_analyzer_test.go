package service

import (
	"testing"

	"golang-stock-insight/internal/analysis/dto"

	"github.com/stretchr/testify/assert"
)

func TestCapitalFlowAnalyzer_NoData(t *testing.T) {
	analyzer := NewCapitalFlowAnalyzer(testLogger(t))

	result := analyzer.Analyze(nil, nil)

	assert.Equal(t, 5.0, result.Score)
	assert.Equal(t, dto.TrendUndetermined, result.Trend)
}

func TestCapitalFlowAnalyzer_SustainedInflow(t *testing.T) {
	analyzer := NewCapitalFlowAnalyzer(testLogger(t))

	flow := &dto.CapitalFlowSnapshot{
		MainNetInflow:       8e7,
		MainNetInflow5D:     3e8,
		MainNetInflow10D:    4e8,
		MainNetInflow20D:    5e8,
		SuperLargeNetInflow: 5e7,
	}
	quote := &dto.Quote{CirculatingMarketCap: 1e10}

	result := analyzer.Analyze(flow, quote)

	// today +1.0, consistency +1.5, magnitude +0.5 (0.8% of float),
	// super-large +0.8, accelerating momentum +0.5, 20d context +0.3
	assert.Equal(t, dto.CapitalFlowAnalysis{
		Score:               9.6,
		MainNetInflow:       8e7,
		MainNetInflow5D:     3e8,
		MainNetInflow10D:    4e8,
		SuperLargeNetInflow: 5e7,
		NormalizedInflowPct: 0.8,
		Trend:               FlowSustainedInflow,
		Momentum:            MomentumAccelerating,
		Summary:             result.Summary,
	}, result)
	assert.NotEmpty(t, result.Summary)
}

func TestCapitalFlowAnalyzer_SustainedOutflow(t *testing.T) {
	analyzer := NewCapitalFlowAnalyzer(testLogger(t))

	flow := &dto.CapitalFlowSnapshot{
		MainNetInflow:       -8e7,
		MainNetInflow5D:     -3e8,
		MainNetInflow10D:    -4e8,
		MainNetInflow20D:    -5e8,
		SuperLargeNetInflow: -5e7,
	}
	quote := &dto.Quote{CirculatingMarketCap: 1e10}

	result := analyzer.Analyze(flow, quote)

	assert.Equal(t, FlowSustainedOutflow, result.Trend)
	assert.Less(t, result.Score, 3.0)
}

func TestCapitalFlowAnalyzer_MixedSignals(t *testing.T) {
	analyzer := NewCapitalFlowAnalyzer(testLogger(t))

	// Inflow today against cumulative outflows stays near neutral.
	flow := &dto.CapitalFlowSnapshot{
		MainNetInflow:    2e6,
		MainNetInflow5D:  -1e7,
		MainNetInflow10D: -2e7,
	}

	result := analyzer.Analyze(flow, nil)

	assert.Equal(t, FlowInflow, result.Trend)
	assert.GreaterOrEqual(t, result.Score, 4.0)
	assert.LessOrEqual(t, result.Score, 6.5)
}

func TestCapitalFlowAnalyzer_NormalizationFallsBackToRawPct(t *testing.T) {
	analyzer := NewCapitalFlowAnalyzer(testLogger(t))

	flow := &dto.CapitalFlowSnapshot{
		MainNetInflow:    5e7,
		MainNetInflowPct: 3.2,
	}

	result := analyzer.Analyze(flow, nil)

	assert.InDelta(t, 3.2, result.NormalizedInflowPct, 1e-9)
}
