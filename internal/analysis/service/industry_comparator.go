package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang-stock-insight/internal/analysis/dto"
	"golang-stock-insight/internal/analysis/repository"
	"golang-stock-insight/pkg/logger"
	"golang-stock-insight/pkg/utils"
)

const maxPeersInReport = 6

type rankedMetric struct {
	key       string
	label     string
	ascending bool
	value     func(dto.PeerSnapshot) float64
}

// Ascending metrics reward lower values (valuation ratios), descending
// metrics reward higher values.
var comparisonMetrics = []rankedMetric{
	{"pe", "P/E ratio", true, func(s dto.PeerSnapshot) float64 { return s.PE }},
	{"pb", "P/B ratio", true, func(s dto.PeerSnapshot) float64 { return s.PB }},
	{"roe", "Return on equity", false, func(s dto.PeerSnapshot) float64 { return s.ROE }},
	{"revenue_growth", "Revenue growth", false, func(s dto.PeerSnapshot) float64 { return s.RevenueGrowth }},
	{"net_profit_growth", "Net profit growth", false, func(s dto.PeerSnapshot) float64 { return s.NetProfitGrowth }},
	{"market_cap", "Market cap", false, func(s dto.PeerSnapshot) float64 { return s.MarketCap }},
	{"pct_change", "Daily change", false, func(s dto.PeerSnapshot) float64 { return s.PctChange }},
}

// IndustryComparator ranks a stock against its same-industry peers on
// valuation, profitability, growth, and size metrics.
type IndustryComparator struct {
	marketData repository.MarketDataRepository
	peerLimit  int
	log        *logger.Logger
}

func NewIndustryComparator(marketData repository.MarketDataRepository, peerLimit int, log *logger.Logger) *IndustryComparator {
	if peerLimit <= 0 {
		peerLimit = 10
	}
	return &IndustryComparator{marketData: marketData, peerLimit: peerLimit, log: log}
}

// Compare fetches the peer group and ranks the target within it per
// metric. A metric is skipped for any stock where the value is zero, and
// skipped entirely when the target itself lacks it, so ranks across
// metrics may span different totals.
func (c *IndustryComparator) Compare(ctx context.Context, code string) (*dto.IndustryComparison, error) {
	group, err := c.marketData.GetPeers(ctx, code, c.peerLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch peer group: %w", err)
	}

	result := &dto.IndustryComparison{
		Industry: group.Industry,
		Target:   group.Target,
		Peers:    group.Peers,
		Metrics:  []dto.ComparisonMetric{},
	}
	if group.Target == nil {
		result.Position = "Target stock data unavailable for industry comparison."
		return result, nil
	}

	allStocks := append([]dto.PeerSnapshot{*group.Target}, group.Peers...)
	for _, m := range comparisonMetrics {
		if cm, ok := c.rankMetric(m, allStocks, code); ok {
			result.Metrics = append(result.Metrics, cm)
		}
	}

	if len(group.Peers) > maxPeersInReport {
		result.Peers = group.Peers[:maxPeersInReport]
	}
	result.Position = c.assessPosition(group.Target, result.Metrics, len(allStocks))

	return result, nil
}

type rankEntry struct {
	code      string
	value     float64
	marketCap float64
}

func (c *IndustryComparator) rankMetric(m rankedMetric, stocks []dto.PeerSnapshot, targetCode string) (dto.ComparisonMetric, bool) {
	entries := make([]rankEntry, 0, len(stocks))
	for _, s := range stocks {
		if v := m.value(s); v != 0 {
			entries = append(entries, rankEntry{code: s.StockCode, value: v, marketCap: s.MarketCap})
		}
	}
	if len(entries) == 0 {
		return dto.ComparisonMetric{}, false
	}

	// Ties break toward the larger company.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].value != entries[j].value {
			if m.ascending {
				return entries[i].value < entries[j].value
			}
			return entries[i].value > entries[j].value
		}
		return entries[i].marketCap > entries[j].marketCap
	})

	rank, targetValue := 0, 0.0
	peerSum, peerCount := 0.0, 0
	for i, e := range entries {
		if e.code == targetCode {
			rank = i + 1
			targetValue = e.value
		} else {
			peerSum += e.value
			peerCount++
		}
	}
	if rank == 0 {
		return dto.ComparisonMetric{}, false
	}

	avg := 0.0
	if peerCount > 0 {
		avg = peerSum / float64(peerCount)
	}

	total := len(entries)
	percentile := (1.0 - float64(rank-1)/float64(max(total-1, 1))) * 100

	return dto.ComparisonMetric{
		Metric:      m.key,
		Label:       m.label,
		TargetValue: utils.Round2(targetValue),
		IndustryAvg: utils.Round2(avg),
		Rank:        rank,
		Total:       total,
		Percentile:  utils.Round1(percentile),
		VsAverage:   vsAverage(targetValue, avg, m.ascending),
	}, true
}

func vsAverage(target, avg float64, ascending bool) string {
	better := target > avg
	if ascending {
		better = target < avg
	}
	switch {
	case target == avg:
		return "in line with average"
	case better:
		return "better than average"
	default:
		return "worse than average"
	}
}

// assessPosition lists the metrics where the target sits in the top 30%
// or bottom 30% of its peer set.
func (c *IndustryComparator) assessPosition(target *dto.PeerSnapshot, metrics []dto.ComparisonMetric, total int) string {
	if len(metrics) == 0 {
		return "Insufficient peer data to assess industry position."
	}

	var strengths, weaknesses []string
	for _, m := range metrics {
		entry := fmt.Sprintf("%s rank %d/%d", m.Label, m.Rank, m.Total)
		switch {
		case float64(m.Rank) <= max(float64(m.Total)*0.3, 1):
			strengths = append(strengths, entry)
		case float64(m.Rank) >= float64(m.Total)*0.7:
			weaknesses = append(weaknesses, entry)
		}
	}

	name := target.StockName
	if name == "" {
		name = target.StockCode
	}
	parts := []string{fmt.Sprintf("%s among %d industry companies:", name, total)}
	if len(strengths) > 0 {
		parts = append(parts, fmt.Sprintf("strengths: %s.", strings.Join(strengths, ", ")))
	}
	if len(weaknesses) > 0 {
		parts = append(parts, fmt.Sprintf("weaknesses: %s.", strings.Join(weaknesses, ", ")))
	}
	if len(strengths) == 0 && len(weaknesses) == 0 {
		parts = append(parts, "all metrics sit mid-pack within the industry.")
	}
	return strings.Join(parts, " ")
}
