package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-stock-insight/internal/analysis/dto"
)

// FormatBuySignalMessage formats a high-confidence buy recommendation into
// a Markdown string for Telegram.
func FormatBuySignalMessage(report *dto.AnalysisReport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🟢 **Buy Signal: %s (%s)**\n", report.StockName, report.StockCode))
	sb.WriteString(fmt.Sprintf("⭐ Overall Score: %.1f/10\n", report.OverallScore))
	sb.WriteString(fmt.Sprintf("🎯 Confidence: %s\n", report.Confidence))

	var riskIcon string
	switch report.RiskLevel {
	case dto.RiskLow:
		riskIcon = "🛡"
	case dto.RiskMedium:
		riskIcon = "⚠️"
	default:
		riskIcon = "🔴"
	}
	sb.WriteString(fmt.Sprintf("%s Risk Level: %s\n\n", riskIcon, report.RiskLevel))

	sb.WriteString("📐 **Dimension Scores:**\n")
	sb.WriteString(fmt.Sprintf("• 📊 Fundamental: %.1f\n", report.Fundamental.Score))
	sb.WriteString(fmt.Sprintf("• 🔧 Technical: %.1f (%s)\n", report.Technical.Score, report.Technical.Trend))
	sb.WriteString(fmt.Sprintf("• 💰 Capital Flow: %.1f (%s)\n", report.CapitalFlow.Score, report.CapitalFlow.Trend))
	sb.WriteString(fmt.Sprintf("• 📰 Sentiment: %.1f\n\n", report.Sentiment.Score))

	if len(report.Technical.SupportLevels) > 0 {
		sb.WriteString(fmt.Sprintf("🛡 Nearest Support: %.2f\n", report.Technical.SupportLevels[0]))
	}
	if len(report.Technical.ResistanceLevels) > 0 {
		sb.WriteString(fmt.Sprintf("🚧 Nearest Resistance: %.2f\n", report.Technical.ResistanceLevels[0]))
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("📅 _Generated at: %s_\n",
		time.Unix(report.GeneratedAt, 0).Format("2006-01-02 15:04:05")))

	return sb.String()
}
