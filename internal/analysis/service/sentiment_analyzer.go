package service

import (
	"fmt"
	"strings"

	"golang-stock-insight/internal/analysis/dto"
	"golang-stock-insight/pkg/logger"
	"golang-stock-insight/pkg/utils"
)

const (
	maxArticlesScanned = 20
	contentScanLength  = 200
)

// Keyword severity weights, 1-5 by materiality. A delisting warning far
// outweighs a routine shareholder reduction.
var positiveKeywords = map[string]float64{
	"buyback":               3,
	"share repurchase":      3,
	"stake increase":        3,
	"earnings beat":         3,
	"beats expectations":    3,
	"guidance raise":        3,
	"profit surge":          2,
	"turns profitable":      2,
	"turnaround":            2,
	"approval":              2,
	"contract win":          2,
	"strategic partnership": 2,
	"dividend":              2,
	"record high":           2,
	"price increase":        2,
	"breakthrough":          1,
	"growth":                1,
	"upgrade":               1,
	"new order":             1,
	"expansion":             1,
}

var negativeKeywords = map[string]float64{
	"delisting":             5,
	"delisting risk":        5,
	"fraud investigation":   4,
	"fraud probe":           4,
	"special treatment":     4,
	"bankruptcy":            4,
	"regulatory violation":  3,
	"penalty":               3,
	"fined":                 3,
	"earnings warning":      3,
	"profit warning":        3,
	"limit down":            3,
	"default":               2,
	"lawsuit":               2,
	"shareholder reduction": 2,
	"stake reduction":       2,
	"loss":                  2,
	"goodwill impairment":   2,
	"share pledge":          2,
	"frozen assets":         2,
	"plunge":                2,
	"production halt":       2,
	"downgrade":             1,
	"decline":               1,
	"recall":                1,
}

// SentimentAnalyzer scores a ranked news list with severity-weighted
// keywords and time decay.
type SentimentAnalyzer struct {
	log *logger.Logger
}

func NewSentimentAnalyzer(log *logger.Logger) *SentimentAnalyzer {
	return &SentimentAnalyzer{log: log}
}

// Analyze produces the sentiment dimension result. The list must be ranked
// most recent first: the five newest articles are weighted 2x, the next ten
// 1x, anything older 0.5x. Each keyword counts at most once per article.
// No news yields the neutral score with an explicit no-data flag.
func (a *SentimentAnalyzer) Analyze(news []dto.NewsItem) dto.SentimentAnalysis {
	if len(news) == 0 {
		return dto.SentimentAnalysis{
			Score:   5.0,
			NoData:  true,
			Summary: "No recent news available; sentiment defaulted to neutral.",
		}
	}

	posScore, negScore := 0.0, 0.0
	scanned := 0
	for idx, item := range news {
		if idx >= maxArticlesScanned {
			break
		}
		scanned++

		decay := 0.5
		switch {
		case idx < 5:
			decay = 2.0
		case idx < 15:
			decay = 1.0
		}

		text := articleText(item)
		for kw, weight := range positiveKeywords {
			if strings.Contains(text, kw) {
				posScore += weight * decay
			}
		}
		for kw, weight := range negativeKeywords {
			if strings.Contains(text, kw) {
				negScore += weight * decay
			}
		}
	}

	total := posScore + negScore
	score := 5.0
	if total > 0 {
		sentiment := (posScore - negScore) / total
		score = utils.Round1(utils.Clamp(5.0+sentiment*4.0, 0, 10))
	}

	return dto.SentimentAnalysis{
		Score:         score,
		PositiveScore: utils.Round1(posScore),
		NegativeScore: utils.Round1(negScore),
		ArticleCount:  scanned,
		Summary:       a.buildSummary(score, posScore, negScore, scanned),
	}
}

// articleText lowercases the title plus a bounded content prefix. Map
// iteration order does not matter because Contains already deduplicates a
// keyword within one article.
func articleText(item dto.NewsItem) string {
	content := item.Content
	if len(content) > contentScanLength {
		content = content[:contentScanLength]
	}
	return strings.ToLower(item.Title + " " + content)
}

func (a *SentimentAnalyzer) buildSummary(score, pos, neg float64, count int) string {
	tone := "neutral"
	if score >= 6.5 {
		tone = "positive"
	} else if score <= 3.5 {
		tone = "negative"
	}
	return fmt.Sprintf("News sentiment %s across %d articles (positive weight %.1f, negative weight %.1f). Sentiment score %.1f.",
		tone, count, pos, neg, score)
}
