package service

import (
	"fmt"
	"testing"

	"golang-stock-insight/internal/analysis/dto"

	"github.com/stretchr/testify/assert"
)

func TestSentimentAnalyzer_NoNews(t *testing.T) {
	analyzer := NewSentimentAnalyzer(testLogger(t))

	result := analyzer.Analyze(nil)

	assert.Equal(t, 5.0, result.Score)
	assert.True(t, result.NoData)
	assert.Zero(t, result.ArticleCount)
}

func TestSentimentAnalyzer_NoKeywordHitsIsNeutral(t *testing.T) {
	analyzer := NewSentimentAnalyzer(testLogger(t))

	result := analyzer.Analyze([]dto.NewsItem{
		{Title: "Quarterly report published", Content: "The company filed its quarterly report."},
	})

	assert.Equal(t, 5.0, result.Score)
	assert.False(t, result.NoData)
	assert.Equal(t, 1, result.ArticleCount)
}

func TestSentimentAnalyzer_WeightedMix(t *testing.T) {
	analyzer := NewSentimentAnalyzer(testLogger(t))

	// Buyback (weight 3) and lawsuit (weight 2), both at 2x recency decay:
	// positive 6, negative 4, score 5 + 4*(2/10) = 5.8.
	result := analyzer.Analyze([]dto.NewsItem{
		{Title: "Company announces buyback program"},
		{Title: "Supplier files lawsuit over contract terms"},
	})

	assert.InDelta(t, 5.8, result.Score, 1e-9)
	assert.InDelta(t, 6.0, result.PositiveScore, 1e-9)
	assert.InDelta(t, 4.0, result.NegativeScore, 1e-9)
}

func TestSentimentAnalyzer_SevereNegativeDominates(t *testing.T) {
	analyzer := NewSentimentAnalyzer(testLogger(t))

	result := analyzer.Analyze([]dto.NewsItem{
		{Title: "Exchange issues delisting risk warning"},
		{Title: "Regulator opens fraud investigation"},
		{Title: "Company reports growth in new order volume"},
	})

	assert.Less(t, result.Score, 3.0)
}

func TestSentimentAnalyzer_KeywordDedupWithinArticle(t *testing.T) {
	analyzer := NewSentimentAnalyzer(testLogger(t))

	// "buyback" twice in one article counts once.
	once := analyzer.Analyze([]dto.NewsItem{{Title: "Buyback expanded: buyback size doubled"}})
	twice := analyzer.Analyze([]dto.NewsItem{{Title: "Buyback expanded"}, {Title: "Buyback size doubled"}})

	assert.InDelta(t, 6.0, once.PositiveScore, 1e-9)
	assert.InDelta(t, 12.0, twice.PositiveScore, 1e-9)
}

func TestSentimentAnalyzer_TimeDecayRanksRecentNewsHigher(t *testing.T) {
	analyzer := NewSentimentAnalyzer(testLogger(t))

	// The same keyword contributes 2x in the first five slots, 1x in the
	// next ten, 0.5x beyond.
	news := make([]dto.NewsItem, 16)
	for i := range news {
		news[i] = dto.NewsItem{Title: fmt.Sprintf("Filler headline %d", i)}
	}
	news[15].Title = "Company announces buyback"
	old := analyzer.Analyze(news)

	news[15].Title = "Filler headline 15"
	news[0].Title = "Company announces buyback"
	recent := analyzer.Analyze(news)

	assert.InDelta(t, 1.5, old.PositiveScore, 1e-9)
	assert.InDelta(t, 6.0, recent.PositiveScore, 1e-9)
}

func TestSentimentAnalyzer_CapsAtTwentyArticles(t *testing.T) {
	analyzer := NewSentimentAnalyzer(testLogger(t))

	news := make([]dto.NewsItem, 30)
	for i := range news {
		news[i] = dto.NewsItem{Title: "Routine filing"}
	}
	result := analyzer.Analyze(news)

	assert.Equal(t, 20, result.ArticleCount)
}
