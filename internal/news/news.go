// Package news gathers recent articles about a symbol and scores their
// sentiment.
package news

import (
	"context"
	"math"

	"go.uber.org/zap"

	"StockScope/internal/model"
)

// recentShown is how many scored articles a summary carries.
const recentShown = 5

// Store persists scored articles.
type Store interface {
	UpsertNews(ctx context.Context, symbol string, articles []model.Article) error
}

// Service queries every primary source and falls back when none returns
// anything.
type Service struct {
	sources  []Source
	fallback Source
	store    Store
	logger   *zap.Logger
}

// NewService builds a Service. fallback and store may be nil.
func NewService(sources []Source, fallback Source, store Store, logger *zap.Logger) *Service {
	return &Service{sources: sources, fallback: fallback, store: store, logger: logger}
}

// Articles collects articles from the primary sources, then the fallback.
// Source failures are logged and skipped.
func (s *Service) Articles(ctx context.Context, symbol string) []model.Article {
	var out []model.Article
	for _, src := range s.sources {
		out = append(out, s.fetch(ctx, src, symbol)...)
	}
	if len(out) == 0 && s.fallback != nil {
		out = s.fetch(ctx, s.fallback, symbol)
	}
	return out
}

func (s *Service) fetch(ctx context.Context, src Source, symbol string) []model.Article {
	articles, err := src.Articles(ctx, symbol)
	if err != nil {
		s.logger.Warn("news source failed",
			zap.String("source", src.Name()),
			zap.String("symbol", symbol),
			zap.Error(err),
		)
		return nil
	}
	return articles
}

// Sentiment scores every recent article and aggregates the result.
func (s *Service) Sentiment(ctx context.Context, symbol string) *model.NewsSentiment {
	articles := s.Articles(ctx, symbol)
	for i := range articles {
		articles[i].Sentiment = Score(articles[i].Title + " " + articles[i].Description)
	}

	if s.store != nil && len(articles) > 0 {
		if err := s.store.UpsertNews(ctx, symbol, articles); err != nil {
			s.logger.Warn("save news failed", zap.String("symbol", symbol), zap.Error(err))
		}
	}
	return Aggregate(symbol, articles)
}

// Aggregate summarises scored articles. Confidence grows by ten per article
// up to 100.
func Aggregate(symbol string, articles []model.Article) *model.NewsSentiment {
	res := &model.NewsSentiment{
		Symbol:           symbol,
		OverallSentiment: Neutral,
		ArticleCount:     len(articles),
		RecentArticles:   []model.Article{},
	}
	if len(articles) == 0 {
		return res
	}

	var sum float64
	for _, a := range articles {
		sum += a.Sentiment.Score
	}
	mean := sum / float64(len(articles))

	res.SentimentScore = math.Round(mean*1000) / 1000
	res.OverallSentiment = labelFor(mean, true)
	res.Confidence = math.Min(100, float64(10*len(articles)))
	res.RecentArticles = articles[:min(recentShown, len(articles))]
	return res
}
