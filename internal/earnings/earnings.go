// Package earnings reads reported and scheduled earnings from Alpha Vantage.
package earnings

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"StockScope/internal/collector"
	"StockScope/internal/model"
)

// HistoryQuarters is how many reported quarters History returns.
const HistoryQuarters = 8

// Store persists reported quarters.
type Store interface {
	UpsertEarnings(ctx context.Context, symbol string, reports []model.EarningsReport) error
}

// SentimentSource scores recent news about a symbol.
type SentimentSource interface {
	Sentiment(ctx context.Context, symbol string) *model.NewsSentiment
}

type Service struct {
	av     *collector.AlphaVantageFetcher
	store  Store
	news   SentimentSource
	logger *zap.Logger
	now    func() time.Time
}

// NewService builds a Service. With a nil av client every lookup is empty.
func NewService(av *collector.AlphaVantageFetcher, store Store, news SentimentSource, logger *zap.Logger) *Service {
	return &Service{av: av, store: store, news: news, logger: logger, now: time.Now}
}

type avEarnings struct {
	Quarterly []struct {
		FiscalDateEnding   string `json:"fiscalDateEnding"`
		ReportedDate       string `json:"reportedDate"`
		ReportedEPS        string `json:"reportedEPS"`
		EstimatedEPS       string `json:"estimatedEPS"`
		SurprisePercentage string `json:"surprisePercentage"`
	} `json:"quarterlyEarnings"`
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

// parseEPS reads an Alpha Vantage number; "None" and blanks are invalid.
func parseEPS(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// History returns the most recent reported quarters, newest first.
func (s *Service) History(ctx context.Context, symbol string) ([]model.EarningsReport, error) {
	if s.av == nil {
		return nil, nil
	}
	var resp avEarnings
	if err := s.av.Query(ctx, url.Values{"function": {"EARNINGS"}, "symbol": {symbol}}, &resp); err != nil {
		return nil, err
	}
	switch {
	case resp.ErrorMessage != "":
		return nil, fmt.Errorf("earnings %s: %w", symbol, collector.ErrUnknownSymbol)
	case resp.Note != "" || resp.Information != "":
		return nil, fmt.Errorf("earnings %s: %s%s", symbol, resp.Note, resp.Information)
	}

	out := make([]model.EarningsReport, 0, HistoryQuarters)
	for _, q := range resp.Quarterly {
		if len(out) == HistoryQuarters {
			break
		}
		est, estOK := parseEPS(q.EstimatedEPS)
		actual, actualOK := parseEPS(q.ReportedEPS)
		var surprise float64
		if estOK && actualOK && est != 0 {
			surprise = (actual - est) / math.Abs(est) * 100
		}
		out = append(out, model.EarningsReport{
			Date:            q.ReportedDate,
			FiscalQuarter:   q.FiscalDateEnding,
			EstimatedEPS:    round(est, 2),
			ActualEPS:       round(actual, 2),
			SurprisePercent: round(surprise, 1),
		})
	}

	if s.store != nil && len(out) > 0 {
		if err := s.store.UpsertEarnings(ctx, symbol, out); err != nil {
			s.logger.Warn("save earnings failed", zap.String("symbol", symbol), zap.Error(err))
		}
	}
	return out, nil
}

// Upcoming finds the next scheduled report within three months.
func (s *Service) Upcoming(ctx context.Context, symbol string) (model.UpcomingEarnings, error) {
	if s.av == nil {
		return model.UpcomingEarnings{}, nil
	}
	body, err := s.av.QueryRaw(ctx, url.Values{
		"function": {"EARNINGS_CALENDAR"},
		"symbol":   {symbol},
		"horizon":  {"3month"},
	})
	if err != nil {
		return model.UpcomingEarnings{}, err
	}
	return nextReport(body, symbol, s.now())
}

// nextReport scans the calendar CSV (symbol,name,reportDate,...) for the
// earliest report of symbol on or after today.
func nextReport(body []byte, symbol string, now time.Time) (model.UpcomingEarnings, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return model.UpcomingEarnings{}, nil
	}
	if err != nil {
		return model.UpcomingEarnings{}, fmt.Errorf("earnings calendar: %w", err)
	}
	symCol, dateCol := -1, -1
	for i, h := range header {
		switch h {
		case "symbol":
			symCol = i
		case "reportDate":
			dateCol = i
		}
	}
	if symCol < 0 || dateCol < 0 {
		return model.UpcomingEarnings{}, fmt.Errorf("earnings calendar: unexpected header %v", header)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var next time.Time
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.UpcomingEarnings{}, fmt.Errorf("earnings calendar: %w", err)
		}
		if len(rec) <= max(symCol, dateCol) || rec[symCol] != symbol {
			continue
		}
		d, err := time.Parse("2006-01-02", rec[dateCol])
		if err != nil || d.Before(today) {
			continue
		}
		if next.IsZero() || d.Before(next) {
			next = d
		}
	}
	if next.IsZero() {
		return model.UpcomingEarnings{}, nil
	}
	return model.UpcomingEarnings{
		HasUpcoming:      true,
		NextEarningsDate: next.Format("2006-01-02"),
		DaysUntil:        int(next.Sub(today).Hours() / 24),
	}, nil
}

// Advanced combines news sentiment with earnings. Lookup failures degrade
// to empty sections.
func (s *Service) Advanced(ctx context.Context, symbol string) *model.AdvancedAnalysis {
	res := &model.AdvancedAnalysis{Symbol: symbol, EarningsHistory: []model.EarningsReport{}}
	if s.news != nil {
		res.NewsSentiment = s.news.Sentiment(ctx, symbol)
	}

	upcoming, err := s.Upcoming(ctx, symbol)
	if err != nil {
		s.logger.Warn("earnings calendar failed", zap.String("symbol", symbol), zap.Error(err))
	}
	res.UpcomingEarnings = upcoming

	history, err := s.History(ctx, symbol)
	if err != nil {
		s.logger.Warn("earnings history failed", zap.String("symbol", symbol), zap.Error(err))
	}
	if history != nil {
		res.EarningsHistory = history
	}
	return res
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
