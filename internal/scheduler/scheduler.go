package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"StockScope/internal/analyzer"
	"StockScope/internal/model"
	"StockScope/internal/notifier"
	"StockScope/internal/service"
)

// Analysis runs the watchlist.
type Analysis interface {
	AnalyzeWatchlist(ctx context.Context) (*analyzer.BatchResult, error)
}

// Portfolio refreshes holdings and resolves predictions.
type Portfolio interface {
	UpdatePrices(ctx context.Context) (int, error)
	ResolvePredictions(ctx context.Context, now time.Time) (int, error)
}

// Sectors refreshes the sector snapshot.
type Sectors interface {
	Refresh(ctx context.Context) ([]model.SectorPerformance, error)
}

// Notifier pushes reports. It may be nil when Telegram is not configured.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Analysis  Analysis
	Portfolio Portfolio
	Sectors   Sectors
	Notifier  Notifier
	Logger    *zap.Logger
	Ctx       context.Context
	now       func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, a Analysis, p Portfolio, s Sectors, n Notifier, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Analysis:  a,
		Portfolio: p,
		Sectors:   s,
		Notifier:  n,
		Logger:    logger,
		Ctx:       ctx,
		now:       time.Now,
	}
}

// RegisterAll registers the daily analysis, portfolio and sector tasks.
func (s *Scheduler) RegisterAll(dailyCron, portfolioCron, sectorCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyAnalysis); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	if _, err := s.Cron.AddFunc(portfolioCron, s.portfolioTask); err != nil {
		return fmt.Errorf("register portfolio task: %w", err)
	}
	if _, err := s.Cron.AddFunc(sectorCron, s.sectorTask); err != nil {
		return fmt.Errorf("register sector task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunDailyNow executes the daily analysis immediately (for RUN_ON_START).
func (s *Scheduler) RunDailyNow() {
	s.dailyAnalysis()
}

func (s *Scheduler) dailyAnalysis() {
	s.Logger.Info("running daily analysis")
	res, err := s.Analysis.AnalyzeWatchlist(s.Ctx)
	if err != nil {
		s.Logger.Error("daily analysis failed", zap.Error(err))
		s.trySend(fmt.Sprintf("❌ Daily analysis failed: %v", err))
		return
	}

	s.trySend(notifier.FormatSummary(res, s.now()))
	if top := service.TopSignals(res.Results, notifier.TopCount); len(top) > 0 {
		s.trySend(notifier.FormatTopSignals(top))
	}
}

func (s *Scheduler) portfolioTask() {
	s.Logger.Info("running portfolio update")
	updated, err := s.Portfolio.UpdatePrices(s.Ctx)
	if err != nil {
		s.Logger.Error("portfolio update failed", zap.Int("updated", updated), zap.Error(err))
	}
	resolved, err := s.Portfolio.ResolvePredictions(s.Ctx, s.now())
	if err != nil {
		s.Logger.Error("resolve predictions failed", zap.Int("resolved", resolved), zap.Error(err))
	}
}

func (s *Scheduler) sectorTask() {
	s.Logger.Info("running sector refresh")
	sectors, err := s.Sectors.Refresh(s.Ctx)
	if err != nil {
		s.Logger.Error("sector refresh failed", zap.Error(err))
		return
	}
	s.Logger.Info("sector refresh complete", zap.Int("sectors", len(sectors)))
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Logger.Error("send notification failed", zap.Error(err))
	}
}
