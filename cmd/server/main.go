package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"StockScope/internal/analyzer"
	"StockScope/internal/cache"
	"StockScope/internal/collector"
	"StockScope/internal/config"
	"StockScope/internal/earnings"
	"StockScope/internal/handler"
	"StockScope/internal/logger"
	"StockScope/internal/news"
	"StockScope/internal/notifier"
	"StockScope/internal/portfolio"
	"StockScope/internal/scheduler"
	"StockScope/internal/sector"
	"StockScope/internal/service"
	"StockScope/internal/store"
	"StockScope/internal/watchlist"
	"StockScope/pkg/tracing"
)

const (
	version         = "1.0.0"
	commandTimeout  = 2 * time.Minute
	shutdownTimeout = 10 * time.Second
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initTracerFunc         = tracing.InitTracer
	connectRedisFunc       = cache.Connect
	openStoreFunc          = store.Open
	newRouterFunc          = gin.New
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

func main() {
	_ = loadEnvFunc()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := loadConfigFunc(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	lg, err := logger.New(logger.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Sync()
	lg.Info("StockScope starting", zap.String("version", version))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		Enabled:  cfg.Tracing.Enabled,
		Endpoint: cfg.Tracing.Endpoint,
		Version:  version,
	})
	if err != nil {
		lg.Fatal("init tracer", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			lg.Warn("shutdown tracer provider", zap.Error(err))
		}
	}()

	// Data source
	var av *collector.AlphaVantageFetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "alphavantage":
		av = collector.NewAlphaVantageFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
		fetcher = av
	case "mock":
		fetcher = &collector.MockFetcher{Price: 100}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	if av == nil && cfg.News.AlphaVantageKey != "" {
		av = collector.NewAlphaVantageFetcher("", cfg.News.AlphaVantageKey, cfg.Proxy)
	}
	if cfg.Redis.URL != "" {
		rdb, err := connectRedisFunc(ctx, cfg.Redis.URL)
		if err != nil {
			lg.Warn("redis unavailable, fetching without cache", zap.Error(err))
		} else {
			defer rdb.Close()
			fetcher = collector.NewCachedFetcher(fetcher, rdb, cfg.Redis.TTL, lg)
		}
	}
	lg.Info("data source ready", zap.String("fetcher", fetcher.Name()))

	// Storage
	db, err := openStoreFunc(cfg.Database.SQLitePath, lg)
	if err != nil {
		lg.Fatal("open store", zap.Error(err))
	}
	defer db.Close()

	wl := watchlist.NewManager(db, fetcher, lg)
	if err := wl.Seed(ctx); err != nil {
		lg.Fatal("seed watchlist", zap.Error(err))
	}

	// Services
	an := analyzer.New(fetcher, lg, tracer, analyzer.Options{
		HistoryDays: cfg.DataSource.HistoryDays,
		SymbolDelay: cfg.Analysis.SymbolDelay,
	})
	analysis := service.NewAnalysisService(an, wl, db, cfg.DataSource.Benchmark, cfg.Analysis.RiskFreeRate, lg)
	pf := portfolio.NewManager(db, an, fetcher, cfg.Analysis.RiskFreeRate, lg)
	sectors := sector.NewService(fetcher, db, lg)

	var sources []news.Source
	if cfg.News.NewsAPIKey != "" {
		sources = append(sources, news.NewNewsAPISource(cfg.News.NewsAPIKey, fetcher))
	}
	if av != nil {
		sources = append(sources, news.NewAlphaVantageSource(av))
	}
	ns := news.NewService(sources, news.NewFinvizSource(), db, lg)
	es := earnings.NewService(av, db, ns, lg)

	// Telegram
	var push scheduler.Notifier
	var webhook http.Handler
	if cfg.Telegram.BotToken != "" {
		tn, err := notifier.NewTelegramNotifier(notifier.Options{
			Token:      cfg.Telegram.BotToken,
			ChatID:     cfg.Telegram.ChatID,
			WebhookURL: cfg.Telegram.WebhookURL,
			Proxy:      cfg.Proxy,
		}, lg)
		if err != nil {
			lg.Error("init telegram bot, continuing without it", zap.Error(err))
		} else {
			tn.Register(ctx, notifier.NewCommands(analysis, pf, wl, lg), commandTimeout)
			go tn.Start()
			defer tn.Stop()
			push = tn
			webhook = tn.WebhookHandler()
			lg.Info("telegram commands registered")
		}
	}

	// Scheduler
	sched := scheduler.NewScheduler(ctx, analysis, pf, sectors, push, lg)
	if err := sched.RegisterAll(cfg.Schedule.DailyCron, cfg.Schedule.PortfolioCron, cfg.Schedule.SectorCron); err != nil {
		lg.Fatal("register cron tasks", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		lg.Info("RUN_ON_START enabled, running daily analysis now")
		go sched.RunDailyNow()
	}

	// HTTP
	h := handler.New(tracer, handler.Deps{
		Analysis:  analysis,
		Watchlist: wl,
		Portfolio: pf,
		Advanced:  es,
		Sectors:   sectors,
		News:      ns,
		Store:     db,
	}, lg)

	r := newRouterFunc()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("stockscope"))
	h.RegisterRoutes(r, cfg.Server.APIKey, webhook)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}
	go func() {
		if err := startHTTPServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("listen", zap.Error(err))
		}
	}()
	lg.Info("StockScope is running", zap.String("addr", cfg.Server.Addr))

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	lg.Info("shutdown signal received, stopping")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		lg.Error("server forced to shutdown", zap.Error(err))
	}
	lg.Info("StockScope stopped")
}
