// Package handler exposes the dashboard API over gin.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"StockScope/internal/analyzer"
	"StockScope/internal/collector"
	"StockScope/internal/model"
	"StockScope/internal/portfolio"
	"StockScope/internal/sector"
	"StockScope/internal/service"
	"StockScope/internal/watchlist"
)

type Analysis interface {
	AnalyzeSymbol(ctx context.Context, symbol string) (*model.StockAnalysis, error)
	AnalyzeWatchlist(ctx context.Context) (*analyzer.BatchResult, error)
}

type Watchlist interface {
	List(ctx context.Context) ([]model.WatchlistItem, error)
	Add(ctx context.Context, symbol, companyName string) (*model.WatchlistItem, error)
	Remove(ctx context.Context, symbol string) error
	SetActive(ctx context.Context, symbol string, active bool) error
}

type Portfolio interface {
	Add(ctx context.Context, symbol string) (*model.StockAnalysis, error)
	Remove(ctx context.Context, symbol string) error
	Clear(ctx context.Context) (int, error)
	UpdatePrices(ctx context.Context) (int, error)
	Performance(ctx context.Context) (*model.PortfolioPerformance, error)
}

type Advanced interface {
	Advanced(ctx context.Context, symbol string) *model.AdvancedAnalysis
}

type Sectors interface {
	Refresh(ctx context.Context) ([]model.SectorPerformance, error)
	Latest(ctx context.Context) (string, []model.SectorPerformance, error)
}

type News interface {
	Articles(ctx context.Context, symbol string) []model.Article
}

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services behind the routes.
type Deps struct {
	Analysis  Analysis
	Watchlist Watchlist
	Portfolio Portfolio
	Advanced  Advanced
	Sectors   Sectors
	News      News
	Store     Pinger
}

type Handler struct {
	tracer trace.Tracer
	deps   Deps
	logger *zap.Logger
	now    func() time.Time
}

// New creates a Handler. A nil tracer disables spans.
func New(tracer trace.Tracer, deps Deps, logger *zap.Logger) *Handler {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("handler")
	}
	return &Handler{tracer: tracer, deps: deps, logger: logger, now: time.Now}
}

// RegisterRoutes mounts every route. The /api group requires apiKey when it
// is set. webhook, if not nil, receives Telegram updates at /webhook.
func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string, webhook http.Handler) {
	r.GET("/health", h.Health)
	if webhook != nil {
		r.POST("/webhook", gin.WrapH(webhook))
	}

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.GET("/analyze", h.AnalyzeAll)
	api.GET("/analyze/:symbol", h.AnalyzeSymbol)

	api.GET("/watchlist", h.ListWatchlist)
	api.POST("/watchlist/add", h.AddWatchlist)
	api.POST("/watchlist/remove", h.RemoveWatchlist)
	api.POST("/watchlist/toggle", h.ToggleWatchlist)

	api.GET("/portfolio", h.GetPortfolio)
	api.POST("/portfolio/add", h.AddPortfolio)
	api.POST("/portfolio/remove", h.RemovePortfolio)
	api.POST("/portfolio/clear", h.ClearPortfolio)
	api.GET("/portfolio/update", h.UpdatePortfolio)

	api.GET("/advanced/:symbol", h.GetAdvanced)
	api.GET("/sectors", h.GetSectors)
	api.GET("/debug/:symbol", h.DebugNews)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSymbolRequired):
		return http.StatusBadRequest
	case errors.Is(err, collector.ErrUnknownSymbol),
		errors.Is(err, analyzer.ErrNoPriceData),
		errors.Is(err, analyzer.ErrInsufficientData),
		errors.Is(err, watchlist.ErrNotFound),
		errors.Is(err, portfolio.ErrNotHeld),
		errors.Is(err, service.ErrEmptyWatchlist):
		return http.StatusNotFound
	case errors.Is(err, portfolio.ErrAlreadyHeld):
		return http.StatusConflict
	case errors.Is(err, sector.ErrNoSectors):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	abortJSON(c, status, err.Error())
}

// abortJSON stops the chain with the shared error body.
func abortJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

type symbolRequest struct {
	Symbol      string `json:"symbol" binding:"required"`
	CompanyName string `json:"company_name"`
	IsActive    *bool  `json:"is_active"`
}

// bindSymbol decodes the JSON body and rejects a missing symbol with 400.
func bindSymbol(c *gin.Context) (symbolRequest, bool) {
	var req symbolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortJSON(c, http.StatusBadRequest, service.ErrSymbolRequired.Error())
		return req, false
	}
	req.Symbol = watchlist.Normalize(req.Symbol)
	if req.Symbol == "" {
		abortJSON(c, http.StatusBadRequest, service.ErrSymbolRequired.Error())
		return req, false
	}
	return req, true
}
