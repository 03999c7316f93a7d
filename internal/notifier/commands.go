package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"StockScope/internal/analyzer"
	"StockScope/internal/collector"
	"StockScope/internal/model"
	"StockScope/internal/service"
)

// TopCount is how many buy signals /top and /analyze show.
const TopCount = 5

const welcomeText = `🚀 <b>Welcome to StockScope!</b>

Available commands:
/analyze - Get analysis of all watched stocks
/stock SYMBOL - Get specific stock analysis (e.g., /stock AAPL)
/top - Get top 5 buy signals
/portfolio - Show portfolio performance
/watchlist - Show watched stocks
/help - Show this help message

Example: <code>/stock TSLA</code>`

const helpText = `<b>📚 Available Commands:</b>

/analyze - Full analysis of all watched stocks
/stock SYMBOL - Analyze specific stock
/top - Top 5 buy signals
/portfolio - Portfolio performance
/watchlist - Watched stocks
/help - Show this help

<b>Examples:</b>
<code>/stock AAPL</code>
<code>/stock TSLA</code>`

const unknownText = "❓ Unknown command. Use /help to see available commands."

// Analysis runs analyses on demand.
type Analysis interface {
	AnalyzeSymbol(ctx context.Context, symbol string) (*model.StockAnalysis, error)
	AnalyzeWatchlist(ctx context.Context) (*analyzer.BatchResult, error)
}

// Portfolio reports holdings.
type Portfolio interface {
	Performance(ctx context.Context) (*model.PortfolioPerformance, error)
}

// Watchlist lists watched symbols.
type Watchlist interface {
	List(ctx context.Context) ([]model.WatchlistItem, error)
}

// Commands builds the replies to bot commands.
type Commands struct {
	analysis  Analysis
	portfolio Portfolio
	watchlist Watchlist
	logger    *zap.Logger
	now       func() time.Time
}

func NewCommands(a Analysis, p Portfolio, w Watchlist, logger *zap.Logger) *Commands {
	return &Commands{analysis: a, portfolio: p, watchlist: w, logger: logger, now: time.Now}
}

// Stock analyzes the symbol in args[0].
func (c *Commands) Stock(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Usage: <code>/stock SYMBOL</code>"
	}
	res, err := c.analysis.AnalyzeSymbol(ctx, args[0])
	if err != nil {
		c.logger.Warn("stock command failed", zap.String("symbol", args[0]), zap.Error(err))
		if errors.Is(err, collector.ErrUnknownSymbol) || errors.Is(err, analyzer.ErrNoPriceData) {
			return fmt.Sprintf("❌ Could not analyze %s. Please check the symbol.", args[0])
		}
		return fmt.Sprintf("❌ Error: %v", err)
	}
	return FormatStockAnalysis(res)
}

// Analyze runs the watchlist and returns the summary followed by one card
// per top buy signal.
func (c *Commands) Analyze(ctx context.Context) []string {
	res, err := c.analysis.AnalyzeWatchlist(ctx)
	if err != nil {
		return []string{fmt.Sprintf("❌ Analysis failed: %v", err)}
	}
	msgs := []string{FormatSummary(res, c.now())}
	for _, a := range service.TopSignals(res.Results, TopCount) {
		msgs = append(msgs, FormatStockAnalysis(a))
	}
	return msgs
}

// Top runs the watchlist and lists the strongest buy signals.
func (c *Commands) Top(ctx context.Context) string {
	res, err := c.analysis.AnalyzeWatchlist(ctx)
	if err != nil {
		return fmt.Sprintf("❌ Analysis failed: %v", err)
	}
	return FormatTopSignals(service.TopSignals(res.Results, TopCount))
}

func (c *Commands) Portfolio(ctx context.Context) string {
	perf, err := c.portfolio.Performance(ctx)
	if err != nil {
		return fmt.Sprintf("❌ Error: %v", err)
	}
	return FormatPortfolio(perf)
}

func (c *Commands) Watchlist(ctx context.Context) string {
	items, err := c.watchlist.List(ctx)
	if err != nil {
		return fmt.Sprintf("❌ Error: %v", err)
	}
	return FormatWatchlist(items)
}

// Register wires the commands into the bot. Every handler runs under ctx
// with a per-command timeout.
func (t *TelegramNotifier) Register(ctx context.Context, cmds *Commands, timeout time.Duration) {
	scoped := func(fn func(context.Context, tele.Context) error) tele.HandlerFunc {
		return func(tc tele.Context) error {
			cctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			t.logger.Info("telegram command", zap.String("text", tc.Text()))
			return fn(cctx, tc)
		}
	}

	t.bot.Handle("/start", func(tc tele.Context) error { return tc.Send(welcomeText) })
	t.bot.Handle("/help", func(tc tele.Context) error { return tc.Send(helpText) })
	t.bot.Handle("/stock", scoped(func(ctx context.Context, tc tele.Context) error {
		if args := tc.Args(); len(args) > 0 {
			if err := tc.Send(fmt.Sprintf("🔍 Analyzing %s...", args[0])); err != nil {
				return err
			}
		}
		return tc.Send(cmds.Stock(ctx, tc.Args()))
	}))
	t.bot.Handle("/analyze", scoped(func(ctx context.Context, tc tele.Context) error {
		if err := tc.Send("🤖 Starting analysis... This may take a minute."); err != nil {
			return err
		}
		for _, msg := range cmds.Analyze(ctx) {
			if err := tc.Send(msg); err != nil {
				return err
			}
		}
		return nil
	}))
	t.bot.Handle("/top", scoped(func(ctx context.Context, tc tele.Context) error {
		if err := tc.Send("🔍 Finding top signals..."); err != nil {
			return err
		}
		return tc.Send(cmds.Top(ctx))
	}))
	t.bot.Handle("/portfolio", scoped(func(ctx context.Context, tc tele.Context) error {
		return tc.Send(cmds.Portfolio(ctx))
	}))
	t.bot.Handle("/watchlist", scoped(func(ctx context.Context, tc tele.Context) error {
		return tc.Send(cmds.Watchlist(ctx))
	}))
	t.bot.Handle(tele.OnText, func(tc tele.Context) error { return tc.Send(unknownText) })
}
