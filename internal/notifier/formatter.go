package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockScope/internal/analyzer"
	"StockScope/internal/forecast"
	"StockScope/internal/model"
	"StockScope/internal/service"
)

var signalEmoji = map[model.SignalLabel]string{
	model.StrongBuy:  "🚀",
	model.Buy:        "📈",
	model.Hold:       "⏸️",
	model.Sell:       "📉",
	model.StrongSell: "💥",
}

var horizonTitles = map[string]string{
	"1_week":   "1 Week",
	"1_month":  "1 Month",
	"3_months": "3 Months",
}

func emoji(label model.SignalLabel) string {
	if e, ok := signalEmoji[label]; ok {
		return e
	}
	return "❓"
}

// FormatStockAnalysis renders one analysis as a Telegram card.
func FormatStockAnalysis(a *model.StockAnalysis) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("<b>%s %s Analysis</b>\n\n", emoji(a.Signal), html.EscapeString(a.Symbol)))
	b.WriteString(fmt.Sprintf("💰 <b>Current Price:</b> $%.2f\n", a.CurrentPrice))
	b.WriteString(fmt.Sprintf("📊 <b>Signal:</b> %s (%.1f%% confidence)\n", a.Signal, a.Confidence))
	b.WriteString(fmt.Sprintf("📈 <b>RSI:</b> %.1f\n", a.RSI))
	if len(a.TechnicalDetails.Reasons) > 0 {
		b.WriteString(fmt.Sprintf("📝 %s\n", html.EscapeString(strings.Join(a.TechnicalDetails.Reasons, ", "))))
	}

	if len(a.ProbabilityRanges) > 0 {
		b.WriteString("\n<b>📅 Price Predictions:</b>\n")
		for _, h := range forecast.Horizons {
			band, ok := a.ProbabilityRanges[h.Name]
			if !ok {
				continue
			}
			b.WriteString(fmt.Sprintf("<b>%s:</b> $%.2f\n", horizonTitles[h.Name], band.ExpectedPrice))
			b.WriteString(fmt.Sprintf("  68%% range: $%.2f - $%.2f\n", band.Range68.Low, band.Range68.High))
		}
	}

	risk := a.RiskMetrics
	b.WriteString("\n<b>⚖️ Risk Metrics:</b>\n")
	b.WriteString(fmt.Sprintf("Sharpe Ratio: %.2f\n", risk.SharpeRatio))
	b.WriteString(fmt.Sprintf("Annual Return: %.1f%%\n", risk.AnnualReturnPct))
	b.WriteString(fmt.Sprintf("Max Drawdown: %.1f%%\n", risk.MaxDrawdownPct))

	if rel := a.RelativePerformance; rel != nil {
		b.WriteString("\n<b>📊 vs S&amp;P 500:</b>\n")
		b.WriteString(fmt.Sprintf("Performance: %+.1f%%\n", rel.RelativePerformancePct))
		b.WriteString(fmt.Sprintf("Beta: %.2f\n", rel.Beta))
		b.WriteString(fmt.Sprintf("Alpha: %+.2f%%\n", rel.AlphaPct))
	}
	return b.String()
}

// FormatSummary counts a batch run per signal.
func FormatSummary(res *analyzer.BatchResult, at time.Time) string {
	counts := service.CountSignals(res.Results)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Market Analysis Summary</b> | %s\n", at.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Total stocks analyzed: %d\n\n", len(res.Results)))
	for _, label := range model.SignalLabels {
		b.WriteString(fmt.Sprintf("%s %s: %d\n", emoji(label), label, counts[label]))
	}
	if len(res.Failed) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ Failed: %s\n", strings.Join(res.Failed, ", ")))
	}
	return b.String()
}

// FormatTopSignals lists the strongest buy signals.
func FormatTopSignals(top []*model.StockAnalysis) string {
	if len(top) == 0 {
		return "📊 No buy signals found right now."
	}
	var b strings.Builder
	b.WriteString("🚀 <b>Top Buy Signals:</b>\n\n")
	for i, a := range top {
		b.WriteString(fmt.Sprintf("%d. <b>%s</b> - %s (%.1f%%)\n", i+1, a.Symbol, a.Signal, a.Confidence))
		b.WriteString(fmt.Sprintf("   Price: $%.2f\n\n", a.CurrentPrice))
	}
	return b.String()
}

// FormatPortfolio renders holdings with their gains.
func FormatPortfolio(perf *model.PortfolioPerformance) string {
	if len(perf.Stocks) == 0 {
		return "💼 Portfolio is empty. Add a stock from the dashboard."
	}
	var b strings.Builder
	b.WriteString("💼 <b>Portfolio</b>\n\n")
	for _, s := range perf.Stocks {
		b.WriteString(fmt.Sprintf("<b>%s</b> $%.2f → $%.2f (%+.2f%%)\n",
			s.Symbol, s.AddedPrice, s.CurrentPrice, s.GainPercent))
	}
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("Invested: $%.2f\n", perf.TotalInvested))
	b.WriteString(fmt.Sprintf("Current: $%.2f\n", perf.TotalCurrent))
	b.WriteString(fmt.Sprintf("Gain: %+.2f (%+.2f%%)\n", perf.TotalGain, perf.TotalGainPercent))
	return b.String()
}

// FormatWatchlist lists watched symbols, marking paused ones.
func FormatWatchlist(items []model.WatchlistItem) string {
	if len(items) == 0 {
		return "📋 Watchlist is empty."
	}
	var b strings.Builder
	active := 0
	for _, it := range items {
		if it.IsActive {
			active++
		}
	}
	b.WriteString(fmt.Sprintf("📋 <b>Watchlist</b> (%d active of %d)\n\n", active, len(items)))
	for _, it := range items {
		mark := "✅"
		if !it.IsActive {
			mark = "⏸️"
		}
		b.WriteString(fmt.Sprintf("%s <b>%s</b> %s", mark, it.Symbol, html.EscapeString(it.CompanyName)))
		if it.Sector != "" {
			b.WriteString(fmt.Sprintf(" · %s", html.EscapeString(it.Sector)))
		}
		b.WriteString("\n")
	}
	return b.String()
}
