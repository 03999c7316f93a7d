package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"StockScope/internal/news"
	"StockScope/internal/watchlist"
)

const debugArticles = 3

// GetAdvanced returns news sentiment and earnings for one symbol.
func (h *Handler) GetAdvanced(c *gin.Context) {
	symbol := watchlist.Normalize(c.Param("symbol"))
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-advanced")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	c.JSON(http.StatusOK, gin.H{"success": true, "advanced": h.deps.Advanced.Advanced(ctx, symbol)})
}

// GetSectors serves the latest stored snapshot, refreshing when none exists
// or when refresh=true.
func (h *Handler) GetSectors(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-sectors")
	defer span.End()

	date, sectors, err := h.deps.Sectors.Latest(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(sectors) == 0 || c.Query("refresh") == "true" {
		sectors, err = h.deps.Sectors.Refresh(ctx)
		if err != nil {
			span.RecordError(err)
			h.fail(c, err)
			return
		}
		date = h.now().UTC().Format("2006-01-02")
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "date": date, "sectors": sectors})
}

// DebugNews shows what the news sources return for a symbol and how each
// headline scores.
func (h *Handler) DebugNews(c *gin.Context) {
	symbol := watchlist.Normalize(c.Param("symbol"))
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.debug-news")
	defer span.End()

	articles := h.deps.News.Articles(ctx, symbol)
	samples := make([]gin.H, 0, debugArticles)
	for i, a := range articles {
		if i == debugArticles {
			break
		}
		title := a.Title
		if len(title) > 100 {
			title = title[:100]
		}
		text := a.Title + " " + a.Description
		score := news.Score(text)
		samples = append(samples, gin.H{
			"title":       title,
			"source":      a.Source,
			"score":       score.Score,
			"label":       score.Label,
			"text_length": len(text),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"symbol":         symbol,
		"articles_found": len(articles),
		"sample":         samples,
	})
}
