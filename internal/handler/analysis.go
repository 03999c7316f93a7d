package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// AnalyzeAll runs the watchlist batch.
func (h *Handler) AnalyzeAll(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.analyze-all")
	defer span.End()

	res, err := h.deps.Analysis.AnalyzeWatchlist(ctx)
	if err != nil {
		span.RecordError(err)
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"run_id":    res.RunID,
		"total":     len(res.Results) + len(res.Failed),
		"analyzed":  len(res.Results),
		"failed":    res.Failed,
		"results":   res.Results,
		"timestamp": h.now().UTC(),
	})
}

// AnalyzeSymbol analyzes one symbol.
func (h *Handler) AnalyzeSymbol(c *gin.Context) {
	symbol := c.Param("symbol")
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.analyze-symbol")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	a, err := h.deps.Analysis.AnalyzeSymbol(ctx, symbol)
	if err != nil {
		span.RecordError(err)
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "analysis": a})
}
