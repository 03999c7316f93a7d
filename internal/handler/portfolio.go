package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetPortfolio refreshes prices before reporting performance. A failed
// refresh still returns the stored prices.
func (h *Handler) GetPortfolio(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-portfolio")
	defer span.End()

	if _, err := h.deps.Portfolio.UpdatePrices(ctx); err != nil {
		h.logger.Warn("portfolio price update failed", zap.Error(err))
	}
	perf, err := h.deps.Portfolio.Performance(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "portfolio": perf})
}

func (h *Handler) AddPortfolio(c *gin.Context) {
	req, ok := bindSymbol(c)
	if !ok {
		return
	}
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.add-portfolio")
	defer span.End()

	a, err := h.deps.Portfolio.Add(ctx, req.Symbol)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"symbol":     a.Symbol,
		"price":      a.CurrentPrice,
		"signal":     a.Signal,
		"confidence": a.Confidence,
	})
}

func (h *Handler) RemovePortfolio(c *gin.Context) {
	req, ok := bindSymbol(c)
	if !ok {
		return
	}
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.remove-portfolio")
	defer span.End()

	if err := h.deps.Portfolio.Remove(ctx, req.Symbol); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "symbol": req.Symbol})
}

func (h *Handler) ClearPortfolio(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.clear-portfolio")
	defer span.End()

	n, err := h.deps.Portfolio.Clear(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "removed": n})
}

func (h *Handler) UpdatePortfolio(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.update-portfolio")
	defer span.End()

	n, err := h.deps.Portfolio.UpdatePrices(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": n})
}
