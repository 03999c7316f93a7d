package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListWatchlist(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-watchlist")
	defer span.End()

	items, err := h.deps.Watchlist.List(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "watchlist": items})
}

func (h *Handler) AddWatchlist(c *gin.Context) {
	req, ok := bindSymbol(c)
	if !ok {
		return
	}
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.add-watchlist")
	defer span.End()

	item, err := h.deps.Watchlist.Add(ctx, req.Symbol, req.CompanyName)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

func (h *Handler) RemoveWatchlist(c *gin.Context) {
	req, ok := bindSymbol(c)
	if !ok {
		return
	}
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.remove-watchlist")
	defer span.End()

	if err := h.deps.Watchlist.Remove(ctx, req.Symbol); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "symbol": req.Symbol})
}

// ToggleWatchlist sets is_active, defaulting to true when omitted.
func (h *Handler) ToggleWatchlist(c *gin.Context) {
	req, ok := bindSymbol(c)
	if !ok {
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.toggle-watchlist")
	defer span.End()

	if err := h.deps.Watchlist.SetActive(ctx, req.Symbol, active); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "symbol": req.Symbol, "is_active": active})
}
