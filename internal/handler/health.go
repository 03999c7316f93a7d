package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports 200 while the store answers and 503 once it does not.
func (h *Handler) Health(c *gin.Context) {
	if h.deps.Store != nil {
		if err := h.deps.Store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
