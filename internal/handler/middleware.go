package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIKeyAuth guards a route group with the X-API-Key header. A missing key
// is 401 and a wrong one 403. An empty configured key leaves the group open.
func APIKeyAuth(key string) gin.HandlerFunc {
	if key == "" {
		return func(c *gin.Context) { c.Next() }
	}
	want := []byte(key)
	return func(c *gin.Context) {
		got := strings.TrimSpace(c.GetHeader("X-API-Key"))
		switch {
		case got == "":
			abortJSON(c, http.StatusUnauthorized, "X-API-Key header required")
		case subtle.ConstantTimeCompare([]byte(got), want) != 1:
			abortJSON(c, http.StatusForbidden, "API key rejected")
		default:
			c.Next()
		}
	}
}
