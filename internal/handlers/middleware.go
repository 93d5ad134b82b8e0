package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by authMiddleware.
const (
	ctxUserID   = "userId"
	ctxUsername = "username"
	ctxIsAdmin  = "isAdmin"
)

func (h *Handler) authMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	claims, err := h.services.ParseToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	// store in Gin context
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUsername, claims.Username)
	c.Set(ctxIsAdmin, claims.IsAdmin)
	c.Next()
}

// adminMiddleware requires authMiddleware to have run first.
func (h *Handler) adminMiddleware(c *gin.Context) {
	if !c.GetBool(ctxIsAdmin) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "admin privileges required",
		})
		return
	}
	c.Next()
}

// requester extracts the authenticated identity placed by authMiddleware.
func requester(c *gin.Context) (int, bool) {
	return c.GetInt(ctxUserID), c.GetBool(ctxIsAdmin)
}
