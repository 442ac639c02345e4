package gateway

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireProgrammaticCaller rejects plain browser navigation to the JSON
// endpoints. Callers must identify themselves with the XHR header.
func RequireProgrammaticCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestedWith := c.GetHeader("X-Requested-With")
		if !strings.EqualFold(requestedWith, "XMLHttpRequest") {
			c.JSON(http.StatusForbidden, gin.H{"error": "Direct access not allowed"})
			c.Abort()
			return
		}
		c.Next()
	}
}
