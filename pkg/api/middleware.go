package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Auth failure messages are a client contract (Korean UI strings).
const (
	msgAuthRequired = "인증이 필요합니다"
	msgAuthFailed   = "인증 실패"
)

// requireAuth gates a route group behind the shared token. The client may
// send the token bare or with a "Bearer " prefix.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: msgAuthRequired})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if token != s.token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: msgAuthFailed})
			return
		}
		c.Next()
	}
}
