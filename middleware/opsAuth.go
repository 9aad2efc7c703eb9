package middleware

import (
	"net/http"
	"strings"

	"hestia/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthOpsMiddleware protects the internal ops endpoints.
func JWTAuthOpsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		subject, err := utils.ExtractIDFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized ops access"})
			return
		}

		c.Set("opsSubject", subject)
		c.Next()
	}
}
