package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireCronSecret rejects requests whose Authorization header is not exactly
// "Bearer <secret>". An empty secret leaves the routes open.
func RequireCronSecret(secret string) gin.HandlerFunc {
	expected := []byte("Bearer " + secret)

	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		got := []byte(c.GetHeader("Authorization"))
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			slog.WarnContext(c.Request.Context(), "rejected unauthorized trigger request",
				slog.String("path", c.Request.URL.Path),
				slog.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Next()
	}
}
