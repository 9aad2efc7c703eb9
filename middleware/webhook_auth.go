package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"hestia/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VerifyWebhookSignature checks the X-Hub-Signature-256 header Meta attaches
// to webhook deliveries. Verification is skipped when no app secret is
// configured (local development).
func VerifyWebhookSignature() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := config.AppConfig.WhatsAppAppSecret
		if secret == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Unable to read request body"})
			return
		}
		// The handler still needs the body.
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		header := c.GetHeader("X-Hub-Signature-256")
		sig := strings.TrimPrefix(header, "sha256=")
		if sig == "" {
			zap.L().Warn("Webhook request missing signature", zap.String("ip", getClientIP(c)))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing signature"})
			return
		}

		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		expected := hex.EncodeToString(mac.Sum(nil))

		if !hmac.Equal([]byte(expected), []byte(sig)) {
			zap.L().Warn("Webhook signature mismatch", zap.String("ip", getClientIP(c)))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
			return
		}

		c.Next()
	}
}
