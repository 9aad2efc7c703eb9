// File: hestia/handlers/ops.go
package handlers

import (
	"net/http"
	"strconv"

	"hestia/services/conversation"
	"hestia/services/ticketing"
	"hestia/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListSessionsHandler returns the currently active guest sessions.
func ListSessionsHandler(browser conversation.SessionBrowser) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions, err := browser.ListActive(c.Request.Context())
		if err != nil {
			utils.GetLogger().Error("Failed to list sessions", zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "Failed to list sessions", err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(sessions), "sessions": sessions})
	}
}

// ExpireSessionHandler force-expires one guest session so the next message
// starts a fresh conversation.
func ExpireSessionHandler(browser conversation.SessionBrowser) gin.HandlerFunc {
	return func(c *gin.Context) {
		waID := c.Param("waId")
		if waID == "" {
			utils.JSONError(c, http.StatusBadRequest, "Missing waId", "")
			return
		}
		if err := browser.Expire(c.Request.Context(), waID); err != nil {
			utils.GetLogger().Error("Failed to expire session",
				zap.String("waId", waID), zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "Failed to expire session", err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "expired", "waId": waID})
	}
}

// ListTicketsHandler returns the newest tickets.
func ListTicketsHandler(svc ticketing.TicketingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := int64(50)
		if raw := c.Query("limit"); raw != "" {
			if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 && parsed <= 500 {
				limit = parsed
			}
		}
		tickets, err := svc.ListRecent(c.Request.Context(), limit)
		if err != nil {
			utils.GetLogger().Error("Failed to list tickets", zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "Failed to list tickets", err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(tickets), "tickets": tickets})
	}
}
