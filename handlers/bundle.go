// File: hestia/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Webhook endpoints
	VerifyWebhookHandler  gin.HandlerFunc
	ReceiveWebhookHandler gin.HandlerFunc

	// Ops endpoints
	ListSessionsHandler  gin.HandlerFunc
	ExpireSessionHandler gin.HandlerFunc
	ListTicketsHandler   gin.HandlerFunc
}
