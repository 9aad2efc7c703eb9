// File: hestia/handlers/webhook.go
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"hestia/config"
	"hestia/models"
	"hestia/services/conversation"
	"hestia/services/whatsapp"
	"hestia/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VerifyWebhookHandler answers Meta's webhook subscription handshake.
func VerifyWebhookHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		mode := c.Query("hub.mode")
		token := c.Query("hub.verify_token")
		challenge := c.Query("hub.challenge")

		if mode == "subscribe" && token == config.AppConfig.WhatsAppVerifyToken {
			c.String(http.StatusOK, challenge)
			return
		}
		c.String(http.StatusForbidden, "verification failed")
	}
}

// ReceiveWebhookHandler ingests inbound WhatsApp messages, runs each through
// the conversation service, and sends the replies. It always answers 200:
// Meta retries non-2xx deliveries and a replayed webhook would re-run the
// whole conversation turn.
func ReceiveWebhookHandler(svc conversation.Service, sender whatsapp.Sender, media *whatsapp.Client, stt whatsapp.Transcriber) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := utils.GetLogger()

		var envelope models.WebhookEnvelope
		if err := c.ShouldBindJSON(&envelope); err != nil {
			logger.Warn("Unparseable webhook payload", zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}

		for _, entry := range envelope.Entry {
			for _, change := range entry.Changes {
				if change.Field != "messages" {
					continue
				}
				names := contactNames(change.Value.Contacts)
				for _, msg := range change.Value.Messages {
					in := toInbound(c, msg, names, media, stt, logger)
					handleInbound(c, svc, sender, in, logger)
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "received"})
	}
}

func handleInbound(c *gin.Context, svc conversation.Service, sender whatsapp.Sender, in models.InboundMessage, logger *zap.Logger) {
	replies, err := svc.HandleMessage(c.Request.Context(), in)
	if err != nil {
		logger.Error("Conversation turn failed",
			zap.String("waId", in.WaID), zap.Error(err))
		return
	}
	for _, reply := range replies {
		if err := sender.SendText(c.Request.Context(), reply.To, reply.Text); err != nil {
			logger.Error("Failed to send reply",
				zap.String("to", reply.To), zap.Error(err))
		}
	}
}

// toInbound converts a raw webhook message into the gateway's inbound shape.
// Voice notes are transcribed; a transcription failure degrades to an empty
// text so the guest still gets the standard re-prompt.
func toInbound(c *gin.Context, msg models.WebhookMessage, names map[string]string, media *whatsapp.Client, stt whatsapp.Transcriber, logger *zap.Logger) models.InboundMessage {
	in := models.InboundMessage{
		WaID:      msg.From,
		Phone:     msg.From,
		Name:      names[msg.From],
		Type:      msg.Type,
		Timestamp: parseTimestamp(msg.Timestamp),
	}

	switch msg.Type {
	case "text":
		if msg.Text != nil {
			in.Text = msg.Text.Body
		}
	case "audio":
		if msg.Audio == nil {
			break
		}
		in.MediaID = msg.Audio.ID
		if media == nil || stt == nil {
			break
		}
		text, err := transcribeVoiceNote(c, msg.Audio.ID, media, stt)
		if err != nil {
			logger.Warn("Voice note transcription failed",
				zap.String("mediaId", msg.Audio.ID), zap.Error(err))
			break
		}
		in.Text = text
	}
	return in
}

func transcribeVoiceNote(c *gin.Context, mediaID string, media *whatsapp.Client, stt whatsapp.Transcriber) (string, error) {
	ctx := c.Request.Context()
	url, err := media.GetMediaURL(ctx, mediaID)
	if err != nil {
		return "", err
	}
	audio, err := media.DownloadMedia(ctx, url)
	if err != nil {
		return "", err
	}
	return stt.Transcribe(ctx, audio)
}

func contactNames(contacts []models.WebhookContact) map[string]string {
	names := make(map[string]string, len(contacts))
	for _, contact := range contacts {
		names[contact.WaID] = contact.Profile.Name
	}
	return names
}

func parseTimestamp(raw string) time.Time {
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Now()
	}
	return time.Unix(secs, 0)
}
