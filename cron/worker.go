package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"hestia/config"
	"hestia/models"
	"hestia/services/whatsapp"
	"hestia/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

const TypeInternalNotify = "notify:internal"

// InitNotifyWorker runs the async worker in background.
func InitNotifyWorker(sender whatsapp.Sender) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisNotifyQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeInternalNotify, handleNotifyTask(sender))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[NotifyWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[NotifyWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[NotifyWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleNotifyTask(sender whatsapp.Sender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.NotifyPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[NotifyHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		log.Printf("[NotifyHandler] 📣 Dispatching %s for guest %s", p.Event, p.WaID)

		title, body := formatAlert(p)

		var firstErr error
		if utils.FCMClient != nil && config.AppConfig.StaffFCMTopic != "" {
			msg := &messaging.Message{
				Topic: config.AppConfig.StaffFCMTopic,
				Notification: &messaging.Notification{
					Title: title,
					Body:  body,
				},
				Data: map[string]string{
					"event":      p.Event,
					"waId":       p.WaID,
					"ticketCode": p.TicketCode,
				},
			}
			if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
				log.Printf("[NotifyHandler] ❌ FCM push failed: %v", err)
				firstErr = err
			}
		}

		if sender != nil && config.AppConfig.OpsWhatsAppNumber != "" {
			text := title + "\n" + body
			if err := sender.SendText(ctx, config.AppConfig.OpsWhatsAppNumber, text); err != nil {
				log.Printf("[NotifyHandler] ❌ Ops WhatsApp message failed: %v", err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}

		return firstErr
	}
}

// formatAlert builds the staff-facing title and body for an event.
func formatAlert(p models.NotifyPayload) (string, string) {
	who := p.GuestName
	if who == "" {
		who = p.GuestPhone
	}
	where := p.Room
	if where == "" {
		where = "sin habitación"
	}

	switch p.Event {
	case "handoff_requested":
		return "Huésped pide hablar con una persona",
			fmt.Sprintf("%s (hab. %s): %s", who, where, p.Detail)
	case "handoff_message":
		return "Mensaje de huésped en espera de atención",
			fmt.Sprintf("%s (hab. %s): %s", who, where, p.Detail)
	case "ticket_created":
		return fmt.Sprintf("Nuevo ticket %s", p.TicketCode),
			fmt.Sprintf("%s · hab. %s · %s", p.Area, where, p.Detail)
	case "ticket_creation_failed":
		return "Falla al crear ticket",
			fmt.Sprintf("%s (hab. %s) · %s · %s", who, where, p.Area, p.Detail)
	default:
		return "Evento de conversación: " + p.Event,
			fmt.Sprintf("%s (hab. %s)", who, where)
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisNotifyQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[NotifyWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
