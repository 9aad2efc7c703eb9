// File: services/conversation/interface.go
package conversation

import (
	"context"
	"hash/fnv"
	"sync"

	"hestia/models"

	"go.uber.org/zap"
)

// Service is the conversation core: one call per inbound guest message,
// returning the replies to deliver. Every branch resolves to some reply and
// some next state; the no-reply cases are an empty message on an existing
// session and a guest already handed off to a human.
type Service interface {
	HandleMessage(ctx context.Context, in models.InboundMessage) ([]models.Reply, error)
}

// Classifier turns a raw message into a clamped NLUResult. Implementations
// must degrade to a not_understood result rather than fail the turn.
type Classifier interface {
	Classify(ctx context.Context, text string, sess *models.GuestSession, state models.ConversationState) (*models.NLUResult, error)
}

// FAQAnswerer answers hotel questions. An empty answer is a normal outcome,
// not an error.
type FAQAnswerer interface {
	AnswerFAQ(ctx context.Context, question string) (string, error)
}

// TicketCreator persists a confirmed draft.
type TicketCreator interface {
	CreateTicket(ctx context.Context, in models.TicketInput) (*models.Ticket, error)
}

// Notifier delivers best-effort internal staff notifications. It must never
// propagate a failure into the conversation path.
type Notifier interface {
	NotifyInternal(ctx context.Context, event string, payload models.NotifyPayload)
}

// DefaultConversationService is the production implementation.
type DefaultConversationService struct {
	Store    SessionStore
	NLU      Classifier
	FAQ      FAQAnswerer
	Tickets  TicketCreator
	Notifier Notifier
	Logger   *zap.Logger

	OrgID   string
	HotelID string

	locks keyedMutex
}

// keyedMutex serializes turns per guest id: concurrent webhook deliveries
// for the same wa_id would otherwise race on the session (lost updates).
// Different guests proceed in parallel.
type keyedMutex struct {
	mus [64]sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	h := fnv.New32a()
	h.Write([]byte(key))
	mu := &k.mus[h.Sum32()%uint32(len(k.mus))]
	mu.Lock()
	return mu.Unlock
}
