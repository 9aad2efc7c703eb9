// File: services/conversation/orchestrator.go
package conversation

import (
	"context"
	"strings"
	"time"

	"hestia/models"

	"go.uber.org/zap"
)

// areaConfidenceThreshold is the minimum routing confidence below which the
// gateway asks the guest which department they mean instead of guessing.
const areaConfidenceThreshold = 0.65

// routingVersion tags tickets with the classifier contract in effect when
// they were routed.
const routingVersion = "v1"

const canalWhatsApp = "whatsapp"

// turn collects the state of a single dispatch cycle.
type turn struct {
	ctx     context.Context
	in      models.InboundMessage
	sess    *models.GuestSession
	fresh   bool
	text    string
	replies []models.Reply
}

func (t *turn) reply(text string) {
	t.replies = append(t.replies, models.Reply{To: t.in.WaID, Text: text})
}

// HandleMessage runs exactly one response cycle for one inbound message.
// The per-message order is strict and first-match-wins: empty input, global
// cancel guard, confirmation fast-path, menu reset, handoff silence,
// clarification states, NLU classification, identity extraction, general
// intent routing, safety net.
func (s *DefaultConversationService) HandleMessage(ctx context.Context, in models.InboundMessage) ([]models.Reply, error) {
	unlock := s.locks.lock(in.WaID)
	defer unlock()

	logger := s.logger()
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now()
	}

	sess, err := s.Store.Load(ctx, in.WaID)
	if err != nil {
		// A broken store must not kill the turn; treat as a new conversation.
		logger.Warn("session load failed, starting fresh", zap.String("waId", in.WaID), zap.Error(err))
		sess = nil
	}
	fresh := sess == nil
	if fresh {
		sess = s.Store.New(in.WaID, in.Phone, in.Name, in.Timestamp)
	}
	if sess.Phone == "" {
		sess.Phone = in.Phone
	}
	if sess.DisplayName == "" && in.Name != "" {
		sess.DisplayName = in.Name
	}

	t := &turn{
		ctx:   ctx,
		in:    in,
		sess:  sess,
		fresh: fresh,
		text:  strings.TrimSpace(in.Text),
	}

	// 1. Empty text (e.g. failed voice-note transcription): greet a new
	// guest, stay silent otherwise. State does not advance.
	if t.text == "" {
		if fresh {
			t.reply(greetingText)
		}
		return s.finish(t)
	}

	// 2. Global cancel guard, checked before NLU so cancellation works even
	// when the classifier is down. Overrides everything, including an
	// in-progress confirmation.
	if matchesCancel(t.text) {
		sess.ClearDraft()
		sess.State = models.StateNew
		t.reply(cancelAckText)
		return s.finish(t)
	}

	// 2b. Awaiting yes/no: a matched token settles the confirmation cheaply
	// and deterministically. Anything else falls through and is treated as a
	// correction, not a confirmation.
	if sess.State == models.StateTicketConfirm {
		if yes, ok := matchYesNo(t.text); ok {
			s.handleConfirmation(t, yes)
			return s.finish(t)
		}
	}

	// 3. Literal menu/reset keywords.
	if matchesMenu(t.text) {
		sess.State = models.StateInit
		t.reply(menuText)
		return s.finish(t)
	}

	// Escalated to a human: stay silent toward the guest, keep staff in the
	// loop. The cancel and menu guards above still return the guest to bot
	// control.
	if sess.State == models.StateHandoff {
		s.notify(t, "handoff_message", models.NotifyPayload{Detail: t.text})
		return s.finish(t)
	}

	// Clarification states take the raw reply; a menu digit or department
	// keyword needs no classifier.
	if sess.State == models.StateAreaClarification {
		s.handleAreaClarification(t)
		return s.finish(t)
	}
	if sess.State == models.StateDetailClarification {
		s.handleDetailClarification(t)
		return s.finish(t)
	}

	// 4. Classify, informed by current state. A failing classifier degrades
	// to not_understood, never into an aborted turn.
	nlu, err := s.NLU.Classify(ctx, t.text, sess, sess.State)
	if err != nil || nlu == nil {
		logger.Warn("classification failed", zap.String("waId", in.WaID), zap.Error(err))
		nlu = models.NotUnderstood()
	}

	// 5. Collecting identity: extraction runs ahead of general routing.
	if sess.State == models.StateIdentify {
		if s.handleIdentify(t, nlu) {
			return s.finish(t)
		}
	}

	// 6. General intent routing, in priority order.
	switch {
	case nlu.Intent == models.IntentHelp || nlu.IsHelp:
		sess.State = models.StateInit
		t.reply(helpText)

	case nlu.Intent == models.IntentHandoffRequest || nlu.WantsHandoff:
		s.handleHandoff(t)

	case nlu.Intent == models.IntentCancel || nlu.IsCancel:
		sess.ClearDraft()
		sess.State = models.StateNew
		t.reply(cancelAckText)

	case nlu.Intent == models.IntentTicketRequest:
		s.handleTicketRequest(t, nlu)

	case nlu.Intent == models.IntentGeneralChat || nlu.IsSmalltalk:
		s.handleSmalltalk(t)

	case nlu.Intent == models.IntentFAQQuestion,
		nlu.Intent == models.IntentNotUnderstood,
		nlu.Intent == "":
		s.handleFAQFallback(t)

	default:
		// 7. Safety net for unmapped intent values: generic prompt, state
		// untouched.
		t.reply(safetyNetText)
	}

	return s.finish(t)
}

// finish stamps the turn timestamps and persists the session. Persistence
// failures are logged, not surfaced: the guest already has a reply.
func (s *DefaultConversationService) finish(t *turn) ([]models.Reply, error) {
	t.sess.LastMessageAt = t.in.Timestamp
	if err := s.Store.Save(t.ctx, t.in.WaID, t.sess); err != nil {
		s.logger().Error("session save failed", zap.String("waId", t.in.WaID), zap.Error(err))
	}
	return t.replies, nil
}

// notify fills in the guest identification fields and fires a best-effort
// internal notification.
func (s *DefaultConversationService) notify(t *turn, event string, payload models.NotifyPayload) {
	if s.Notifier == nil {
		return
	}
	payload.Event = event
	payload.WaID = t.sess.WaID
	if payload.GuestPhone == "" {
		payload.GuestPhone = t.sess.Phone
	}
	if payload.GuestName == "" {
		payload.GuestName = firstNonEmpty(t.sess.GuestName, t.sess.DisplayName)
	}
	if payload.Room == "" {
		payload.Room = t.sess.Room
	}
	s.Notifier.NotifyInternal(t.ctx, event, payload)
}

func (s *DefaultConversationService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func defaultPriority(p models.TicketPriority) models.TicketPriority {
	switch p {
	case models.PriorityBaja, models.PriorityMedia, models.PriorityAlta:
		return p
	}
	return models.PriorityMedia
}
