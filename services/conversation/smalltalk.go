// File: services/conversation/smalltalk.go
package conversation

import (
	"strings"

	"hestia/models"
)

// handleSmalltalk acknowledges chatter. On a brand-new conversation the
// smalltalk reply is suppressed entirely: the guest gets the greeting and
// nothing else, so we never send two messages back-to-back on first contact.
func (s *DefaultConversationService) handleSmalltalk(t *turn) {
	sess := t.sess

	if t.fresh {
		sess.State = models.StateInit
		t.reply(greetingText)
		return
	}

	lower := fold(t.text)
	switch {
	case strings.Contains(lower, "gracias"):
		t.reply(smalltalkThanksText)
	case strings.Contains(lower, "todo bien"):
		t.reply(smalltalkAllGoodText)
	default:
		t.reply(smalltalkGenericText)
	}

	if sess.State == models.StateInit || sess.State == models.StateFAQ {
		sess.State = models.StateNew
	}
}

// handleHandoff escalates to a human. The staff notification is best-effort
// and never blocks the guest-facing acknowledgement.
func (s *DefaultConversationService) handleHandoff(t *turn) {
	t.sess.State = models.StateHandoff
	s.notify(t, "handoff_requested", models.NotifyPayload{Detail: t.text})
	t.reply(handoffText)
}
