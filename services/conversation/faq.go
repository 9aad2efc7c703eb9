// File: services/conversation/faq.go
package conversation

import (
	"hestia/models"

	"go.uber.org/zap"
)

// handleFAQFallback runs when the classifier produced not_understood or an
// explicit question. Absence of an answer is an expected outcome: the guest
// gets the capability summary, never an error.
func (s *DefaultConversationService) handleFAQFallback(t *turn) {
	sess := t.sess

	var answer string
	if s.FAQ != nil {
		var err error
		answer, err = s.FAQ.AnswerFAQ(t.ctx, t.text)
		if err != nil {
			s.logger().Warn("faq lookup failed", zap.String("waId", sess.WaID), zap.Error(err))
			answer = ""
		}
	}

	if answer != "" {
		sess.State = models.StateFAQ
		t.reply(answer + "\n\n" + faqAnythingElseText)
		return
	}

	sess.State = models.StateInit
	t.reply(fallbackCapabilitiesText)
}
