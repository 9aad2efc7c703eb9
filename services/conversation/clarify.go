// File: services/conversation/clarify.go
package conversation

import (
	"fmt"

	"hestia/models"
)

// handleAreaClarification resolves the 4-option department menu. An
// unrecognized reply re-prompts with the same menu; that is a normal
// outcome, never a failed turn.
func (s *DefaultConversationService) handleAreaClarification(t *turn) {
	sess := t.sess

	choice, ok := matchAreaChoice(t.text)
	if !ok {
		t.reply(areaMenuText)
		return
	}

	detail := sess.PendingDetail
	priority := models.PriorityMedia

	// Multi-request batch: the request matching the chosen area becomes the
	// active one, the rest are deferred, not lost. A choice matching none of
	// them defers the whole batch and keeps the original message text as the
	// detail, so another department's description never lands on this draft.
	if len(sess.PendingRequests) > 0 {
		idx := -1
		for i, r := range sess.PendingRequests {
			if r.Area == choice {
				idx = i
				break
			}
		}
		if idx >= 0 {
			picked := sess.PendingRequests[idx]
			var rest []models.PendingRequest
			rest = append(rest, sess.PendingRequests[:idx]...)
			rest = append(rest, sess.PendingRequests[idx+1:]...)
			sess.RemainingRequests = rest

			if picked.Detail != "" {
				detail = picked.Detail
			}
			priority = defaultPriority(picked.Priority)
		} else {
			sess.RemainingRequests = sess.PendingRequests
		}
		sess.PendingRequests = nil
	}

	// The guest's explicit choice is authoritative.
	sess.TicketDraft = &models.TicketDraft{
		Area:              choice,
		Priority:          priority,
		Room:              sess.PendingRoom,
		GuestName:         sess.PendingName,
		Detail:            detail,
		RoutingSource:     "clarification",
		RoutingConfidence: 1.0,
		RoutingReason:     fmt.Sprintf("guest selected %s from the area menu", areaLabel(choice)),
		RoutingVersion:    routingVersion,
	}
	sess.PendingDetail = ""
	sess.PendingRoom = ""
	sess.PendingName = ""

	// Vagueness gate: a generic report gets an area-specific follow-up
	// before we start collecting identity.
	if isVagueDetail(sess.TicketDraft.Detail) {
		sess.State = models.StateDetailClarification
		t.reply(detailQuestion(choice))
		return
	}

	s.proceedAfterDetail(t)
}

// handleDetailClarification stores the concrete description the guest was
// asked for. Another vague answer re-asks the same question.
func (s *DefaultConversationService) handleDetailClarification(t *turn) {
	sess := t.sess

	draft := sess.TicketDraft
	if draft == nil {
		// No draft to complete; recover into the capability summary.
		sess.State = models.StateInit
		t.reply(fallbackCapabilitiesText)
		return
	}
	if isVagueDetail(t.text) {
		t.reply(detailQuestion(draft.Area))
		return
	}

	draft.Detail = t.text
	s.proceedAfterDetail(t)
}

// proceedAfterDetail moves a draft with a concrete detail onward: straight
// to confirmation when identity is known, otherwise into IDENTIFY.
func (s *DefaultConversationService) proceedAfterDetail(t *turn) {
	sess := t.sess
	draft := sess.TicketDraft

	name := firstNonEmpty(draft.GuestName, sess.GuestName, sess.TempGuestName)
	room := firstNonEmpty(draft.Room, sess.Room, sess.TempRoom)

	if name == "" || room == "" {
		if name != "" {
			sess.TempGuestName = name
		}
		if room != "" {
			sess.TempRoom = room
		}
		sess.State = models.StateIdentify
		t.reply(askIdentityText)
		return
	}

	draft.GuestName = name
	draft.Room = room
	sess.State = models.StateTicketConfirm
	t.reply(confirmationText(draft, name, room))
}
