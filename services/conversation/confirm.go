// File: services/conversation/confirm.go
package conversation

import (
	"hestia/models"

	"go.uber.org/zap"
)

// handleConfirmation settles a yes/no while the session is awaiting one.
func (s *DefaultConversationService) handleConfirmation(t *turn, yes bool) {
	sess := t.sess

	if !yes {
		// Restart identity collection instead of looping the confirmation;
		// the draft's area and priority survive, the identity does not. The
		// draft copy must go too, otherwise the re-supplied name/room would
		// lose to the stale values at the additive merge in handleIdentify.
		sess.TempGuestName = ""
		sess.TempRoom = ""
		if sess.TicketDraft != nil {
			sess.TicketDraft.GuestName = ""
			sess.TicketDraft.Room = ""
		}
		sess.State = models.StateIdentify
		t.reply(askIdentityText)
		return
	}

	// Promote the scratch identity into the session before building the
	// payload; this is the only point where temp fields become permanent.
	if sess.TempGuestName != "" {
		sess.GuestName = sess.TempGuestName
	}
	if sess.TempRoom != "" {
		sess.Room = sess.TempRoom
	}
	sess.TempGuestName = ""
	sess.TempRoom = ""

	draft := sess.TicketDraft
	if draft == nil {
		draft = &models.TicketDraft{}
	}

	area := draft.Area
	if area == "" {
		area = models.AreaMantencion
	}
	room := firstNonEmpty(draft.Room, sess.Room)
	name := firstNonEmpty(draft.GuestName, sess.GuestName)
	if sess.Room == "" {
		sess.Room = room
	}

	input := models.TicketInput{
		OrgID:             s.OrgID,
		HotelID:           s.HotelID,
		Area:              area,
		Priority:          defaultPriority(draft.Priority),
		Detail:            draft.Detail,
		CanalOrigen:       canalWhatsApp,
		Ubicacion:         room,
		GuestPhone:        sess.Phone,
		GuestName:         name,
		RoutingSource:     draft.RoutingSource,
		RoutingReason:     draft.RoutingReason,
		RoutingConfidence: draft.RoutingConfidence,
		RoutingVersion:    draft.RoutingVersion,
	}

	ticket, err := s.Tickets.CreateTicket(t.ctx, input)
	if err != nil || ticket == nil {
		// Non-fatal to the conversation: apologize, make sure staff know.
		s.logger().Error("ticket creation failed",
			zap.String("waId", sess.WaID),
			zap.String("area", string(area)),
			zap.Error(err))
		t.reply(ticketFailureText)
		s.notify(t, "ticket_creation_failed", models.NotifyPayload{
			GuestName: name,
			Room:      room,
			Area:      string(area),
			Detail:    draft.Detail,
		})
	} else {
		// The guest-facing reply names the department and room, never the
		// ticket id.
		t.reply(ticketSuccessText(area, room))
		s.notify(t, "ticket_created", models.NotifyPayload{
			GuestName:  name,
			Room:       room,
			Area:       string(area),
			Detail:     draft.Detail,
			TicketCode: ticket.Codigo,
		})
	}

	// The draft never survives a terminal confirmation, success or not. The
	// session entry itself stays so follow-up chat continues.
	sess.ClearDraft()
	sess.State = models.StateNew
}
