// File: services/conversation/identity.go
package conversation

import (
	"regexp"
	"strings"

	"hestia/models"
)

// Extraction is two-tier on purpose: the classifier's structured fields are
// trusted first, and these regexes are a local reliability hedge for when
// the model misses what a human would not.
var (
	roomIndicator = regexp.MustCompile(`(?i)\b(habitaci[óo]n|hab\.?|room|pieza|cuarto)\b`)
	namePhrase    = regexp.MustCompile(`(?i)\b(?:mi nombre es|me llamo|soy)\s+([\p{L}][\p{L} .'-]{1,60})`)
	// Two or three consecutive capitalized words, the usual shape of a name
	// typed without any introduction.
	capitalizedName = regexp.MustCompile(`\b(\p{Lu}\p{Ll}+(?:\s+\p{Lu}\p{Ll}+){1,2})\b`)
	roomPhrase      = regexp.MustCompile(`(?i)(?:habitaci[óo]n|hab\.?|room|pieza|cuarto)\s*#?\s*(\d{2,4})\b`)
	bareRoom        = regexp.MustCompile(`\b(\d{2,4})\b`)
)

func extractName(text string) string {
	if m := namePhrase.FindStringSubmatch(text); m != nil {
		name := m[1]
		if idx := strings.IndexAny(name, ",;"); idx >= 0 {
			name = name[:idx]
		}
		// "soy Juan de la habitación 12" — stop at the room indicator.
		if loc := roomIndicator.FindStringIndex(name); loc != nil {
			name = name[:loc[0]]
		}
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	for _, candidate := range capitalizedName.FindAllString(text, -1) {
		if !roomIndicator.MatchString(candidate) {
			return candidate
		}
	}
	return ""
}

func extractRoom(text string) string {
	if m := roomPhrase.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := bareRoom.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// hasGuestIdentity reports whether a name AND a room are already available
// from the session or the current classification.
func hasGuestIdentity(sess *models.GuestSession, nlu *models.NLUResult) bool {
	name := firstNonEmpty(sess.GuestName, sess.TempGuestName, nlu.Name)
	room := firstNonEmpty(sess.Room, sess.TempRoom, nlu.Room)
	return name != "" && room != ""
}

// requestGuestIdentity parks the classified request as a draft and asks for
// name and room in one message.
func (s *DefaultConversationService) requestGuestIdentity(t *turn, nlu *models.NLUResult, detail string) {
	t.sess.TicketDraft = &models.TicketDraft{
		Area:              nlu.Area,
		Priority:          defaultPriority(nlu.Priority),
		Room:              nlu.Room,
		Detail:            detail,
		GuestName:         nlu.Name,
		RoutingSource:     "nlu",
		RoutingReason:     nlu.RoutingReason,
		RoutingConfidence: nlu.RoutingConfidence,
		RoutingVersion:    routingVersion,
	}
	if nlu.Name != "" {
		t.sess.TempGuestName = nlu.Name
	}
	if nlu.Room != "" {
		t.sess.TempRoom = nlu.Room
	}
	t.sess.State = models.StateIdentify
	t.reply(askIdentityText)
}

// handleIdentify merges whatever identity this message carries into the
// scratch buffer. The merge is additive: a message supplying only a room
// never erases a previously provided name. Returns false when nothing was
// extracted and the guest is clearly asking for something else, letting the
// general routing take over.
func (s *DefaultConversationService) handleIdentify(t *turn, nlu *models.NLUResult) bool {
	sess := t.sess

	name := nlu.Name
	room := nlu.Room
	if name == "" {
		name = extractName(t.text)
	}
	if room == "" {
		room = extractRoom(t.text)
	}

	if name == "" && room == "" {
		switch {
		case nlu.Intent == models.IntentHandoffRequest || nlu.WantsHandoff,
			nlu.Intent == models.IntentHelp || nlu.IsHelp,
			nlu.Intent == models.IntentCancel || nlu.IsCancel:
			return false
		}
	}

	if name != "" {
		sess.TempGuestName = name
	}
	if room != "" {
		sess.TempRoom = room
	}

	if sess.TempGuestName != "" && sess.TempRoom != "" {
		draft := sess.TicketDraft
		if draft == nil {
			draft = &models.TicketDraft{Priority: models.PriorityMedia}
			sess.TicketDraft = draft
		}
		if draft.GuestName == "" {
			draft.GuestName = sess.TempGuestName
		}
		if draft.Room == "" {
			draft.Room = sess.TempRoom
		}
		sess.State = models.StateTicketConfirm
		t.reply(confirmationText(draft, draft.GuestName, draft.Room))
		return true
	}

	switch {
	case sess.TempGuestName == "" && sess.TempRoom == "":
		t.reply(askIdentityAgainText)
	case sess.TempGuestName == "":
		t.reply(askNameText)
	default:
		t.reply(askRoomText)
	}
	return true
}

// handleTicketRequest routes a classified service request. The confidence
// gate runs first: the gateway never silently guesses a low-confidence
// department, it asks.
func (s *DefaultConversationService) handleTicketRequest(t *turn, nlu *models.NLUResult) {
	sess := t.sess

	detail := nlu.Detail
	if detail == "" {
		detail = t.text
	}

	if nlu.Area == "" || nlu.RoutingConfidence < areaConfidenceThreshold {
		sess.PendingDetail = detail
		if nlu.Room != "" {
			sess.PendingRoom = nlu.Room
		}
		if nlu.Name != "" {
			sess.PendingName = nlu.Name
		}
		if len(nlu.Requests) > 1 {
			sess.PendingRequests = nlu.Requests
		}
		sess.State = models.StateAreaClarification
		t.reply(areaMenuText)
		return
	}

	if !hasGuestIdentity(sess, nlu) {
		s.requestGuestIdentity(t, nlu, detail)
		return
	}

	s.createCombinedConfirmationDirect(t, nlu, detail)
}

// createCombinedConfirmationDirect skips IDENTIFY entirely: identity and a
// confidently routed area are already known, so the draft goes straight to
// confirmation.
func (s *DefaultConversationService) createCombinedConfirmationDirect(t *turn, nlu *models.NLUResult, detail string) {
	sess := t.sess
	name := firstNonEmpty(sess.GuestName, sess.TempGuestName, nlu.Name)
	room := firstNonEmpty(sess.Room, sess.TempRoom, nlu.Room)

	draft := &models.TicketDraft{
		Area:              nlu.Area,
		Priority:          defaultPriority(nlu.Priority),
		Room:              room,
		Detail:            detail,
		GuestName:         name,
		RoutingSource:     "nlu",
		RoutingReason:     nlu.RoutingReason,
		RoutingConfidence: nlu.RoutingConfidence,
		RoutingVersion:    routingVersion,
	}
	sess.TicketDraft = draft
	sess.State = models.StateTicketConfirm
	t.reply(confirmationText(draft, name, room))
}
