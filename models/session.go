package models

import "time"

// ConversationState identifies where a guest conversation currently is.
type ConversationState string

const (
	StateNew                 ConversationState = "NEW"
	StateInit                ConversationState = "INIT"
	StateIdentify            ConversationState = "IDENTIFY"
	StateAreaClarification   ConversationState = "AREA_CLARIFICATION"
	StateDetailClarification ConversationState = "DETAIL_CLARIFICATION"
	StateTicketConfirm       ConversationState = "TICKET_CONFIRM"
	StateFAQ                 ConversationState = "FAQ"
	StateHandoff             ConversationState = "HANDOFF"
)

// TicketDraft holds an unconfirmed service request. It exists only between
// intent resolution and ticket creation or cancellation.
type TicketDraft struct {
	Area              TicketArea     `json:"area,omitempty"`
	Priority          TicketPriority `json:"priority,omitempty"`
	Room              string         `json:"room,omitempty"`
	Detail            string         `json:"detail,omitempty"`
	GuestName         string         `json:"guestName,omitempty"`
	RoutingSource     string         `json:"routingSource,omitempty"`
	RoutingReason     string         `json:"routingReason,omitempty"`
	RoutingConfidence float64        `json:"routingConfidence,omitempty"`
	RoutingVersion    string         `json:"routingVersion,omitempty"`
}

// PendingRequest is one request of a multi-request message, parked while an
// earlier request of the batch is being clarified or confirmed.
type PendingRequest struct {
	Area     TicketArea     `json:"area,omitempty"`
	Priority TicketPriority `json:"priority,omitempty"`
	Detail   string         `json:"detail,omitempty"`
}

// GuestSession is the per-guest conversation state, keyed by WhatsApp id.
type GuestSession struct {
	WaID  string `json:"waId"`
	Phone string `json:"phone"`
	// DisplayName is the WhatsApp profile name. It never satisfies identity
	// collection; GuestName is set only by explicit confirmation.
	DisplayName string `json:"displayName,omitempty"`
	GuestName   string `json:"guestName,omitempty"`
	// Room persists across turns once the guest has told us where they are.
	Room string `json:"room,omitempty"`

	State       ConversationState `json:"state"`
	TicketDraft *TicketDraft      `json:"ticketDraft,omitempty"`

	// Scratch identity buffer, only meaningful while State == IDENTIFY.
	// Promoted into GuestName/Room on ticket confirmation, never before.
	TempGuestName string `json:"tempGuestName,omitempty"`
	TempRoom      string `json:"tempRoom,omitempty"`

	// Carried-over request context while an area or detail clarification is
	// in flight.
	PendingDetail     string           `json:"pendingDetail,omitempty"`
	PendingRoom       string           `json:"pendingRoom,omitempty"`
	PendingName       string           `json:"pendingName,omitempty"`
	PendingRequests   []PendingRequest `json:"pendingRequests,omitempty"`
	RemainingRequests []PendingRequest `json:"remainingRequests,omitempty"`

	CreatedAt     time.Time `json:"createdAt"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ClearDraft drops the ticket draft together with every piece of
// clarification and identity scratch state.
func (s *GuestSession) ClearDraft() {
	s.TicketDraft = nil
	s.TempGuestName = ""
	s.TempRoom = ""
	s.PendingDetail = ""
	s.PendingRoom = ""
	s.PendingName = ""
	s.PendingRequests = nil
	s.RemainingRequests = nil
}

// Reply is one outbound message produced by a conversation turn.
type Reply struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// InboundMessage is what the delivery adapter hands the orchestrator: one
// normalized guest message. Text is already transcribed when the original
// message was a voice note; a failed transcription arrives as empty text.
type InboundMessage struct {
	WaID      string    `json:"waId"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name,omitempty"`
	Type      string    `json:"type"` // "text", "audio", other
	Text      string    `json:"text"`
	MediaID   string    `json:"mediaId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
