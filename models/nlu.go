package models

// Intent is the closed set of conversation intents the classifier may emit.
// Anything outside the set collapses to IntentNotUnderstood in the adapter.
type Intent string

const (
	IntentTicketRequest  Intent = "ticket_request"
	IntentGeneralChat    Intent = "general_chat"
	IntentFAQQuestion    Intent = "faq_question"
	IntentHandoffRequest Intent = "handoff_request"
	IntentCancel         Intent = "cancel"
	IntentHelp           Intent = "help"
	IntentNotUnderstood  Intent = "not_understood"
)

// NLUResult is a single-turn classification. It is never persisted; it lives
// only for the duration of one orchestrator dispatch.
type NLUResult struct {
	Intent   Intent         `json:"intent"`
	Area     TicketArea     `json:"area,omitempty"`
	Priority TicketPriority `json:"priority,omitempty"`

	// Extracted entities, when the model found them.
	Room   string `json:"room,omitempty"`
	Name   string `json:"name,omitempty"`
	Detail string `json:"detail,omitempty"`

	IsCancel     bool `json:"isCancel"`
	IsHelp       bool `json:"isHelp"`
	IsSmalltalk  bool `json:"isSmalltalk"`
	WantsHandoff bool `json:"wantsHandoff"`

	// RoutingConfidence scores how sure the model is about Area, 0..1.
	RoutingConfidence float64 `json:"routingConfidence"`
	RoutingReason     string  `json:"routingReason,omitempty"`

	// Requests carries every distinct request the model found when a single
	// message batches several ("no hay toallas y la TV no funciona").
	Requests []PendingRequest `json:"requests,omitempty"`
}

// NotUnderstood is the degraded-but-valid classification used whenever the
// classifier fails, times out, or returns garbage.
func NotUnderstood() *NLUResult {
	return &NLUResult{Intent: IntentNotUnderstood}
}
