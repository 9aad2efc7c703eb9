// File: services/nlu/adapter.go
package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hestia/models"

	"go.uber.org/zap"
)

// TextGenerator is the LLM surface the adapter depends on; GeminiClient is
// the production implementation.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// classifyTimeout bounds the external call: a slow classifier degrades the
// turn to not_understood instead of stalling the guest.
const classifyTimeout = 10 * time.Second

// GeminiNLUService classifies guest messages. The raw model output is
// clamped field by field before anything downstream sees it: this service
// guards the state machine against an unreliable external classifier.
type GeminiNLUService struct {
	Generator TextGenerator
	Logger    *zap.Logger
}

// rawResult is the loose JSON shape the model is asked to emit.
type rawResult struct {
	Intent       string  `json:"intent"`
	Area         string  `json:"area"`
	Priority     string  `json:"priority"`
	Room         string  `json:"room"`
	Name         string  `json:"name"`
	Detail       string  `json:"detail"`
	IsCancel     bool    `json:"is_cancel"`
	IsHelp       bool    `json:"is_help"`
	IsSmalltalk  bool    `json:"is_smalltalk"`
	WantsHandoff bool    `json:"wants_handoff"`
	Confidence   float64 `json:"confidence"`
	Reason       string  `json:"reason"`
	Requests     []struct {
		Area     string `json:"area"`
		Priority string `json:"priority"`
		Detail   string `json:"detail"`
	} `json:"requests"`
}

const classifyPromptTemplate = `Eres el clasificador de mensajes del asistente WhatsApp de un hotel.
El huésped está en el estado de conversación: %s.
Habitación conocida: %q. Nombre conocido: %q.

Clasifica el siguiente mensaje y responde SOLO con un objeto JSON con estas claves:
intent: una de [ticket_request, general_chat, faq_question, handoff_request, cancel, help, not_understood]
area: una de [MANTENCION, HOUSEKEEPING, RECEPCION, ROOM_SERVICE, GERENCIA] o "" si no está claro
priority: una de [BAJA, MEDIA, ALTA] o ""
room: número de habitación si aparece en el mensaje, o ""
name: nombre del huésped si aparece en el mensaje, o ""
detail: descripción concreta del problema o pedido, o ""
is_cancel, is_help, is_smalltalk, wants_handoff: booleanos
confidence: número 0..1 indicando qué tan seguro estás del área
reason: una frase corta explicando la elección de área
requests: si el mensaje contiene VARIOS pedidos distintos, una lista de {area, priority, detail}; si no, []

Mensaje del huésped: %q`

func (s *GeminiNLUService) Classify(ctx context.Context, text string, sess *models.GuestSession, state models.ConversationState) (*models.NLUResult, error) {
	ctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	room, name := "", ""
	if sess != nil {
		room, name = sess.Room, sess.GuestName
	}
	prompt := fmt.Sprintf(classifyPromptTemplate, string(state), room, name, text)

	out, err := s.Generator.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger().Warn("classifier call failed", zap.Error(err))
		return models.NotUnderstood(), nil
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(stripFences(out)), &raw); err != nil {
		s.logger().Warn("classifier returned unparseable output", zap.Error(err))
		return models.NotUnderstood(), nil
	}

	return clamp(&raw), nil
}

// stripFences removes a markdown code fence the model sometimes wraps its
// JSON in.
func stripFences(out string) string {
	out = strings.TrimSpace(out)
	out = strings.TrimPrefix(out, "```json")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}

var validIntents = map[models.Intent]bool{
	models.IntentTicketRequest:  true,
	models.IntentGeneralChat:    true,
	models.IntentFAQQuestion:    true,
	models.IntentHandoffRequest: true,
	models.IntentCancel:         true,
	models.IntentHelp:           true,
	models.IntentNotUnderstood:  true,
}

var validAreas = map[models.TicketArea]bool{
	models.AreaMantencion:   true,
	models.AreaHousekeeping: true,
	models.AreaRecepcion:    true,
	models.AreaRoomService:  true,
	models.AreaGerencia:     true,
}

var validPriorities = map[models.TicketPriority]bool{
	models.PriorityBaja:  true,
	models.PriorityMedia: true,
	models.PriorityAlta:  true,
}

// clamp normalizes a raw classification into the fixed NLUResult shape.
// Every enum-like field is checked against its allow-list; anything else
// collapses to the zero value or not_understood.
func clamp(raw *rawResult) *models.NLUResult {
	if raw == nil {
		return models.NotUnderstood()
	}

	res := &models.NLUResult{
		Intent:            models.Intent(strings.ToLower(strings.TrimSpace(raw.Intent))),
		Area:              clampArea(raw.Area),
		Priority:          clampPriority(raw.Priority),
		Room:              strings.TrimSpace(raw.Room),
		Name:              strings.TrimSpace(raw.Name),
		Detail:            strings.TrimSpace(raw.Detail),
		IsCancel:          raw.IsCancel,
		IsHelp:            raw.IsHelp,
		IsSmalltalk:       raw.IsSmalltalk,
		WantsHandoff:      raw.WantsHandoff,
		RoutingConfidence: clampConfidence(raw.Confidence),
		RoutingReason:     strings.TrimSpace(raw.Reason),
	}
	if !validIntents[res.Intent] {
		res.Intent = models.IntentNotUnderstood
	}

	for _, r := range raw.Requests {
		area := clampArea(r.Area)
		detail := strings.TrimSpace(r.Detail)
		if area == "" && detail == "" {
			continue
		}
		res.Requests = append(res.Requests, models.PendingRequest{
			Area:     area,
			Priority: clampPriority(r.Priority),
			Detail:   detail,
		})
	}

	return res
}

func clampArea(area string) models.TicketArea {
	a := models.TicketArea(strings.ToUpper(strings.TrimSpace(area)))
	if validAreas[a] {
		return a
	}
	return ""
}

func clampPriority(priority string) models.TicketPriority {
	p := models.TicketPriority(strings.ToUpper(strings.TrimSpace(priority)))
	if validPriorities[p] {
		return p
	}
	return ""
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func (s *GeminiNLUService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
