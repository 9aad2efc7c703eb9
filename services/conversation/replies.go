// File: services/conversation/replies.go
package conversation

import (
	"fmt"
	"strings"

	"hestia/models"
)

// Guest-facing texts. Spanish, WhatsApp register.

const greetingText = `¡Hola! 👋 Soy el asistente del hotel.

Puedo ayudarte con:
🔧 Solicitudes de mantención
🧹 Housekeeping (toallas, limpieza, amenities)
🛎 Room service y recepción
❓ Preguntas frecuentes del hotel

Cuéntame, ¿qué necesitas?`

const menuText = `Estas son las cosas en las que puedo ayudarte:

1️⃣ Reportar un problema en tu habitación
2️⃣ Pedir algo a housekeeping
3️⃣ Hablar con recepción
4️⃣ Preguntas sobre el hotel

Escríbeme lo que necesitas con tus propias palabras 🙂`

const helpText = `Puedo tomar solicitudes de mantención, housekeeping o room service, responder preguntas del hotel, o comunicarte con recepción.

Por ejemplo: "el aire acondicionado no funciona" o "necesito toallas extra".`

const cancelAckText = `Listo, cancelé tu solicitud ✅ Si necesitas algo más, escríbeme cuando quieras.`

const handoffText = `Te comunico con recepción 🙋 Una persona del equipo te escribirá en breve por este mismo chat.`

const areaMenuText = `¿Con qué área está relacionada tu solicitud?

1️⃣ Mantención (algo no funciona)
2️⃣ Housekeeping (limpieza, toallas, amenities)
3️⃣ Recepción (pagos, reservas, consultas)
4️⃣ Otro

Responde con el número o el nombre del área.`

const askIdentityText = `Para registrar tu solicitud necesito dos datos: tu *nombre* y tu *número de habitación* 🙏

Por ejemplo: "Juan Pérez, habitación 205".`

const askIdentityAgainText = `Aún necesito tu nombre y número de habitación para continuar 🙏`

const askNameText = `¡Gracias! Me falta solo tu *nombre* para continuar.`

const askRoomText = `¡Gracias! Me falta solo tu *número de habitación* para continuar.`

const ticketFailureText = `Lo siento, tuve un problema registrando tu solicitud 🙏 Ya avisé al equipo de recepción y te contactarán en breve.`

const fallbackCapabilitiesText = `No estoy seguro de haber entendido 🤔

Puedo ayudarte con solicitudes de mantención, housekeeping o room service, responder preguntas del hotel, o comunicarte con recepción. ¿Qué necesitas?`

const safetyNetText = `¿En qué puedo ayudarte? Puedo tomar solicitudes de mantención, housekeeping o room service 🙂`

const smalltalkThanksText = `¡De nada! 😊 Estoy aquí si necesitas algo más.`

const smalltalkAllGoodText = `¡Me alegra! 🙌 Cualquier cosa que necesites, escríbeme.`

const smalltalkGenericText = `¡Gracias por tu mensaje! 😊 Si necesitas algo del hotel, cuéntame y lo gestiono de inmediato.`

const faqAnythingElseText = `¿Puedo ayudarte con algo más?`

var areaLabels = map[models.TicketArea]string{
	models.AreaMantencion:   "Mantención",
	models.AreaHousekeeping: "Housekeeping",
	models.AreaRecepcion:    "Recepción",
	models.AreaRoomService:  "Room Service",
	models.AreaGerencia:     "Gerencia",
}

func areaLabel(area models.TicketArea) string {
	if label, ok := areaLabels[area]; ok {
		return label
	}
	return "Mantención"
}

// detailQuestions are the area-specific follow-ups asked when the reported
// problem was too generic to act on.
var detailQuestions = map[models.TicketArea]string{
	models.AreaMantencion:   `¿Qué problema de mantención tienes? (ej: el aire acondicionado no funciona, hay una fuga de agua, la TV no tiene señal)`,
	models.AreaHousekeeping: `¿Qué necesitas de housekeeping? (ej: toallas extra, limpieza de habitación, amenities)`,
	models.AreaRecepcion:    `¿En qué te puede ayudar recepción? (ej: consulta por un pago, cambio de habitación, late check-out)`,
	models.AreaGerencia:     `Cuéntame un poco más para poder ayudarte, ¿qué ocurrió?`,
	models.AreaRoomService:  `¿Qué te gustaría pedir a room service?`,
}

func detailQuestion(area models.TicketArea) string {
	if q, ok := detailQuestions[area]; ok {
		return q
	}
	return detailQuestions[models.AreaGerencia]
}

// confirmationText summarizes the draft and asks for a yes/no. It is the
// single place the combined confirmation is rendered.
func confirmationText(draft *models.TicketDraft, name, room string) string {
	var b strings.Builder
	b.WriteString("Perfecto, esto es lo que voy a registrar:\n\n")
	fmt.Fprintf(&b, "🏷 Área: %s\n", areaLabel(draft.Area))
	if draft.Detail != "" {
		fmt.Fprintf(&b, "📝 Detalle: %s\n", draft.Detail)
	}
	if room != "" {
		fmt.Fprintf(&b, "🛏 Habitación: %s\n", room)
	}
	if name != "" {
		fmt.Fprintf(&b, "👤 A nombre de: %s\n", name)
	}
	b.WriteString("\n¿Confirmas? (sí/no)")
	return b.String()
}

// ticketSuccessText names the department and room. It deliberately never
// includes the ticket id or code.
func ticketSuccessText(area models.TicketArea, room string) string {
	if room != "" {
		return fmt.Sprintf("✅ ¡Listo! Tu solicitud para %s quedó registrada para la habitación %s. El equipo ya fue notificado 🙌\n\nSi necesitas algo más, escríbeme.", areaLabel(area), room)
	}
	return fmt.Sprintf("✅ ¡Listo! Tu solicitud para %s quedó registrada. El equipo ya fue notificado 🙌\n\nSi necesitas algo más, escríbeme.", areaLabel(area))
}
