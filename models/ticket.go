package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TicketArea is the hotel department a ticket routes to.
type TicketArea string

const (
	AreaMantencion   TicketArea = "MANTENCION"
	AreaHousekeeping TicketArea = "HOUSEKEEPING"
	AreaRecepcion    TicketArea = "RECEPCION"
	AreaRoomService  TicketArea = "ROOM_SERVICE"
	AreaGerencia     TicketArea = "GERENCIA"
)

// TicketPriority drives the SLA due-time lookup.
type TicketPriority string

const (
	PriorityBaja  TicketPriority = "BAJA"
	PriorityMedia TicketPriority = "MEDIA"
	PriorityAlta  TicketPriority = "ALTA"
)

const TicketStatusAbierto = "ABIERTO"

// TicketInput is the creation payload the conversation core hands the
// ticketing service once a draft is confirmed.
type TicketInput struct {
	OrgID       string         `json:"orgId"`
	HotelID     string         `json:"hotelId"`
	Area        TicketArea     `json:"area"`
	Priority    TicketPriority `json:"priority"`
	Detail      string         `json:"detail"`
	CanalOrigen string         `json:"canalOrigen"`
	Ubicacion   string         `json:"ubicacion"`
	GuestPhone  string         `json:"guestPhone"`
	GuestName   string         `json:"guestName"`

	RoutingSource     string  `json:"routingSource,omitempty"`
	RoutingReason     string  `json:"routingReason,omitempty"`
	RoutingConfidence float64 `json:"routingConfidence,omitempty"`
	RoutingVersion    string  `json:"routingVersion,omitempty"`
}

// Ticket is the persisted service request.
type Ticket struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Codigo      string             `bson:"codigo" json:"codigo"`
	OrgID       string             `bson:"orgId" json:"orgId"`
	HotelID     string             `bson:"hotelId" json:"hotelId"`
	Area        TicketArea         `bson:"area" json:"area"`
	Priority    TicketPriority     `bson:"priority" json:"priority"`
	Detail      string             `bson:"detail" json:"detail"`
	Status      string             `bson:"status" json:"status"`
	CanalOrigen string             `bson:"canalOrigen" json:"canalOrigen"`
	Ubicacion   string             `bson:"ubicacion" json:"ubicacion"`
	GuestPhone  string             `bson:"guestPhone" json:"guestPhone"`
	GuestName   string             `bson:"guestName" json:"guestName"`

	RoutingSource     string  `bson:"routingSource,omitempty" json:"routingSource,omitempty"`
	RoutingReason     string  `bson:"routingReason,omitempty" json:"routingReason,omitempty"`
	RoutingConfidence float64 `bson:"routingConfidence,omitempty" json:"routingConfidence,omitempty"`
	RoutingVersion    string  `bson:"routingVersion,omitempty" json:"routingVersion,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	DueAt     time.Time `bson:"dueAt" json:"dueAt"`
}

// NotifyPayload is the body of an internal staff notification event.
type NotifyPayload struct {
	Event      string `json:"event"`
	WaID       string `json:"waId,omitempty"`
	GuestPhone string `json:"guestPhone,omitempty"`
	GuestName  string `json:"guestName,omitempty"`
	Room       string `json:"room,omitempty"`
	Area       string `json:"area,omitempty"`
	Detail     string `json:"detail,omitempty"`
	TicketCode string `json:"ticketCode,omitempty"`
}
