// File: services/ticketing/service.go
package ticketing

import (
	"context"
	"fmt"
	"strings"
	"time"

	ticketRepo "hestia/database/repository/ticket"
	"hestia/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TicketingService persists confirmed service requests.
type TicketingService interface {
	CreateTicket(ctx context.Context, in models.TicketInput) (*models.Ticket, error)
	GetByCodigo(ctx context.Context, codigo string) (*models.Ticket, error)
	ListRecent(ctx context.Context, limit int64) ([]models.Ticket, error)
}

// DefaultTicketingService is the production implementation.
type DefaultTicketingService struct {
	Repo   ticketRepo.TicketRepository
	SLA    SLATable
	Logger *zap.Logger
}

func (s *DefaultTicketingService) CreateTicket(ctx context.Context, in models.TicketInput) (*models.Ticket, error) {
	if in.Area == "" {
		return nil, fmt.Errorf("create ticket: area is required")
	}

	now := time.Now()
	ticket := &models.Ticket{
		Codigo:            newTicketCode(),
		OrgID:             in.OrgID,
		HotelID:           in.HotelID,
		Area:              in.Area,
		Priority:          in.Priority,
		Detail:            in.Detail,
		Status:            models.TicketStatusAbierto,
		CanalOrigen:       in.CanalOrigen,
		Ubicacion:         in.Ubicacion,
		GuestPhone:        in.GuestPhone,
		GuestName:         in.GuestName,
		RoutingSource:     in.RoutingSource,
		RoutingReason:     in.RoutingReason,
		RoutingConfidence: in.RoutingConfidence,
		RoutingVersion:    in.RoutingVersion,
		CreatedAt:         now,
		DueAt:             s.SLA.ComputeDue(in.Priority, now),
	}

	if err := s.Repo.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	if s.Logger != nil {
		s.Logger.Info("ticket created",
			zap.String("codigo", ticket.Codigo),
			zap.String("area", string(ticket.Area)),
			zap.String("priority", string(ticket.Priority)),
			zap.Time("dueAt", ticket.DueAt))
	}
	return ticket, nil
}

func (s *DefaultTicketingService) GetByCodigo(ctx context.Context, codigo string) (*models.Ticket, error) {
	return s.Repo.GetByCodigo(ctx, codigo)
}

func (s *DefaultTicketingService) ListRecent(ctx context.Context, limit int64) ([]models.Ticket, error) {
	return s.Repo.ListRecent(ctx, limit)
}

// newTicketCode mints the human-facing ticket code, e.g. HST-3F2A9C1D.
func newTicketCode() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "HST-" + id[:8]
}
