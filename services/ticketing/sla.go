// File: services/ticketing/sla.go
package ticketing

import (
	"time"

	"hestia/config"
	"hestia/models"
)

// SLATable maps ticket priorities to their resolution window.
type SLATable map[models.TicketPriority]time.Duration

// NewSLATableFromConfig builds the table from the configured per-priority
// minutes.
func NewSLATableFromConfig() SLATable {
	return SLATable{
		models.PriorityAlta:  time.Duration(config.AppConfig.SLAMinutesAlta) * time.Minute,
		models.PriorityMedia: time.Duration(config.AppConfig.SLAMinutesMedia) * time.Minute,
		models.PriorityBaja:  time.Duration(config.AppConfig.SLAMinutesBaja) * time.Minute,
	}
}

// ComputeDue returns the SLA due time for a ticket created at createdAt.
// Unknown priorities fall back to the MEDIA window.
func (t SLATable) ComputeDue(priority models.TicketPriority, createdAt time.Time) time.Time {
	window, ok := t[priority]
	if !ok {
		window = t[models.PriorityMedia]
	}
	return createdAt.Add(window)
}
