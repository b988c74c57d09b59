package dto

import (
	"time"

	"github.com/spec-kit/facility-triage/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	RequesterID string                `json:"requester_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Location    string                `json:"location"`
	Category    *string               `json:"category"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	ActorID string              `json:"actor_id"`
	Status  domain.TicketStatus `json:"status"`
}

// TicketResponse represents a ticket on the wire.
type TicketResponse struct {
	ID          string                `json:"id"`
	ExternalKey string                `json:"external_key"`
	RequesterID string                `json:"requester_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	Location    string                `json:"location"`
	Category    *string               `json:"category,omitempty"`
	AssignedTo  *string               `json:"assigned_to,omitempty"`
	SLADeadline *time.Time            `json:"sla_deadline,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
}

// HistoryEntryResponse represents one audit entry.
type HistoryEntryResponse struct {
	ID            string                  `json:"id"`
	ChangeType    domain.TicketChangeType `json:"change_type"`
	ChangedByType domain.ActorType        `json:"changed_by_type"`
	ChangedByID   *string                 `json:"changed_by_id,omitempty"`
	OldValue      map[string]any          `json:"old_value,omitempty"`
	NewValue      map[string]any          `json:"new_value,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
}

// FromTicket maps a domain ticket to its response shape.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		ExternalKey: ticket.ExternalKey,
		RequesterID: ticket.RequesterID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		Location:    ticket.Location,
		Category:    ticket.Category,
		AssignedTo:  ticket.AssignedTo,
		SLADeadline: ticket.SLADeadline,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
		CompletedAt: ticket.CompletedAt,
	}
}
