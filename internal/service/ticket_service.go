package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/facility-triage/internal/config"
	"github.com/spec-kit/facility-triage/internal/domain"
	"github.com/spec-kit/facility-triage/internal/events"
	"github.com/spec-kit/facility-triage/internal/repository"
	apperrors "github.com/spec-kit/facility-triage/pkg/util"
)

// TicketService coordinates ticket lifecycle workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	sla        config.SLAConfig
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
	SLA         config.SLAConfig
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Location    string
	Category    *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		sla:        deps.SLA,
	}
}

// CreateTicket creates a pending, unassigned ticket. The SLA deadline is
// derived from priority at creation and never changes afterward.
func (s *TicketService) CreateTicket(ctx context.Context, requesterID string, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Location) == "" {
		return nil, apperrors.NewValidationError("title and location required", nil)
	}

	ticket := &domain.Ticket{
		ExternalKey: generateTicketKey(),
		RequesterID: requesterID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusPending,
		Priority:    input.Priority,
		Location:    strings.TrimSpace(input.Location),
		Category:    input.Category,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	deadline := time.Now().Add(s.slaWindow(ticket.Priority))
	ticket.SLADeadline = &deadline

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    requesterActor(requesterID),
		Payload: events.TicketCreatedPayload{
			Priority:    ticket.Priority,
			Location:    ticket.Location,
			Category:    ticket.Category,
			Title:       ticket.Title,
			SLADeadline: ticket.SLADeadline,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListTickets returns tickets matching the filter.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ProgressStatus advances a ticket through its lifecycle, enforcing the
// pending → assigned → in_progress → completed state machine with closed
// as the terminal alternate.
func (s *TicketService) ProgressStatus(ctx context.Context, actorID, ticketID string, next domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.CanTransition(next) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   next,
		})
	}
	if next == domain.TicketStatusAssigned && ticket.AssignedTo == nil {
		return nil, apperrors.NewConflict("cannot mark assigned without an assignee", nil)
	}

	oldStatus := ticket.Status
	ticket.Status = next
	if next == domain.TicketStatusCompleted {
		now := time.Now()
		ticket.CompletedAt = &now
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordStatusChange(ctx, actorID, ticket.ID, oldStatus, next); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    staffActor(actorID),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: next,
		},
	})
	return ticket, nil
}

// RetireTicket soft-retires a ticket; tickets are never deleted.
func (s *TicketService) RetireTicket(ctx context.Context, actorID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Active() {
		return nil, apperrors.NewConflict("only completed or closed tickets can be retired", nil)
	}
	ticket.Retired = true
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListHistory returns the audit trail for a ticket.
func (s *TicketService) ListHistory(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	entries, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *TicketService) slaWindow(priority domain.TicketPriority) time.Duration {
	minutes := s.sla.MediumMinutes
	switch priority {
	case domain.TicketPriorityUrgent:
		minutes = s.sla.UrgentMinutes
	case domain.TicketPriorityHigh:
		minutes = s.sla.HighMinutes
	case domain.TicketPriorityLow:
		minutes = s.sla.LowMinutes
	}
	if minutes <= 0 {
		minutes = 1440
	}
	return time.Duration(minutes) * time.Minute
}

func (s *TicketService) recordStatusChange(ctx context.Context, actorID, ticketID string, oldStatus, newStatus domain.TicketStatus) error {
	if s.history == nil {
		return nil
	}
	return s.history.Create(ctx, &domain.TicketHistory{
		TicketID:      ticketID,
		ChangedByType: domain.ActorTypeStaff,
		ChangedByID:   &actorID,
		ChangeType:    domain.ChangeTypeStatus,
		OldValue:      map[string]any{"status": oldStatus},
		NewValue:      map[string]any{"status": newStatus},
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketKey() string {
	return "FAC-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func requesterActor(requesterID string) events.Actor {
	return events.Actor{
		Type:    domain.ActorTypeRequester,
		ActorID: &requesterID,
	}
}

func staffActor(staffID string) events.Actor {
	return events.Actor{
		Type:    domain.ActorTypeStaff,
		ActorID: &staffID,
	}
}

func engineActor() events.Actor {
	return events.Actor{Type: domain.ActorTypeEngine}
}
