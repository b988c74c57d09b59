package domain

import "time"

// TicketStatus enumerates lifecycle states for maintenance tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "PENDING"
	TicketStatusAssigned   TicketStatus = "ASSIGNED"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusCompleted  TicketStatus = "COMPLETED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Ticket is the aggregate for facility maintenance requests.
type Ticket struct {
	ID          string
	ExternalKey string
	RequesterID string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Location    string
	Category    *string
	AssignedTo  *string
	SLADeadline *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	Retired     bool
}

// Active reports whether the ticket still participates in triage.
func (t *Ticket) Active() bool {
	switch t.Status {
	case TicketStatusPending, TicketStatusAssigned, TicketStatusInProgress:
		return true
	}
	return false
}

// Routable reports whether the ticket is eligible for auto-assignment.
func (t *Ticket) Routable() bool {
	return t.Status == TicketStatusPending && t.AssignedTo == nil
}

// CanTransition validates the status state machine: pending → assigned →
// in_progress → completed, with closed as a terminal alternate reachable
// from any non-terminal state.
func (t *Ticket) CanTransition(next TicketStatus) bool {
	if t.Status == TicketStatusCompleted || t.Status == TicketStatusClosed {
		return false
	}
	if next == TicketStatusClosed {
		return true
	}
	switch t.Status {
	case TicketStatusPending:
		return next == TicketStatusAssigned
	case TicketStatusAssigned:
		return next == TicketStatusInProgress
	case TicketStatusInProgress:
		return next == TicketStatusCompleted
	}
	return false
}

// Breached reports whether the SLA deadline has passed while the ticket
// remains unresolved.
func (t *Ticket) Breached(now time.Time) bool {
	if t.SLADeadline == nil {
		return false
	}
	return t.Active() && now.After(*t.SLADeadline)
}
