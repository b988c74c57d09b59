package events

import (
	"time"

	"github.com/spec-kit/facility-triage/internal/domain"
	"github.com/spec-kit/facility-triage/internal/triage"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAutoAssigned  EventType = "ticket_auto_assigned"
	EventTicketEscalated     EventType = "ticket_escalated"
	EventCycleCompleted      EventType = "triage_cycle_completed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.ActorType `json:"type"`
	ActorID *string          `json:"actor_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Priority    domain.TicketPriority `json:"priority"`
	Location    string                `json:"location"`
	Category    *string               `json:"category,omitempty"`
	Title       string                `json:"title"`
	SLADeadline *time.Time            `json:"sla_deadline,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAutoAssignedPayload payload.
type TicketAutoAssignedPayload struct {
	StaffID          string `json:"staff_id"`
	SuitabilityScore int    `json:"suitability_score"`
	RuleApplied      string `json:"rule_applied"`
}

// TicketEscalatedPayload carries the assessment that crossed the
// critical threshold.
type TicketEscalatedPayload struct {
	BreachProbability int             `json:"breach_probability"`
	Severity          triage.Severity `json:"severity"`
	RiskFactors       []string        `json:"risk_factors"`
	SuggestedActions  []string        `json:"suggested_actions"`
}

// CycleCompletedPayload summarizes one triage pass.
type CycleCompletedPayload struct {
	Assessed   int `json:"assessed"`
	Routed     int `json:"routed"`
	Escalated  int `json:"escalated"`
	DurationMS int `json:"duration_ms"`
}
