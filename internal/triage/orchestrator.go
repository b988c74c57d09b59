package triage

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/facility-triage/internal/domain"
)

// CycleInput is the immutable snapshot one triage cycle operates on. The
// orchestrator never mutates it; overlapping cycles see independent
// snapshots.
type CycleInput struct {
	Tickets     []domain.Ticket
	Candidates  []domain.StaffCandidate
	Rules       RuleSet
	Performance PerformanceLookup
	Now         time.Time
}

// CycleResult is the cycle's full output. Assessments are ordered by
// breach probability descending (ties: earlier createdAt first);
// decisions follow ticket creation order; escalations list the ids of
// tickets assessed critical.
type CycleResult struct {
	Assessments []RiskAssessment
	Decisions   []RoutingDecision
	Escalations []string
}

// Orchestrator composes the risk scorer and staff ranker into one
// synchronous triage pass. It holds no state between cycles and performs
// no I/O: persisting decisions and delivering escalations is the
// caller's concern.
type Orchestrator struct {
	scorer *RiskScorer
	ranker *StaffRanker
	logger *zap.Logger
}

// NewOrchestrator builds the orchestrator.
func NewOrchestrator(scorer *RiskScorer, ranker *StaffRanker, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{scorer: scorer, ranker: ranker, logger: logger}
}

// RunCycle scores all active tickets, ranks staff for the routable ones
// and collects escalations. A ticket with malformed input is skipped and
// logged; it never fails the batch.
func (o *Orchestrator) RunCycle(in CycleInput) CycleResult {
	result := CycleResult{
		Assessments: []RiskAssessment{},
		Decisions:   []RoutingDecision{},
		Escalations: []string{},
	}

	active := make([]domain.Ticket, 0, len(in.Tickets))
	for _, ticket := range in.Tickets {
		if !ticket.Active() {
			continue
		}
		if err := validateTicket(ticket); err != nil {
			o.logger.Warn("skipping ticket with malformed input",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
			continue
		}
		active = append(active, ticket)
	}

	for _, ticket := range active {
		result.Assessments = append(result.Assessments, o.scorer.Assess(ticket, in.Now, in.Performance))
	}
	sort.SliceStable(result.Assessments, func(i, j int) bool {
		a, b := result.Assessments[i], result.Assessments[j]
		if a.BreachProbability != b.BreachProbability {
			return a.BreachProbability > b.BreachProbability
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	for _, assessment := range result.Assessments {
		if assessment.Severity == SeverityCritical {
			result.Escalations = append(result.Escalations, assessment.TicketID)
		}
	}

	routable := make([]domain.Ticket, 0, len(active))
	for _, ticket := range active {
		if ticket.Routable() {
			routable = append(routable, ticket)
		}
	}
	sort.SliceStable(routable, func(i, j int) bool {
		return routable[i].CreatedAt.Before(routable[j].CreatedAt)
	})

	for _, ticket := range routable {
		rule := in.Rules.Match(ticket.Priority, ticket.Category)
		decision := o.ranker.SelectBest(ticket, in.Candidates, rule)
		if decision.ReasonCode == ReasonRuleConfigInvalid {
			o.logger.Warn("routing rule misconfigured",
				zap.String("ticket_id", ticket.ID),
				zap.String("rule", rule.Name))
		}
		result.Decisions = append(result.Decisions, decision)
	}

	return result
}

func validateTicket(ticket domain.Ticket) error {
	if ticket.ID == "" {
		return errMissingID
	}
	if ticket.CreatedAt.IsZero() {
		return errMissingCreatedAt
	}
	return nil
}
