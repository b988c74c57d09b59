package triage

import (
	"time"

	"github.com/spec-kit/facility-triage/internal/domain"
)

// Severity buckets breach probability for escalation decisions.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Severity thresholds, evaluated high to low.
const (
	criticalThreshold = 80
	highThreshold     = 60
	mediumThreshold   = 40
)

// Scoring contributions.
const (
	criticalTimePoints    = 60
	limitedTimePoints     = 40
	constrainedTimePoints = 25
	urgentPriorityPoints  = 20
	highPriorityPoints    = 15
	unassignedPoints      = 30
	lowPerformancePoints  = 15
	complexityPoints      = 10

	lowPerformanceFloor = 0.8
	complexityLength    = 200
	maxBreachProb       = 99
)

// PerformanceLookup resolves a staff member's rolling completion-vs-breach
// ratio in [0,1]. Implementations must return a neutral default for staff
// with no history.
type PerformanceLookup func(staffID string) float64

// RiskAssessment is the scorer's output for one ticket. It is never
// persisted unless a caller explicitly writes it back.
type RiskAssessment struct {
	TicketID              string
	BreachProbability     int
	Severity              Severity
	RiskFactors           []string
	SuggestedActions      []string
	TimeToDeadlineMinutes *int
	CreatedAt             time.Time
}

// RiskScorer computes SLA breach risk for a single ticket. Assess is a
// pure function of its inputs and performs no I/O.
type RiskScorer struct{}

// NewRiskScorer returns a scorer.
func NewRiskScorer() *RiskScorer {
	return &RiskScorer{}
}

// Assess produces a bounded breach-probability score, a severity tier and
// ordered human-readable risk factors and suggested actions. A ticket
// without an SLA deadline contributes no deadline risk.
func (s *RiskScorer) Assess(ticket domain.Ticket, now time.Time, perf PerformanceLookup) RiskAssessment {
	assessment := RiskAssessment{
		TicketID:  ticket.ID,
		CreatedAt: ticket.CreatedAt,
	}

	score := 0

	if ticket.SLADeadline != nil {
		minutes := int(ticket.SLADeadline.Sub(now).Minutes())
		assessment.TimeToDeadlineMinutes = &minutes
		switch {
		case minutes <= 30:
			score += criticalTimePoints
			assessment.RiskFactors = append(assessment.RiskFactors, "Critical time remaining")
		case minutes <= 60:
			score += limitedTimePoints
			assessment.RiskFactors = append(assessment.RiskFactors, "Limited time remaining")
		case minutes <= 120:
			score += constrainedTimePoints
			assessment.RiskFactors = append(assessment.RiskFactors, "Time constraint")
		}
	}

	switch ticket.Priority {
	case domain.TicketPriorityUrgent:
		score += urgentPriorityPoints
	case domain.TicketPriorityHigh:
		score += highPriorityPoints
	}

	if ticket.AssignedTo == nil {
		score += unassignedPoints
		assessment.RiskFactors = append(assessment.RiskFactors, "No staff assigned")
		assessment.SuggestedActions = append(assessment.SuggestedActions, "Auto-assign immediately")
	} else if perf != nil && perf(*ticket.AssignedTo) < lowPerformanceFloor {
		score += lowPerformancePoints
		assessment.RiskFactors = append(assessment.RiskFactors, "Staff with lower completion rate")
		assessment.SuggestedActions = append(assessment.SuggestedActions, "Consider reassignment")
	}

	if len(ticket.Description) > complexityLength {
		score += complexityPoints
		assessment.RiskFactors = append(assessment.RiskFactors, "Complex request")
		assessment.SuggestedActions = append(assessment.SuggestedActions, "Allocate additional resources")
	}

	if score > maxBreachProb {
		score = maxBreachProb
	}
	if score < 0 {
		score = 0
	}
	assessment.BreachProbability = score
	assessment.Severity = SeverityFor(score)
	return assessment
}

// SeverityFor maps a breach probability to its severity tier.
func SeverityFor(breachProbability int) Severity {
	switch {
	case breachProbability >= criticalThreshold:
		return SeverityCritical
	case breachProbability >= highThreshold:
		return SeverityHigh
	case breachProbability >= mediumThreshold:
		return SeverityMedium
	}
	return SeverityLow
}
