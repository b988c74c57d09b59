package dto

import (
	"github.com/spec-kit/facility-triage/internal/domain"
	"github.com/spec-kit/facility-triage/internal/triage"
)

// AssessmentResponse represents one risk assessment on the wire.
type AssessmentResponse struct {
	TicketID              string          `json:"ticket_id"`
	BreachProbability     int             `json:"breach_probability"`
	Severity              triage.Severity `json:"severity"`
	RiskFactors           []string        `json:"risk_factors"`
	SuggestedActions      []string        `json:"suggested_actions"`
	TimeToDeadlineMinutes *int            `json:"time_to_deadline_minutes,omitempty"`
}

// DecisionResponse represents one routing decision on the wire.
type DecisionResponse struct {
	TicketID         string  `json:"ticket_id"`
	ChosenStaffID    *string `json:"chosen_staff_id,omitempty"`
	SuitabilityScore int     `json:"suitability_score"`
	RuleApplied      string  `json:"rule_applied"`
	ReasonCode       string  `json:"reason_code"`
}

// CycleResponse is the output of one on-demand triage run.
type CycleResponse struct {
	Assessments []AssessmentResponse `json:"assessments"`
	Decisions   []DecisionResponse   `json:"decisions"`
	Escalations []string             `json:"escalations"`
}

// RuleResponse represents a routing rule on the wire.
type RuleResponse struct {
	Name             string                `json:"name"`
	Priority         domain.TicketPriority `json:"priority,omitempty"`
	Category         string                `json:"category,omitempty"`
	LocationWeight   float64               `json:"location_weight"`
	ExperienceWeight float64               `json:"experience_weight"`
	WorkloadWeight   float64               `json:"workload_weight"`
	IsActive         bool                  `json:"is_active"`
}

// StaffCandidateResponse represents a roster snapshot entry.
type StaffCandidateResponse struct {
	ID              string                   `json:"id"`
	Role            string                   `json:"role"`
	CurrentWorkload int                      `json:"current_workload"`
	LocationTag     *string                  `json:"location_tag,omitempty"`
	Availability    domain.StaffAvailability `json:"availability"`
}

// FromCycleResult maps a cycle result to its response shape.
func FromCycleResult(result triage.CycleResult) CycleResponse {
	resp := CycleResponse{
		Assessments: make([]AssessmentResponse, 0, len(result.Assessments)),
		Decisions:   make([]DecisionResponse, 0, len(result.Decisions)),
		Escalations: result.Escalations,
	}
	for _, assessment := range result.Assessments {
		resp.Assessments = append(resp.Assessments, AssessmentResponse{
			TicketID:              assessment.TicketID,
			BreachProbability:     assessment.BreachProbability,
			Severity:              assessment.Severity,
			RiskFactors:           assessment.RiskFactors,
			SuggestedActions:      assessment.SuggestedActions,
			TimeToDeadlineMinutes: assessment.TimeToDeadlineMinutes,
		})
	}
	for _, decision := range result.Decisions {
		resp.Decisions = append(resp.Decisions, DecisionResponse{
			TicketID:         decision.TicketID,
			ChosenStaffID:    decision.ChosenStaffID,
			SuitabilityScore: decision.SuitabilityScore,
			RuleApplied:      decision.RuleApplied,
			ReasonCode:       decision.ReasonCode,
		})
	}
	return resp
}

// FromRule maps a routing rule to its response shape.
func FromRule(rule triage.RoutingRule) RuleResponse {
	return RuleResponse{
		Name:             rule.Name,
		Priority:         rule.Priority,
		Category:         rule.Category,
		LocationWeight:   rule.LocationWeight,
		ExperienceWeight: rule.ExperienceWeight,
		WorkloadWeight:   rule.WorkloadWeight,
		IsActive:         rule.IsActive,
	}
}
