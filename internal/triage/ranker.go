package triage

import (
	"math"
	"sort"

	"github.com/spec-kit/facility-triage/internal/domain"
)

// Routing decision reason codes.
const (
	ReasonRuleMatched       = "RULE_MATCHED"
	ReasonNoEligibleStaff   = "NO_ELIGIBLE_STAFF"
	ReasonRuleConfigInvalid = "RULE_CONFIG_INVALID"
)

// Candidate scoring constants.
const (
	locationMatchScore   = 100
	locationMissScore    = 70
	seniorRoleScore      = 100
	juniorRoleScore      = 80
	workloadScoreCeiling = 100
	workloadPenalty      = 25
)

// RoutingDecision pairs a ticket with the chosen staff member, if any.
// ChosenStaffID is nil when no eligible staff exists or the matched rule
// is misconfigured; neither case is an error.
type RoutingDecision struct {
	TicketID         string
	ChosenStaffID    *string
	SuitabilityScore int
	RuleApplied      string
	ReasonCode       string
}

// RankedCandidate is one candidate with its suitability score.
type RankedCandidate struct {
	Candidate        domain.StaffCandidate
	SuitabilityScore int
}

// StaffRanker scores staff candidates for a ticket using the weights of a
// routing rule. Rank and SelectBest are pure functions of their inputs.
type StaffRanker struct {
	tiers RoleTiers
}

// NewStaffRanker builds a ranker with the configured role tiers.
func NewStaffRanker(tiers RoleTiers) *StaffRanker {
	return &StaffRanker{tiers: tiers}
}

// Rank filters out unavailable candidates and returns the rest ordered
// best first. Ordering is deterministic: suitability descending, then
// current workload ascending, then candidate ID ascending.
func (r *StaffRanker) Rank(ticket domain.Ticket, candidates []domain.StaffCandidate, rule RoutingRule) ([]RankedCandidate, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	ranked := make([]RankedCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if !candidate.Eligible() {
			continue
		}
		ranked = append(ranked, RankedCandidate{
			Candidate:        candidate,
			SuitabilityScore: r.score(ticket, candidate, rule),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.SuitabilityScore != b.SuitabilityScore {
			return a.SuitabilityScore > b.SuitabilityScore
		}
		if a.Candidate.CurrentWorkload != b.Candidate.CurrentWorkload {
			return a.Candidate.CurrentWorkload < b.Candidate.CurrentWorkload
		}
		return a.Candidate.ID < b.Candidate.ID
	})
	return ranked, nil
}

// SelectBest returns the routing decision for the top-ranked candidate.
// An empty eligible set yields a decision with no staff and score zero.
func (r *StaffRanker) SelectBest(ticket domain.Ticket, candidates []domain.StaffCandidate, rule RoutingRule) RoutingDecision {
	ranked, err := r.Rank(ticket, candidates, rule)
	if err != nil {
		return RoutingDecision{
			TicketID:    ticket.ID,
			RuleApplied: rule.Name,
			ReasonCode:  ReasonRuleConfigInvalid,
		}
	}
	if len(ranked) == 0 {
		return RoutingDecision{
			TicketID:    ticket.ID,
			RuleApplied: rule.Name,
			ReasonCode:  ReasonNoEligibleStaff,
		}
	}
	best := ranked[0]
	return RoutingDecision{
		TicketID:         ticket.ID,
		ChosenStaffID:    &best.Candidate.ID,
		SuitabilityScore: best.SuitabilityScore,
		RuleApplied:      rule.Name,
		ReasonCode:       ReasonRuleMatched,
	}
}

func (r *StaffRanker) score(ticket domain.Ticket, candidate domain.StaffCandidate, rule RoutingRule) int {
	locationScore := float64(locationMissScore)
	if candidate.LocationTag != nil && *candidate.LocationTag == ticket.Location {
		locationScore = locationMatchScore
	}

	experienceScore := float64(juniorRoleScore)
	if r.tiers.IsSenior(candidate.Role) {
		experienceScore = seniorRoleScore
	}

	workloadScore := float64(workloadScoreCeiling - candidate.CurrentWorkload*workloadPenalty)
	if workloadScore < 0 {
		workloadScore = 0
	}

	weighted := locationScore*rule.LocationWeight +
		experienceScore*rule.ExperienceWeight +
		workloadScore*rule.WorkloadWeight

	score := int(math.Round(weighted))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}
