package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/facility-triage/internal/domain"
)

func tag(s string) *string { return &s }

func evenRule() RoutingRule {
	return RoutingRule{
		Name:             "test-rule",
		LocationWeight:   0.4,
		ExperienceWeight: 0.4,
		WorkloadWeight:   0.2,
		IsActive:         true,
	}
}

func testRanker() *StaffRanker {
	return NewStaffRanker(RoleTiers{SeniorRoles: []string{"supervisor", "lead"}})
}

func floorATicket() domain.Ticket {
	return domain.Ticket{
		ID:       "t-1",
		Status:   domain.TicketStatusPending,
		Priority: domain.TicketPriorityHigh,
		Location: "FloorA",
	}
}

func TestSelectBestPrefersLocalSeniorIdleCandidate(t *testing.T) {
	ranker := testRanker()
	candidates := []domain.StaffCandidate{
		{ID: "a", Role: "supervisor", LocationTag: tag("FloorA"), CurrentWorkload: 0, Availability: domain.StaffAvailable},
		{ID: "b", Role: "technician", LocationTag: tag("FloorB"), CurrentWorkload: 2, Availability: domain.StaffAvailable},
	}

	ranked, err := ranker.Rank(floorATicket(), candidates, evenRule())
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	// A: 100*.4 + 100*.4 + 100*.2 = 100; B: 70*.4 + 80*.4 + 50*.2 = 70.
	assert.Equal(t, 100, ranked[0].SuitabilityScore)
	assert.Equal(t, "a", ranked[0].Candidate.ID)
	assert.Equal(t, 70, ranked[1].SuitabilityScore)

	decision := ranker.SelectBest(floorATicket(), candidates, evenRule())
	require.NotNil(t, decision.ChosenStaffID)
	assert.Equal(t, "a", *decision.ChosenStaffID)
	assert.Equal(t, 100, decision.SuitabilityScore)
	assert.Equal(t, ReasonRuleMatched, decision.ReasonCode)
	assert.Equal(t, "test-rule", decision.RuleApplied)
}

func TestSelectBestAllOffline(t *testing.T) {
	ranker := testRanker()
	candidates := []domain.StaffCandidate{
		{ID: "a", Role: "supervisor", Availability: domain.StaffOffline},
		{ID: "b", Role: "technician", Availability: domain.StaffOffline},
	}

	decision := ranker.SelectBest(floorATicket(), candidates, evenRule())

	assert.Nil(t, decision.ChosenStaffID)
	assert.Equal(t, 0, decision.SuitabilityScore)
	assert.Equal(t, ReasonNoEligibleStaff, decision.ReasonCode)
}

func TestSelectBestEmptyCandidateList(t *testing.T) {
	decision := testRanker().SelectBest(floorATicket(), nil, evenRule())

	assert.Nil(t, decision.ChosenStaffID)
	assert.Equal(t, 0, decision.SuitabilityScore)
}

func TestRankFiltersBusyAndOffline(t *testing.T) {
	ranker := testRanker()
	candidates := []domain.StaffCandidate{
		{ID: "a", Role: "technician", Availability: domain.StaffBusy},
		{ID: "b", Role: "technician", Availability: domain.StaffAvailable},
		{ID: "c", Role: "technician", Availability: domain.StaffOffline},
	}

	ranked, err := ranker.Rank(floorATicket(), candidates, evenRule())
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "b", ranked[0].Candidate.ID)
}

func TestTieBreakWorkloadThenID(t *testing.T) {
	ranker := testRanker()
	sameScore := []domain.StaffCandidate{
		{ID: "z", Role: "technician", LocationTag: tag("FloorA"), CurrentWorkload: 1, Availability: domain.StaffAvailable},
		{ID: "m", Role: "technician", LocationTag: tag("FloorA"), CurrentWorkload: 0, Availability: domain.StaffAvailable},
	}
	// Equal weights on location and experience only: workload does not
	// affect the score, so both candidates tie.
	rule := RoutingRule{Name: "loc-exp", LocationWeight: 0.5, ExperienceWeight: 0.5, WorkloadWeight: 0, IsActive: true}

	decision := ranker.SelectBest(floorATicket(), sameScore, rule)
	require.NotNil(t, decision.ChosenStaffID)
	assert.Equal(t, "m", *decision.ChosenStaffID, "lower workload wins the tie")

	equalWorkload := []domain.StaffCandidate{
		{ID: "z", Role: "technician", LocationTag: tag("FloorA"), CurrentWorkload: 1, Availability: domain.StaffAvailable},
		{ID: "m", Role: "technician", LocationTag: tag("FloorA"), CurrentWorkload: 1, Availability: domain.StaffAvailable},
	}
	for range [10]struct{}{} {
		decision := ranker.SelectBest(floorATicket(), equalWorkload, rule)
		require.NotNil(t, decision.ChosenStaffID)
		assert.Equal(t, "m", *decision.ChosenStaffID, "lowest id wins, reproducibly")
	}
}

func TestWorkloadScoreFloorsAtZero(t *testing.T) {
	ranker := testRanker()
	overloaded := []domain.StaffCandidate{
		{ID: "a", Role: "technician", LocationTag: tag("FloorB"), CurrentWorkload: 10, Availability: domain.StaffAvailable},
	}
	rule := RoutingRule{Name: "workload-only", WorkloadWeight: 1.0, IsActive: true}

	ranked, err := ranker.Rank(floorATicket(), overloaded, rule)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, 0, ranked[0].SuitabilityScore)
}

func TestSuitabilityStaysWithinBounds(t *testing.T) {
	ranker := testRanker()
	rules := []RoutingRule{
		{Name: "r1", LocationWeight: 1, IsActive: true},
		{Name: "r2", ExperienceWeight: 1, IsActive: true},
		{Name: "r3", WorkloadWeight: 1, IsActive: true},
		{Name: "r4", LocationWeight: 0.4, ExperienceWeight: 0.4, WorkloadWeight: 0.2, IsActive: true},
	}
	candidates := []domain.StaffCandidate{
		{ID: "a", Role: "supervisor", LocationTag: tag("FloorA"), CurrentWorkload: 0, Availability: domain.StaffAvailable},
		{ID: "b", Role: "technician", CurrentWorkload: 7, Availability: domain.StaffAvailable},
	}
	for _, rule := range rules {
		ranked, err := ranker.Rank(floorATicket(), candidates, rule)
		require.NoError(t, err)
		for _, rc := range ranked {
			assert.GreaterOrEqual(t, rc.SuitabilityScore, 0, "rule %s", rule.Name)
			assert.LessOrEqual(t, rc.SuitabilityScore, 100, "rule %s", rule.Name)
		}
	}
}

func TestInvalidWeightsFailOnlyThatDecision(t *testing.T) {
	ranker := testRanker()
	bad := RoutingRule{Name: "broken", LocationWeight: 0.5, ExperienceWeight: 0.5, WorkloadWeight: 0.5, IsActive: true}
	candidates := []domain.StaffCandidate{
		{ID: "a", Role: "technician", Availability: domain.StaffAvailable},
	}

	_, err := ranker.Rank(floorATicket(), candidates, bad)
	assert.Error(t, err)

	decision := ranker.SelectBest(floorATicket(), candidates, bad)
	assert.Nil(t, decision.ChosenStaffID)
	assert.Equal(t, ReasonRuleConfigInvalid, decision.ReasonCode)
	assert.Equal(t, "broken", decision.RuleApplied)
}

func TestRuleSetMatching(t *testing.T) {
	plumbing := "plumbing"
	rs := RuleSet{
		Rules: []RoutingRule{
			{Name: "inactive", Priority: domain.TicketPriorityUrgent, Category: "plumbing", LocationWeight: 1, IsActive: false},
			{Name: "urgent-plumbing", Priority: domain.TicketPriorityUrgent, Category: "plumbing", LocationWeight: 1, IsActive: true},
			{Name: "urgent-any", Priority: domain.TicketPriorityUrgent, LocationWeight: 1, IsActive: true},
		},
		DefaultRule: RoutingRule{Name: "default", LocationWeight: 0.4, ExperienceWeight: 0.3, WorkloadWeight: 0.3, IsActive: true},
	}

	assert.Equal(t, "urgent-plumbing", rs.Match(domain.TicketPriorityUrgent, &plumbing).Name,
		"inactive rules are skipped")
	electrical := "electrical"
	assert.Equal(t, "urgent-any", rs.Match(domain.TicketPriorityUrgent, &electrical).Name,
		"empty category matches any")
	assert.Equal(t, "default", rs.Match(domain.TicketPriorityLow, &plumbing).Name,
		"no match falls back to the default rule")
}

func TestRoleTiersCaseInsensitive(t *testing.T) {
	tiers := RoleTiers{SeniorRoles: []string{"Supervisor"}}
	assert.True(t, tiers.IsSenior("supervisor"))
	assert.True(t, tiers.IsSenior("SUPERVISOR"))
	assert.False(t, tiers.IsSenior("technician"))
}
