package triage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/facility-triage/internal/domain"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func ticketWithDeadline(minutes int, priority domain.TicketPriority, assignee *string, descLen int) domain.Ticket {
	deadline := testNow.Add(time.Duration(minutes) * time.Minute)
	return domain.Ticket{
		ID:          "t-1",
		Title:       "leaking pipe",
		Description: strings.Repeat("x", descLen),
		Status:      domain.TicketStatusPending,
		Priority:    priority,
		Location:    "FloorA",
		AssignedTo:  assignee,
		SLADeadline: &deadline,
		CreatedAt:   testNow.Add(-time.Hour),
	}
}

func staffPtr(id string) *string { return &id }

func constPerf(score float64) PerformanceLookup {
	return func(string) float64 { return score }
}

func TestAssessUrgentUnassignedNearDeadline(t *testing.T) {
	scorer := NewRiskScorer()

	// 60 (time) + 20 (urgent) + 30 (unassigned) = 110, clamped to 99.
	got := scorer.Assess(ticketWithDeadline(20, domain.TicketPriorityUrgent, nil, 50), testNow, constPerf(0.9))

	assert.Equal(t, 99, got.BreachProbability)
	assert.Equal(t, SeverityCritical, got.Severity)
	assert.Equal(t, []string{"Critical time remaining", "No staff assigned"}, got.RiskFactors)
	assert.Equal(t, []string{"Auto-assign immediately"}, got.SuggestedActions)
	require.NotNil(t, got.TimeToDeadlineMinutes)
	assert.Equal(t, 20, *got.TimeToDeadlineMinutes)
}

func TestAssessLowRiskAssignedTicket(t *testing.T) {
	scorer := NewRiskScorer()

	got := scorer.Assess(ticketWithDeadline(300, domain.TicketPriorityLow, staffPtr("s-1"), 30), testNow, constPerf(0.9))

	assert.Equal(t, 0, got.BreachProbability)
	assert.Equal(t, SeverityLow, got.Severity)
	assert.Empty(t, got.RiskFactors)
	assert.Empty(t, got.SuggestedActions)
}

func TestAssessHighUnassignedComplex(t *testing.T) {
	scorer := NewRiskScorer()

	// 25 (time) + 15 (high) + 30 (unassigned) + 10 (complexity) = 80.
	got := scorer.Assess(ticketWithDeadline(90, domain.TicketPriorityHigh, nil, 250), testNow, constPerf(0.9))

	assert.Equal(t, 80, got.BreachProbability)
	assert.Equal(t, SeverityCritical, got.Severity)
	assert.Equal(t, []string{"Time constraint", "No staff assigned", "Complex request"}, got.RiskFactors)
	assert.Equal(t, []string{"Auto-assign immediately", "Allocate additional resources"}, got.SuggestedActions)
}

func TestAssessLowPerformerGetsReassignmentHint(t *testing.T) {
	scorer := NewRiskScorer()

	got := scorer.Assess(ticketWithDeadline(300, domain.TicketPriorityLow, staffPtr("s-1"), 30), testNow, constPerf(0.5))

	assert.Equal(t, 15, got.BreachProbability)
	assert.Equal(t, []string{"Staff with lower completion rate"}, got.RiskFactors)
	assert.Equal(t, []string{"Consider reassignment"}, got.SuggestedActions)
}

func TestAssessNoDeadlineContributesNoTimeRisk(t *testing.T) {
	scorer := NewRiskScorer()
	ticket := ticketWithDeadline(20, domain.TicketPriorityUrgent, nil, 50)
	ticket.SLADeadline = nil

	got := scorer.Assess(ticket, testNow, constPerf(0.9))

	// 20 (urgent) + 30 (unassigned), no time bucket.
	assert.Equal(t, 50, got.BreachProbability)
	assert.Nil(t, got.TimeToDeadlineMinutes)
}

func TestAssessBreachedDeadlineReportsNegativeMinutes(t *testing.T) {
	scorer := NewRiskScorer()

	got := scorer.Assess(ticketWithDeadline(-45, domain.TicketPriorityLow, staffPtr("s-1"), 30), testNow, constPerf(0.9))

	require.NotNil(t, got.TimeToDeadlineMinutes)
	assert.Equal(t, -45, *got.TimeToDeadlineMinutes)
	assert.Contains(t, got.RiskFactors, "Critical time remaining")
}

func TestAssessIsDeterministic(t *testing.T) {
	scorer := NewRiskScorer()
	ticket := ticketWithDeadline(90, domain.TicketPriorityHigh, nil, 250)

	first := scorer.Assess(ticket, testNow, constPerf(0.9))
	second := scorer.Assess(ticket, testNow, constPerf(0.9))

	assert.Equal(t, first, second)
}

func TestAssessMonotoneInTimeToDeadline(t *testing.T) {
	scorer := NewRiskScorer()

	prev := -1
	for minutes := 300; minutes >= -60; minutes -= 15 {
		got := scorer.Assess(ticketWithDeadline(minutes, domain.TicketPriorityHigh, nil, 50), testNow, constPerf(0.9))
		if prev >= 0 {
			assert.GreaterOrEqual(t, got.BreachProbability, prev,
				"shrinking deadline must never lower breach probability (at %d minutes)", minutes)
		}
		prev = got.BreachProbability
	}
}

func TestAssessBoundsAndSeverityAgree(t *testing.T) {
	scorer := NewRiskScorer()
	priorities := []domain.TicketPriority{
		domain.TicketPriorityLow, domain.TicketPriorityMedium,
		domain.TicketPriorityHigh, domain.TicketPriorityUrgent,
	}
	assignees := []*string{nil, staffPtr("s-1")}
	for _, priority := range priorities {
		for _, assignee := range assignees {
			for _, minutes := range []int{-30, 10, 45, 90, 600} {
				for _, descLen := range []int{0, 500} {
					got := scorer.Assess(ticketWithDeadline(minutes, priority, assignee, descLen), testNow, constPerf(0.5))
					assert.GreaterOrEqual(t, got.BreachProbability, 0)
					assert.LessOrEqual(t, got.BreachProbability, 99)
					assert.Equal(t, SeverityFor(got.BreachProbability), got.Severity)
				}
			}
		}
	}
}

func TestSeverityThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  Severity
	}{
		{0, SeverityLow},
		{39, SeverityLow},
		{40, SeverityMedium},
		{59, SeverityMedium},
		{60, SeverityHigh},
		{79, SeverityHigh},
		{80, SeverityCritical},
		{99, SeverityCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SeverityFor(tc.score), "score %d", tc.score)
	}
}

func TestAssessNilPerformanceLookupIsNeutral(t *testing.T) {
	scorer := NewRiskScorer()

	got := scorer.Assess(ticketWithDeadline(300, domain.TicketPriorityLow, staffPtr("s-1"), 30), testNow, nil)

	assert.Equal(t, 0, got.BreachProbability)
}
