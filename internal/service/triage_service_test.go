package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/facility-triage/internal/config"
	"github.com/spec-kit/facility-triage/internal/domain"
	"github.com/spec-kit/facility-triage/internal/events"
	"github.com/spec-kit/facility-triage/internal/observability"
	"github.com/spec-kit/facility-triage/internal/triage"
)

type triageFixture struct {
	tickets    *fakeTicketRepo
	staff      *fakeStaffRepo
	perf       *fakePerformanceRepo
	history    *fakeHistoryRepo
	dispatcher events.Dispatcher
	service    *TriageService

	mu       sync.Mutex
	received []events.Event
}

func defaultTriageConfig() config.TriageConfig {
	return config.TriageConfig{
		AutoApply:             true,
		PerformanceWindowDays: 30,
		DefaultPerformance:    0.8,
		SeniorRoles:           []string{"supervisor"},
	}
}

func newTriageFixture(t *testing.T, cfg config.TriageConfig) *triageFixture {
	t.Helper()
	fx := &triageFixture{
		tickets:    newFakeTicketRepo(),
		staff:      &fakeStaffRepo{},
		perf:       &fakePerformanceRepo{scores: map[string]float64{}},
		history:    &fakeHistoryRepo{},
		dispatcher: events.NewInMemoryDispatcher(),
	}
	capture := func(ctx context.Context, event events.Event) error {
		fx.mu.Lock()
		defer fx.mu.Unlock()
		fx.received = append(fx.received, event)
		return nil
	}
	fx.dispatcher.Subscribe(events.EventTicketEscalated, capture)
	fx.dispatcher.Subscribe(events.EventTicketAutoAssigned, capture)
	fx.dispatcher.Subscribe(events.EventCycleCompleted, capture)

	fx.service = NewTriageService(TriageDependencies{
		TicketRepo:      fx.tickets,
		StaffRepo:       fx.staff,
		PerformanceRepo: fx.perf,
		HistoryRepo:     fx.history,
		Dispatcher:      fx.dispatcher,
		Logger:          zap.NewNop(),
		Metrics:         observability.NewMetrics(),
		Rules:           triage.DefaultRuleSet(),
		Config:          cfg,
	})
	return fx
}

func (fx *triageFixture) eventsOfType(eventType events.EventType) []events.Event {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	var out []events.Event
	for _, event := range fx.received {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func pendingUrgentTicket(id string, minutesToDeadline int) domain.Ticket {
	deadline := time.Now().Add(time.Duration(minutesToDeadline) * time.Minute)
	return domain.Ticket{
		ID:          id,
		Title:       "hvac failure",
		Status:      domain.TicketStatusPending,
		Priority:    domain.TicketPriorityUrgent,
		Location:    "FloorA",
		SLADeadline: &deadline,
		CreatedAt:   time.Now().Add(-time.Hour),
	}
}

func availableTech(id, location string) domain.StaffCandidate {
	return domain.StaffCandidate{
		ID:           id,
		Role:         "technician",
		LocationTag:  &location,
		Availability: domain.StaffAvailable,
	}
}

func TestRunCycleEmptyStoreSucceeds(t *testing.T) {
	fx := newTriageFixture(t, defaultTriageConfig())

	result, err := fx.service.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Assessments)
	assert.Empty(t, result.Decisions)
	assert.Empty(t, result.Escalations)
	assert.Len(t, fx.eventsOfType(events.EventCycleCompleted), 1)
}

func TestRunCycleAutoAppliesAssignments(t *testing.T) {
	fx := newTriageFixture(t, defaultTriageConfig())
	fx.tickets.add(pendingUrgentTicket("t-1", 20))
	fx.staff.candidates = []domain.StaffCandidate{availableTech("s-1", "FloorA")}

	result, err := fx.service.RunCycle(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Decisions, 1)
	require.NotNil(t, result.Decisions[0].ChosenStaffID)
	assert.Equal(t, "s-1", *result.Decisions[0].ChosenStaffID)
	assert.Equal(t, "s-1", fx.tickets.assignments["t-1"])

	assigned := fx.eventsOfType(events.EventTicketAutoAssigned)
	require.Len(t, assigned, 1)
	assert.Equal(t, "t-1", assigned[0].TicketID)

	require.Len(t, fx.history.entries, 1)
	assert.Equal(t, domain.ChangeTypeAssignee, fx.history.entries[0].ChangeType)
	assert.Equal(t, domain.ActorTypeEngine, fx.history.entries[0].ChangedByType)
}

func TestRunCycleEmitsEscalations(t *testing.T) {
	fx := newTriageFixture(t, defaultTriageConfig())
	fx.tickets.add(pendingUrgentTicket("t-1", 20))

	result, err := fx.service.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"t-1"}, result.Escalations)
	escalated := fx.eventsOfType(events.EventTicketEscalated)
	require.Len(t, escalated, 1)
	payload, ok := escalated[0].Payload.(events.TicketEscalatedPayload)
	require.True(t, ok)
	assert.Equal(t, triage.SeverityCritical, payload.Severity)
	assert.Equal(t, 99, payload.BreachProbability)
}

func TestRunCycleAutoApplyDisabledLeavesStoreUntouched(t *testing.T) {
	cfg := defaultTriageConfig()
	cfg.AutoApply = false
	fx := newTriageFixture(t, cfg)
	fx.tickets.add(pendingUrgentTicket("t-1", 20))
	fx.staff.candidates = []domain.StaffCandidate{availableTech("s-1", "FloorA")}

	result, err := fx.service.RunCycle(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Decisions, 1)
	assert.Empty(t, fx.tickets.assignments)
	assert.Empty(t, fx.eventsOfType(events.EventTicketAutoAssigned))
}

func TestRunCycleToleratesAssignmentConflict(t *testing.T) {
	fx := newTriageFixture(t, defaultTriageConfig())
	fx.tickets.add(pendingUrgentTicket("t-1", 20))
	fx.tickets.conflictAll = true
	fx.staff.candidates = []domain.StaffCandidate{availableTech("s-1", "FloorA")}

	_, err := fx.service.RunCycle(context.Background())
	require.NoError(t, err, "a conflicting write is non-fatal")
	assert.Empty(t, fx.eventsOfType(events.EventTicketAutoAssigned))
	assert.Empty(t, fx.history.entries)
}

func TestRunCycleSurfacesFetchFailure(t *testing.T) {
	fx := newTriageFixture(t, defaultTriageConfig())
	fx.tickets.failFetch = errors.New("connection refused")

	_, err := fx.service.RunCycle(context.Background())
	assert.Error(t, err)
}

func TestRunCycleUsesPerformanceScores(t *testing.T) {
	fx := newTriageFixture(t, defaultTriageConfig())
	deadline := time.Now().Add(5 * time.Hour)
	slacker := "s-slow"
	fx.tickets.add(domain.Ticket{
		ID:          "t-1",
		Title:       "door sensor",
		Status:      domain.TicketStatusInProgress,
		Priority:    domain.TicketPriorityLow,
		Location:    "FloorA",
		AssignedTo:  &slacker,
		SLADeadline: &deadline,
		CreatedAt:   time.Now().Add(-time.Hour),
	})
	fx.perf.scores[slacker] = 0.4

	result, err := fx.service.RunCycle(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Assessments, 1)
	assert.Equal(t, 15, result.Assessments[0].BreachProbability)
	assert.Contains(t, result.Assessments[0].RiskFactors, "Staff with lower completion rate")
	assert.Positive(t, fx.perf.calls)
}
