package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/facility-triage/internal/config"
	"github.com/spec-kit/facility-triage/internal/domain"
	"github.com/spec-kit/facility-triage/internal/events"
	"github.com/spec-kit/facility-triage/internal/observability"
	"github.com/spec-kit/facility-triage/internal/repository"
	"github.com/spec-kit/facility-triage/internal/triage"
	apperrors "github.com/spec-kit/facility-triage/pkg/util"
)

// TriageService runs the triage engine against the persistent store. Each
// cycle fetches a fresh snapshot, scores and routes it, then optionally
// persists assignments and emits escalation events.
//
// Overlapping cycles operate on independent snapshots with no locking;
// a double-booking race between two in-flight cycles is accepted and
// resolves on the next cycle when workloads are re-read.
type TriageService struct {
	tickets      repository.TicketRepository
	staff        repository.StaffRepository
	performance  repository.PerformanceRepository
	history      repository.TicketHistoryRepository
	dispatcher   events.Dispatcher
	cache        *redis.Client
	logger       *zap.Logger
	metrics      *observability.Metrics
	orchestrator *triage.Orchestrator
	rules        triage.RuleSet
	cfg          config.TriageConfig
}

// TriageDependencies bundles collaborators for the triage service.
type TriageDependencies struct {
	TicketRepo      repository.TicketRepository
	StaffRepo       repository.StaffRepository
	PerformanceRepo repository.PerformanceRepository
	HistoryRepo     repository.TicketHistoryRepository
	Dispatcher      events.Dispatcher
	Cache           *redis.Client
	Logger          *zap.Logger
	Metrics         *observability.Metrics
	Rules           triage.RuleSet
	Config          config.TriageConfig
}

// NewTriageService constructs the service and its engine.
func NewTriageService(deps TriageDependencies) *TriageService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ranker := triage.NewStaffRanker(triage.RoleTiers{SeniorRoles: deps.Config.SeniorRoles})
	return &TriageService{
		tickets:      deps.TicketRepo,
		staff:        deps.StaffRepo,
		performance:  deps.PerformanceRepo,
		history:      deps.HistoryRepo,
		dispatcher:   deps.Dispatcher,
		cache:        deps.Cache,
		logger:       logger,
		metrics:      deps.Metrics,
		orchestrator: triage.NewOrchestrator(triage.NewRiskScorer(), ranker, logger),
		rules:        deps.Rules,
		cfg:          deps.Config,
	}
}

// Rules returns the configured routing rules.
func (s *TriageService) Rules() triage.RuleSet {
	return s.rules
}

// RunCycle executes one full triage pass. A cycle that fetched zero
// tickets or zero staff completes successfully with empty outputs. Store
// failures are surfaced to the caller; the service performs no retries.
func (s *TriageService) RunCycle(ctx context.Context) (triage.CycleResult, error) {
	started := time.Now()

	tickets, err := s.tickets.FetchActiveTickets(ctx)
	if err != nil {
		return triage.CycleResult{}, apperrors.MapError(fmt.Errorf("fetch active tickets: %w", err))
	}
	candidates, err := s.staff.FetchAvailableStaff(ctx)
	if err != nil {
		return triage.CycleResult{}, apperrors.MapError(fmt.Errorf("fetch staff roster: %w", err))
	}

	result := s.orchestrator.RunCycle(triage.CycleInput{
		Tickets:     tickets,
		Candidates:  candidates,
		Rules:       s.rules,
		Performance: s.performanceLookup(ctx),
		Now:         time.Now(),
	})

	if s.cfg.AutoApply {
		s.applyDecisions(ctx, result.Decisions)
	}
	s.emitEscalations(ctx, result)

	s.metrics.RecordCycle(len(result.Assessments), len(result.Decisions), len(result.Escalations))
	s.publishEvent(ctx, events.Event{
		Type:  events.EventCycleCompleted,
		Actor: engineActor(),
		Payload: events.CycleCompletedPayload{
			Assessed:   len(result.Assessments),
			Routed:     len(result.Decisions),
			Escalated:  len(result.Escalations),
			DurationMS: int(time.Since(started).Milliseconds()),
		},
	})
	s.logger.Info("triage cycle completed",
		zap.Int("assessed", len(result.Assessments)),
		zap.Int("routed", len(result.Decisions)),
		zap.Int("escalated", len(result.Escalations)),
		zap.Duration("duration", time.Since(started)))
	return result, nil
}

// performanceLookup resolves staff performance through the Redis cache,
// falling back to the store and finally the configured neutral default.
func (s *TriageService) performanceLookup(ctx context.Context) triage.PerformanceLookup {
	return func(staffID string) float64 {
		if s.cache != nil {
			if val, err := s.cache.Get(ctx, perfCacheKey(staffID)).Result(); err == nil {
				if score, err := strconv.ParseFloat(val, 64); err == nil {
					return score
				}
			}
		}

		score, err := s.performance.FetchStaffPerformance(ctx, staffID, s.cfg.PerformanceWindowDays, s.cfg.DefaultPerformance)
		if err != nil {
			s.logger.Warn("staff performance lookup failed; using neutral default",
				zap.String("staff_id", staffID),
				zap.Error(err))
			return s.cfg.DefaultPerformance
		}

		if s.cache != nil {
			if err := s.cache.Set(ctx, perfCacheKey(staffID),
				strconv.FormatFloat(score, 'f', -1, 64), s.cfg.PerfCacheTTL()).Err(); err != nil {
				s.logger.Debug("performance cache write failed", zap.Error(err))
			}
		}
		return score
	}
}

// applyDecisions persists assignments for decisions that chose a staff
// member. A conflict (ticket grabbed by another writer between snapshot
// and write) is logged and skipped, never fatal to the cycle.
func (s *TriageService) applyDecisions(ctx context.Context, decisions []triage.RoutingDecision) {
	for _, decision := range decisions {
		if decision.ChosenStaffID == nil {
			continue
		}
		outcome, err := s.tickets.ApplyAssignment(ctx, decision.TicketID, *decision.ChosenStaffID)
		if err != nil {
			s.logger.Warn("assignment write failed",
				zap.String("ticket_id", decision.TicketID),
				zap.Error(err))
			continue
		}
		if outcome == repository.AssignmentConflict {
			s.logger.Info("assignment conflicted; ticket already taken",
				zap.String("ticket_id", decision.TicketID),
				zap.String("staff_id", *decision.ChosenStaffID))
			continue
		}
		s.recordAssignment(ctx, decision)
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketAutoAssigned,
			TicketID: decision.TicketID,
			Actor:    engineActor(),
			Payload: events.TicketAutoAssignedPayload{
				StaffID:          *decision.ChosenStaffID,
				SuitabilityScore: decision.SuitabilityScore,
				RuleApplied:      decision.RuleApplied,
			},
		})
	}
}

// emitEscalations publishes one event per critical assessment. Delivery
// is fire-and-forget; a failed handler never blocks the cycle.
func (s *TriageService) emitEscalations(ctx context.Context, result triage.CycleResult) {
	byID := make(map[string]triage.RiskAssessment, len(result.Assessments))
	for _, assessment := range result.Assessments {
		byID[assessment.TicketID] = assessment
	}
	for _, ticketID := range result.Escalations {
		assessment := byID[ticketID]
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketEscalated,
			TicketID: ticketID,
			Actor:    engineActor(),
			Payload: events.TicketEscalatedPayload{
				BreachProbability: assessment.BreachProbability,
				Severity:          assessment.Severity,
				RiskFactors:       assessment.RiskFactors,
				SuggestedActions:  assessment.SuggestedActions,
			},
		})
	}
}

func (s *TriageService) recordAssignment(ctx context.Context, decision triage.RoutingDecision) {
	if s.history == nil {
		return
	}
	err := s.history.Create(ctx, &domain.TicketHistory{
		TicketID:      decision.TicketID,
		ChangedByType: domain.ActorTypeEngine,
		ChangeType:    domain.ChangeTypeAssignee,
		OldValue:      map[string]any{"assigned_to": nil},
		NewValue: map[string]any{
			"assigned_to":       *decision.ChosenStaffID,
			"suitability_score": decision.SuitabilityScore,
			"rule_applied":      decision.RuleApplied,
		},
	})
	if err != nil {
		s.logger.Warn("assignment audit write failed",
			zap.String("ticket_id", decision.TicketID),
			zap.Error(err))
	}
}

func (s *TriageService) publishEvent(ctx context.Context, event events.Event) {
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

func perfCacheKey(staffID string) string {
	return "perf:" + staffID
}
