package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/facility-triage/internal/domain"
	"github.com/spec-kit/facility-triage/internal/repository"
)

// fakeTicketRepo is an in-memory TicketRepository for service tests.
type fakeTicketRepo struct {
	mu          sync.Mutex
	tickets     map[string]*domain.Ticket
	created     []*domain.Ticket
	assignments map[string]string
	failFetch   error
	conflictAll bool
	nextID      int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:     map[string]*domain.Ticket{},
		assignments: map[string]string{},
	}
}

func (f *fakeTicketRepo) add(ticket domain.Ticket) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := ticket
	f.tickets[ticket.ID] = &cp
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ticket.ID = fmt.Sprintf("t-%d", f.nextID)
	f.tickets[ticket.ID] = ticket
	f.created = append(f.created, ticket)
	return nil
}

func (f *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *ticket
	f.tickets[ticket.ID] = &cp
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *ticket
	return &cp, nil
}

func (f *fakeTicketRepo) FetchActiveTickets(ctx context.Context) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFetch != nil {
		return nil, f.failFetch
	}
	var out []domain.Ticket
	for _, ticket := range f.tickets {
		if ticket.Active() && !ticket.Retired {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range f.tickets {
		out = append(out, *ticket)
	}
	return out, nil
}

func (f *fakeTicketRepo) ApplyAssignment(ctx context.Context, ticketID, staffID string) (repository.AssignmentOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflictAll {
		return repository.AssignmentConflict, nil
	}
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return repository.AssignmentConflict, pgx.ErrNoRows
	}
	if ticket.AssignedTo != nil && *ticket.AssignedTo != staffID {
		return repository.AssignmentConflict, nil
	}
	ticket.AssignedTo = &staffID
	ticket.Status = domain.TicketStatusAssigned
	f.assignments[ticketID] = staffID
	return repository.AssignmentApplied, nil
}

// fakeStaffRepo is an in-memory StaffRepository.
type fakeStaffRepo struct {
	candidates []domain.StaffCandidate
	failFetch  error
}

func (f *fakeStaffRepo) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeStaffRepo) ListActive(ctx context.Context) ([]domain.StaffMember, error) {
	return nil, nil
}

func (f *fakeStaffRepo) FetchAvailableStaff(ctx context.Context) ([]domain.StaffCandidate, error) {
	if f.failFetch != nil {
		return nil, f.failFetch
	}
	return f.candidates, nil
}

// fakePerformanceRepo returns fixed per-staff scores.
type fakePerformanceRepo struct {
	scores map[string]float64
	calls  int
}

func (f *fakePerformanceRepo) FetchStaffPerformance(ctx context.Context, staffID string, windowDays int, neutralDefault float64) (float64, error) {
	f.calls++
	if score, ok := f.scores[staffID]; ok {
		return score, nil
	}
	return neutralDefault, nil
}

// fakeHistoryRepo records audit entries.
type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.TicketHistory
}

func (f *fakeHistoryRepo) Create(ctx context.Context, history *domain.TicketHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *history)
	return nil
}

func (f *fakeHistoryRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.TicketHistory
	for _, entry := range f.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}
