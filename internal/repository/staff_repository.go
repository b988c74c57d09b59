package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/facility-triage/internal/domain"
)

// StaffRepository encapsulates staff roster persistence.
type StaffRepository interface {
	GetByID(ctx context.Context, id string) (*domain.StaffMember, error)
	ListActive(ctx context.Context) ([]domain.StaffMember, error)
	FetchAvailableStaff(ctx context.Context) ([]domain.StaffCandidate, error)
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	const query = `
        SELECT id, name, role, location_tag, availability, active, created_at, updated_at
        FROM staff_members WHERE id=$1`
	var staff domain.StaffMember
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&staff.ID,
		&staff.Name,
		&staff.Role,
		&staff.LocationTag,
		&staff.Availability,
		&staff.Active,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) ListActive(ctx context.Context) ([]domain.StaffMember, error) {
	const query = `
        SELECT id, name, role, location_tag, availability, active, created_at, updated_at
        FROM staff_members WHERE active = TRUE ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffMember
	for rows.Next() {
		var staff domain.StaffMember
		if err := rows.Scan(
			&staff.ID,
			&staff.Name,
			&staff.Role,
			&staff.LocationTag,
			&staff.Availability,
			&staff.Active,
			&staff.CreatedAt,
			&staff.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, staff)
	}
	return result, rows.Err()
}

// FetchAvailableStaff returns the roster snapshot the triage engine ranks:
// every active staff member with their live count of in-flight tickets.
// Offline members are included so the engine's own availability filter
// stays the single point of that decision.
func (r *staffRepository) FetchAvailableStaff(ctx context.Context) ([]domain.StaffCandidate, error) {
	const query = `
        SELECT s.id, s.role, s.location_tag, s.availability,
               COUNT(t.id) FILTER (WHERE t.status IN ('ASSIGNED','IN_PROGRESS') AND t.retired = FALSE) AS current_workload
        FROM staff_members s
        LEFT JOIN tickets t ON t.assigned_to = s.id
        WHERE s.active = TRUE
        GROUP BY s.id, s.role, s.location_tag, s.availability
        ORDER BY s.id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffCandidate
	for rows.Next() {
		var candidate domain.StaffCandidate
		if err := rows.Scan(
			&candidate.ID,
			&candidate.Role,
			&candidate.LocationTag,
			&candidate.Availability,
			&candidate.CurrentWorkload,
		); err != nil {
			return nil, err
		}
		result = append(result, candidate)
	}
	return result, rows.Err()
}
