package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PerformanceRepository computes per-staff completion-vs-breach ratios.
type PerformanceRepository interface {
	// FetchStaffPerformance returns the staff member's ratio of on-time
	// completions to total completions over the trailing window, in [0,1].
	// Staff with no completed work in the window get the neutral default.
	FetchStaffPerformance(ctx context.Context, staffID string, windowDays int, neutralDefault float64) (float64, error)
}

type performanceRepository struct {
	pool *pgxpool.Pool
}

// NewPerformanceRepository instantiates repository.
func NewPerformanceRepository(pool *pgxpool.Pool) PerformanceRepository {
	return &performanceRepository{pool: pool}
}

func (r *performanceRepository) FetchStaffPerformance(ctx context.Context, staffID string, windowDays int, neutralDefault float64) (float64, error) {
	const query = `
        SELECT COUNT(*) AS completed,
               COUNT(*) FILTER (WHERE sla_deadline IS NOT NULL AND completed_at > sla_deadline) AS breached
        FROM tickets
        WHERE assigned_to = $1
          AND status = 'COMPLETED'
          AND completed_at >= NOW() - ($2 * INTERVAL '1 day')`
	var completed, breached int
	if err := r.pool.QueryRow(ctx, query, staffID, windowDays).Scan(&completed, &breached); err != nil {
		return neutralDefault, err
	}
	if completed == 0 {
		return neutralDefault, nil
	}
	score := float64(completed-breached) / float64(completed)
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}
