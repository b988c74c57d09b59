package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/facility-triage/internal/api/dto"
	"github.com/spec-kit/facility-triage/internal/repository"
	apperrors "github.com/spec-kit/facility-triage/pkg/util"
)

// StaffHandler exposes the roster snapshot.
type StaffHandler struct {
	staff repository.StaffRepository
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffRepo repository.StaffRepository) *StaffHandler {
	return &StaffHandler{staff: staffRepo}
}

// ListCandidates GET /staff. Returns the same roster snapshot the triage
// engine ranks, including live workload counts.
func (h *StaffHandler) ListCandidates(c *fiber.Ctx) error {
	candidates, err := h.staff.FetchAvailableStaff(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.StaffCandidateResponse, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, dto.StaffCandidateResponse{
			ID:              candidate.ID,
			Role:            candidate.Role,
			CurrentWorkload: candidate.CurrentWorkload,
			LocationTag:     candidate.LocationTag,
			Availability:    candidate.Availability,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
