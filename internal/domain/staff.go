package domain

import "time"

// StaffAvailability enumerates roster availability states.
type StaffAvailability string

const (
	StaffAvailable StaffAvailability = "AVAILABLE"
	StaffBusy      StaffAvailability = "BUSY"
	StaffOffline   StaffAvailability = "OFFLINE"
)

// StaffMember models a maintenance operator record as stored.
type StaffMember struct {
	ID           string
	Name         string
	Role         string
	LocationTag  *string
	Availability StaffAvailability
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StaffCandidate is a per-cycle snapshot of a staff member's eligibility
// to receive work. It is recomputed fresh every triage cycle and never
// persisted by the engine.
type StaffCandidate struct {
	ID               string
	Role             string
	CurrentWorkload  int
	LocationTag      *string
	PerformanceScore float64
	Availability     StaffAvailability
}

// Eligible reports whether the candidate may be selected at all.
func (c StaffCandidate) Eligible() bool {
	return c.Availability == StaffAvailable
}
