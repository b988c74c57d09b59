package triage

import (
	"fmt"
	"math"
	"strings"

	"github.com/spec-kit/facility-triage/internal/domain"
)

// weightTolerance bounds floating-point drift when checking that rule
// weights sum to one.
const weightTolerance = 1e-9

// RoutingRule maps a (priority, category) pair to staff-selection weights.
// The three weights must sum to 1.0; the engine validates but never
// renormalizes.
type RoutingRule struct {
	Name             string
	Priority         domain.TicketPriority
	Category         string
	LocationWeight   float64
	ExperienceWeight float64
	WorkloadWeight   float64
	IsActive         bool
}

// Validate checks the weight invariant.
func (r RoutingRule) Validate() error {
	sum := r.LocationWeight + r.ExperienceWeight + r.WorkloadWeight
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("routing rule %q: weights sum to %v, want 1.0", r.Name, sum)
	}
	return nil
}

// RuleSet holds the configured routing rules plus the designated default
// used when no (priority, category) rule matches.
type RuleSet struct {
	Rules       []RoutingRule
	DefaultRule RoutingRule
}

// Match returns the first active rule matching the ticket's priority and
// category, falling back to the default rule. A rule with an empty
// category matches tickets of any category.
func (rs RuleSet) Match(priority domain.TicketPriority, category *string) RoutingRule {
	cat := ""
	if category != nil {
		cat = strings.ToLower(strings.TrimSpace(*category))
	}
	for _, rule := range rs.Rules {
		if !rule.IsActive {
			continue
		}
		if rule.Priority != priority {
			continue
		}
		if rule.Category != "" && strings.ToLower(rule.Category) != cat {
			continue
		}
		return rule
	}
	return rs.DefaultRule
}

// RoleTiers designates which staff roles count as the senior/supervisor
// experience tier. Role matching is case-insensitive.
type RoleTiers struct {
	SeniorRoles []string
}

// IsSenior reports whether the role belongs to the senior tier.
func (t RoleTiers) IsSenior(role string) bool {
	for _, senior := range t.SeniorRoles {
		if strings.EqualFold(senior, role) {
			return true
		}
	}
	return false
}

// DefaultRuleSet returns an even-weighted default rule with no
// per-category overrides.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		DefaultRule: RoutingRule{
			Name:             "default",
			LocationWeight:   0.4,
			ExperienceWeight: 0.3,
			WorkloadWeight:   0.3,
			IsActive:         true,
		},
	}
}
