package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/facility-triage/internal/api/dto"
	"github.com/spec-kit/facility-triage/internal/service"
)

// TriageHandler exposes on-demand triage runs and the rule configuration.
type TriageHandler struct {
	service *service.TriageService
}

// NewTriageHandler constructs handler.
func NewTriageHandler(triageService *service.TriageService) *TriageHandler {
	return &TriageHandler{service: triageService}
}

// RunCycle POST /triage/run. Executes one cycle immediately and returns
// its full output.
func (h *TriageHandler) RunCycle(c *fiber.Ctx) error {
	result, err := h.service.RunCycle(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromCycleResult(result)})
}

// GetRules GET /triage/rules.
func (h *TriageHandler) GetRules(c *fiber.Ctx) error {
	rules := h.service.Rules()
	items := make([]dto.RuleResponse, 0, len(rules.Rules)+1)
	for _, rule := range rules.Rules {
		items = append(items, dto.FromRule(rule))
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"rules":        items,
			"default_rule": dto.FromRule(rules.DefaultRule),
		},
	})
}
