package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/finance/api/http/presenter"
	"github.com/artem13815/finance/pkg/health"
)

const readinessBudget = 2 * time.Second

type HealthHandler struct{ svc health.ReadinessUseCase }

func NewHealthHandler(svc health.ReadinessUseCase) *HealthHandler { return &HealthHandler{svc: svc} }

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health
// @Summary Liveness probe
// @Tags    health
// @Produce json
// @Success 200 {object} healthResponse
// @Router  /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(healthResponse{Status: "ok"})
}

// Ready runs every dependency check once and answers 503 if any is down.
// @Summary Readiness probe
// @Tags    health
// @Produce json
// @Success 200 {object} healthResponse
// @Failure 503 {object} healthResponse
// @Router  /ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessBudget)
	defer cancel()

	rep := h.svc.Check(ctx)
	if !rep.Ready() {
		c.Locals(presenter.LocalError, rep.Err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(healthResponse{Status: "not_ready", Checks: rep.Checks})
	}
	return c.JSON(healthResponse{Status: "ready", Checks: rep.Checks})
}
