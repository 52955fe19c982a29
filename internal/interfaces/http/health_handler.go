package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger cualquier dependencia que pueda reportar disponibilidad (pool, redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapta una función a Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler GET /health: 200 si todas las dependencias responden, 503 si no.
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler construye el handler. checks puede estar vacío (store en memoria).
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	deps := fiber.Map{}
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			status = fiber.StatusServiceUnavailable
			deps[name] = err.Error()
			continue
		}
		deps[name] = "ok"
	}
	state := "ok"
	if status != fiber.StatusOK {
		state = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{"status": state, "dependencies": deps})
}
