package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"clinicore/internal/domain"
	applog "clinicore/internal/log"
	"clinicore/internal/validate"
)

// StatusFor maps the core failure taxonomy onto HTTP status codes.
// Stock, slot and state-machine refusals are conflicts: the request was
// well formed, the current state just disallows it.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrSlotUnavailable),
		errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, action string, err error) error {
	status := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		applog.Error(c, action, err, nil)
		return c.Status(status).JSON(fiber.Map{"error": "internal error"})
	}
	applog.Info(c, action, map[string]any{"refused": err.Error()})
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badInput(c *fiber.Ctx, field string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid " + field})
}

// actor pulls the acting staff identity supplied by the auth layer in
// front of this service.
func actor(c *fiber.Ctx) (string, bool) {
	return validate.ID(c.Get("X-Staff-Id"))
}
