package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/salonora_backend/internal/service/promotion"
	"github.com/Alijeyrad/salonora_backend/pkg/apperr"
)

func ok(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

func created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": data})
}

func noContent(c fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
		"code":  apperr.CodeInvalidInput,
	})
}

func internalError(c fiber.Ctx, err error) error {
	slog.ErrorContext(c.Context(), "request failed",
		"method", c.Method(), "path", c.Path(), "err", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
		"code":  apperr.CodeInternal,
	})
}

// fail writes a domain error with its reason code so clients can branch on
// "code" (and "reason" for promotion rejections) instead of the message.
func fail(c fiber.Ctx, status int, err error) error {
	body := fiber.Map{
		"error": err.Error(),
		"code":  apperr.CodeOf(err),
	}
	if reason, found := promotion.ReasonOf(err); found {
		body["reason"] = reason
	}
	return c.Status(status).JSON(body)
}

// statusOf maps a reason code to its HTTP status.
func statusOf(code apperr.Code) int {
	switch code {
	case apperr.CodeInvalidInput:
		return fiber.StatusBadRequest
	case apperr.CodeNotFound:
		return fiber.StatusNotFound
	case apperr.CodeSlotNoLongerAvailable, apperr.CodeInvalidTransition:
		return fiber.StatusConflict
	case apperr.CodePromotionInvalid:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// mapDomainError is the fallback for errors a handler has no case for.
func mapDomainError(c fiber.Ctx, err error) error {
	status := statusOf(apperr.CodeOf(err))
	if status == fiber.StatusInternalServerError {
		return internalError(c, err)
	}
	return fail(c, status, err)
}
