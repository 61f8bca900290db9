package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
)

// respondError traduce un error de dominio a su código HTTP. El mensaje se devuelve tal cual.
func respondError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error(), Fields: verr.Fields})
	case errors.Is(err, domain.ErrValidation):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code = fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrAllocationExceedsStock):
		status, code = fiber.StatusConflict, "ALLOCATION_EXCEEDS_STOCK"
	case errors.Is(err, domain.ErrDuplicateReference):
		status, code = fiber.StatusConflict, "DUPLICATE_REFERENCE"
	case errors.Is(err, domain.ErrLocationNotEmpty):
		status, code = fiber.StatusConflict, "LOCATION_NOT_EMPTY"
	case errors.Is(err, domain.ErrGuideRequired):
		status, code = fiber.StatusConflict, "GUIDE_REQUIRED"
	case errors.Is(err, domain.ErrInvalidTransition):
		status, code = fiber.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, domain.ErrConfirmationRequired):
		status, code = fiber.StatusPreconditionRequired, "CONFIRMATION_REQUIRED"
	case errors.Is(err, domain.ErrTransactionFailure):
		status, code = fiber.StatusServiceUnavailable, "TRANSACTION_FAILURE"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: msg})
}
