package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/domain"
)

// errorMapping código HTTP y código de error para cada tipo de fallo de dominio.
// El orden importa: los sentinels más específicos van primero.
var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrProductNotFound, fiber.StatusNotFound, "PRODUCT_NOT_FOUND"},
	{domain.ErrOrderNotFound, fiber.StatusNotFound, "ORDER_NOT_FOUND"},
	{domain.ErrSKUNotFound, fiber.StatusNotFound, "SKU_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrAlreadyCancelled, fiber.StatusConflict, "ALREADY_CANCELLED"},
	{domain.ErrAlreadyReturned, fiber.StatusConflict, "ALREADY_RETURNED"},
	{domain.ErrIllegalTransition, fiber.StatusUnprocessableEntity, "ILLEGAL_TRANSITION"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrStorageUnavailable, fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"},
}

// StatusFor devuelve el código HTTP y el código de error de err.
func StatusFor(err error) (int, string) {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// writeError responde con dto.ErrorResponse según el tipo de err.
func writeError(c *fiber.Ctx, err error) error {
	status, code := StatusFor(err)
	msg := err.Error()
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		msg = fmt.Sprintf("stock insuficiente para el producto %s: faltan %d unidades", stockErr.ProductID, stockErr.Shortfall())
	}
	if status == fiber.StatusInternalServerError {
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
