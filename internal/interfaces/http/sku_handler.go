package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/sku"
)

// SKUHandler expone el canonicalizador de SKUs (protegido).
type SKUHandler struct {
	uc *sku.UseCase
}

// NewSKUHandler construye el handler.
func NewSKUHandler(uc *sku.UseCase) *SKUHandler {
	return &SKUHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar SKU compuesto
// @Description  Devuelve el SKU canónico existente si la combinación ya estaba registrada.
// @Tags         skus
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSKURequest  true  "SKU con fragmentos separados por guion"
// @Success      201  {object}  dto.SKUResponse
// @Success      200  {object}  dto.SKUResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/skus [post]
func (h *SKUHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSKURequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, created, err := h.uc.Canonicalize(c.UserContext(), in.SKU)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return badRequest(c, "VALIDATION", "sku vacío")
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(sku.ToResponse(out, created))
}

// BulkCreate POST /api/skus/bulk
// Cada entrada se resuelve de forma independiente; los errores van por ítem.
func (h *SKUHandler) BulkCreate(c *fiber.Ctx) error {
	var in dto.BulkCreateSKURequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.BulkCreate(c.UserContext(), in.SKUs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"results": out})
}

// List GET /api/skus
func (h *SKUHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), pageFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Check godoc
// @Summary      Consultar si un SKU ya existe
// @Description  No crea fragmentos ni registros.
// @Tags         skus
// @Security     Bearer
// @Produce      json
// @Param        sku  path  string  true  "SKU compuesto"
// @Success      200  {object}  dto.SKUCheckResponse
// @Router       /api/skus/check/{sku} [get]
func (h *SKUHandler) Check(c *fiber.Ctx) error {
	raw := c.Params("sku")
	match, err := h.uc.Check(c.UserContext(), raw)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.SKUCheckResponse{SKU: raw, Exists: match != nil}
	if match != nil {
		out.Match = sku.ToResponse(match, false)
	}
	return c.JSON(out)
}

// GetByID GET /api/skus/:id
func (h *SKUHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(sku.ToResponse(out, false))
}

// Fragments GET /api/skus/fragments/:position
func (h *SKUHandler) Fragments(c *fiber.Ctx) error {
	position, err := strconv.Atoi(c.Params("position"))
	if err != nil || position < 0 {
		return badRequest(c, "VALIDATION", "posición inválida")
	}
	out, err := h.uc.FragmentsByPosition(c.UserContext(), position)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update PUT /api/skus/:id
func (h *SKUHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSKURequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in.SKU)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(sku.ToResponse(out, false))
}

// Delete DELETE /api/skus/:id
func (h *SKUHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
