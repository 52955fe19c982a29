package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/orders"
	"github.com/jhoicas/pos-ledger/internal/application/receipt"
)

// IdempotencyHeader cabecera opcional para reintentos seguros de POST /orders.
const IdempotencyHeader = "Idempotency-Key"

// OrderHandler maneja las peticiones HTTP del ciclo de vida de órdenes (protegido).
type OrderHandler struct {
	uc            *orders.UseCase
	receipts      *receipt.UseCase
	backfillBatch int
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.UseCase, receipts *receipt.UseCase, backfillBatch int) *OrderHandler {
	return &OrderHandler{uc: uc, receipts: receipts, backfillBatch: backfillBatch}
}

// Create godoc
// @Summary      Crear orden de venta
// @Description  Descuenta stock de forma atómica. Idempotency-Key permite reintentar sin duplicar.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                  false  "Clave de idempotencia"
// @Param        body             body    dto.CreateOrderRequest  true   "Ítems, estado, total y descuento"
// @Success      201  {object}  dto.OrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in, c.Get(IdempotencyHeader))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar órdenes
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        search  query  string  false  "Subcadena del invoice id"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), c.Query("cashier_id"), c.Query("search"), pageFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Mine órdenes del cajero autenticado.
// GET /api/orders/mine
func (h *OrderHandler) Mine(c *fiber.Ctx) error {
	out, err := h.uc.ListByCashier(c.UserContext(), GetUserID(c), c.Query("search"), pageFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener orden por ID
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Cambiar estado o metadatos de una orden
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la orden"
// @Param        body  body  dto.UpdateOrderRequest  true  "Estado destino, ítems y metadatos"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Cancel PATCH /api/orders/:id/cancel
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Return PATCH /api/orders/:id/return
func (h *OrderHandler) Return(c *fiber.Ctx) error {
	out, err := h.uc.Return(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Descargar comprobante PDF
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/receipt [get]
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	pdf, filename, err := h.receipts.Receipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}

// BackfillInvoices asigna invoice ids a las órdenes que no tienen.
// POST /api/orders/invoice-backfill
func (h *OrderHandler) BackfillInvoices(c *fiber.Ctx) error {
	batch := c.QueryInt("batch", h.backfillBatch)
	res, err := h.uc.BackfillInvoiceIDs(c.UserContext(), batch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// pageFrom lee limit/offset de la query con los defaults de dto.PageRequest.
func pageFrom(c *fiber.Ctx) dto.PageRequest {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	return page
}
