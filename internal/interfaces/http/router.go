package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/analytics"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/application/orders"
	"github.com/jhoicas/pos-ledger/internal/application/receipt"
	"github.com/jhoicas/pos-ledger/internal/application/sku"
	"github.com/jhoicas/pos-ledger/internal/application/usecase"
	"github.com/jhoicas/pos-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	OrdersUC        *orders.UseCase
	ReceiptUC       *receipt.UseCase
	SKUUC           *sku.UseCase
	ProductUC       *usecase.ProductUseCase
	DashboardUC     *analytics.DashboardUseCase
	ReplenishmentUC *inventory.ReplenishmentUseCase
	HealthChecks    map[string]Pinger
	BackfillBatch   int
	JWTSecret       string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", NewHealthHandler(deps.HealthChecks).Check)

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(jwt.RoleAdmin)
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleCashier)

	// Orders. Las rutas fijas van antes de /:id.
	orderGroup := protected.Group("/orders", anyRole)
	orderHandler := NewOrderHandler(deps.OrdersUC, deps.ReceiptUC, deps.BackfillBatch)
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	orderGroup.Get("/statistics", dashboardHandler.CashierStatistics)
	orderGroup.Get("/sales-statistics", dashboardHandler.SalesStatistics)
	orderGroup.Get("/period-statistics", dashboardHandler.PeriodStatistics)
	orderGroup.Get("/mine", orderHandler.Mine)
	orderGroup.Post("/invoice-backfill", adminOnly, orderHandler.BackfillInvoices)
	orderGroup.Post("/", orderHandler.Create)
	orderGroup.Get("/", orderHandler.List)
	orderGroup.Get("/:id", orderHandler.GetByID)
	orderGroup.Get("/:id/receipt", orderHandler.Receipt)
	orderGroup.Put("/:id", adminOnly, orderHandler.Update)
	orderGroup.Patch("/:id/cancel", orderHandler.Cancel)
	orderGroup.Patch("/:id/return", orderHandler.Return)

	// Products
	products := protected.Group("/products", anyRole)
	productHandler := NewProductHandler(deps.ProductUC)
	inventoryHandler := NewInventoryHandler(deps.ReplenishmentUC)
	products.Get("/replenishment", adminOnly, inventoryHandler.GetReplenishmentList)
	products.Post("/", adminOnly, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	// SKUs
	skus := protected.Group("/skus", anyRole)
	skuHandler := NewSKUHandler(deps.SKUUC)
	skus.Get("/check/:sku", skuHandler.Check)
	skus.Get("/fragments/:position", adminOnly, skuHandler.Fragments)
	skus.Post("/bulk", adminOnly, skuHandler.BulkCreate)
	skus.Post("/", adminOnly, skuHandler.Create)
	skus.Get("/", skuHandler.List)
	skus.Get("/:id", skuHandler.GetByID)
	skus.Put("/:id", adminOnly, skuHandler.Update)
	skus.Delete("/:id", adminOnly, skuHandler.Delete)
}
