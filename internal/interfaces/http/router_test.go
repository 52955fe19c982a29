package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/analytics"
	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/application/orders"
	"github.com/jhoicas/pos-ledger/internal/application/receipt"
	"github.com/jhoicas/pos-ledger/internal/application/sku"
	"github.com/jhoicas/pos-ledger/internal/application/usecase"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/pos-ledger/internal/interfaces/http"
	"github.com/jhoicas/pos-ledger/pkg/logger"
	pkgjwt "github.com/jhoicas/pos-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildAPI arma la API completa sobre el store en memoria.
func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	log := logger.Nop()
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	orderRepo := memory.NewOrderRepository(store)
	skuRepo := memory.NewSKURepository(store)
	analyticsRepo := memory.NewAnalyticsRepository(store)
	ledger := inventory.NewStockLedger()

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		OrdersUC: orders.NewUseCase(store, orderRepo, ledger, log,
			orders.WithIdempotencyGuard(memory.NewIdempotencyGuard(time.Hour))),
		ReceiptUC:       receipt.NewUseCase(orderRepo, productRepo, pdf.NewReceiptGenerator(), "Repuestos Test"),
		SKUUC:           sku.NewUseCase(store, skuRepo, memory.NewSKUCache(time.Minute), log),
		ProductUC:       usecase.NewProductUseCase(store, productRepo, skuRepo, ledger, log),
		DashboardUC:     analytics.NewDashboardUseCase(analyticsRepo, log),
		ReplenishmentUC: inventory.NewReplenishmentUseCase(productRepo, analyticsRepo),
		BackfillBatch:   50,
		JWTSecret:       testJWTSecret,
	})
	return app
}

// call ejecuta la petición con el rol indicado ("" = sin token) y decodifica el body en out.
func call(t *testing.T, app *fiber.App, method, path, role string, body any, out any, headers ...string) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func createProduct(t *testing.T, app *fiber.App, name string, qty int) dto.ProductResponse {
	t.Helper()
	threshold := 1
	var p dto.ProductResponse
	status := call(t, app, http.MethodPost, "/api/products", pkgjwt.RoleAdmin, dto.CreateProductRequest{
		Name: name, QuantityRemaining: qty, QuantityThreshold: &threshold,
	}, &p)
	require.Equal(t, http.StatusCreated, status)
	return p
}

func orderBody(productID string, count int, status string) map[string]any {
	return map[string]any{
		"items":  []map[string]any{{"product_id": productID, "count": count}},
		"status": status,
		"total":  "100",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida por HTTP
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_CicloDeVidaDeOrden(t *testing.T) {
	app := buildAPI(t)
	p := createProduct(t, app, "Filtro", 5)

	var order dto.OrderResponse
	status := call(t, app, http.MethodPost, "/api/orders", pkgjwt.RoleCashier, orderBody(p.ID, 3, "reserved"), &order)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, testUserID, order.CashierID)
	assert.Regexp(t, `^INV-[0-9A-F]{3}-[0-9A-F]{3}$`, order.InvoiceID)

	var after dto.ProductResponse
	call(t, app, http.MethodGet, "/api/products/"+p.ID, pkgjwt.RoleCashier, nil, &after)
	assert.Equal(t, 2, after.QuantityRemaining)
	assert.Equal(t, 3, after.QuantitySold)

	status = call(t, app, http.MethodPatch, "/api/orders/"+order.ID+"/cancel", pkgjwt.RoleCashier, nil, &order)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cancelled", order.Status)

	var errResp dto.ErrorResponse
	status = call(t, app, http.MethodPatch, "/api/orders/"+order.ID+"/cancel", pkgjwt.RoleCashier, nil, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_CANCELLED", errResp.Code)

	status = call(t, app, http.MethodPatch, "/api/orders/"+order.ID+"/return", pkgjwt.RoleCashier, nil, &errResp)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "ILLEGAL_TRANSITION", errResp.Code)

	call(t, app, http.MethodGet, "/api/products/"+p.ID, pkgjwt.RoleCashier, nil, &after)
	assert.Equal(t, 5, after.QuantityRemaining)
	assert.Equal(t, 0, after.QuantitySold)
}

func TestAPI_StockInsuficiente(t *testing.T) {
	app := buildAPI(t)
	p := createProduct(t, app, "Bujía", 1)

	var errResp dto.ErrorResponse
	status := call(t, app, http.MethodPost, "/api/orders", pkgjwt.RoleCashier, orderBody(p.ID, 2, "completed"), &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errResp.Code)

	var after dto.ProductResponse
	call(t, app, http.MethodGet, "/api/products/"+p.ID, pkgjwt.RoleCashier, nil, &after)
	assert.Equal(t, 1, after.QuantityRemaining, "sin escrituras parciales")
}

func TestAPI_ProductoDesconocido(t *testing.T) {
	app := buildAPI(t)

	var errResp dto.ErrorResponse
	status := call(t, app, http.MethodPost, "/api/orders", pkgjwt.RoleCashier, orderBody("no-existe", 1, "completed"), &errResp)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "PRODUCT_NOT_FOUND", errResp.Code)

	status = call(t, app, http.MethodGet, "/api/orders/no-existe", pkgjwt.RoleCashier, nil, &errResp)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ORDER_NOT_FOUND", errResp.Code)
}

func TestAPI_EntradaInvalida(t *testing.T) {
	app := buildAPI(t)
	p := createProduct(t, app, "Aceite", 5)

	var errResp dto.ErrorResponse
	status := call(t, app, http.MethodPost, "/api/orders", pkgjwt.RoleCashier, orderBody(p.ID, 0, "completed"), &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errResp.Code)

	status = call(t, app, http.MethodPost, "/api/orders", pkgjwt.RoleCashier, orderBody(p.ID, 1, "returned"), &errResp)
	assert.Equal(t, http.StatusBadRequest, status)

	status = call(t, app, http.MethodGet, "/api/orders/period-statistics?period=forever", pkgjwt.RoleCashier, nil, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_IdempotencyKeyDevuelveLaMismaOrden(t *testing.T) {
	app := buildAPI(t)
	p := createProduct(t, app, "Pastillas", 10)

	var first, second dto.OrderResponse
	require.Equal(t, http.StatusCreated,
		call(t, app, http.MethodPost, "/api/orders", pkgjwt.RoleCashier, orderBody(p.ID, 2, "completed"), &first, apphttp.IdempotencyHeader, "k-1"))
	require.Equal(t, http.StatusCreated,
		call(t, app, http.MethodPost, "/api/orders", pkgjwt.RoleCashier, orderBody(p.ID, 2, "completed"), &second, apphttp.IdempotencyHeader, "k-1"))
	assert.Equal(t, first.ID, second.ID)

	var after dto.ProductResponse
	call(t, app, http.MethodGet, "/api/products/"+p.ID, pkgjwt.RoleCashier, nil, &after)
	assert.Equal(t, 8, after.QuantityRemaining, "el reintento no descuenta dos veces")
}

// ──────────────────────────────────────────────────────────────────────────────
// Autorización por rol
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_RutasDeAdmin(t *testing.T) {
	app := buildAPI(t)
	p := createProduct(t, app, "Correa", 3)
	var order dto.OrderResponse
	require.Equal(t, http.StatusCreated,
		call(t, app, http.MethodPost, "/api/orders", pkgjwt.RoleCashier, orderBody(p.ID, 1, "reserved"), &order))

	cases := []struct {
		method, path string
	}{
		{http.MethodPut, "/api/products/" + p.ID},
		{http.MethodDelete, "/api/products/" + p.ID},
		{http.MethodPut, "/api/orders/" + order.ID},
		{http.MethodGet, "/api/products/replenishment"},
		{http.MethodPost, "/api/orders/invoice-backfill"},
		{http.MethodPost, "/api/skus"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			status := call(t, app, tc.method, tc.path, pkgjwt.RoleCashier, map[string]any{}, nil)
			assert.Equal(t, http.StatusForbidden, status)
		})
	}

	assert.Equal(t, http.StatusUnauthorized, call(t, app, http.MethodGet, "/api/orders", "", nil, nil))
}

// ──────────────────────────────────────────────────────────────────────────────
// SKUs, comprobante y panel
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_SKUCanonicoYConsulta(t *testing.T) {
	app := buildAPI(t)

	var first, second dto.SKUResponse
	require.Equal(t, http.StatusCreated,
		call(t, app, http.MethodPost, "/api/skus", pkgjwt.RoleAdmin, dto.CreateSKURequest{SKU: "ENG-100-A"}, &first))
	require.Equal(t, http.StatusOK,
		call(t, app, http.MethodPost, "/api/skus", pkgjwt.RoleAdmin, dto.CreateSKURequest{SKU: "ENG-100-A"}, &second))
	assert.Equal(t, first.ID, second.ID)

	var check dto.SKUCheckResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/skus/check/ENG-100-A", pkgjwt.RoleCashier, nil, &check))
	assert.True(t, check.Exists)
	require.NotNil(t, check.Match)
	assert.Equal(t, first.ID, check.Match.ID)

	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/skus/check/ENG-100-B", pkgjwt.RoleCashier, nil, &check))
	assert.False(t, check.Exists)

	var fragments []dto.SKUFragmentResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/skus/fragments/1", pkgjwt.RoleAdmin, nil, &fragments))
	require.Len(t, fragments, 1)
	assert.Equal(t, "100", fragments[0].Value)

	assert.Equal(t, http.StatusNoContent, call(t, app, http.MethodDelete, "/api/skus/"+first.ID, pkgjwt.RoleAdmin, nil, nil))
	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/api/skus/"+first.ID, pkgjwt.RoleAdmin, nil, &errResp))
	assert.Equal(t, "SKU_NOT_FOUND", errResp.Code)
}

func TestAPI_ComprobantePDF(t *testing.T) {
	app := buildAPI(t)
	p := createProduct(t, app, "Filtro de aire", 4)

	var order dto.OrderResponse
	require.Equal(t, http.StatusCreated,
		call(t, app, http.MethodPost, "/api/orders", pkgjwt.RoleCashier, orderBody(p.ID, 1, "completed"), &order))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/"+order.ID+"/receipt", nil)
	req.Header.Set("Authorization", tokenForRole(t, pkgjwt.RoleCashier))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), fmt.Sprintf("recibo_%s.pdf", order.InvoiceID))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestAPI_EstadisticasDelCajero(t *testing.T) {
	app := buildAPI(t)
	p := createProduct(t, app, "Radiador", 10)
	require.Equal(t, http.StatusCreated,
		call(t, app, http.MethodPost, "/api/orders", pkgjwt.RoleCashier, orderBody(p.ID, 2, "completed"), nil))
	require.Equal(t, http.StatusCreated,
		call(t, app, http.MethodPost, "/api/orders", pkgjwt.RoleCashier, orderBody(p.ID, 1, "reserved"), nil))

	var stats dto.CashierStatisticsDTO
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/orders/statistics", pkgjwt.RoleCashier, nil, &stats))
	assert.Equal(t, 1, stats.Today.TransactionCount, "las reservadas no cuentan")
	assert.Equal(t, 2, stats.Today.ItemsSold)

	var mine dto.OrderListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/orders/mine", pkgjwt.RoleCashier, nil, &mine))
	assert.Len(t, mine.Items, 2)
}

func TestHealth(t *testing.T) {
	app := buildAPI(t)
	assert.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/health", "", nil, nil))
}
