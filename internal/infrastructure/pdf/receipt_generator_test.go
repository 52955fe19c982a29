package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/receipt"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":        "0,00",
		"999":      "999,00",
		"25000":    "25.000,00",
		"1234.5":   "1.234,50",
		"1000000":  "1.000.000,00",
		"-4500.25": "-4.500,25",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestGenerateReceiptPDF(t *testing.T) {
	data := receipt.Data{
		StoreName: "Repuestos El Tornillo",
		Order: &entity.Order{
			ID: "o1", InvoiceID: "INV-ABC-123", Status: entity.OrderCompleted,
			Total: decimal.NewFromInt(25000), Discount: decimal.RequireFromString("0.1"),
			CashierID: "c1", CreatedAt: time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
		},
		Lines: []receipt.Line{
			{ProductName: "Filtro", Count: 2, UnitPrice: decimal.NewFromInt(12000), Subtotal: decimal.NewFromInt(24000)},
		},
		Subtotal:    decimal.NewFromInt(24000),
		GeneratedAt: time.Now(),
	}

	out, err := NewReceiptGenerator().GenerateReceiptPDF(context.Background(), data)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestGenerateReceiptPDF_OrdenNula(t *testing.T) {
	_, err := NewReceiptGenerator().GenerateReceiptPDF(context.Background(), receipt.Data{})
	assert.Error(t, err)
}
