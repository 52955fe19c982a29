package lifecycle

import (
	"fmt"
	"strings"

	"github.com/jhoicas/pos-ledger/internal/domain"
)

const invoiceSuffixLen = 6

// InvoiceID deriva el identificador de factura a partir del ID único de la orden.
// Toma los últimos 6 caracteres de su forma hexadecimal (UUID sin guiones) y
// los formatea como INV-XXX-YYY en mayúsculas. Es determinista y sin estado.
func InvoiceID(orderID string) (string, error) {
	hex := strings.ToLower(strings.ReplaceAll(orderID, "-", ""))
	if len(hex) < invoiceSuffixLen {
		return "", fmt.Errorf("%w: id de orden demasiado corto %q", domain.ErrInvalidInput, orderID)
	}
	for _, r := range hex {
		if !isHex(r) {
			return "", fmt.Errorf("%w: id de orden no hexadecimal %q", domain.ErrInvalidInput, orderID)
		}
	}
	short := strings.ToUpper(hex[len(hex)-invoiceSuffixLen:])
	return "INV-" + short[:3] + "-" + short[3:], nil
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}
