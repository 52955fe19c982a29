// Package sku contiene las reglas puras de canonicalización de SKUs compuestos.
package sku

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// Separator separa los fragmentos en la representación textual de un SKU.
const Separator = "-"

// Split divide el SKU en fragmentos limpios (trim + NFC).
// Una entrada vacía devuelve (nil, nil): "sin SKU" es distinto de "SKU vacío".
// Un fragmento vacío entre separadores es entrada inválida.
func Split(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	return Normalize(strings.Split(raw, Separator))
}

// Normalize limpia fragmentos ya separados. Una lista vacía devuelve (nil, nil).
func Normalize(fragments []string) ([]string, error) {
	if len(fragments) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(fragments))
	for i, f := range fragments {
		v := norm.NFC.String(strings.TrimSpace(f))
		if v == "" {
			return nil, fmt.Errorf("%w: fragmento vacío en la posición %d", domain.ErrInvalidInput, i)
		}
		if strings.Contains(v, Separator) {
			return nil, fmt.Errorf("%w: el fragmento %q contiene el separador", domain.ErrInvalidInput, v)
		}
		out = append(out, v)
	}
	return out, nil
}

// ContentKey clave de identidad de un SKU canónico: hash de los IDs de fragmento
// ordenados. Dos SKUs con el mismo conjunto de fragmentos (mismo tamaño, mismos
// miembros) comparten clave.
func ContentKey(fragmentIDs []string) string {
	ids := append([]string(nil), fragmentIDs...)
	sort.Strings(ids)
	return hashParts(ids)
}

// LookupKey clave de caché para una secuencia ordenada de valores.
func LookupKey(values []string) string {
	return hashParts(values)
}

func hashParts(parts []string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Display representación textual: valores ordenados por posición unidos con "-".
func Display(fragments []entity.SKUFragment) string {
	sorted := append([]entity.SKUFragment(nil), fragments...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	vals := make([]string, 0, len(sorted))
	for _, f := range sorted {
		vals = append(vals, f.Value)
	}
	return strings.Join(vals, Separator)
}
