package entity

import (
	"sort"
	"time"
)

// SKUFragment segmento posicional de un SKU compuesto (ej. "ENG" en la posición 0 de "ENG-100-A").
type SKUFragment struct {
	ID        string
	Position  int
	Value     string
	CreatedAt time.Time
}

// CanonicalSKU registro deduplicado de una combinación de fragmentos.
// ContentKey identifica el conjunto de fragmentos; es único en almacenamiento.
type CanonicalSKU struct {
	ID         string
	ContentKey string
	Fragments  []SKUFragment // ordenados por Position
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FragmentIDs devuelve los IDs de fragmento en orden de posición.
func (c *CanonicalSKU) FragmentIDs() []string {
	ids := make([]string, 0, len(c.Fragments))
	for _, f := range c.Fragments {
		ids = append(ids, f.ID)
	}
	return ids
}

// Values devuelve los valores de fragmento en orden de posición.
func (c *CanonicalSKU) Values() []string {
	vals := make([]string, 0, len(c.Fragments))
	for _, f := range c.Fragments {
		vals = append(vals, f.Value)
	}
	return vals
}

// SortFragments ordena los fragmentos por posición.
func (c *CanonicalSKU) SortFragments() {
	sort.SliceStable(c.Fragments, func(i, j int) bool {
		return c.Fragments[i].Position < c.Fragments[j].Position
	})
}

// Clone copia el SKU sin compartir el slice de fragmentos.
func (c *CanonicalSKU) Clone() *CanonicalSKU {
	if c == nil {
		return nil
	}
	out := *c
	out.Fragments = append([]SKUFragment(nil), c.Fragments...)
	return &out
}
