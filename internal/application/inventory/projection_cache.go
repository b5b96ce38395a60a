package inventory

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
)

// ProjectionCache memoriza el stock proyectado por (producto, LedgerVersion).
//
// Toda escritura del libro (append, reversa) y todo cambio de la línea base incrementa
// LedgerVersion en la misma transacción, así que una entrada con la versión vigente
// nunca está obsoleta. Los lectores deben leer el producto ANTES que sus movimientos:
// una entrada puede así reflejar un estado más nuevo que su versión, nunca uno más viejo.
type ProjectionCache struct {
	enabled bool
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	version int64
	stock   decimal.Decimal
}

// NewProjectionCache construye la caché; deshabilitada, Get siempre falla y Put no hace nada.
func NewProjectionCache(enabled bool) *ProjectionCache {
	return &ProjectionCache{enabled: enabled, entries: make(map[string]cacheEntry)}
}

// Get devuelve el stock memorizado si la versión coincide con la del producto.
func (c *ProjectionCache) Get(p *entity.Product) (decimal.Decimal, bool) {
	if c == nil || !c.enabled {
		return decimal.Zero, false
	}
	c.mu.RLock()
	e, ok := c.entries[p.ID]
	c.mu.RUnlock()
	if !ok || e.version != p.LedgerVersion {
		return decimal.Zero, false
	}
	return e.stock, true
}

// Put guarda el stock para la versión del producto; no retrocede a versiones anteriores.
func (c *ProjectionCache) Put(p *entity.Product, current decimal.Decimal) {
	if c == nil || !c.enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[p.ID]; ok && e.version > p.LedgerVersion {
		return
	}
	c.entries[p.ID] = cacheEntry{version: p.LedgerVersion, stock: current}
}

// Forget elimina la entrada (producto borrado).
func (c *ProjectionCache) Forget(productID string) {
	if c == nil || !c.enabled {
		return
	}
	c.mu.Lock()
	delete(c.entries, productID)
	c.mu.Unlock()
}

// Len número de entradas (diagnóstico y tests).
func (c *ProjectionCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
