package repository

import (
	"context"

	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
)

// ProductFilter filtro de listado del catálogo.
type ProductFilter struct {
	CategoryID string   // vacío = todas
	IDs        []string // nil = sin filtro; vacío = ninguno
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Las búsquedas por ID devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción; serializa
	// las escrituras del libro de movimientos de ese producto.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// Update persiste nombre, categoría, unidad, OpeningStock y UpdatedAt; no toca Seq ni
	// LedgerVersion. ErrNotFound si el producto no existe.
	Update(ctx context.Context, product *entity.Product) error
	// BumpLedgerVersion incrementa LedgerVersion; ErrNotFound si el producto no existe.
	BumpLedgerVersion(ctx context.Context, id string) error
	// List devuelve los productos en orden de creación (Seq ascendente).
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	// Delete elimina el producto; ErrNotFound si no existe. La base rechaza borrar un
	// producto con movimientos (FK RESTRICT), pero el caso de uso lo verifica antes.
	Delete(ctx context.Context, id string) error
}
