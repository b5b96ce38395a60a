package repository

import (
	"context"
	"time"

	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
)

// MovementFilter filtro del historial de movimientos.
type MovementFilter struct {
	ProductID string // vacío = todos
	Limit     int    // 0 = sin límite
	Offset    int
}

// MovementRepository puerto del libro de movimientos (append-only).
type MovementRepository interface {
	// Append persiste el movimiento y le asigna Seq (estrictamente creciente) e ID si falta.
	Append(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	// MarkReversed hace la transición atómica ACTIVE → REVERSED.
	// Devuelve ErrNotFound si el movimiento no existe o ya estaba revertido.
	MarkReversed(ctx context.Context, id, reversedBy string, at time.Time) error
	// ListByProduct devuelve todos los movimientos (vivos y revertidos) en orden de Seq ascendente.
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockMovement, error)
	// ListLive devuelve los movimientos ACTIVE de los productos indicados (todos si ids es nil),
	// en orden de Seq ascendente.
	ListLive(ctx context.Context, productIDs []string) ([]*entity.StockMovement, error)
	// List devuelve el historial para mostrar, del más reciente al más antiguo.
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	ExistsForProduct(ctx context.Context, productID string) (bool, error)
}
