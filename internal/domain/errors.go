package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio. Los casos de uso los envuelven con contexto (fmt.Errorf("%w: ...")),
// los handlers los distinguen con errors.Is.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrNegativeStock     = errors.New("stock proyectado negativo")
)

// ConsistencyError señala que un libro de movimientos válido proyecta stock negativo.
// Es una advertencia: el valor se devuelve tal cual junto con este error, nunca recortado a cero.
type ConsistencyError struct {
	ProductID string
	Stock     decimal.Decimal
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("el producto %s tiene stock proyectado negativo (%s)", e.ProductID, e.Stock.String())
}

func (e *ConsistencyError) Unwrap() error { return ErrNegativeStock }

// Invalid envuelve ErrInvalidInput con un mensaje para el usuario.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound envuelve ErrNotFound indicando el recurso.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Forbidden envuelve ErrForbidden indicando la capacidad faltante.
func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}
