package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	CategoryID   string          `json:"category_id"`
	UnitType     string          `json:"unit_type" validate:"required"`
	OpeningStock decimal.Decimal `json:"opening_stock"`
}

// UpdateProductRequest actualización parcial; los campos nil no se tocan.
// Cambiar opening_stock redefine la línea base de toda la proyección del producto.
type UpdateProductRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=200"`
	CategoryID   *string          `json:"category_id"`
	UnitType     *string          `json:"unit_type"`
	OpeningStock *decimal.Decimal `json:"opening_stock"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	UnitType     string          `json:"unit_type"`
	OpeningStock decimal.Decimal `json:"opening_stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductStockResponse producto con su stock derivado y estado.
type ProductStockResponse struct {
	ProductResponse
	CurrentStock decimal.Decimal `json:"current_stock"`
	Status       string          `json:"status"`
	Warning      string          `json:"warning,omitempty"`
}

// ProductListResponse listado del catálogo con stock.
type ProductListResponse struct {
	Items []ProductStockResponse `json:"items"`
	Total int                    `json:"total"`
}

// CreateCategoryRequest entrada para crear una categoría.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
