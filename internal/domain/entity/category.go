package entity

import (
	"strings"
	"time"
)

// OthersCategoryName nombre del grupo implícito para productos sin categoría.
const OthersCategoryName = "Others"

// IsOthersCategory compara sin distinguir mayúsculas, igual que la unicidad de nombres.
func IsOthersCategory(name string) bool {
	return strings.EqualFold(name, OthersCategoryName)
}

// Category agrupa productos; solo se usa para búsqueda referencial y filtros.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}
