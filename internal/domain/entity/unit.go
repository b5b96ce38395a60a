package entity

// UnitType unidad de medida del producto; los movimientos usan la misma unidad.
type UnitType string

const (
	UnitTypeUnit  UnitType = "unit"
	UnitTypeKg    UnitType = "kg"
	UnitTypeGram  UnitType = "gram"
	UnitTypeLitre UnitType = "litre"
	UnitTypeMl    UnitType = "ml"
	UnitTypePiece UnitType = "piece"
)

// UnitTypes lista las unidades válidas en el orden en que se ofrecen al usuario.
var UnitTypes = []UnitType{UnitTypeUnit, UnitTypeKg, UnitTypeGram, UnitTypeLitre, UnitTypeMl, UnitTypePiece}

// Valid indica si u pertenece al conjunto enumerado.
func (u UnitType) Valid() bool {
	for _, t := range UnitTypes {
		if u == t {
			return true
		}
	}
	return false
}
