package entity

// Roles válidos.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Principal actor de una operación. Se pasa explícitamente a cada caso de uso;
// no existe un "usuario actual" global.
type Principal struct {
	UserID           string
	Name             string
	Role             string
	CanRemoveStock   bool // registrar OUT y revertir movimientos
	CanManageCatalog bool // crear/editar/eliminar productos y categorías
}

// PrincipalForRole construye el principal con las capacidades del rol.
// Un rol desconocido no recibe capacidades elevadas.
func PrincipalForRole(userID, name, role string) Principal {
	p := Principal{UserID: userID, Name: name, Role: role}
	if role == RoleAdmin {
		p.CanRemoveStock = true
		p.CanManageCatalog = true
	}
	return p
}
