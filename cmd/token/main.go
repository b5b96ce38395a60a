// Command token emite un JWT firmado con JWT_SECRET para probar la API en local.
//
//	go run ./cmd/token --user 7 --name "Ana" --role admin
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
	"github.com/jhoicas/restaurant-inventory/pkg/config"
	"github.com/jhoicas/restaurant-inventory/pkg/jwt"
)

func main() {
	userID := pflag.String("user", "", "ID del usuario (vacío = uuid aleatorio)")
	name := pflag.String("name", "local", "nombre visible del usuario")
	role := pflag.String("role", entity.RoleStaff, "rol: admin | staff")
	expMin := pflag.Int("exp", 0, "minutos de validez (0 = JWT_EXPIRATION_MINUTES)")
	pflag.Parse()

	if *role != entity.RoleAdmin && *role != entity.RoleStaff {
		fmt.Fprintf(os.Stderr, "rol inválido %q\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET no está definido")
		os.Exit(1)
	}
	if *userID == "" {
		*userID = uuid.NewString()
	}
	if *expMin <= 0 {
		*expMin = cfg.JWT.Expiration
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, jwt.Identity{UserID: *userID, Name: *name, Role: *role}, cfg.JWT.Issuer, *expMin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generar token:", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
