package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// isUUID evita enviar a columnas UUID un id mal formado (daría 22P02 en vez de "no existe").
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool { return pgCode(err) == "23505" }

// isForeignKeyViolation 23503: referencia inexistente o borrado restringido.
func isForeignKeyViolation(err error) bool { return pgCode(err) == "23503" }
