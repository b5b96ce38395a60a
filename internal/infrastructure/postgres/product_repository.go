package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/restaurant-inventory/internal/domain"
	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
	"github.com/jhoicas/restaurant-inventory/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id::text, seq, name, COALESCE(category_id::text, ''), unit_type, opening_stock, ledger_version, created_at, updated_at`

// Create persiste un nuevo producto; seq lo asigna la base.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, name, category_id, unit_type, opening_stock, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7)
		RETURNING seq, ledger_version`
	err := r.q.QueryRow(ctx, query,
		product.ID, product.Name, product.CategoryID, string(product.UnitType),
		product.OpeningStock, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.Seq, &product.LedgerVersion)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.NotFound("categoría %s", product.CategoryID)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductRepo) getOne(ctx context.Context, query, id string) (*entity.Product, error) {
	if !isUUID(id) {
		return nil, nil
	}
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update actualiza los campos editables; seq y ledger_version no se tocan.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, category_id = NULLIF($3, '')::uuid, unit_type = $4, opening_stock = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.CategoryID, string(product.UnitType),
		product.OpeningStock, product.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NotFound("categoría %s", product.CategoryID)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("producto %s", product.ID)
	}
	return nil
}

// BumpLedgerVersion incrementa ledger_version en la transacción en curso.
func (r *ProductRepo) BumpLedgerVersion(ctx context.Context, id string) error {
	if !isUUID(id) {
		return domain.NotFound("producto %s", id)
	}
	tag, err := r.q.Exec(ctx, `UPDATE products SET ledger_version = ledger_version + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("bump ledger version: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("producto %s", id)
	}
	return nil
}

// List productos en orden de creación, opcionalmente filtrados por categoría.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var (
		where []string
		args  []any
	)
	if filter.CategoryID != "" {
		if !isUUID(filter.CategoryID) {
			return nil, nil
		}
		args = append(args, filter.CategoryID)
		where = append(where, fmt.Sprintf(`category_id = $%d`, len(args)))
	}
	if filter.IDs != nil {
		ids := make([]string, 0, len(filter.IDs))
		for _, id := range filter.IDs {
			if isUUID(id) {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return nil, nil
		}
		args = append(args, ids)
		where = append(where, fmt.Sprintf(`id = ANY($%d::uuid[])`, len(args)))
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY seq`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete elimina el producto; con movimientos la FK (RESTRICT) lo impide.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return domain.NotFound("producto %s", id)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: el producto %s tiene movimientos registrados", domain.ErrConflict, id)
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("producto %s", id)
	}
	return nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var unit string
	if err := row.Scan(
		&p.ID, &p.Seq, &p.Name, &p.CategoryID, &unit, &p.OpeningStock,
		&p.LedgerVersion, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.UnitType = entity.UnitType(unit)
	return &p, nil
}
