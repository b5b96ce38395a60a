package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/restaurant-inventory/internal/domain"
	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
	"github.com/jhoicas/restaurant-inventory/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre la tabla stock_movements (append-only).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id::text, product_id::text, type, quantity, notes, seq, state,
	created_at, created_by, created_by_name, reversed_at, reversed_by`

// Append inserta el movimiento; seq (BIGSERIAL) define el orden del libro.
func (r *MovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.State == "" {
		m.State = entity.MovementActive
	}
	query := `
		INSERT INTO stock_movements (id, product_id, type, quantity, notes, state, created_at, created_by, created_by_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.ProductID, string(m.Type), m.Quantity, m.Notes, string(m.State),
		m.CreatedAt, m.CreatedBy, m.CreatedByName,
	).Scan(&m.Seq)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.NotFound("producto %s", m.ProductID)
		}
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento (vivo o revertido); nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	if !isUUID(id) {
		return nil, nil
	}
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// MarkReversed compare-and-set: solo una de dos reversas concurrentes afecta la fila.
func (r *MovementRepo) MarkReversed(ctx context.Context, id, reversedBy string, at time.Time) error {
	if !isUUID(id) {
		return domain.NotFound("movimiento %s activo", id)
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_movements
		SET state = 'REVERSED', reversed_at = $2, reversed_by = $3
		WHERE id = $1 AND state = 'ACTIVE'`, id, at, reversedBy)
	if err != nil {
		return fmt.Errorf("reverse stock movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("movimiento %s activo", id)
	}
	return nil
}

// ListByProduct historia completa del producto en orden de seq.
func (r *MovementRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	if !isUUID(productID) {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE product_id = $1 ORDER BY seq`, productID)
}

// ListLive movimientos ACTIVE de los productos dados (todos si productIDs es nil).
func (r *MovementRepo) ListLive(ctx context.Context, productIDs []string) ([]*entity.StockMovement, error) {
	if productIDs == nil {
		return r.list(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE state = 'ACTIVE' ORDER BY seq`)
	}
	ids := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		if isUUID(id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, `
		SELECT `+movementColumns+` FROM stock_movements
		WHERE state = 'ACTIVE' AND product_id = ANY($1::uuid[])
		ORDER BY seq`, ids)
}

// List historial del más reciente al más antiguo.
func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements`
	args := []any{}
	if filter.ProductID != "" {
		if !isUUID(filter.ProductID) {
			return []*entity.StockMovement{}, nil
		}
		args = append(args, filter.ProductID)
		query += fmt.Sprintf(` WHERE product_id = $%d`, len(args))
	}
	query += ` ORDER BY seq DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}
	list, err := r.list(ctx, query, args...)
	if list == nil && err == nil {
		list = []*entity.StockMovement{}
	}
	return list, err
}

// ExistsForProduct true si el producto tiene algún movimiento, vivo o revertido.
func (r *MovementRepo) ExistsForProduct(ctx context.Context, productID string) (bool, error) {
	if !isUUID(productID) {
		return false, nil
	}
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stock_movements WHERE product_id = $1)`, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists stock movement: %w", err)
	}
	return exists, nil
}

func (r *MovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var typ, state string
	if err := row.Scan(
		&m.ID, &m.ProductID, &typ, &m.Quantity, &m.Notes, &m.Seq, &state,
		&m.CreatedAt, &m.CreatedBy, &m.CreatedByName, &m.ReversedAt, &m.ReversedBy,
	); err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(typ)
	m.State = entity.MovementState(state)
	return &m, nil
}
