package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.AllocationRepository = (*AllocationRepo)(nil)

// AllocationRepo mapa (producto, bodega, ubicación) → cantidad sobre product_locations.
// No se guardan filas en cero.
type AllocationRepo struct {
	q Querier
}

// NewAllocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAllocationRepository(q Querier) *AllocationRepo {
	return &AllocationRepo{q: q}
}

func (r *AllocationRepo) get(ctx context.Context, query, productID, warehouseID, locationID string) (*entity.ProductLocation, error) {
	pl := entity.ProductLocation{ProductID: productID, WarehouseID: warehouseID, LocationID: locationID}
	err := r.q.QueryRow(ctx, query, productID, warehouseID, locationID).Scan(&pl.Quantity, &pl.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			pl.Quantity = decimal.Zero
			return &pl, nil
		}
		return nil, fmt.Errorf("get allocation: %w", err)
	}
	return &pl, nil
}

// Get devuelve la fila o una en cero si no existe.
func (r *AllocationRepo) Get(ctx context.Context, productID, warehouseID, locationID string) (*entity.ProductLocation, error) {
	return r.get(ctx, `
		SELECT quantity, updated_at FROM product_locations
		WHERE product_id = $1 AND warehouse_id = $2 AND location_id = $3`,
		productID, warehouseID, locationID)
}

// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Si no existe, el bloqueo lo da la fila del producto.
func (r *AllocationRepo) GetForUpdate(ctx context.Context, productID, warehouseID, locationID string) (*entity.ProductLocation, error) {
	return r.get(ctx, `
		SELECT quantity, updated_at FROM product_locations
		WHERE product_id = $1 AND warehouse_id = $2 AND location_id = $3
		FOR UPDATE`,
		productID, warehouseID, locationID)
}

// Save hace upsert de la cantidad; en cero borra la fila.
func (r *AllocationRepo) Save(ctx context.Context, pl *entity.ProductLocation) error {
	if pl.Quantity.IsNegative() {
		return domain.NewValidationError("quantity", "dnonneg")
	}
	if pl.Quantity.IsZero() {
		_, err := r.q.Exec(ctx, `
			DELETE FROM product_locations
			WHERE product_id = $1 AND warehouse_id = $2 AND location_id = $3`,
			pl.ProductID, pl.WarehouseID, pl.LocationID)
		if err != nil {
			return fmt.Errorf("delete allocation: %w", err)
		}
		return nil
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO product_locations (product_id, warehouse_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, warehouse_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`,
		pl.ProductID, pl.WarehouseID, pl.LocationID, pl.Quantity, pl.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: producto, bodega o ubicación", domain.ErrNotFound)
		}
		return fmt.Errorf("upsert allocation: %w", err)
	}
	return nil
}

// SumByProduct total ubicado de un producto en la bodega.
func (r *AllocationRepo) SumByProduct(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM product_locations
		WHERE product_id = $1 AND warehouse_id = $2`, productID, warehouseID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum allocations: %w", err)
	}
	return sum, nil
}

func (r *AllocationRepo) query(ctx context.Context, w *where) iter.Seq2[*entity.ProductLocation, error] {
	return func(yield func(*entity.ProductLocation, error) bool) {
		rows, err := r.q.Query(ctx, `
			SELECT product_id, warehouse_id, location_id, quantity, updated_at
			FROM product_locations`+w.String()+` ORDER BY location_id, product_id`, w.args...)
		if err != nil {
			yield(nil, fmt.Errorf("list allocations: %w", err))
			return
		}
		defer rows.Close()
		for rows.Next() {
			var pl entity.ProductLocation
			if err := rows.Scan(&pl.ProductID, &pl.WarehouseID, &pl.LocationID, &pl.Quantity, &pl.UpdatedAt); err != nil {
				yield(nil, fmt.Errorf("scan allocation: %w", err))
				return
			}
			if !yield(&pl, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("list allocations: %w", err))
		}
	}
}

// StreamByWarehouse filas de la bodega ordenadas por ubicación.
func (r *AllocationRepo) StreamByWarehouse(ctx context.Context, warehouseID string) iter.Seq2[*entity.ProductLocation, error] {
	w := &where{}
	w.add("warehouse_id = ?", warehouseID)
	return r.query(ctx, w)
}

// ListByProduct ubicaciones de un producto; warehouseID vacío = todas las bodegas.
func (r *AllocationRepo) ListByProduct(ctx context.Context, productID, warehouseID string) ([]*entity.ProductLocation, error) {
	w := &where{}
	w.add("product_id = ?", productID)
	if warehouseID != "" {
		w.add("warehouse_id = ?", warehouseID)
	}
	var out []*entity.ProductLocation
	for pl, err := range r.query(ctx, w) {
		if err != nil {
			return nil, err
		}
		out = append(out, pl)
	}
	return out, nil
}

// CountByLocation filas con stock en la ubicación.
func (r *AllocationRepo) CountByLocation(ctx context.Context, locationID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM product_locations WHERE location_id = $1`, locationID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count allocations: %w", err)
	}
	return n, nil
}
