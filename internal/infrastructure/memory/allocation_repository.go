package memory

import (
	"context"
	"iter"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.AllocationRepository = (*AllocationRepo)(nil)

// AllocationRepo mapa de ubicaciones en memoria. El bloqueo de fila lo da la serialización del store.
type AllocationRepo struct {
	h handle
}

func (r *AllocationRepo) Get(_ context.Context, productID, warehouseID, locationID string) (*entity.ProductLocation, error) {
	out := &entity.ProductLocation{ProductID: productID, WarehouseID: warehouseID, LocationID: locationID, Quantity: decimal.Zero}
	err := r.h.read(func(st *state) error {
		if row, ok := st.allocations[allocKey{productID, warehouseID, locationID}]; ok {
			out = ptr(*row)
		}
		return nil
	})
	return out, err
}

func (r *AllocationRepo) GetForUpdate(ctx context.Context, productID, warehouseID, locationID string) (*entity.ProductLocation, error) {
	return r.Get(ctx, productID, warehouseID, locationID)
}

func (r *AllocationRepo) Save(_ context.Context, pl *entity.ProductLocation) error {
	if pl.Quantity.IsNegative() {
		return domain.NewValidationError("quantity", "dnonneg")
	}
	return r.h.write("allocations.save", func(st *state) error {
		k := allocKey{pl.ProductID, pl.WarehouseID, pl.LocationID}
		if pl.Quantity.IsZero() {
			delete(st.allocations, k)
			return nil
		}
		st.allocations[k] = ptr(*pl)
		return nil
	})
}

func (r *AllocationRepo) SumByProduct(_ context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.h.read(func(st *state) error {
		for k, row := range st.allocations {
			if k.product == productID && k.warehouse == warehouseID {
				sum = sum.Add(row.Quantity)
			}
		}
		return nil
	})
	return sum, err
}

func (r *AllocationRepo) selectRows(match func(allocKey) bool) ([]*entity.ProductLocation, error) {
	var out []*entity.ProductLocation
	err := r.h.read(func(st *state) error {
		for k, row := range st.allocations {
			if match(k) {
				out = append(out, ptr(*row))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].LocationID != out[j].LocationID {
			return out[i].LocationID < out[j].LocationID
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, err
}

func (r *AllocationRepo) StreamByWarehouse(_ context.Context, warehouseID string) iter.Seq2[*entity.ProductLocation, error] {
	return func(yield func(*entity.ProductLocation, error) bool) {
		rows, err := r.selectRows(func(k allocKey) bool { return k.warehouse == warehouseID })
		if err != nil {
			yield(nil, err)
			return
		}
		for _, row := range rows {
			if !yield(row, nil) {
				return
			}
		}
	}
}

func (r *AllocationRepo) ListByProduct(_ context.Context, productID, warehouseID string) ([]*entity.ProductLocation, error) {
	return r.selectRows(func(k allocKey) bool {
		return k.product == productID && (warehouseID == "" || k.warehouse == warehouseID)
	})
}

func (r *AllocationRepo) CountByLocation(_ context.Context, locationID string) (int, error) {
	rows, err := r.selectRows(func(k allocKey) bool { return k.location == locationID })
	return len(rows), err
}
