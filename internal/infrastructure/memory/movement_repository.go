package memory

import (
	"context"
	"iter"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/ledger"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo kardex en memoria; el orden de inserción es el orden cronológico.
type MovementRepo struct {
	h handle
}

func (r *MovementRepo) Append(_ context.Context, m *entity.Movement) error {
	if !m.Type.Valid() {
		return domain.NewValidationError("type", "oneof")
	}
	if !m.Quantity.IsPositive() {
		return domain.NewValidationError("quantity", "dpos")
	}
	return r.h.write("movements.append", func(st *state) error {
		if _, ok := st.products[m.ProductID]; !ok {
			return domain.NewValidationError("product_id", "exists")
		}
		if _, ok := st.warehouses[m.WarehouseID]; !ok {
			return domain.NewValidationError("warehouse_id", "exists")
		}
		st.movements = append(st.movements, ptr(*m))
		return nil
	})
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	var out *entity.Movement
	err := r.h.read(func(st *state) error {
		for _, m := range st.movements {
			if m.ID == id {
				out = ptr(*m)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func matches(m *entity.Movement, f repository.MovementFilter) bool {
	if f.ProductID != "" && m.ProductID != f.ProductID {
		return false
	}
	if f.WarehouseID != "" && m.WarehouseID != f.WarehouseID {
		return false
	}
	if f.DocumentNumber != "" && m.DocumentNumber != f.DocumentNumber {
		return false
	}
	if f.CorrectsMovementID != "" && m.CorrectsMovementID != f.CorrectsMovementID {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, m.Type) {
		return false
	}
	if f.From != nil && m.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !m.CreatedAt.Before(*f.To) {
		return false
	}
	return f.Scope.Matches(m)
}

// Stream copia la selección al iniciar cada recorrido; recorrer de nuevo vuelve a leer.
func (r *MovementRepo) Stream(_ context.Context, filter repository.MovementFilter) iter.Seq2[*entity.Movement, error] {
	return func(yield func(*entity.Movement, error) bool) {
		var selected []*entity.Movement
		err := r.h.read(func(st *state) error {
			for _, m := range st.movements {
				if matches(m, filter) {
					selected = append(selected, ptr(*m))
				}
			}
			return nil
		})
		if err != nil {
			yield(nil, err)
			return
		}
		if filter.Order == repository.NewestFirst {
			slices.Reverse(selected)
		}
		for _, m := range selected {
			if !yield(m, nil) {
				return
			}
		}
	}
}

func (r *MovementRepo) NetStock(_ context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	net := decimal.Zero
	err := r.h.read(func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID == productID && m.WarehouseID == warehouseID {
				net = net.Add(ledger.Signed(m))
			}
		}
		return nil
	})
	return net, err
}

func (r *MovementRepo) NetStockByProduct(_ context.Context, productID string) (decimal.Decimal, error) {
	net := decimal.Zero
	err := r.h.read(func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID == productID {
				net = net.Add(ledger.Signed(m))
			}
		}
		return nil
	})
	return net, err
}
