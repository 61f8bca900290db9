package ledger

import (
	"iter"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// Position saldo de un producto en una bodega: neto del kardex contra lo ubicado en racks.
type Position struct {
	ProductID string
	Net       decimal.Decimal
	Allocated decimal.Decimal
}

// Pending cantidad recibida aún sin ubicar.
func (p Position) Pending() decimal.Decimal {
	return PendingToShelve(p.Net, p.Allocated)
}

// Overallocated indica violación de la cota Σ ubicaciones ≤ neto.
func (p Position) Overallocated() bool {
	return p.Allocated.GreaterThan(p.Net)
}

// Positions pliega movimientos y asignaciones de una bodega por producto.
func Positions(
	movements iter.Seq2[*entity.Movement, error],
	allocations iter.Seq2[*entity.ProductLocation, error],
) (map[string]*Position, error) {
	out := make(map[string]*Position)
	get := func(productID string) *Position {
		p, ok := out[productID]
		if !ok {
			p = &Position{ProductID: productID, Net: decimal.Zero, Allocated: decimal.Zero}
			out[productID] = p
		}
		return p
	}
	for m, err := range movements {
		if err != nil {
			return nil, err
		}
		if !AffectsStock(m.Type) {
			continue
		}
		p := get(m.ProductID)
		p.Net = p.Net.Add(Signed(m))
	}
	for a, err := range allocations {
		if err != nil {
			return nil, err
		}
		p := get(a.ProductID)
		p.Allocated = p.Allocated.Add(a.Quantity)
	}
	return out, nil
}

// Reconcile devuelve solo las posiciones con pendiente por ubicar > 0, ordenadas por producto.
func Reconcile(
	movements iter.Seq2[*entity.Movement, error],
	allocations iter.Seq2[*entity.ProductLocation, error],
) ([]Position, error) {
	positions, err := Positions(movements, allocations)
	if err != nil {
		return nil, err
	}
	var pending []Position
	for _, p := range positions {
		if p.Pending().IsPositive() {
			pending = append(pending, *p)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ProductID < pending[j].ProductID })
	return pending, nil
}
