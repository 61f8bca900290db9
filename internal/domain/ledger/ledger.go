// Package ledger contiene los pliegues puros sobre el kardex y el mapa de ubicaciones.
//
// Convención de signos (la invariante central del sistema):
//
//	(+1) INBOUND, TRANSFER_IN, INCREASE
//	(-1) OUTBOUND, TRANSFER_OUT, DECREASE
//	( 0) PUTAWAY (solo traslado a ubicación, nunca altera stock)
//
// Ninguna función de este paquete tiene efectos secundarios; pueden recalcularse
// libremente y en paralelo sobre la misma instantánea.
package ledger

import (
	"iter"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// Sign devuelve +1, -1 o 0 según el tipo de movimiento.
func Sign(t entity.MovementType) int {
	switch t {
	case entity.MovementInbound, entity.MovementTransferIn, entity.MovementIncrease:
		return 1
	case entity.MovementOutbound, entity.MovementTransferOut, entity.MovementDecrease:
		return -1
	default:
		return 0
	}
}

// AffectsStock indica si el tipo participa de la aritmética de stock.
func AffectsStock(t entity.MovementType) bool {
	return Sign(t) != 0
}

// Signed cantidad con signo del movimiento.
func Signed(m *entity.Movement) decimal.Decimal {
	switch Sign(m.Type) {
	case 1:
		return m.Quantity
	case -1:
		return m.Quantity.Neg()
	default:
		return decimal.Zero
	}
}

// Totals entradas y salidas acumuladas.
type Totals struct {
	In  decimal.Decimal
	Out decimal.Decimal
}

// Net entradas menos salidas.
func (t Totals) Net() decimal.Decimal {
	return t.In.Sub(t.Out)
}

// SumByTypeClass separa entradas y salidas; PUTAWAY queda fuera.
func SumByTypeClass(movements iter.Seq2[*entity.Movement, error]) (Totals, error) {
	t := Totals{In: decimal.Zero, Out: decimal.Zero}
	for m, err := range movements {
		if err != nil {
			return Totals{}, err
		}
		switch Sign(m.Type) {
		case 1:
			t.In = t.In.Add(m.Quantity)
		case -1:
			t.Out = t.Out.Add(m.Quantity)
		}
	}
	return t, nil
}

// NetStock suma con signo de una lista ya materializada.
func NetStock(movements []*entity.Movement) decimal.Decimal {
	net := decimal.Zero
	for _, m := range movements {
		net = net.Add(Signed(m))
	}
	return net
}

// PendingToShelve max(0, neto - ubicado).
func PendingToShelve(net, allocated decimal.Decimal) decimal.Decimal {
	p := net.Sub(allocated)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// Slice adapta una lista al formato de secuencia usado por los repositorios.
func Slice[T any](items []T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, it := range items {
			if !yield(it, nil) {
				return
			}
		}
	}
}
