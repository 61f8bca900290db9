package ledger

import (
	"iter"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// KardexEntry movimiento con su saldo acumulado.
// Los PUTAWAY aparecen con In = Out = 0 y el saldo sin cambio (rastro de auditoría).
type KardexEntry struct {
	Movement *entity.Movement
	In       decimal.Decimal
	Out      decimal.Decimal
	Balance  decimal.Decimal
}

// Kardex recorre movimientos en orden cronológico ascendente y acumula el saldo.
func Kardex(movements iter.Seq2[*entity.Movement, error]) ([]KardexEntry, error) {
	var (
		entries []KardexEntry
		balance = decimal.Zero
	)
	for m, err := range movements {
		if err != nil {
			return nil, err
		}
		e := KardexEntry{Movement: m, In: decimal.Zero, Out: decimal.Zero}
		switch Sign(m.Type) {
		case 1:
			e.In = m.Quantity
		case -1:
			e.Out = m.Quantity
		}
		balance = balance.Add(e.In).Sub(e.Out)
		e.Balance = balance
		entries = append(entries, e)
	}
	return entries, nil
}

// KardexTotals entradas y salidas de un kardex ya calculado, sin volver a leer el stream.
func KardexTotals(entries []KardexEntry) Totals {
	t, _ := SumByTypeClass(func(yield func(*entity.Movement, error) bool) {
		for _, e := range entries {
			if !yield(e.Movement, nil) {
				return
			}
		}
	})
	return t
}

// Newest invierte el kardex para mostrar primero lo más reciente conservando los saldos.
func Newest(entries []KardexEntry) []KardexEntry {
	out := slices.Clone(entries)
	slices.Reverse(out)
	return out
}
