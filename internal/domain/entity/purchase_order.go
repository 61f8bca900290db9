package entity

import "github.com/shopspring/decimal"

// PurchaseOrderLine línea de una orden de compra externa, identificada por (PONumber, ArtCorr).
// ReceivedQty lo mantiene este sistema en cada recepción.
type PurchaseOrderLine struct {
	PONumber    string
	ArtCorr     string
	ProductCode string
	Description string
	UnitMeasure string
	UnitPrice   decimal.Decimal
	OrderedQty  decimal.Decimal
	ReceivedQty decimal.Decimal
	Supplier    string
}

// Pending cantidad aún por recibir (nunca negativa).
func (l *PurchaseOrderLine) Pending() decimal.Decimal {
	p := l.OrderedQty.Sub(l.ReceivedQty)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}
