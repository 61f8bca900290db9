package ledger

import "github.com/shopspring/decimal"

// WeightedAverageCost costo promedio ponderado tras una entrada:
// (existencia·costo + entrada·costoEntrada) / (existencia + entrada).
// Una existencia negativa se trata como cero.
func WeightedAverageCost(onHand, cost, inQty, inCost decimal.Decimal) decimal.Decimal {
	if onHand.IsNegative() {
		onHand = decimal.Zero
	}
	total := onHand.Add(inQty)
	if !total.IsPositive() {
		return decimal.Zero
	}
	return onHand.Mul(cost).Add(inQty.Mul(inCost)).DivRound(total, 4)
}
