package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductLocation es la asignación física (producto, bodega, ubicación) → cantidad.
// Estado mutable derivado; Quantity nunca es negativa y la fila se elimina al llegar a cero.
type ProductLocation struct {
	ProductID   string
	WarehouseID string
	LocationID  string
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}
