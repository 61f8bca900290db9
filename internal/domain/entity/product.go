package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un material o SKU del almacén.
// Code es el código humano único; CurrentStock es una caché derivada del kardex y nunca es autoritativa.
type Product struct {
	ID           string
	Code         string
	Name         string
	UnitMeasure  string
	UnitPrice    decimal.Decimal
	CurrentStock decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
