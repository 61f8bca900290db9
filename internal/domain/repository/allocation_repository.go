package repository

import (
	"context"
	"iter"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// AllocationRepository puerto del mapa de ubicaciones (producto, bodega, ubicación) → cantidad.
type AllocationRepository interface {
	// Get devuelve la fila o una fila en cero si no existe.
	Get(ctx context.Context, productID, warehouseID, locationID string) (*entity.ProductLocation, error)
	// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE) dentro de la transacción.
	GetForUpdate(ctx context.Context, productID, warehouseID, locationID string) (*entity.ProductLocation, error)
	// Save inserta o actualiza; con cantidad cero elimina la fila.
	Save(ctx context.Context, pl *entity.ProductLocation) error
	SumByProduct(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error)
	StreamByWarehouse(ctx context.Context, warehouseID string) iter.Seq2[*entity.ProductLocation, error]
	ListByProduct(ctx context.Context, productID, warehouseID string) ([]*entity.ProductLocation, error)
	CountByLocation(ctx context.Context, locationID string) (int, error)
}
