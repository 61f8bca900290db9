package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// LocationRepository puerto para ubicaciones de rack. FullCode es único por bodega.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	GetByCode(ctx context.Context, warehouseID, fullCode string) (*entity.Location, error)
	ListByWarehouse(ctx context.Context, warehouseID, search string) ([]*entity.Location, error)
	Delete(ctx context.Context, id string) error
}
