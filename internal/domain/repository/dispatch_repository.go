package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// DispatchRepository persiste despachos y su estado.
type DispatchRepository interface {
	Create(ctx context.Context, d *entity.Dispatch) error
	GetByID(ctx context.Context, id string) (*entity.Dispatch, error)
	// GetForUpdate bloquea el despacho (evita doble confirmación concurrente).
	GetForUpdate(ctx context.Context, id string) (*entity.Dispatch, error)
	Update(ctx context.Context, d *entity.Dispatch) error
}
