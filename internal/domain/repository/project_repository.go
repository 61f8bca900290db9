package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ProjectRepository fuente externa de proyectos (solo lectura).
type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	ListByClient(ctx context.Context, client string) ([]*entity.Project, error)
	Search(ctx context.Context, search string, limit int) ([]*entity.Project, error)
}

// SupplierRepository fuente externa de proveedores (solo lectura).
type SupplierRepository interface {
	Search(ctx context.Context, search string, limit int) ([]*entity.Supplier, error)
}
