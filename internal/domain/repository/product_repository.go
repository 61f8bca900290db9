package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto; serializa las operaciones de stock por producto.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// AddStock suma delta (con signo) a la caché current_stock.
	AddStock(ctx context.Context, id string, delta decimal.Decimal) error
	SetStock(ctx context.Context, id string, value decimal.Decimal) error
	// List busca por código o nombre (ilike) con paginación.
	List(ctx context.Context, search string, limit, offset int) ([]*entity.Product, error)
	Count(ctx context.Context, search string) (int, error)
}
