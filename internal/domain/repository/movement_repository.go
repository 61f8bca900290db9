package repository

import (
	"context"
	"iter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/ledger"
)

// SortOrder orden cronológico de lectura del kardex.
type SortOrder int

const (
	OldestFirst SortOrder = iota // para saldo acumulado
	NewestFirst                  // para mostrar lo reciente
)

// MovementFilter filtros de lectura; los campos vacíos no filtran.
type MovementFilter struct {
	ProductID      string
	WarehouseID    string
	DocumentNumber string
	// CorrectsMovementID limita a los movimientos compensatorios de un movimiento dado.
	CorrectsMovementID string
	Types              []entity.MovementType
	From               *time.Time
	To                 *time.Time
	Scope              *ledger.ClientScope
	Order              SortOrder
}

// MovementRepository puerto del kardex. Solo inserción: la historia nunca se modifica.
type MovementRepository interface {
	Append(ctx context.Context, m *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// Stream devuelve una secuencia perezosa, finita y reiniciable: cada range vuelve a consultar.
	Stream(ctx context.Context, filter MovementFilter) iter.Seq2[*entity.Movement, error]
	// NetStock suma con signo (ver ledger.Sign) para (producto, bodega).
	NetStock(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error)
	// NetStockByProduct suma con signo en todas las bodegas.
	NetStockByProduct(ctx context.Context, productID string) (decimal.Decimal, error)
}
