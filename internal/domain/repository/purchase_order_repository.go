package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// PurchaseOrderRepository líneas de OC externas; solo received_qty es propio.
type PurchaseOrderRepository interface {
	ListLines(ctx context.Context, poNumber string) ([]*entity.PurchaseOrderLine, error)
	GetLineForUpdate(ctx context.Context, poNumber, artCorr string) (*entity.PurchaseOrderLine, error)
	AddReceived(ctx context.Context, poNumber, artCorr string, delta decimal.Decimal) error
}
