package inventory

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Movements      repository.MovementRepository
	Allocations    repository.AllocationRepository
	Products       repository.ProductRepository
	Documents      repository.DocumentRepository
	PurchaseOrders repository.PurchaseOrderRepository
	Dispatches     repository.DispatchRepository
	Locations      repository.LocationRepository
	Warehouses     repository.WarehouseRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y ningún cambio queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(r TxRepos) error) error
}

// SnapshotReader ejecuta lecturas de solo lectura sobre una misma instantánea,
// de modo que kardex, ubicaciones y caché se lean consistentes entre sí.
type SnapshotReader interface {
	ReadOnly(ctx context.Context, fn func(r TxRepos) error) error
}

// TxStore transacciones de escritura más lecturas consistentes.
type TxStore interface {
	TxRunner
	SnapshotReader
}

// BlobStore almacenamiento de adjuntos. Put devuelve una URL estable.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// GuideLine línea de la guía de despacho ya resuelta para impresión.
type GuideLine struct {
	ProductCode  string
	ProductName  string
	UnitMeasure  string
	LocationCode string
	Quantity     decimal.Decimal
}

// GuideData datos que consume el generador de la guía.
type GuideData struct {
	Dispatch    *entity.Dispatch
	Warehouse   *entity.Warehouse
	Destination *entity.Warehouse
	Lines       []GuideLine
	IssuedAt    time.Time
}

// GuideRenderer genera el PDF de la guía de despacho.
type GuideRenderer interface {
	RenderGuide(ctx context.Context, data GuideData) ([]byte, error)
}

// ClosingReport datos del cierre de inventario de una bodega.
type ClosingReport struct {
	Warehouse   *entity.Warehouse
	GeneratedAt time.Time
	Stock       []StockRow
	Locations   []LocationStockRow
	Pending     []StockRow
}

// ClosingReportExporter serializa el cierre (hoja de cálculo).
type ClosingReportExporter interface {
	Export(ctx context.Context, report ClosingReport) ([]byte, error)
}
