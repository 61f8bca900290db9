package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/ledger"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// StockRow saldo de un producto en una bodega.
type StockRow struct {
	ProductID   string
	ProductCode string
	ProductName string
	UnitMeasure string
	Net         decimal.Decimal
	Allocated   decimal.Decimal
	Pending     decimal.Decimal
}

// LocationStockRow cantidad de un producto en una ubicación.
type LocationStockRow struct {
	LocationID   string
	LocationCode string
	ProductID    string
	ProductCode  string
	ProductName  string
	UnitMeasure  string
	Quantity     decimal.Decimal
}

// ClientStockRow saldo por proyecto (o etiqueta de cliente) y bodega.
type ClientStockRow struct {
	ProjectID   string
	ClientOwner string
	WarehouseID string
	ProductID   string
	ProductCode string
	ProductName string
	Net         decimal.Decimal
}

// KardexQuery filtros del kardex de un producto.
type KardexQuery struct {
	ProductID   string
	WarehouseID string
	Client      string
	Newest      bool
}

// KardexView kardex con saldo acumulado y totales.
type KardexView struct {
	Product *entity.Product
	Entries []ledger.KardexEntry
	Totals  ledger.Totals
	Balance decimal.Decimal
}

// QueryUseCase lecturas derivadas del kardex y del mapa de ubicaciones.
// Son pliegues puros sobre una instantánea de solo lectura: no bloquean a las operaciones.
type QueryUseCase struct {
	reader      SnapshotReader
	movements   repository.MovementRepository
	allocations repository.AllocationRepository
	products    repository.ProductRepository
	locations   repository.LocationRepository
	warehouses  repository.WarehouseRepository
	projects    repository.ProjectRepository
	exporter    ClosingReportExporter
	now         func() time.Time
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(
	reader SnapshotReader,
	movements repository.MovementRepository,
	allocations repository.AllocationRepository,
	products repository.ProductRepository,
	locations repository.LocationRepository,
	warehouses repository.WarehouseRepository,
	projects repository.ProjectRepository,
	exporter ClosingReportExporter,
) *QueryUseCase {
	return &QueryUseCase{
		reader:      reader,
		movements:   movements,
		allocations: allocations,
		products:    products,
		locations:   locations,
		warehouses:  warehouses,
		projects:    projects,
		exporter:    exporter,
		now:         time.Now,
	}
}

func (uc *QueryUseCase) scope(ctx context.Context, client string) (*ledger.ClientScope, error) {
	if client == "" {
		return nil, nil
	}
	projects, err := uc.projects.ListByClient(ctx, client)
	if err != nil {
		return nil, err
	}
	return ledger.NewClientScope(client, projects), nil
}

func (uc *QueryUseCase) warehouse(ctx context.Context, id string) (*entity.Warehouse, error) {
	w, err := uc.warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
	}
	return w, nil
}

// productIndex resuelve los productos por ID.
func (uc *QueryUseCase) productIndex(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		p, err := uc.products.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			p = &entity.Product{ID: id, Code: id}
		}
		out[id] = p
	}
	return out, nil
}

// Kardex movimientos del producto con saldo acumulado. El saldo siempre se calcula
// en orden ascendente; Newest solo invierte la presentación.
func (uc *QueryUseCase) Kardex(ctx context.Context, q KardexQuery) (*KardexView, error) {
	product, err := uc.products.GetByID(ctx, q.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, q.ProductID)
	}
	scope, err := uc.scope(ctx, q.Client)
	if err != nil {
		return nil, err
	}
	entries, err := ledger.Kardex(uc.movements.Stream(ctx, repository.MovementFilter{
		ProductID:   q.ProductID,
		WarehouseID: q.WarehouseID,
		Scope:       scope,
		Order:       repository.OldestFirst,
	}))
	if err != nil {
		return nil, err
	}
	view := &KardexView{Product: product, Entries: entries, Totals: ledger.KardexTotals(entries)}
	view.Balance = view.Totals.Net()
	if q.Newest {
		view.Entries = ledger.Newest(view.Entries)
	}
	return view, nil
}

// warehouseSnapshot movimientos y asignaciones de una bodega leídos en la misma instantánea.
type warehouseSnapshot struct {
	movements   []*entity.Movement
	allocations []*entity.ProductLocation
}

func (w *warehouseSnapshot) positions() (map[string]*ledger.Position, error) {
	return ledger.Positions(ledger.Slice(w.movements), ledger.Slice(w.allocations))
}

func (w *warehouseSnapshot) pending() ([]ledger.Position, error) {
	return ledger.Reconcile(ledger.Slice(w.movements), ledger.Slice(w.allocations))
}

func (uc *QueryUseCase) snapshot(ctx context.Context, warehouseID string) (*warehouseSnapshot, error) {
	snap := &warehouseSnapshot{}
	err := uc.reader.ReadOnly(ctx, func(r TxRepos) error {
		for m, err := range r.Movements.Stream(ctx, repository.MovementFilter{WarehouseID: warehouseID}) {
			if err != nil {
				return err
			}
			snap.movements = append(snap.movements, m)
		}
		for a, err := range r.Allocations.StreamByWarehouse(ctx, warehouseID) {
			if err != nil {
				return err
			}
			snap.allocations = append(snap.allocations, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (uc *QueryUseCase) stockRows(ctx context.Context, positions []ledger.Position) ([]StockRow, error) {
	ids := make([]string, len(positions))
	for i, p := range positions {
		ids[i] = p.ProductID
	}
	index, err := uc.productIndex(ctx, ids)
	if err != nil {
		return nil, err
	}
	rows := make([]StockRow, 0, len(positions))
	for _, p := range positions {
		prod := index[p.ProductID]
		rows = append(rows, StockRow{
			ProductID:   p.ProductID,
			ProductCode: prod.Code,
			ProductName: prod.Name,
			UnitMeasure: prod.UnitMeasure,
			Net:         p.Net,
			Allocated:   p.Allocated,
			Pending:     p.Pending(),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ProductCode < rows[j].ProductCode })
	return rows, nil
}

// StockByWarehouse saldo neto, ubicado y pendiente por producto.
func (uc *QueryUseCase) StockByWarehouse(ctx context.Context, warehouseID string) ([]StockRow, error) {
	if _, err := uc.warehouse(ctx, warehouseID); err != nil {
		return nil, err
	}
	snap, err := uc.snapshot(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	return uc.warehouseRows(ctx, snap)
}

func (uc *QueryUseCase) warehouseRows(ctx context.Context, snap *warehouseSnapshot) ([]StockRow, error) {
	positions, err := snap.positions()
	if err != nil {
		return nil, err
	}
	list := make([]ledger.Position, 0, len(positions))
	for _, p := range positions {
		if p.Net.IsZero() && p.Allocated.IsZero() {
			continue
		}
		list = append(list, *p)
	}
	return uc.stockRows(ctx, list)
}

// PendingPutAway productos con cantidad recibida aún sin ubicar.
func (uc *QueryUseCase) PendingPutAway(ctx context.Context, warehouseID string) ([]StockRow, error) {
	if _, err := uc.warehouse(ctx, warehouseID); err != nil {
		return nil, err
	}
	snap, err := uc.snapshot(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	pending, err := snap.pending()
	if err != nil {
		return nil, err
	}
	return uc.stockRows(ctx, pending)
}

// PendingToShelve max(0, neto − ubicado) para (producto, bodega), recalculado en cada llamada.
func (uc *QueryUseCase) PendingToShelve(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	var net, allocated decimal.Decimal
	err := uc.reader.ReadOnly(ctx, func(r TxRepos) error {
		var err error
		if net, err = r.Movements.NetStock(ctx, productID, warehouseID); err != nil {
			return err
		}
		allocated, err = r.Allocations.SumByProduct(ctx, productID, warehouseID)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.PendingToShelve(net, allocated), nil
}

// StockByLocation contenido de cada ubicación de la bodega.
func (uc *QueryUseCase) StockByLocation(ctx context.Context, warehouseID string) ([]LocationStockRow, error) {
	if _, err := uc.warehouse(ctx, warehouseID); err != nil {
		return nil, err
	}
	var allocs []*entity.ProductLocation
	for a, err := range uc.allocations.StreamByWarehouse(ctx, warehouseID) {
		if err != nil {
			return nil, err
		}
		allocs = append(allocs, a)
	}
	return uc.locationRows(ctx, warehouseID, allocs)
}

func (uc *QueryUseCase) locationRows(ctx context.Context, warehouseID string, allocs []*entity.ProductLocation) ([]LocationStockRow, error) {
	locations, err := uc.locations.ListByWarehouse(ctx, warehouseID, "")
	if err != nil {
		return nil, err
	}
	codes := make(map[string]string, len(locations))
	for _, l := range locations {
		codes[l.ID] = l.FullCode
	}
	var (
		rows []LocationStockRow
		ids  []string
	)
	for _, a := range allocs {
		if !a.Quantity.IsPositive() {
			continue
		}
		rows = append(rows, LocationStockRow{
			LocationID:   a.LocationID,
			LocationCode: codes[a.LocationID],
			ProductID:    a.ProductID,
			Quantity:     a.Quantity,
		})
		ids = append(ids, a.ProductID)
	}
	index, err := uc.productIndex(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		p := index[rows[i].ProductID]
		rows[i].ProductCode, rows[i].ProductName, rows[i].UnitMeasure = p.Code, p.Name, p.UnitMeasure
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].LocationCode != rows[j].LocationCode {
			return rows[i].LocationCode < rows[j].LocationCode
		}
		return rows[i].ProductCode < rows[j].ProductCode
	})
	return rows, nil
}

// StockByClient saldo por proyecto del cliente. Un movimiento cuenta si su proyecto
// pertenece al cliente o si su client_owner es el cliente.
func (uc *QueryUseCase) StockByClient(ctx context.Context, client string) ([]ClientStockRow, error) {
	if client == "" {
		return nil, domain.NewValidationError("client", "required")
	}
	scope, err := uc.scope(ctx, client)
	if err != nil {
		return nil, err
	}
	type key struct{ project, owner, warehouse, product string }
	acc := make(map[key]decimal.Decimal)
	for m, err := range uc.movements.Stream(ctx, repository.MovementFilter{Scope: scope}) {
		if err != nil {
			return nil, err
		}
		if !ledger.AffectsStock(m.Type) {
			continue
		}
		k := key{project: m.ProjectID, warehouse: m.WarehouseID, product: m.ProductID}
		if m.ProjectID == "" {
			k.owner = m.ClientOwner
		}
		acc[k] = acc[k].Add(ledger.Signed(m))
	}
	ids := make([]string, 0, len(acc))
	for k := range acc {
		ids = append(ids, k.product)
	}
	index, err := uc.productIndex(ctx, ids)
	if err != nil {
		return nil, err
	}
	rows := make([]ClientStockRow, 0, len(acc))
	for k, net := range acc {
		if net.IsZero() {
			continue
		}
		p := index[k.product]
		rows = append(rows, ClientStockRow{
			ProjectID:   k.project,
			ClientOwner: k.owner,
			WarehouseID: k.warehouse,
			ProductID:   k.product,
			ProductCode: p.Code,
			ProductName: p.Name,
			Net:         net,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ProjectID != b.ProjectID {
			return a.ProjectID < b.ProjectID
		}
		if a.ProductCode != b.ProductCode {
			return a.ProductCode < b.ProductCode
		}
		return a.WarehouseID < b.WarehouseID
	})
	return rows, nil
}

// ClosingReport arma el cierre de la bodega y lo exporta.
func (uc *QueryUseCase) ClosingReport(ctx context.Context, warehouseID string) ([]byte, error) {
	if uc.exporter == nil {
		return nil, fmt.Errorf("exportador de cierres no configurado")
	}
	w, err := uc.warehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	snap, err := uc.snapshot(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	report := ClosingReport{Warehouse: w, GeneratedAt: uc.now()}
	if report.Stock, err = uc.warehouseRows(ctx, snap); err != nil {
		return nil, err
	}
	if report.Locations, err = uc.locationRows(ctx, warehouseID, snap.allocations); err != nil {
		return nil, err
	}
	pending, err := snap.pending()
	if err != nil {
		return nil, err
	}
	if report.Pending, err = uc.stockRows(ctx, pending); err != nil {
		return nil, err
	}
	return uc.exporter.Export(ctx, report)
}
