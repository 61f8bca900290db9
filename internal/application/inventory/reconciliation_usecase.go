package inventory

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/ledger"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// CacheDrift diferencia entre current_stock y el total del kardex.
type CacheDrift struct {
	ProductID   string
	ProductCode string
	Cached      decimal.Decimal
	Ledger      decimal.Decimal
}

// BoundViolation (producto, bodega) con más ubicado que neto, o neto negativo.
type BoundViolation struct {
	WarehouseID string
	ProductID   string
	Net         decimal.Decimal
	Allocated   decimal.Decimal
}

// AuditReport resultado de la auditoría de consistencia.
type AuditReport struct {
	CheckedProducts int
	Drifts          []CacheDrift
	Violations      []BoundViolation
}

// ReconciliationUseCase audita y repara la caché de stock contra el kardex.
// Nunca modifica el kardex ni el mapa de ubicaciones.
type ReconciliationUseCase struct {
	tx  TxStore
	log zerolog.Logger
}

// NewReconciliationUseCase construye el caso de uso.
func NewReconciliationUseCase(tx TxStore, log zerolog.Logger) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		tx:  tx,
		log: log.With().Str("operation", "reconciliation").Logger(),
	}
}

// auditParallelism máximo de instantáneas de bodega leídas a la vez.
const auditParallelism = 4

// Audit compara la caché de cada producto con el kardex y revisa la cota de ubicaciones por bodega.
// La caché se compara en una instantánea y cada bodega se revisa en la suya.
func (uc *ReconciliationUseCase) Audit(ctx context.Context) (*AuditReport, error) {
	report := &AuditReport{}
	var warehouses []*entity.Warehouse
	err := uc.tx.ReadOnly(ctx, func(r TxRepos) error {
		products, err := r.Products.List(ctx, "", 0, 0)
		if err != nil {
			return err
		}
		report.CheckedProducts = len(products)
		for _, p := range products {
			net, err := r.Movements.NetStockByProduct(ctx, p.ID)
			if err != nil {
				return err
			}
			if !net.Equal(p.CurrentStock) {
				report.Drifts = append(report.Drifts, CacheDrift{
					ProductID:   p.ID,
					ProductCode: p.Code,
					Cached:      p.CurrentStock,
					Ledger:      net,
				})
			}
		}
		warehouses, err = r.Warehouses.List(ctx, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	found := make([][]BoundViolation, len(warehouses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(auditParallelism)
	for i, w := range warehouses {
		g.Go(func() error {
			var err error
			found[i], err = uc.boundViolations(gctx, w.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, v := range found {
		report.Violations = append(report.Violations, v...)
	}
	sort.Slice(report.Violations, func(i, j int) bool {
		a, b := report.Violations[i], report.Violations[j]
		if a.WarehouseID != b.WarehouseID {
			return a.WarehouseID < b.WarehouseID
		}
		return a.ProductID < b.ProductID
	})

	ev := uc.log.Info()
	if len(report.Drifts) > 0 || len(report.Violations) > 0 {
		ev = uc.log.Warn()
	}
	ev.Int("products", report.CheckedProducts).
		Int("drifts", len(report.Drifts)).
		Int("violations", len(report.Violations)).
		Msg("auditoría de stock")
	return report, nil
}

// boundViolations lee kardex y ubicaciones de la bodega en la misma instantánea.
func (uc *ReconciliationUseCase) boundViolations(ctx context.Context, warehouseID string) ([]BoundViolation, error) {
	var out []BoundViolation
	err := uc.tx.ReadOnly(ctx, func(r TxRepos) error {
		positions, err := ledger.Positions(
			r.Movements.Stream(ctx, repository.MovementFilter{WarehouseID: warehouseID}),
			r.Allocations.StreamByWarehouse(ctx, warehouseID),
		)
		if err != nil {
			return err
		}
		for _, pos := range positions {
			if pos.Overallocated() || pos.Net.IsNegative() {
				out = append(out, BoundViolation{
					WarehouseID: warehouseID,
					ProductID:   pos.ProductID,
					Net:         pos.Net,
					Allocated:   pos.Allocated,
				})
			}
		}
		return nil
	})
	return out, err
}

// RepairCache reescribe current_stock con el total del kardex en los productos desviados.
// Cada producto se corrige en su propia transacción con la fila bloqueada.
func (uc *ReconciliationUseCase) RepairCache(ctx context.Context) ([]CacheDrift, error) {
	report, err := uc.Audit(ctx)
	if err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)
	var repaired []CacheDrift
	for _, d := range report.Drifts {
		var fixed *CacheDrift
		err := uc.tx.Run(ctx, func(r TxRepos) error {
			p, err := r.Products.GetForUpdate(ctx, d.ProductID)
			if err != nil || p == nil {
				return err
			}
			net, err := r.Movements.NetStockByProduct(ctx, p.ID)
			if err != nil {
				return err
			}
			if net.Equal(p.CurrentStock) {
				return nil
			}
			fixed = &CacheDrift{ProductID: p.ID, ProductCode: p.Code, Cached: p.CurrentStock, Ledger: net}
			return r.Products.SetStock(ctx, p.ID, net)
		})
		if err != nil {
			return repaired, err
		}
		if fixed != nil {
			uc.log.Info().
				Str("product_code", fixed.ProductCode).
				Str("cached", fixed.Cached.String()).
				Str("ledger", fixed.Ledger.String()).
				Msg("caché de stock reparada")
			repaired = append(repaired, *fixed)
		}
	}
	return repaired, nil
}
