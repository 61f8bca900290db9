package inventory_test

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

const (
	whA   = "wh-a"
	whB   = "wh-b"
	loc1  = "loc-a-01-01"
	loc2  = "loc-a-01-02"
	locB  = "loc-b-01-01"
	user  = "bodega@empresa.com"
	poNum = "OC-1001"
)

type fakeRenderer struct {
	calls int
}

func (r *fakeRenderer) RenderGuide(_ context.Context, data inventory.GuideData) ([]byte, error) {
	r.calls++
	return []byte("%PDF-guia-" + data.Dispatch.DocumentNumber), nil
}

type fixture struct {
	ctx       context.Context
	store     *memory.Store
	blobs     *memory.Blobs
	renderer  *fakeRenderer
	reception *inventory.ReceptionUseCase
	putaway   *inventory.PutAwayUseCase
	dispatch  *inventory.DispatchUseCase
	adjust    *inventory.AdjustmentUseCase
	correct   *inventory.CorrectionUseCase
	query     *inventory.QueryUseCase
	recon     *inventory.ReconciliationUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	blobs := memory.NewBlobs()
	renderer := &fakeRenderer{}
	log := zerolog.Nop()

	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: whA, Code: "A", Name: "Bodega A", Active: true}))
	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: whB, Code: "B", Name: "Bodega B", Active: true}))
	for _, l := range []*entity.Location{
		{ID: loc1, WarehouseID: whA, Zone: "A", Aisle: "01", Rack: "01", FullCode: "A-01-01"},
		{ID: loc2, WarehouseID: whA, Zone: "A", Aisle: "01", Rack: "02", FullCode: "A-01-02"},
		{ID: locB, WarehouseID: whB, Zone: "B", Aisle: "01", Rack: "01", FullCode: "B-01-01"},
	} {
		require.NoError(t, store.Locations().Create(ctx, l))
	}
	store.SeedPurchaseOrderLine(entity.PurchaseOrderLine{
		PONumber:    poNum,
		ArtCorr:     "1",
		ProductCode: "X",
		Description: "Cable THHN 12 AWG",
		UnitMeasure: "MT",
		UnitPrice:   decimal.NewFromInt(1500),
		OrderedQty:  decimal.NewFromInt(100),
		ReceivedQty: decimal.Zero,
		Supplier:    "Proveedor Uno",
	})
	store.SeedProject(entity.Project{ID: "P1", Code: "PRJ-1", Name: "Torre Norte", Client: "ACME", Active: true})
	store.SeedProject(entity.Project{ID: "P2", Code: "PRJ-2", Name: "Planta Sur", Client: "OTRO", Active: true})

	movements := store.Movements()
	return &fixture{
		ctx:       ctx,
		store:     store,
		blobs:     blobs,
		renderer:  renderer,
		reception: inventory.NewReceptionUseCase(store, movements, store.PurchaseOrders(), blobs, log),
		putaway:   inventory.NewPutAwayUseCase(store, movements, log),
		dispatch:  inventory.NewDispatchUseCase(store, movements, renderer, blobs, log),
		adjust:    inventory.NewAdjustmentUseCase(store, movements, blobs, log),
		correct:   inventory.NewCorrectionUseCase(store, movements, log),
		query: inventory.NewQueryUseCase(store, movements, store.Allocations(),
			store.Products(), store.Locations(), store.Warehouses(), store.Projects(), nil),
		recon: inventory.NewReconciliationUseCase(store, log),
	}
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func assertDec(t *testing.T, want int64, got decimal.Decimal, msg ...string) {
	t.Helper()
	assert.Truef(t, got.Equal(dec(want)), "%s esperado %d, obtenido %s", strings.Join(msg, " "), want, got.String())
}

// receivePO recibe qty de la línea 1 de la OC y devuelve el producto X.
func (f *fixture) receivePO(t *testing.T, number string, qty int64) *entity.Product {
	t.Helper()
	_, err := f.reception.Receive(f.ctx, inventory.ReceiveCommand{
		WarehouseID:    whA,
		PONumber:       poNum,
		DocumentNumber: number,
		Supplier:       "Proveedor Uno",
		UserEmail:      user,
		Lines:          []inventory.ReceiveLine{{ArtCorr: "1", Quantity: dec(qty)}},
	})
	require.NoError(t, err)
	p, err := f.store.Products().GetByCode(f.ctx, "X")
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (f *fixture) shelve(t *testing.T, productID, locationID string, qty int64) {
	t.Helper()
	_, err := f.putaway.Commit(f.ctx, inventory.PutAwayCommand{
		WarehouseID: whA,
		UserEmail:   user,
		Lines:       []inventory.PutAwayLine{{ProductID: productID, LocationID: locationID, Quantity: dec(qty)}},
	})
	require.NoError(t, err)
}

// readyDispatch crea un despacho directo con guía generada.
func (f *fixture) readyDispatch(t *testing.T, lines ...inventory.DispatchLineInput) *entity.Dispatch {
	t.Helper()
	d, err := f.dispatch.CreateDraft(f.ctx, inventory.DispatchDraftCommand{
		WarehouseID: whA,
		Mode:        entity.DispatchDirect,
		ProjectID:   "P1",
		UserEmail:   user,
		Lines:       lines,
	})
	require.NoError(t, err)
	g, err := f.dispatch.GenerateGuide(f.ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, entity.DispatchDocumentGenerated, g.Dispatch.State)
	return g.Dispatch
}

func (f *fixture) allocation(t *testing.T, productID, locationID string) decimal.Decimal {
	t.Helper()
	row, err := f.store.Allocations().Get(f.ctx, productID, whA, locationID)
	require.NoError(t, err)
	return row.Quantity
}

func (f *fixture) net(t *testing.T, productID, warehouseID string) decimal.Decimal {
	t.Helper()
	n, err := f.store.Movements().NetStock(f.ctx, productID, warehouseID)
	require.NoError(t, err)
	return n
}

func (f *fixture) pending(t *testing.T, productID, warehouseID string) decimal.Decimal {
	t.Helper()
	p, err := f.query.PendingToShelve(f.ctx, productID, warehouseID)
	require.NoError(t, err)
	return p
}

func (f *fixture) movementCount(t *testing.T) int {
	t.Helper()
	n := 0
	for _, err := range f.store.Movements().Stream(f.ctx, repositoryAll) {
		require.NoError(t, err)
		n++
	}
	return n
}

var repositoryAll = repository.MovementFilter{}

// inboundOf devuelve el único INBOUND del documento.
func (f *fixture) inboundOf(t *testing.T, number string) *entity.Movement {
	t.Helper()
	var out []*entity.Movement
	filter := repository.MovementFilter{DocumentNumber: number, Types: []entity.MovementType{entity.MovementInbound}}
	for m, err := range f.store.Movements().Stream(f.ctx, filter) {
		require.NoError(t, err)
		out = append(out, m)
	}
	require.Len(t, out, 1)
	return out[0]
}
