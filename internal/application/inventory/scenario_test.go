package inventory_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

func TestEscenario_RecepcionUbicacionDespachoMerma(t *testing.T) {
	f := newFixture(t)

	x := f.receivePO(t, "REC-1", 100)
	assertDec(t, 100, f.pending(t, x.ID, whA))

	f.shelve(t, x.ID, loc1, 60)
	assertDec(t, 40, f.pending(t, x.ID, whA))
	assertDec(t, 60, f.allocation(t, x.ID, loc1))

	d := f.readyDispatch(t, inventory.DispatchLineInput{ProductID: x.ID, LocationID: loc1, Quantity: dec(20)})
	res, err := f.dispatch.Confirm(f.ctx, d.ID, user)
	require.NoError(t, err)
	assert.Equal(t, entity.DispatchConfirmed, res.Dispatch.State)
	require.Len(t, res.Movements, 1)
	assert.Equal(t, entity.MovementOutbound, res.Movements[0].Type)
	assertDec(t, 40, f.allocation(t, x.ID, loc1))
	assertDec(t, 80, f.net(t, x.ID, whA))
	assertDec(t, 40, f.pending(t, x.ID, whA))

	_, err = f.adjust.Adjust(f.ctx, inventory.AdjustCommand{
		WarehouseID:            whA,
		ProductID:              x.ID,
		Type:                   entity.MovementDecrease,
		Quantity:               dec(5),
		Reason:                 "merma",
		LocationID:             loc1,
		ProjectID:              "P1",
		UserEmail:              user,
		ConfirmWithoutEvidence: true,
	})
	require.NoError(t, err)
	assertDec(t, 35, f.allocation(t, x.ID, loc1))
	assertDec(t, 75, f.net(t, x.ID, whA))
	assertDec(t, 40, f.pending(t, x.ID, whA))

	p, err := f.store.Products().GetByID(f.ctx, x.ID)
	require.NoError(t, err)
	assertDec(t, 75, p.CurrentStock, "la caché debe seguir al kardex")
}

func TestDespacho_CantidadMayorALaUbicacionSeRechazaSinCambios(t *testing.T) {
	f := newFixture(t)
	x := f.receivePO(t, "REC-1", 35)
	f.shelve(t, x.ID, loc1, 35)
	before := f.movementCount(t)

	d := f.readyDispatch(t, inventory.DispatchLineInput{ProductID: x.ID, LocationID: loc1, Quantity: dec(50)})
	_, err := f.dispatch.Confirm(f.ctx, d.ID, user)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	assert.Equal(t, before, f.movementCount(t))
	assertDec(t, 35, f.allocation(t, x.ID, loc1))
	assertDec(t, 35, f.net(t, x.ID, whA))
	got, err := f.dispatch.Get(f.ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DispatchDocumentGenerated, got.State)
}

func TestDespacho_PickingPorUbicacionNoPorBodega(t *testing.T) {
	f := newFixture(t)
	x := f.receivePO(t, "REC-1", 50)
	f.shelve(t, x.ID, loc1, 10)
	f.shelve(t, x.ID, loc2, 40)

	d := f.readyDispatch(t, inventory.DispatchLineInput{ProductID: x.ID, LocationID: loc1, Quantity: dec(20)})
	_, err := f.dispatch.Confirm(f.ctx, d.ID, user)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assertDec(t, 10, f.allocation(t, x.ID, loc1))
	assertDec(t, 40, f.allocation(t, x.ID, loc2))
}

func TestDespacho_ConcurrentesSobreLaMismaUbicacion(t *testing.T) {
	f := newFixture(t)
	x := f.receivePO(t, "REC-1", 40)
	f.shelve(t, x.ID, loc1, 40)

	line := inventory.DispatchLineInput{ProductID: x.ID, LocationID: loc1, Quantity: dec(30)}
	d1 := f.readyDispatch(t, line)
	d2 := f.readyDispatch(t, line)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{d1.ID, d2.ID} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.dispatch.Confirm(f.ctx, id, user)
		}()
	}
	wg.Wait()

	ok, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)
	assertDec(t, 10, f.allocation(t, x.ID, loc1))
	assertDec(t, 10, f.net(t, x.ID, whA))
}

func TestRecepcion_FalloAMitadNoDejaEstadoParcial(t *testing.T) {
	f := newFixture(t)
	appends := 0
	f.store.SetHook(func(op string) error {
		if op == "movements.append" {
			appends++
			if appends == 2 {
				return errors.New("conexión perdida")
			}
		}
		return nil
	})

	_, err := f.reception.Receive(f.ctx, inventory.ReceiveCommand{
		WarehouseID:    whA,
		DocumentNumber: "REC-9",
		UserEmail:      user,
		Lines: []inventory.ReceiveLine{
			{ProductCode: "A1", Name: "Tubo PVC", UnitMeasure: "UN", Quantity: dec(10)},
			{ProductCode: "A2", Name: "Codo PVC", UnitMeasure: "UN", Quantity: dec(5)},
			{ProductCode: "A3", Name: "Pegante", UnitMeasure: "UN", Quantity: dec(1)},
		},
		Attachment: &inventory.Attachment{Filename: "remision.pdf", ContentType: "application/pdf", Data: []byte("pdf")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransactionFailure)
	f.store.SetHook(nil)

	assert.Equal(t, 0, f.movementCount(t))
	p, err := f.store.Products().GetByCode(f.ctx, "A1")
	require.NoError(t, err)
	assert.Nil(t, p, "el producto creado dentro de la transacción no debe persistir")
	doc, err := f.store.Documents().GetByNumber(f.ctx, entity.DocumentReception, "REC-9")
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Empty(t, f.blobs.Keys(), "el adjunto se elimina si la operación falla")

	// El reintento completo con el mismo número procede.
	res, err := f.reception.Receive(f.ctx, inventory.ReceiveCommand{
		WarehouseID:    whA,
		DocumentNumber: "REC-9",
		UserEmail:      user,
		Lines: []inventory.ReceiveLine{
			{ProductCode: "A1", Name: "Tubo PVC", UnitMeasure: "UN", Quantity: dec(10)},
		},
	})
	require.NoError(t, err)
	assert.Len(t, res.Movements, 1)
}

func TestDespacho_FalloEnUnaLineaRevierteTodas(t *testing.T) {
	f := newFixture(t)
	x := f.receivePO(t, "REC-1", 30)
	f.shelve(t, x.ID, loc1, 20)
	f.shelve(t, x.ID, loc2, 10)
	before := f.movementCount(t)

	d := f.readyDispatch(t,
		inventory.DispatchLineInput{ProductID: x.ID, LocationID: loc1, Quantity: dec(15)},
		inventory.DispatchLineInput{ProductID: x.ID, LocationID: loc2, Quantity: dec(11)},
	)
	_, err := f.dispatch.Confirm(f.ctx, d.ID, user)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, before, f.movementCount(t))
	assertDec(t, 20, f.allocation(t, x.ID, loc1))
	assertDec(t, 10, f.allocation(t, x.ID, loc2))
	p, err := f.store.Products().GetByID(f.ctx, x.ID)
	require.NoError(t, err)
	assertDec(t, 30, p.CurrentStock)
}
