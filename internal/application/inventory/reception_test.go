package inventory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

func receiveCmd(number string, qty int64) inventory.ReceiveCommand {
	return inventory.ReceiveCommand{
		WarehouseID:    whA,
		PONumber:       poNum,
		DocumentNumber: number,
		Supplier:       "Proveedor Uno",
		UserEmail:      user,
		Lines:          []inventory.ReceiveLine{{ArtCorr: "1", Quantity: dec(qty)}},
	}
}

func TestRecepcion_CreaProductoDesdeLaOCYCalculaPendiente(t *testing.T) {
	f := newFixture(t)

	res, err := f.reception.Receive(f.ctx, receiveCmd("REC-1", 40))
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, entity.DocumentReception, res.Document.Type)
	require.Len(t, res.Movements, 1)
	m := res.Movements[0]
	assert.Equal(t, entity.MovementInbound, m.Type)
	assert.Equal(t, "REC-1", m.DocumentNumber)
	assert.Equal(t, poNum, m.PONumber)
	assert.Empty(t, m.LocationID)

	p, err := f.store.Products().GetByCode(f.ctx, "x")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Cable THHN 12 AWG", p.Name)
	assert.Equal(t, "MT", p.UnitMeasure)
	assertDec(t, 40, p.CurrentStock)

	lines, err := f.reception.PurchaseOrderStatus(f.ctx, poNum)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assertDec(t, 40, lines[0].ReceivedQty)
	assertDec(t, 60, lines[0].Pending())
}

func TestRecepcion_OrdenDeCompraInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.reception.PurchaseOrderStatus(f.ctx, "OC-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecepcion_NoSuperaLoPendienteDeLaLinea(t *testing.T) {
	f := newFixture(t)
	f.receivePO(t, "REC-1", 90)

	_, err := f.reception.Receive(f.ctx, receiveCmd("REC-2", 11))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPOLineOverReceipt)
	assert.ErrorIs(t, err, domain.ErrDuplicateReference)

	lines, err := f.reception.PurchaseOrderStatus(f.ctx, poNum)
	require.NoError(t, err)
	assertDec(t, 90, lines[0].ReceivedQty)
	assert.Equal(t, 1, f.movementCount(t))
}

func TestRecepcion_ConOCExigeArtCorr(t *testing.T) {
	f := newFixture(t)
	cmd := receiveCmd("REC-1", 5)
	cmd.Lines[0].ArtCorr = ""

	_, err := f.reception.Receive(f.ctx, cmd)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "lines[0].art_corr", verr.Fields[0].Field)
}

func TestRecepcion_ReintentoIdempotente(t *testing.T) {
	f := newFixture(t)
	first, err := f.reception.Receive(f.ctx, receiveCmd("REC-1", 10))
	require.NoError(t, err)

	again, err := f.reception.Receive(f.ctx, receiveCmd("REC-1", 10))
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	require.Len(t, again.Movements, 1)
	assert.Equal(t, first.Movements[0].ID, again.Movements[0].ID)
	assert.Equal(t, 1, f.movementCount(t))
	assertDec(t, 10, f.net(t, again.Movements[0].ProductID, whA))

	_, err = f.reception.Receive(f.ctx, receiveCmd("REC-1", 20))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateReference)
	assert.NotErrorIs(t, err, domain.ErrPOLineOverReceipt)
	assert.Equal(t, 1, f.movementCount(t))
}

func TestRecepcion_ReintentoNoDejaAdjuntoDuplicado(t *testing.T) {
	f := newFixture(t)
	cmd := receiveCmd("REC-1", 10)
	cmd.Attachment = &inventory.Attachment{Filename: "remisión 1.pdf", ContentType: "application/pdf", Data: []byte("pdf")}

	res, err := f.reception.Receive(f.ctx, cmd)
	require.NoError(t, err)
	assert.Contains(t, res.Document.AttachmentURL, "recepciones/REC-1/")
	assert.Equal(t, res.Document.AttachmentURL, res.Movements[0].ReceptionDocumentURL)

	_, err = f.reception.Receive(f.ctx, cmd)
	require.NoError(t, err)
	assert.Len(t, f.blobs.Keys(), 1)
}

func TestRecepcion_AnulacionDevuelveLoRecibido(t *testing.T) {
	f := newFixture(t)
	x := f.receivePO(t, "REC-1", 30)

	res, err := f.reception.Reverse(f.ctx, inventory.ReverseReceptionCommand{
		DocumentNumber: "REC-1", Reason: "remisión equivocada", UserEmail: user,
	})
	require.NoError(t, err)
	assert.Equal(t, "ANU-REC-1", res.Document.Number)
	require.Len(t, res.Movements, 1)
	assert.Equal(t, entity.MovementDecrease, res.Movements[0].Type)
	assert.NotEmpty(t, res.Movements[0].CorrectsMovementID)

	assertDec(t, 0, f.net(t, x.ID, whA))
	lines, err := f.reception.PurchaseOrderStatus(f.ctx, poNum)
	require.NoError(t, err)
	assertDec(t, 0, lines[0].ReceivedQty)
	doc, err := f.store.Documents().GetByNumber(f.ctx, entity.DocumentReception, "REC-1")
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentReversed, doc.Status)

	again, err := f.reception.Reverse(f.ctx, inventory.ReverseReceptionCommand{
		DocumentNumber: "REC-1", Reason: "remisión equivocada", UserEmail: user,
	})
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assertDec(t, 0, f.net(t, x.ID, whA))
}

func TestRecepcion_AnulacionRechazadaSiYaSeUbico(t *testing.T) {
	f := newFixture(t)
	x := f.receivePO(t, "REC-1", 30)
	f.shelve(t, x.ID, loc1, 20)
	before := f.movementCount(t)

	_, err := f.reception.Reverse(f.ctx, inventory.ReverseReceptionCommand{
		DocumentNumber: "REC-1", Reason: "error", UserEmail: user,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, before, f.movementCount(t))
	assertDec(t, 30, f.net(t, x.ID, whA))
}

func TestRecepcion_AnulacionDeDocumentoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.reception.Reverse(f.ctx, inventory.ReverseReceptionCommand{
		DocumentNumber: "REC-404", Reason: "error", UserEmail: user,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCorreccion_AjustaLaCantidadEfectivaDelIngreso(t *testing.T) {
	f := newFixture(t)
	res, err := f.reception.Receive(f.ctx, receiveCmd("REC-1", 100))
	require.NoError(t, err)
	orig := res.Movements[0]

	down, err := f.correct.CorrectInbound(f.ctx, inventory.CorrectInboundCommand{
		MovementID: orig.ID, NewQuantity: dec(90), Reason: "conteo", UserEmail: user,
	})
	require.NoError(t, err)
	require.Len(t, down.Movements, 1)
	assert.Equal(t, entity.MovementDecrease, down.Movements[0].Type)
	assertDec(t, 10, down.Movements[0].Quantity)
	assert.Equal(t, orig.ID, down.Movements[0].CorrectsMovementID)
	assertDec(t, 90, f.net(t, orig.ProductID, whA))

	up, err := f.correct.CorrectInbound(f.ctx, inventory.CorrectInboundCommand{
		MovementID: orig.ID, NewQuantity: dec(95), Reason: "reconteo", UserEmail: user,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementIncrease, up.Movements[0].Type)
	assertDec(t, 5, up.Movements[0].Quantity)
	assertDec(t, 95, f.net(t, orig.ProductID, whA))

	lines, err := f.reception.PurchaseOrderStatus(f.ctx, poNum)
	require.NoError(t, err)
	assertDec(t, 95, lines[0].ReceivedQty)

	_, err = f.correct.CorrectInbound(f.ctx, inventory.CorrectInboundCommand{
		MovementID: orig.ID, NewQuantity: dec(120), Reason: "exceso", UserEmail: user,
	})
	assert.ErrorIs(t, err, domain.ErrPOLineOverReceipt)

	_, err = f.correct.CorrectInbound(f.ctx, inventory.CorrectInboundCommand{
		MovementID: orig.ID, NewQuantity: dec(95), Reason: "igual", UserEmail: user,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCorreccion_NoTomaStockYaUbicado(t *testing.T) {
	f := newFixture(t)
	res, err := f.reception.Receive(f.ctx, receiveCmd("REC-1", 50))
	require.NoError(t, err)
	orig := res.Movements[0]
	f.shelve(t, orig.ProductID, loc1, 45)

	_, err = f.correct.CorrectInbound(f.ctx, inventory.CorrectInboundCommand{
		MovementID: orig.ID, NewQuantity: dec(40), Reason: "conteo", UserEmail: user,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assertDec(t, 50, f.net(t, orig.ProductID, whA))
}

func TestCorreccion_SoloSobreIngresos(t *testing.T) {
	f := newFixture(t)
	x := f.receivePO(t, "REC-1", 10)
	put, err := f.putaway.Commit(f.ctx, inventory.PutAwayCommand{
		WarehouseID: whA, UserEmail: user,
		Lines: []inventory.PutAwayLine{{ProductID: x.ID, LocationID: loc1, Quantity: dec(5)}},
	})
	require.NoError(t, err)

	_, err = f.correct.CorrectInbound(f.ctx, inventory.CorrectInboundCommand{
		MovementID: put.Movements[0].ID, NewQuantity: dec(1), Reason: "x", UserEmail: user,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRecepcion_CostoPromedioPonderado(t *testing.T) {
	f := newFixture(t)
	p := f.receivePO(t, "REC-1", 10)
	assertDec(t, 1500, p.UnitPrice, "costo de la OC")

	_, err := f.reception.Receive(f.ctx, inventory.ReceiveCommand{
		WarehouseID:    whA,
		DocumentNumber: "REC-2",
		UserEmail:      user,
		Lines:          []inventory.ReceiveLine{{ProductCode: "X", UnitPrice: dec(3000), Quantity: dec(10)}},
	})
	require.NoError(t, err)

	p, err = f.store.Products().GetByID(f.ctx, p.ID)
	require.NoError(t, err)
	assertDec(t, 2250, p.UnitPrice, "promedio ponderado")
	assertDec(t, 20, p.CurrentStock)
}

func TestRecepcion_AnulacionTrasCorreccionAlAlza(t *testing.T) {
	f := newFixture(t)
	x := f.receivePO(t, "REC-1", 10)
	orig := f.inboundOf(t, "REC-1")

	_, err := f.correct.CorrectInbound(f.ctx, inventory.CorrectInboundCommand{
		MovementID: orig.ID, NewQuantity: dec(15), Reason: "conteo", UserEmail: user,
	})
	require.NoError(t, err)

	res, err := f.reception.Reverse(f.ctx, inventory.ReverseReceptionCommand{
		DocumentNumber: "REC-1", Reason: "remisión equivocada", UserEmail: user,
	})
	require.NoError(t, err)
	require.Len(t, res.Movements, 1)
	assertDec(t, 15, res.Movements[0].Quantity)

	assertDec(t, 0, f.net(t, x.ID, whA))
	lines, err := f.reception.PurchaseOrderStatus(f.ctx, poNum)
	require.NoError(t, err)
	assertDec(t, 0, lines[0].ReceivedQty)
}

func TestRecepcion_AnulacionTrasCorreccionALaBajaNoTocaOtrasRecepciones(t *testing.T) {
	f := newFixture(t)
	x := f.receivePO(t, "REC-1", 10)
	f.receivePO(t, "REC-2", 20)
	orig := f.inboundOf(t, "REC-1")

	_, err := f.correct.CorrectInbound(f.ctx, inventory.CorrectInboundCommand{
		MovementID: orig.ID, NewQuantity: dec(4), Reason: "conteo", UserEmail: user,
	})
	require.NoError(t, err)

	res, err := f.reception.Reverse(f.ctx, inventory.ReverseReceptionCommand{
		DocumentNumber: "REC-1", Reason: "remisión equivocada", UserEmail: user,
	})
	require.NoError(t, err)
	require.Len(t, res.Movements, 1)
	assertDec(t, 4, res.Movements[0].Quantity)

	assertDec(t, 20, f.net(t, x.ID, whA))
	lines, err := f.reception.PurchaseOrderStatus(f.ctx, poNum)
	require.NoError(t, err)
	assertDec(t, 20, lines[0].ReceivedQty)
}

func TestRecepcion_AnulacionOmiteLineasCorregidasACero(t *testing.T) {
	f := newFixture(t)
	x := f.receivePO(t, "REC-1", 10)
	orig := f.inboundOf(t, "REC-1")

	_, err := f.correct.CorrectInbound(f.ctx, inventory.CorrectInboundCommand{
		MovementID: orig.ID, NewQuantity: dec(0), Reason: "no llegó", UserEmail: user,
	})
	require.NoError(t, err)

	res, err := f.reception.Reverse(f.ctx, inventory.ReverseReceptionCommand{
		DocumentNumber: "REC-1", Reason: "remisión equivocada", UserEmail: user,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Movements)
	assertDec(t, 0, f.net(t, x.ID, whA))
}

func TestRecepcion_AnulacionConservaElCostoPromedio(t *testing.T) {
	f := newFixture(t)
	x := f.receivePO(t, "REC-1", 10)
	_, err := f.reception.Receive(f.ctx, inventory.ReceiveCommand{
		WarehouseID:    whA,
		DocumentNumber: "REC-2",
		UserEmail:      user,
		Lines:          []inventory.ReceiveLine{{ProductCode: "X", UnitPrice: dec(3000), Quantity: dec(10)}},
	})
	require.NoError(t, err)

	_, err = f.reception.Reverse(f.ctx, inventory.ReverseReceptionCommand{
		DocumentNumber: "REC-2", Reason: "precio errado", UserEmail: user,
	})
	require.NoError(t, err)

	p, err := f.store.Products().GetByID(f.ctx, x.ID)
	require.NoError(t, err)
	assertDec(t, 10, p.CurrentStock)
	assertDec(t, 2250, p.UnitPrice)
}
