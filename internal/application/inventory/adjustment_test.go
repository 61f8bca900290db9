package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

func adjustCmd(productID string, t entity.MovementType, qty int64) inventory.AdjustCommand {
	return inventory.AdjustCommand{
		WarehouseID: whA,
		ProductID:   productID,
		Type:        t,
		Quantity:    dec(qty),
		Reason:      "conteo cíclico",
		LocationID:  loc1,
		ProjectID:   "P1",
		UserEmail:   user,
	}
}

func TestAjuste_SinEvidenciaExigeConfirmacion(t *testing.T) {
	f := newFixture(t)
	x := f.receivePO(t, "REC-1", 10)
	f.shelve(t, x.ID, loc1, 10)

	_, err := f.adjust.Adjust(f.ctx, adjustCmd(x.ID, entity.MovementDecrease, 2))
	assert.ErrorIs(t, err, domain.ErrConfirmationRequired)
	assertDec(t, 10, f.allocation(t, x.ID, loc1))

	cmd := adjustCmd(x.ID, entity.MovementDecrease, 2)
	cmd.Evidence = &inventory.Attachment{Filename: "foto.jpg", ContentType: "image/jpeg", Data: []byte("jpg")}
	res, err := f.adjust.Adjust(f.ctx, cmd)
	require.NoError(t, err)
	assert.Contains(t, res.Movements[0].ReceptionDocumentURL, "ajustes/")
	assert.Contains(t, res.Document.Number, "AJU-")
	assertDec(t, 8, f.allocation(t, x.ID, loc1))
}

func TestAjuste_SobranteSeUbicaDirectamente(t *testing.T) {
	f := newFixture(t)
	x := f.receivePO(t, "REC-1", 10)
	f.shelve(t, x.ID, loc1, 10)

	cmd := adjustCmd(x.ID, entity.MovementIncrease, 3)
	cmd.ConfirmWithoutEvidence = true
	res, err := f.adjust.Adjust(f.ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, loc1, res.Movements[0].LocationID)

	assertDec(t, 13, f.allocation(t, x.ID, loc1))
	assertDec(t, 13, f.net(t, x.ID, whA))
	assertDec(t, 0, f.pending(t, x.ID, whA))
}

func TestAjuste_MermaMayorALaUbicacion(t *testing.T) {
	f := newFixture(t)
	x := f.receivePO(t, "REC-1", 10)
	f.shelve(t, x.ID, loc1, 4)

	cmd := adjustCmd(x.ID, entity.MovementDecrease, 5)
	cmd.ConfirmWithoutEvidence = true
	_, err := f.adjust.Adjust(f.ctx, cmd)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assertDec(t, 4, f.allocation(t, x.ID, loc1))
	assertDec(t, 10, f.net(t, x.ID, whA))
}

func TestAjuste_FalloDeAlmacenamientoNoRegistraNada(t *testing.T) {
	f := newFixture(t)
	x := f.receivePO(t, "REC-1", 10)
	f.shelve(t, x.ID, loc1, 10)
	before := f.movementCount(t)
	f.blobs.FailPuts(assert.AnError)

	cmd := adjustCmd(x.ID, entity.MovementDecrease, 1)
	cmd.Evidence = &inventory.Attachment{Filename: "foto.jpg", Data: []byte("jpg")}
	_, err := f.adjust.Adjust(f.ctx, cmd)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, before, f.movementCount(t))
}

func TestUbicacion_NoSuperaLoPendiente(t *testing.T) {
	f := newFixture(t)
	x := f.receivePO(t, "REC-1", 10)
	f.shelve(t, x.ID, loc1, 6)

	_, err := f.putaway.Commit(f.ctx, inventory.PutAwayCommand{
		WarehouseID: whA,
		UserEmail:   user,
		Lines:       []inventory.PutAwayLine{{ProductID: x.ID, LocationID: loc2, Quantity: dec(5)}},
	})
	assert.ErrorIs(t, err, domain.ErrAllocationExceedsStock)
	assertDec(t, 0, f.allocation(t, x.ID, loc2))
	assertDec(t, 4, f.pending(t, x.ID, whA))
}

func TestUbicacion_RepartoEnVariasUbicaciones(t *testing.T) {
	f := newFixture(t)
	x := f.receivePO(t, "REC-1", 10)

	res, err := f.putaway.Commit(f.ctx, inventory.PutAwayCommand{
		WarehouseID: whA,
		UserEmail:   user,
		Lines: []inventory.PutAwayLine{
			{ProductID: x.ID, LocationID: loc1, Quantity: dec(4)},
			{ProductID: x.ID, LocationID: loc2, Quantity: dec(6)},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Movements, 2)
	for _, m := range res.Movements {
		assert.Equal(t, entity.MovementPutAway, m.Type)
		assert.NotEmpty(t, m.LocationID)
	}
	assertDec(t, 10, f.net(t, x.ID, whA), "ubicar no cambia el neto")
	assertDec(t, 0, f.pending(t, x.ID, whA))
}
