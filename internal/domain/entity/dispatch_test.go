package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

func draft() *entity.Dispatch {
	return &entity.Dispatch{
		WarehouseID:    "w1",
		Mode:           entity.DispatchDirect,
		ProjectID:      "P1",
		DocumentNumber: "DSP-1",
		State:          entity.DispatchDraft,
		Lines: []entity.DispatchLine{
			{ProductID: "a", LocationID: "l1", Quantity: decimal.NewFromInt(2)},
			{ProductID: "b", LocationID: "l2", Quantity: decimal.NewFromInt(3)},
		},
	}
}

func TestDispatch_FlujoCompleto(t *testing.T) {
	d := draft()
	assert.ErrorIs(t, d.CanConfirm(), domain.ErrGuideRequired)

	require.NoError(t, d.MarkGuideGenerated("memory://guia.pdf"))
	assert.Equal(t, entity.DispatchDocumentGenerated, d.State)
	require.NoError(t, d.CanConfirm())

	now := time.Now()
	require.NoError(t, d.MarkConfirmed(now))
	assert.Equal(t, entity.DispatchConfirmed, d.State)
	assert.Equal(t, now, *d.ConfirmedAt)

	assert.ErrorIs(t, d.SetLines(nil), domain.ErrInvalidTransition)
	assert.ErrorIs(t, d.MarkSigned(""), domain.ErrValidation)
	require.NoError(t, d.MarkSigned("memory://acta.jpg"))
	assert.Equal(t, entity.DispatchSigned, d.State)
	assert.ErrorIs(t, d.MarkSigned("memory://otra.jpg"), domain.ErrInvalidTransition)
}

func TestDispatch_EditarVuelveABorrador(t *testing.T) {
	d := draft()
	require.NoError(t, d.MarkGuideGenerated("memory://guia.pdf"))

	require.NoError(t, d.SetLines(d.Lines[:1]))
	assert.Equal(t, entity.DispatchDraft, d.State)
	assert.Empty(t, d.GuideURL)
	assert.ErrorIs(t, d.CanConfirm(), domain.ErrGuideRequired)
}

func TestDispatch_HuellaIgnoraElOrdenDeLineas(t *testing.T) {
	a := draft()
	b := draft()
	b.Lines[0], b.Lines[1] = b.Lines[1], b.Lines[0]
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Lines[0].Quantity = decimal.NewFromInt(4)
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestDispatch_GuiaDeCarritoModificadoNoConfirma(t *testing.T) {
	d := draft()
	require.NoError(t, d.MarkGuideGenerated("memory://guia.pdf"))
	d.Lines[0].Quantity = decimal.NewFromInt(99)
	assert.ErrorIs(t, d.CanConfirm(), domain.ErrGuideRequired)
}

func TestDispatch_GuiaSinLineas(t *testing.T) {
	d := draft()
	d.Lines = nil
	assert.ErrorIs(t, d.MarkGuideGenerated("x"), domain.ErrValidation)
}

func TestBuildFullCode(t *testing.T) {
	assert.Equal(t, "A-01-02", entity.BuildFullCode("a", "01", "", "02"))
	l := &entity.Location{Zone: "b ", Aisle: "2", Rack: "r1", Level: "", Position: "p"}
	assert.Equal(t, "B-2-R1-P", l.Code())
}
