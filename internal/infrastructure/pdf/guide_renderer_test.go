package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/pdf"
)

func TestRenderGuide_GeneraPDF(t *testing.T) {
	r := pdf.NewGuideRenderer("Constructora Demo")
	out, err := r.RenderGuide(context.Background(), inventory.GuideData{
		Dispatch: &entity.Dispatch{
			DocumentNumber:         "DSP-0001",
			Mode:                   entity.DispatchTransfer,
			DestinationWarehouseID: "wh-b",
			UserEmail:              "bodega@empresa.com",
		},
		Warehouse:   &entity.Warehouse{Code: "A", Name: "Bodega A"},
		Destination: &entity.Warehouse{Code: "B", Name: "Bodega B"},
		Lines: []inventory.GuideLine{
			{ProductCode: "X", ProductName: "Cable THHN 12 AWG", UnitMeasure: "MT", LocationCode: "A-01-01", Quantity: decimal.NewFromInt(20)},
		},
		IssuedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderGuide_SinBodega(t *testing.T) {
	_, err := pdf.NewGuideRenderer("").RenderGuide(context.Background(), inventory.GuideData{
		Dispatch: &entity.Dispatch{DocumentNumber: "DSP-1"},
	})
	assert.Error(t, err)
}
