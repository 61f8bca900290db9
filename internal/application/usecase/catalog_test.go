package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

func TestLocation_CodigoUnicoPorBodegaYBorradoSoloVacia(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	warehouses := usecase.NewWarehouseUseCase(store.Warehouses())
	locations := usecase.NewLocationUseCase(store.Locations(), store.Warehouses(), store.Allocations())

	w, err := warehouses.Create(ctx, dto.CreateWarehouseRequest{Code: "bod-1", Name: "Principal"})
	require.NoError(t, err)
	assert.Equal(t, "BOD-1", w.Code)

	loc, err := locations.Create(ctx, w.ID, dto.CreateLocationRequest{Zone: "a", Aisle: "01", Rack: "r2", Level: "n1", Position: "p"})
	require.NoError(t, err)
	assert.Equal(t, "A-01-R2-N1-P", loc.FullCode)

	_, err = locations.Create(ctx, w.ID, dto.CreateLocationRequest{Zone: "A", Aisle: "01", Rack: "R2", Level: "N1", Position: "P"})
	assert.ErrorIs(t, err, domain.ErrDuplicateReference)

	_, err = locations.Create(ctx, "no-existe", dto.CreateLocationRequest{Zone: "A"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Allocations().Save(ctx, &entity.ProductLocation{
		ProductID: "p1", WarehouseID: w.ID, LocationID: loc.ID, Quantity: decimal.NewFromInt(3),
	}))
	assert.ErrorIs(t, locations.Delete(ctx, loc.ID), domain.ErrLocationNotEmpty)

	require.NoError(t, store.Allocations().Save(ctx, &entity.ProductLocation{
		ProductID: "p1", WarehouseID: w.ID, LocationID: loc.ID, Quantity: decimal.Zero,
	}))
	require.NoError(t, locations.Delete(ctx, loc.ID))

	list, err := locations.List(ctx, w.ID, "")
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestProduct_DuplicadoYStockSoloLectura(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	products := usecase.NewProductUseCase(store.Products())

	p, err := products.Create(ctx, dto.CreateProductRequest{Code: "brk-20", Name: "Breaker 20A", UnitMeasure: "UN", UnitPrice: decimal.NewFromInt(45)})
	require.NoError(t, err)
	assert.True(t, p.CurrentStock.IsZero())

	_, err = products.Create(ctx, dto.CreateProductRequest{Code: "BRK-20", Name: "Otro", UnitMeasure: "UN"})
	assert.ErrorIs(t, err, domain.ErrDuplicateReference)

	_, err = products.Create(ctx, dto.CreateProductRequest{Code: "N-1", Name: "Negativo", UnitMeasure: "UN", UnitPrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	name := "Breaker 20A riel DIN"
	out, err := products.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, out.Name)
	assert.True(t, out.CurrentStock.IsZero())

	list, err := products.List(ctx, "breaker", dto.PageRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Page.Total)
}
