package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/ledger"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
)

func movement(t entity.MovementType, productID string, qty int64, project, owner string) *entity.Movement {
	return &entity.Movement{
		ID:             uuid.New().String(),
		Type:           t,
		ProductID:      productID,
		WarehouseID:    whA,
		Quantity:       dec(qty),
		DocumentNumber: "DOC-" + string(t),
		ProjectID:      project,
		ClientOwner:    owner,
		UserEmail:      user,
		CreatedAt:      time.Now(),
	}
}

func TestMovementRepo_NetStockConSignosYAlcanceDeCliente(t *testing.T) {
	ctx := reset(t)
	seedProduct(t, ctx, "p1", "CAB-1")
	seedProject(t, ctx, "P1", "ACME")
	seedProject(t, ctx, "P2", "OTRO")

	movements := postgres.NewMovementRepository(pool)
	for _, m := range []*entity.Movement{
		movement(entity.MovementInbound, "p1", 10, "P1", ""),
		movement(entity.MovementInbound, "p1", 5, "", "ACME"),
		movement(entity.MovementInbound, "p1", 7, "P2", ""),
		movement(entity.MovementPutAway, "p1", 3, "P1", ""),
		movement(entity.MovementOutbound, "p1", 2, "P1", ""),
		movement(entity.MovementDecrease, "p1", 1, "P2", ""),
	} {
		require.NoError(t, movements.Append(ctx, m))
	}

	net, err := movements.NetStock(ctx, "p1", whA)
	require.NoError(t, err)
	assertDec(t, 19, net)
	other, err := movements.NetStock(ctx, "p1", whB)
	require.NoError(t, err)
	assertDec(t, 0, other)

	projects, err := postgres.NewProjectRepository(pool).ListByClient(ctx, "ACME")
	require.NoError(t, err)
	scope := ledger.NewClientScope("ACME", projects)
	totals, err := ledger.SumByTypeClass(movements.Stream(ctx, repository.MovementFilter{Scope: scope}))
	require.NoError(t, err)
	assertDec(t, 15, totals.In)
	assertDec(t, 2, totals.Out)

	n := 0
	for m, err := range movements.Stream(ctx, repository.MovementFilter{
		Scope: ledger.NewClientScope("SIN-PROYECTOS", nil),
	}) {
		require.NoError(t, err)
		assert.Empty(t, m.ID)
		n++
	}
	assert.Zero(t, n)
}

func TestMovementRepo_StreamFiltraPorTipoYOrden(t *testing.T) {
	ctx := reset(t)
	seedProduct(t, ctx, "p1", "CAB-1")
	movements := postgres.NewMovementRepository(pool)
	first := movement(entity.MovementInbound, "p1", 10, "", "")
	second := movement(entity.MovementOutbound, "p1", 4, "", "")
	require.NoError(t, movements.Append(ctx, first))
	require.NoError(t, movements.Append(ctx, second))

	var ids []string
	for m, err := range movements.Stream(ctx, repository.MovementFilter{ProductID: "p1", Order: repository.NewestFirst}) {
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{second.ID, first.ID}, ids)

	var types []entity.MovementType
	for m, err := range movements.Stream(ctx, repository.MovementFilter{
		Types: []entity.MovementType{entity.MovementOutbound},
	}) {
		require.NoError(t, err)
		types = append(types, m.Type)
	}
	assert.Equal(t, []entity.MovementType{entity.MovementOutbound}, types)
}

func TestMovementRepo_ProductoInexistenteEsNotFound(t *testing.T) {
	ctx := reset(t)
	err := postgres.NewMovementRepository(pool).Append(ctx, movement(entity.MovementInbound, "no-existe", 1, "", ""))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAllocationRepo_UpsertYBorradoEnCero(t *testing.T) {
	ctx := reset(t)
	seedProduct(t, ctx, "p1", "CAB-1")
	allocations := postgres.NewAllocationRepository(pool)
	row := func(qty int64) *entity.ProductLocation {
		return &entity.ProductLocation{ProductID: "p1", WarehouseID: whA, LocationID: loc1, Quantity: dec(qty), UpdatedAt: time.Now()}
	}

	require.NoError(t, allocations.Save(ctx, row(5)))
	require.NoError(t, allocations.Save(ctx, row(8)))
	got, err := allocations.Get(ctx, "p1", whA, loc1)
	require.NoError(t, err)
	assertDec(t, 8, got.Quantity)

	n, err := allocations.CountByLocation(ctx, loc1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, allocations.Save(ctx, row(0)))
	got, err = allocations.Get(ctx, "p1", whA, loc1)
	require.NoError(t, err)
	assert.True(t, got.Quantity.IsZero())
	n, err = allocations.CountByLocation(ctx, loc1)
	require.NoError(t, err)
	assert.Zero(t, n)

	err = allocations.Save(ctx, &entity.ProductLocation{
		ProductID: "p1", WarehouseID: whA, LocationID: "no-existe", Quantity: dec(1), UpdatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductRepo_CodigoDuplicadoSinDistinguirMayusculas(t *testing.T) {
	ctx := reset(t)
	seedProduct(t, ctx, "p1", "CAB-1")
	now := time.Now()
	err := postgres.NewProductRepository(pool).Create(ctx, &entity.Product{
		ID: "p2", Code: "cab-1", Name: "otro", CreatedAt: now, UpdatedAt: now,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateReference)
}

func TestTxRunner_ErrorRevierteTodo(t *testing.T) {
	ctx := reset(t)
	seedProduct(t, ctx, "p1", "CAB-1")
	runner := postgres.NewTxRunner(pool)
	boom := errors.New("boom")

	err := runner.Run(ctx, func(r inventory.TxRepos) error {
		require.NoError(t, r.Movements.Append(ctx, movement(entity.MovementInbound, "p1", 10, "", "")))
		require.NoError(t, r.Products.AddStock(ctx, "p1", dec(10)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	net, err := postgres.NewMovementRepository(pool).NetStock(ctx, "p1", whA)
	require.NoError(t, err)
	assertDec(t, 0, net)
	p, err := postgres.NewProductRepository(pool).GetByID(ctx, "p1")
	require.NoError(t, err)
	assertDec(t, 0, p.CurrentStock)
}

func TestTxRunner_LecturaConsistenteAunqueOtrosConfirmen(t *testing.T) {
	ctx := reset(t)
	seedProduct(t, ctx, "p1", "CAB-1")
	runner := postgres.NewTxRunner(pool)
	movements := postgres.NewMovementRepository(pool)

	err := runner.ReadOnly(ctx, func(r inventory.TxRepos) error {
		before, err := r.Movements.NetStock(ctx, "p1", whA)
		require.NoError(t, err)
		assertDec(t, 0, before)

		// Una recepción y su ubicación confirman entre las dos lecturas.
		require.NoError(t, runner.Run(context.Background(), func(w inventory.TxRepos) error {
			if err := w.Movements.Append(ctx, movement(entity.MovementInbound, "p1", 10, "", "")); err != nil {
				return err
			}
			return w.Allocations.Save(ctx, &entity.ProductLocation{
				ProductID: "p1", WarehouseID: whA, LocationID: loc1, Quantity: dec(10), UpdatedAt: time.Now(),
			})
		}))

		after, err := r.Movements.NetStock(ctx, "p1", whA)
		require.NoError(t, err)
		assertDec(t, 0, after)
		allocated, err := r.Allocations.SumByProduct(ctx, "p1", whA)
		require.NoError(t, err)
		assertDec(t, 0, allocated)
		return nil
	})
	require.NoError(t, err)

	net, err := movements.NetStock(ctx, "p1", whA)
	require.NoError(t, err)
	assertDec(t, 10, net)
}

func TestTxRunner_LecturaRechazaEscrituras(t *testing.T) {
	ctx := reset(t)
	seedProduct(t, ctx, "p1", "CAB-1")
	err := postgres.NewTxRunner(pool).ReadOnly(ctx, func(r inventory.TxRepos) error {
		return r.Products.AddStock(ctx, "p1", dec(1))
	})
	require.Error(t, err)

	p, err := postgres.NewProductRepository(pool).GetByID(ctx, "p1")
	require.NoError(t, err)
	assertDec(t, 0, p.CurrentStock)
}
