package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

func producto(id, code string) *entity.Product {
	now := time.Now()
	return &entity.Product{ID: id, Code: code, Name: code, UnitMeasure: "UN", CreatedAt: now, UpdatedAt: now}
}

func TestRun_ErrorDescartaCambios(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Products().Create(ctx, producto("p1", "CAB-1")))

	boom := errors.New("boom")
	err := store.Run(ctx, func(r inventory.TxRepos) error {
		require.NoError(t, r.Products.AddStock(ctx, "p1", decimal.NewFromInt(5)))
		require.NoError(t, r.Products.Create(ctx, producto("p2", "CAB-2")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.CurrentStock.IsZero())
	missing, err := store.Products().GetByID(ctx, "p2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRun_ConfirmaCambios(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Products().Create(ctx, producto("p1", "CAB-1")))

	require.NoError(t, store.Run(ctx, func(r inventory.TxRepos) error {
		return r.Products.AddStock(ctx, "p1", decimal.NewFromInt(7))
	}))

	p, err := store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.CurrentStock.Equal(decimal.NewFromInt(7)))
}

func TestSetHook_FallaComoTransaccion(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.SetHook(func(op string) error {
		if op == "products.create" {
			return errors.New("disco lleno")
		}
		return nil
	})

	err := store.Products().Create(ctx, producto("p1", "CAB-1"))
	assert.ErrorIs(t, err, domain.ErrTransactionFailure)

	store.SetHook(nil)
	require.NoError(t, store.Products().Create(ctx, producto("p1", "CAB-1")))
	assert.ErrorIs(t, store.Products().Create(ctx, producto("p9", "cab-1")), domain.ErrDuplicateReference)
}

func TestRun_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := memory.New()
	called := false
	err := store.Run(ctx, func(inventory.TxRepos) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrTransactionFailure)
	assert.False(t, called)
}

func TestReadOnly_RechazaEscrituras(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Products().Create(ctx, producto("p1", "CAB-1")))

	err := store.ReadOnly(ctx, func(r inventory.TxRepos) error {
		p, err := r.Products.GetByID(ctx, "p1")
		require.NoError(t, err)
		require.NotNil(t, p)
		return r.Products.AddStock(ctx, "p1", decimal.NewFromInt(3))
	})
	assert.ErrorIs(t, err, domain.ErrTransactionFailure)

	p, err := store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.CurrentStock.IsZero())
}

func TestReadOnly_EscrituraEsperaAlSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Products().Create(ctx, producto("p1", "CAB-1")))

	done := make(chan error, 1)
	err := store.ReadOnly(ctx, func(r inventory.TxRepos) error {
		go func() {
			done <- store.Run(ctx, func(w inventory.TxRepos) error {
				return w.Products.AddStock(ctx, "p1", decimal.NewFromInt(5))
			})
		}()
		time.Sleep(20 * time.Millisecond)
		p, err := r.Products.GetByID(ctx, "p1")
		require.NoError(t, err)
		assert.True(t, p.CurrentStock.IsZero(), "la escritura no se ve dentro de la lectura")
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, <-done)

	p, err := store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.CurrentStock.Equal(decimal.NewFromInt(5)))
}
