package ledger_test

import (
	"errors"
	"iter"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/ledger"
)

func mov(t entity.MovementType, product string, qty int64) *entity.Movement {
	return &entity.Movement{Type: t, ProductID: product, WarehouseID: "w1", Quantity: decimal.NewFromInt(qty)}
}

func TestSign(t *testing.T) {
	cases := map[entity.MovementType]int{
		entity.MovementInbound:     1,
		entity.MovementTransferIn:  1,
		entity.MovementIncrease:    1,
		entity.MovementOutbound:    -1,
		entity.MovementTransferOut: -1,
		entity.MovementDecrease:    -1,
		entity.MovementPutAway:     0,
	}
	for typ, want := range cases {
		assert.Equal(t, want, ledger.Sign(typ), typ)
	}
	assert.False(t, ledger.AffectsStock(entity.MovementPutAway))
}

func TestNetStock_PutAwayNoSuma(t *testing.T) {
	net := ledger.NetStock([]*entity.Movement{
		mov(entity.MovementInbound, "p", 100),
		mov(entity.MovementPutAway, "p", 60),
		mov(entity.MovementOutbound, "p", 20),
		mov(entity.MovementDecrease, "p", 5),
	})
	assert.True(t, net.Equal(decimal.NewFromInt(75)))
}

func TestPendingToShelve_NuncaNegativo(t *testing.T) {
	assert.True(t, ledger.PendingToShelve(decimal.NewFromInt(10), decimal.NewFromInt(4)).Equal(decimal.NewFromInt(6)))
	assert.True(t, ledger.PendingToShelve(decimal.NewFromInt(3), decimal.NewFromInt(4)).IsZero())
}

func TestKardex_SecuenciaReiniciable(t *testing.T) {
	movs := []*entity.Movement{
		mov(entity.MovementInbound, "p", 10),
		mov(entity.MovementPutAway, "p", 10),
		mov(entity.MovementOutbound, "p", 3),
	}
	stream := ledger.Slice(movs)

	entries, err := ledger.Kardex(stream)
	require.NoError(t, err)
	again, err := ledger.Kardex(stream)
	require.NoError(t, err)
	assert.Len(t, again, 3, "el stream se puede recorrer de nuevo")
	totals, err := ledger.SumByTypeClass(stream)
	require.NoError(t, err)
	fromEntries := ledger.KardexTotals(entries)
	assert.True(t, fromEntries.In.Equal(totals.In))
	assert.True(t, fromEntries.Out.Equal(totals.Out))

	require.Len(t, entries, 3)
	assert.True(t, entries[1].Balance.Equal(decimal.NewFromInt(10)))
	assert.True(t, entries[2].Balance.Equal(decimal.NewFromInt(7)))
	assert.True(t, totals.Net().Equal(entries[2].Balance))

	newest := ledger.Newest(entries)
	assert.Same(t, movs[2], newest[0].Movement)
	assert.Same(t, movs[0], entries[0].Movement, "Newest no altera la lista original")
}

func TestKardexTotals_IgnoraUbicacion(t *testing.T) {
	entries, err := ledger.Kardex(ledger.Slice([]*entity.Movement{
		mov(entity.MovementInbound, "p", 40),
		mov(entity.MovementPutAway, "p", 40),
		mov(entity.MovementTransferIn, "p", 5),
		mov(entity.MovementOutbound, "p", 12),
		mov(entity.MovementDecrease, "p", 3),
	}))
	require.NoError(t, err)

	totals := ledger.KardexTotals(entries)
	assert.True(t, totals.In.Equal(decimal.NewFromInt(45)))
	assert.True(t, totals.Out.Equal(decimal.NewFromInt(15)))
	assert.True(t, totals.Net().Equal(entries[len(entries)-1].Balance))
	assert.True(t, ledger.KardexTotals(nil).Net().IsZero())
}

func TestKardex_PropagaErrorDelStream(t *testing.T) {
	boom := errors.New("boom")
	var stream iter.Seq2[*entity.Movement, error] = func(yield func(*entity.Movement, error) bool) {
		if !yield(mov(entity.MovementInbound, "p", 1), nil) {
			return
		}
		yield(nil, boom)
	}
	_, err := ledger.Kardex(stream)
	assert.ErrorIs(t, err, boom)
}

func TestReconcile_SoloPendientes(t *testing.T) {
	movs := ledger.Slice([]*entity.Movement{
		mov(entity.MovementInbound, "b", 10),
		mov(entity.MovementInbound, "a", 5),
		mov(entity.MovementInbound, "c", 2),
	})
	allocs := ledger.Slice([]*entity.ProductLocation{
		{ProductID: "b", Quantity: decimal.NewFromInt(4)},
		{ProductID: "c", Quantity: decimal.NewFromInt(2)},
	})
	pending, err := ledger.Reconcile(movs, allocs)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "a", pending[0].ProductID)
	assert.Equal(t, "b", pending[1].ProductID)
	assert.True(t, pending[1].Pending().Equal(decimal.NewFromInt(6)))
}

func TestClientScope_ProyectoOPropietario(t *testing.T) {
	scope := ledger.NewClientScope("ACME", []*entity.Project{
		{ID: "P1", Client: "ACME"},
		{ID: "P2", Client: "OTRO"},
	})
	assert.True(t, scope.Matches(&entity.Movement{ProjectID: "P1"}))
	assert.True(t, scope.Matches(&entity.Movement{ProjectID: "P2", ClientOwner: "ACME"}))
	assert.True(t, scope.Matches(&entity.Movement{ClientOwner: "ACME"}))
	assert.False(t, scope.Matches(&entity.Movement{ProjectID: "P2"}))
	assert.False(t, scope.Matches(&entity.Movement{}))
	assert.Equal(t, []string{"P1"}, scope.ProjectIDList())

	var all *ledger.ClientScope
	assert.True(t, all.Matches(&entity.Movement{ProjectID: "P2"}))
}

func TestWeightedAverageCost(t *testing.T) {
	d := decimal.NewFromInt
	assert.True(t, ledger.WeightedAverageCost(d(10), d(1500), d(10), d(3000)).Equal(d(2250)))
	assert.True(t, ledger.WeightedAverageCost(d(0), d(0), d(5), d(800)).Equal(d(800)))
	assert.True(t, ledger.WeightedAverageCost(d(-3), d(100), d(4), d(200)).Equal(d(200)))
	assert.True(t, ledger.WeightedAverageCost(d(0), d(0), d(0), d(1)).IsZero())
}
