package postgres_test

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	"github.com/jhoicas/almacen-api/pkg/config"
)

const (
	testPort = 5439
	whA      = "wh-a"
	whB      = "wh-b"
	loc1     = "loc-a-01"
	loc2     = "loc-a-02"
	user     = "bodega@empresa.com"
)

// pool queda en nil con -short: las pruebas de este paquete necesitan un PostgreSQL embebido.
var pool *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}
	os.Exit(runWithPostgres(m))
}

func runWithPostgres(m *testing.M) int {
	dir, err := os.MkdirTemp("", "almacen-pg")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer os.RemoveAll(dir)

	db := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		Port(testPort).
		Database("almacen_test").
		Username("postgres").
		Password("postgres").
		RuntimePath(filepath.Join(dir, "runtime")).
		DataPath(filepath.Join(dir, "data")).
		StartTimeout(60 * time.Second).
		Logger(io.Discard))
	if err := db.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "iniciar postgres embebido:", err)
		return 1
	}
	defer func() { _ = db.Stop() }()

	ctx := context.Background()
	pool, err = postgres.NewPool(ctx, config.DBConfig{
		Host:     "127.0.0.1",
		Port:     testPort,
		User:     "postgres",
		Password: "postgres",
		DBName:   "almacen_test",
		SSLMode:  "disable",
		MaxConns: 10,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return m.Run()
}

// reset deja la base vacía con dos bodegas y dos ubicaciones en la bodega A.
func reset(t *testing.T) context.Context {
	t.Helper()
	if pool == nil {
		t.Skip("requiere PostgreSQL embebido (sin -short)")
	}
	ctx := context.Background()
	_, err := pool.Exec(ctx, `TRUNCATE movements, product_locations, dispatch_lines, dispatches, documents,
		purchase_order_lines, projects, suppliers, locations, products, warehouses CASCADE`)
	require.NoError(t, err)

	warehouses := postgres.NewWarehouseRepository(pool)
	now := time.Now()
	for _, w := range []*entity.Warehouse{
		{ID: whA, Code: "A", Name: "Bodega A", Active: true, CreatedAt: now, UpdatedAt: now},
		{ID: whB, Code: "B", Name: "Bodega B", Active: true, CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, warehouses.Create(ctx, w))
	}
	locations := postgres.NewLocationRepository(pool)
	for _, l := range []*entity.Location{
		{ID: loc1, WarehouseID: whA, Zone: "A", Aisle: "01", FullCode: "A-01", CreatedAt: now},
		{ID: loc2, WarehouseID: whA, Zone: "A", Aisle: "02", FullCode: "A-02", CreatedAt: now},
	} {
		require.NoError(t, locations.Create(ctx, l))
	}
	return ctx
}

func seedProduct(t *testing.T, ctx context.Context, id, code string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, postgres.NewProductRepository(pool).Create(ctx, &entity.Product{
		ID: id, Code: code, Name: code, UnitMeasure: "UN", CreatedAt: now, UpdatedAt: now,
	}))
}

func seedProject(t *testing.T, ctx context.Context, id, client string) {
	t.Helper()
	_, err := pool.Exec(ctx, `INSERT INTO projects (id, code, name, client) VALUES ($1, $1, $1, $2)`, id, client)
	require.NoError(t, err)
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func assertDec(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, got.Equal(dec(want)), "esperado %d, obtenido %s", want, got.String())
}
