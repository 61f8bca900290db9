package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/infrastructure/excel"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/almacen-api/internal/infrastructure/pdf"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	"github.com/jhoicas/almacen-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/almacen-api/internal/interfaces/http"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// backend repositorios fuera de transacción más el TxRunner del driver elegido.
type backend struct {
	tx        inventory.TxStore
	repos     inventory.TxRepos
	projects  repository.ProjectRepository
	suppliers repository.SupplierRepository
	close     func()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.Store.Driver == "memory" {
		log.Warn().Msg("STORE_DRIVER=memory: los datos no se persisten")
		store := memory.New()
		return &backend{
			tx: store,
			repos: inventory.TxRepos{
				Movements:      store.Movements(),
				Allocations:    store.Allocations(),
				Products:       store.Products(),
				Documents:      store.Documents(),
				PurchaseOrders: store.PurchaseOrders(),
				Dispatches:     store.Dispatches(),
				Locations:      store.Locations(),
				Warehouses:     store.Warehouses(),
			},
			projects:  store.Projects(),
			suppliers: store.Suppliers(),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("conectado a PostgreSQL")
	if cfg.Store.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &backend{
		tx:        postgres.NewTxRunner(pool),
		repos:     postgres.Repos(pool),
		projects:  postgres.NewProjectRepository(pool),
		suppliers: postgres.NewSupplierRepository(pool),
		close:     pool.Close,
	}, nil
}

func openBlobs(ctx context.Context, cfg config.BlobConfig) (inventory.BlobStore, func(), error) {
	if cfg.Driver == "gcs" {
		gcs, err := storage.NewGCS(ctx, cfg.GCSBucket, cfg.GCSCredentialsJSON)
		if err != nil {
			return nil, nil, err
		}
		return gcs, func() { _ = gcs.Close() }, nil
	}
	local, err := storage.NewLocal(cfg.LocalDir, cfg.PublicBaseURL)
	if err != nil {
		return nil, nil, err
	}
	return local, func() {}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Str("blobs", cfg.Blob.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento de ledgers")
	}
	defer be.close()

	blobs, closeBlobs, err := openBlobs(ctx, cfg.Blob)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento de adjuntos")
	}
	defer closeBlobs()

	r := be.repos
	opsLog := log.Component("inventory")
	guideRenderer := infrapdf.NewGuideRenderer(cfg.App.Company)

	deps := httpRouter.RouterDeps{
		WarehouseUC:  usecase.NewWarehouseUseCase(r.Warehouses),
		LocationUC:   usecase.NewLocationUseCase(r.Locations, r.Warehouses, r.Allocations),
		ProductUC:    usecase.NewProductUseCase(r.Products),
		LookupUC:     usecase.NewLookupUseCase(be.projects, be.suppliers),
		ReceptionUC:  inventory.NewReceptionUseCase(be.tx, r.Movements, r.PurchaseOrders, blobs, opsLog),
		PutAwayUC:    inventory.NewPutAwayUseCase(be.tx, r.Movements, opsLog),
		DispatchUC:   inventory.NewDispatchUseCase(be.tx, r.Movements, guideRenderer, blobs, opsLog),
		AdjustmentUC: inventory.NewAdjustmentUseCase(be.tx, r.Movements, blobs, opsLog),
		CorrectionUC: inventory.NewCorrectionUseCase(be.tx, r.Movements, opsLog),
		QueryUC: inventory.NewQueryUseCase(be.tx, r.Movements, r.Allocations,
			r.Products, r.Locations, r.Warehouses, be.projects, excel.NewClosingReportExporter()),
		ReconciliationUC: inventory.NewReconciliationUseCase(be.tx, opsLog),
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    12 << 20,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Almacén API",
		}))
	}

	if cfg.Blob.Driver == "local" {
		app.Static(cfg.Blob.PublicBaseURL, cfg.Blob.LocalDir)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
