package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC      *usecase.WarehouseUseCase
	LocationUC       *usecase.LocationUseCase
	ProductUC        *usecase.ProductUseCase
	LookupUC         *usecase.LookupUseCase
	ReceptionUC      *inventory.ReceptionUseCase
	PutAwayUC        *inventory.PutAwayUseCase
	DispatchUC       *inventory.DispatchUseCase
	AdjustmentUC     *inventory.AdjustmentUseCase
	CorrectionUC     *inventory.CorrectionUseCase
	QueryUC          *inventory.QueryUseCase
	ReconciliationUC *inventory.ReconciliationUseCase
}

// Router registra las rutas de la API. Todas exigen X-User-Email.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", UserMiddleware())

	catalog := NewCatalogHandler(deps.WarehouseUC, deps.LocationUC, deps.ProductUC, deps.LookupUC)

	warehouses := api.Group("/warehouses")
	warehouses.Post("/", catalog.CreateWarehouse)
	warehouses.Get("/", catalog.ListWarehouses)
	warehouses.Get("/:id", catalog.GetWarehouse)
	warehouses.Put("/:id", catalog.UpdateWarehouse)
	warehouses.Post("/:id/locations", catalog.CreateLocation)
	warehouses.Get("/:id/locations", catalog.ListLocations)
	api.Delete("/locations/:id", catalog.DeleteLocation)

	products := api.Group("/products")
	products.Post("/", catalog.CreateProduct)
	products.Get("/", catalog.ListProducts)
	products.Get("/:id", catalog.GetProduct)
	products.Put("/:id", catalog.UpdateProduct)

	api.Get("/projects", catalog.SearchProjects)
	api.Get("/suppliers", catalog.SearchSuppliers)

	ops := NewOperationHandler(deps.ReceptionUC, deps.PutAwayUC, deps.AdjustmentUC, deps.CorrectionUC, deps.QueryUC)
	api.Post("/receptions", ops.Receive)
	api.Post("/receptions/:number/reverse", ops.ReverseReception)
	api.Get("/purchase-orders/:po", ops.PurchaseOrder)
	api.Post("/putaway", ops.PutAway)
	api.Get("/putaway/pending", ops.PendingPutAway)
	api.Post("/adjustments", ops.Adjust)
	api.Post("/corrections", ops.CorrectInbound)

	dispatches := api.Group("/dispatches")
	dispatchHandler := NewDispatchHandler(deps.DispatchUC)
	dispatches.Post("/", dispatchHandler.Create)
	dispatches.Get("/:id", dispatchHandler.Get)
	dispatches.Put("/:id/lines", dispatchHandler.UpdateLines)
	dispatches.Post("/:id/guide", dispatchHandler.GenerateGuide)
	dispatches.Post("/:id/confirm", dispatchHandler.Confirm)
	dispatches.Post("/:id/sign", dispatchHandler.Sign)

	stock := NewStockHandler(deps.QueryUC, deps.ReconciliationUC)
	api.Get("/kardex/:productId", stock.Kardex)
	api.Get("/stock/warehouse/:id", stock.ByWarehouse)
	api.Get("/stock/locations/:id", stock.ByLocation)
	api.Get("/stock/client/:client", stock.ByClient)
	api.Get("/reconciliation/audit", stock.Audit)
	api.Post("/reconciliation/repair", stock.Repair)
	api.Get("/reports/closing/:warehouseId", stock.ClosingReport)
}
