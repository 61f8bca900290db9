package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StockHandler consultas de kardex y saldos, auditoría y cierre.
type StockHandler struct {
	query *inventory.QueryUseCase
	recon *inventory.ReconciliationUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(query *inventory.QueryUseCase, recon *inventory.ReconciliationUseCase) *StockHandler {
	return &StockHandler{query: query, recon: recon}
}

// Kardex godoc
// @Summary      Kardex de un producto con saldo acumulado
// @Tags         stock
// @Produce      json
// @Param        productId     path   string  true   "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        client        query  string  false  "Cliente (proyectos del cliente o etiqueta client_owner)"
// @Param        order         query  string  false  "asc | desc"
// @Success      200  {object}  dto.KardexResponse
// @Router       /api/kardex/{productId} [get]
func (h *StockHandler) Kardex(c *fiber.Ctx) error {
	v, err := h.query.Kardex(c.UserContext(), inventory.KardexQuery{
		ProductID:   c.Params("productId"),
		WarehouseID: c.Query("warehouse_id"),
		Client:      c.Query("client"),
		Newest:      c.Query("order") == "desc",
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toKardexResponse(v))
}

// ByWarehouse godoc
// @Summary      Saldos por producto en una bodega
// @Tags         stock
// @Produce      json
// @Param        id   path  string  true  "Bodega"
// @Success      200  {array}  dto.StockRowResponse
// @Router       /api/stock/warehouse/{id} [get]
func (h *StockHandler) ByWarehouse(c *fiber.Ctx) error {
	rows, err := h.query.StockByWarehouse(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toStockRows(rows))
}

// ByLocation godoc
// @Summary      Contenido de las ubicaciones de una bodega
// @Tags         stock
// @Produce      json
// @Param        id   path  string  true  "Bodega"
// @Success      200  {array}  dto.LocationStockResponse
// @Router       /api/stock/locations/{id} [get]
func (h *StockHandler) ByLocation(c *fiber.Ctx) error {
	rows, err := h.query.StockByLocation(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toLocationStockRows(rows))
}

// ByClient godoc
// @Summary      Saldos por proyecto de un cliente
// @Tags         stock
// @Produce      json
// @Param        client  path  string  true  "Cliente"
// @Success      200     {array}  dto.ClientStockResponse
// @Router       /api/stock/client/{client} [get]
func (h *StockHandler) ByClient(c *fiber.Ctx) error {
	rows, err := h.query.StockByClient(c.UserContext(), c.Params("client"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toClientStockRows(rows))
}

// Audit godoc
// @Summary      Auditar caché de stock y cota de ubicaciones
// @Tags         reconciliation
// @Produce      json
// @Success      200  {object}  dto.AuditResponse
// @Router       /api/reconciliation/audit [get]
func (h *StockHandler) Audit(c *fiber.Ctx) error {
	r, err := h.recon.Audit(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toAuditResponse(r))
}

// Repair godoc
// @Summary      Reescribir current_stock desviado desde el kardex
// @Tags         reconciliation
// @Produce      json
// @Success      200  {array}  dto.CacheDriftResponse
// @Router       /api/reconciliation/repair [post]
func (h *StockHandler) Repair(c *fiber.Ctx) error {
	repaired, err := h.recon.RepairCache(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toDriftResponses(repaired))
}

// ClosingReport godoc
// @Summary      Cierre de inventario de una bodega (.xlsx)
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        warehouseId  path  string  true  "Bodega"
// @Success      200
// @Router       /api/reports/closing/{warehouseId} [get]
func (h *StockHandler) ClosingReport(c *fiber.Ctx) error {
	warehouseID := c.Params("warehouseId")
	data, err := h.query.ClosingReport(c.UserContext(), warehouseID)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, mimeXLSX)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="cierre-`+warehouseID+`.xlsx"`)
	return c.Send(data)
}
