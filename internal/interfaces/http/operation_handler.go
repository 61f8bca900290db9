package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
)

// OperationHandler recepciones, ubicación en rack, ajustes y correcciones.
type OperationHandler struct {
	reception *inventory.ReceptionUseCase
	putaway   *inventory.PutAwayUseCase
	adjust    *inventory.AdjustmentUseCase
	correct   *inventory.CorrectionUseCase
	query     *inventory.QueryUseCase
}

// NewOperationHandler construye el handler.
func NewOperationHandler(
	reception *inventory.ReceptionUseCase,
	putaway *inventory.PutAwayUseCase,
	adjust *inventory.AdjustmentUseCase,
	correct *inventory.CorrectionUseCase,
	query *inventory.QueryUseCase,
) *OperationHandler {
	return &OperationHandler{reception: reception, putaway: putaway, adjust: adjust, correct: correct, query: query}
}

// respondOperation 201 si se escribió, 200 si fue un reintento del mismo documento.
func respondOperation(c *fiber.Ctx, r *inventory.Result) error {
	status := fiber.StatusCreated
	if r.Replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(toOperationResponse(r))
}

// Receive godoc
// @Summary      Registrar recepción (con o sin OC)
// @Description  JSON, o multipart con "payload" (JSON) y "file" (remisión).
// @Tags         receptions
// @Accept       json,mpfd
// @Produce      json
// @Param        X-User-Email  header  string  true  "Usuario"
// @Success      201  {object}  dto.OperationResponse
// @Success      200  {object}  dto.OperationResponse  "Reintento idempotente"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/receptions [post]
func (h *OperationHandler) Receive(c *fiber.Ctx) error {
	var cmd inventory.ReceiveCommand
	att, err := bindOperation(c, &cmd)
	if err != nil {
		return badBody(c)
	}
	cmd.UserEmail = GetUserEmail(c)
	cmd.Attachment = att
	r, err := h.reception.Receive(c.UserContext(), cmd)
	if err != nil {
		return respondError(c, err)
	}
	return respondOperation(c, r)
}

// ReverseReception godoc
// @Summary      Anular recepción aún no ubicada
// @Tags         receptions
// @Accept       json
// @Produce      json
// @Param        number  path  string                       true  "Número de la recepción"
// @Param        body    body  dto.ReverseReceptionRequest  true  "Motivo"
// @Success      201     {object}  dto.OperationResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/receptions/{number}/reverse [post]
func (h *OperationHandler) ReverseReception(c *fiber.Ctx) error {
	var in dto.ReverseReceptionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	r, err := h.reception.Reverse(c.UserContext(), inventory.ReverseReceptionCommand{
		DocumentNumber: c.Params("number"),
		Reason:         in.Reason,
		UserEmail:      GetUserEmail(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondOperation(c, r)
}

// PurchaseOrder godoc
// @Summary      Estado de recepción de una orden de compra
// @Tags         receptions
// @Produce      json
// @Param        po   path  string  true  "Número de la OC"
// @Success      200  {array}  dto.PurchaseOrderLineResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{po} [get]
func (h *OperationHandler) PurchaseOrder(c *fiber.Ctx) error {
	lines, err := h.reception.PurchaseOrderStatus(c.UserContext(), c.Params("po"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toPurchaseOrderLines(lines))
}

// PutAway godoc
// @Summary      Ubicar en rack stock pendiente
// @Tags         putaway
// @Accept       json
// @Produce      json
// @Param        body  body  inventory.PutAwayCommand  true  "Líneas producto → ubicación"
// @Success      201   {object}  dto.OperationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/putaway [post]
func (h *OperationHandler) PutAway(c *fiber.Ctx) error {
	var cmd inventory.PutAwayCommand
	if err := c.BodyParser(&cmd); err != nil {
		return badBody(c)
	}
	cmd.UserEmail = GetUserEmail(c)
	r, err := h.putaway.Commit(c.UserContext(), cmd)
	if err != nil {
		return respondError(c, err)
	}
	return respondOperation(c, r)
}

// PendingPutAway godoc
// @Summary      Pendiente por ubicar
// @Description  Con product_id devuelve el pendiente de ese producto; sin él, todos los de la bodega.
// @Tags         putaway
// @Produce      json
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        product_id    query  string  false  "Producto"
// @Success      200  {array}  dto.StockRowResponse
// @Router       /api/putaway/pending [get]
func (h *OperationHandler) PendingPutAway(c *fiber.Ctx) error {
	warehouseID := c.Query("warehouse_id")
	if warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouse_id es requerido"})
	}
	if productID := c.Query("product_id"); productID != "" {
		pending, err := h.query.PendingToShelve(c.UserContext(), productID, warehouseID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.PendingToShelveResponse{ProductID: productID, WarehouseID: warehouseID, Pending: pending})
	}
	rows, err := h.query.PendingPutAway(c.UserContext(), warehouseID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toStockRows(rows))
}

// Adjust godoc
// @Summary      Ajuste de inventario (sobrante o merma)
// @Description  Sin evidencia exige confirm_without_evidence=true (428 en caso contrario).
// @Tags         adjustments
// @Accept       json,mpfd
// @Produce      json
// @Success      201  {object}  dto.OperationResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      428  {object}  dto.ErrorResponse
// @Router       /api/adjustments [post]
func (h *OperationHandler) Adjust(c *fiber.Ctx) error {
	var cmd inventory.AdjustCommand
	att, err := bindOperation(c, &cmd)
	if err != nil {
		return badBody(c)
	}
	cmd.UserEmail = GetUserEmail(c)
	cmd.Evidence = att
	r, err := h.adjust.Adjust(c.UserContext(), cmd)
	if err != nil {
		return respondError(c, err)
	}
	return respondOperation(c, r)
}

// CorrectInbound godoc
// @Summary      Corregir la cantidad de un ingreso
// @Tags         corrections
// @Accept       json
// @Produce      json
// @Param        body  body  inventory.CorrectInboundCommand  true  "Movimiento y nueva cantidad"
// @Success      201   {object}  dto.OperationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/corrections [post]
func (h *OperationHandler) CorrectInbound(c *fiber.Ctx) error {
	var cmd inventory.CorrectInboundCommand
	if err := c.BodyParser(&cmd); err != nil {
		return badBody(c)
	}
	cmd.UserEmail = GetUserEmail(c)
	r, err := h.correct.CorrectInbound(c.UserContext(), cmd)
	if err != nil {
		return respondError(c, err)
	}
	return respondOperation(c, r)
}
