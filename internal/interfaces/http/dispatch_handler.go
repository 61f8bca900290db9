package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
)

// DispatchHandler borrador, guía, confirmación y firma de despachos.
type DispatchHandler struct {
	uc *inventory.DispatchUseCase
}

// NewDispatchHandler construye el handler.
func NewDispatchHandler(uc *inventory.DispatchUseCase) *DispatchHandler {
	return &DispatchHandler{uc: uc}
}

// Create godoc
// @Summary      Crear despacho en borrador
// @Tags         dispatches
// @Accept       json
// @Produce      json
// @Param        body  body  inventory.DispatchDraftCommand  true  "Cabecera y carrito"
// @Success      201   {object}  dto.DispatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/dispatches [post]
func (h *DispatchHandler) Create(c *fiber.Ctx) error {
	var cmd inventory.DispatchDraftCommand
	if err := c.BodyParser(&cmd); err != nil {
		return badBody(c)
	}
	cmd.UserEmail = GetUserEmail(c)
	d, err := h.uc.CreateDraft(c.UserContext(), cmd)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toDispatchResponse(d))
}

// Get godoc
// @Summary      Obtener despacho
// @Tags         dispatches
// @Produce      json
// @Param        id   path  string  true  "ID del despacho"
// @Success      200  {object}  dto.DispatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/dispatches/{id} [get]
func (h *DispatchHandler) Get(c *fiber.Ctx) error {
	d, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toDispatchResponse(d))
}

// UpdateLines godoc
// @Summary      Reemplazar carrito (invalida la guía)
// @Tags         dispatches
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del despacho"
// @Param        body  body  dto.DispatchLinesRequest  true  "Carrito"
// @Success      200   {object}  dto.DispatchResponse
// @Router       /api/dispatches/{id}/lines [put]
func (h *DispatchHandler) UpdateLines(c *fiber.Ctx) error {
	var in dto.DispatchLinesRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	d, err := h.uc.UpdateLines(c.UserContext(), c.Params("id"), toDispatchLineInputs(in.Lines))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toDispatchResponse(d))
}

// GenerateGuide godoc
// @Summary      Generar guía de despacho
// @Description  Con ?download=true devuelve el PDF; si no, el despacho con guide_url.
// @Tags         dispatches
// @Produce      json,application/pdf
// @Param        id        path   string  true   "ID del despacho"
// @Param        download  query  bool    false  "Descargar PDF"
// @Success      200  {object}  dto.DispatchResponse
// @Router       /api/dispatches/{id}/guide [post]
func (h *DispatchHandler) GenerateGuide(c *fiber.Ctx) error {
	g, err := h.uc.GenerateGuide(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if c.QueryBool("download", false) {
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+g.Dispatch.DocumentNumber+`.pdf"`)
		return c.Send(g.PDF)
	}
	return c.JSON(toDispatchResponse(g.Dispatch))
}

// Confirm godoc
// @Summary      Confirmar despacho (exige guía vigente)
// @Tags         dispatches
// @Produce      json
// @Param        id   path  string  true  "ID del despacho"
// @Success      201  {object}  dto.DispatchConfirmResponse
// @Success      200  {object}  dto.DispatchConfirmResponse  "Ya confirmado"
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/dispatches/{id}/confirm [post]
func (h *DispatchHandler) Confirm(c *fiber.Ctx) error {
	r, err := h.uc.Confirm(c.UserContext(), c.Params("id"), GetUserEmail(c))
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusCreated
	if r.Replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(dto.DispatchConfirmResponse{
		Dispatch:  toDispatchResponse(r.Dispatch),
		Operation: toOperationResponse(&r.Result),
	})
}

// Sign godoc
// @Summary      Adjuntar comprobante de entrega firmado
// @Tags         dispatches
// @Accept       mpfd
// @Produce      json
// @Param        id    path      string  true  "ID del despacho"
// @Param        file  formData  file    true  "Acta firmada"
// @Success      200   {object}  dto.DispatchResponse
// @Router       /api/dispatches/{id}/sign [post]
func (h *DispatchHandler) Sign(c *fiber.Ctx) error {
	att, err := formAttachment(c, "file")
	if err != nil {
		return badBody(c)
	}
	if att == nil {
		return respondError(c, domain.NewValidationError("file", "required"))
	}
	d, err := h.uc.Sign(c.UserContext(), c.Params("id"), att)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toDispatchResponse(d))
}
