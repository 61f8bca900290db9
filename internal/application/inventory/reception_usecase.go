package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/validator"
)

// ReceptionUseCase recepciones de mercancía: contra orden de compra o sin planificar.
// Ambas rutas terminan en un INBOUND por línea con un número de documento compartido.
type ReceptionUseCase struct {
	op     operation
	orders repository.PurchaseOrderRepository
	blobs  BlobStore
}

// NewReceptionUseCase construye el caso de uso.
func NewReceptionUseCase(
	tx TxRunner,
	movements repository.MovementRepository,
	orders repository.PurchaseOrderRepository,
	blobs BlobStore,
	log zerolog.Logger,
) *ReceptionUseCase {
	return &ReceptionUseCase{
		op:     newOperation(tx, movements, log.With().Str("operation", "reception").Logger()),
		orders: orders,
		blobs:  blobs,
	}
}

// Receive registra la recepción completa o nada.
// Con PONumber cada línea debe traer ArtCorr y no puede superar lo pendiente de la línea.
func (uc *ReceptionUseCase) Receive(ctx context.Context, cmd ReceiveCommand) (*Result, error) {
	if err := validator.Struct(cmd); err != nil {
		return nil, err
	}
	for i, l := range cmd.Lines {
		if cmd.PONumber != "" && strings.TrimSpace(l.ArtCorr) == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].art_corr", i), "required")
		}
		if cmd.PONumber == "" && strings.TrimSpace(l.ProductCode) == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].product_code", i), "required")
		}
	}

	hash := payloadHash(cmd)
	number := documentNumber(cmd.DocumentNumber, "REC")
	key, url, err := upload(ctx, uc.blobs, "recepciones", number, cmd.Attachment)
	if err != nil {
		return nil, err
	}

	doc := &entity.Document{
		Type:          entity.DocumentReception,
		Number:        number,
		WarehouseID:   cmd.WarehouseID,
		Counterpart:   cmd.Supplier,
		ProjectID:     cmd.ProjectID,
		AttachmentURL: url,
		PayloadHash:   hash,
		UserEmail:     cmd.UserEmail,
		Comments:      cmd.Comments,
	}
	res, err := uc.op.commit(ctx, doc, func(ctx context.Context, st *stockTx) error {
		if _, err := findWarehouse(ctx, st.r, cmd.WarehouseID); err != nil {
			return err
		}
		products := make([]*entity.Product, len(cmd.Lines))
		costs := make([]decimal.Decimal, len(cmd.Lines))
		for i, l := range cmd.Lines {
			var err error
			if cmd.PONumber != "" {
				products[i], costs[i], err = uc.receivePOLine(ctx, st, cmd.PONumber, l)
			} else {
				costs[i] = l.UnitPrice
				products[i], err = upsertProduct(ctx, st, l.ProductCode, l.Name, l.UnitMeasure, st.now)
			}
			if err != nil {
				return err
			}
		}
		ids := make([]string, len(products))
		for i, p := range products {
			ids[i] = p.ID
		}
		if err := st.lockProducts(ctx, ids...); err != nil {
			return err
		}
		for i, l := range cmd.Lines {
			if err := st.revalue(ctx, products[i].ID, l.Quantity, costs[i]); err != nil {
				return err
			}
			m := &entity.Movement{
				Type:                 entity.MovementInbound,
				ProductID:            products[i].ID,
				WarehouseID:          cmd.WarehouseID,
				Quantity:             l.Quantity,
				ProjectID:            cmd.ProjectID,
				ClientOwner:          cmd.ClientOwner,
				Comments:             cmd.Comments,
				ReceptionDocumentURL: url,
				PONumber:             cmd.PONumber,
				POLine:               l.ArtCorr,
			}
			if err := st.record(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil || res.Replayed {
		discard(ctx, uc.blobs, uc.op.log, key)
	}
	return res, err
}

// receivePOLine bloquea la línea de la OC, valida lo pendiente y suma lo recibido.
// Devuelve el producto y el costo unitario de la entrada.
func (uc *ReceptionUseCase) receivePOLine(ctx context.Context, st *stockTx, po string, l ReceiveLine) (*entity.Product, decimal.Decimal, error) {
	line, err := st.r.PurchaseOrders.GetLineForUpdate(ctx, po, l.ArtCorr)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if line == nil {
		return nil, decimal.Zero, fmt.Errorf("%w: línea %s de la OC %s", domain.ErrNotFound, l.ArtCorr, po)
	}
	if l.Quantity.GreaterThan(line.Pending()) {
		return nil, decimal.Zero, fmt.Errorf("%w: línea %s pendiente %s, recibido %s", domain.ErrPOLineOverReceipt, l.ArtCorr, line.Pending(), l.Quantity)
	}
	if err := st.r.PurchaseOrders.AddReceived(ctx, po, l.ArtCorr, l.Quantity); err != nil {
		return nil, decimal.Zero, err
	}
	cost := line.UnitPrice
	if l.UnitPrice.IsPositive() {
		cost = l.UnitPrice
	}
	p, err := upsertProduct(ctx, st, line.ProductCode, line.Description, line.UnitMeasure, st.now)
	return p, cost, err
}

// PurchaseOrderStatus líneas de la OC con ordenado, recibido y pendiente.
func (uc *ReceptionUseCase) PurchaseOrderStatus(ctx context.Context, po string) ([]*entity.PurchaseOrderLine, error) {
	lines, err := uc.orders.ListLines(ctx, po)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: orden de compra %s", domain.ErrNotFound, po)
	}
	return lines, nil
}

// Reverse anula una recepción con DECREASE compensatorios. Solo procede mientras
// la mercancía recibida siga sin ubicar; lo recibido en la OC se devuelve.
// Cada línea se anula por su cantidad efectiva (original más correcciones).
// El costo promedio ponderado del producto se conserva.
func (uc *ReceptionUseCase) Reverse(ctx context.Context, cmd ReverseReceptionCommand) (*Result, error) {
	if err := validator.Struct(cmd); err != nil {
		return nil, err
	}
	doc := &entity.Document{
		Type:        entity.DocumentReversal,
		Number:      "ANU-" + cmd.DocumentNumber,
		PayloadHash: payloadHash(cmd.DocumentNumber),
		UserEmail:   cmd.UserEmail,
		Comments:    cmd.Reason,
	}
	return uc.op.commit(ctx, doc, func(ctx context.Context, st *stockTx) error {
		reception, err := st.r.Documents.GetByNumber(ctx, entity.DocumentReception, cmd.DocumentNumber)
		if err != nil {
			return err
		}
		if reception == nil {
			return fmt.Errorf("%w: recepción %s", domain.ErrNotFound, cmd.DocumentNumber)
		}
		if reception.Status == entity.DocumentReversed {
			return fmt.Errorf("%w: la recepción %s ya fue anulada", domain.ErrInvalidTransition, cmd.DocumentNumber)
		}
		doc.WarehouseID = reception.WarehouseID

		var inbound []*entity.Movement
		filter := repository.MovementFilter{
			DocumentNumber: cmd.DocumentNumber,
			Types:          []entity.MovementType{entity.MovementInbound},
		}
		for m, err := range st.r.Movements.Stream(ctx, filter) {
			if err != nil {
				return err
			}
			inbound = append(inbound, m)
		}
		ids := make([]string, len(inbound))
		for i, m := range inbound {
			ids[i] = m.ProductID
		}
		if err := st.lockProducts(ctx, ids...); err != nil {
			return err
		}
		for _, m := range inbound {
			qty, err := effectiveQuantity(ctx, st.r.Movements, m)
			if err != nil {
				return err
			}
			if !qty.IsPositive() {
				continue
			}
			pending, err := st.pending(ctx, m.ProductID, m.WarehouseID)
			if err != nil {
				return err
			}
			if qty.GreaterThan(pending) {
				return fmt.Errorf("%w: %s ya fue ubicado (pendiente %s)", domain.ErrInsufficientStock, m.ProductID, pending)
			}
			rev := &entity.Movement{
				Type:               entity.MovementDecrease,
				ProductID:          m.ProductID,
				WarehouseID:        m.WarehouseID,
				Quantity:           qty,
				ProjectID:          m.ProjectID,
				ClientOwner:        m.ClientOwner,
				Comments:           cmd.Reason,
				PONumber:           m.PONumber,
				POLine:             m.POLine,
				CorrectsMovementID: m.ID,
			}
			if err := st.record(ctx, rev); err != nil {
				return err
			}
			if m.PONumber != "" {
				if err := st.r.PurchaseOrders.AddReceived(ctx, m.PONumber, m.POLine, qty.Neg()); err != nil {
					return err
				}
			}
		}
		return st.r.Documents.UpdateStatus(ctx, reception.ID, entity.DocumentReversed)
	})
}

// upsertProduct busca por código y lo crea si no existe. El precio de un producto
// existente lo recalcula revalue con el costo promedio ponderado.
func upsertProduct(ctx context.Context, st *stockTx, code, name, unit string, now time.Time) (*entity.Product, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	p, err := st.r.Products.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("name", "required")
	}
	p = &entity.Product{
		ID:           uuid.New().String(),
		Code:         code,
		Name:         strings.TrimSpace(name),
		UnitMeasure:  unit,
		UnitPrice:    decimal.Zero,
		CurrentStock: decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := st.r.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
