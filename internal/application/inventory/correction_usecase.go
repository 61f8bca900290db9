package inventory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/ledger"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/validator"
)

// CorrectionUseCase corrige cantidades de ingresos sin reescribir el kardex:
// agrega un INCREASE o DECREASE que referencia al movimiento corregido.
type CorrectionUseCase struct {
	op operation
}

// NewCorrectionUseCase construye el caso de uso.
func NewCorrectionUseCase(tx TxRunner, movements repository.MovementRepository, log zerolog.Logger) *CorrectionUseCase {
	return &CorrectionUseCase{op: newOperation(tx, movements, log.With().Str("operation", "correction").Logger())}
}

// CorrectInbound lleva la cantidad efectiva del ingreso a NewQuantity.
// Una disminución solo puede tomar stock aún sin ubicar.
func (uc *CorrectionUseCase) CorrectInbound(ctx context.Context, cmd CorrectInboundCommand) (*Result, error) {
	if err := validator.Struct(cmd); err != nil {
		return nil, err
	}
	doc := &entity.Document{
		Type:        entity.DocumentCorrection,
		Number:      documentNumber(cmd.DocumentNumber, "COR"),
		PayloadHash: payloadHash(cmd),
		UserEmail:   cmd.UserEmail,
		Comments:    cmd.Reason,
	}
	return uc.op.commit(ctx, doc, func(ctx context.Context, st *stockTx) error {
		orig, err := st.r.Movements.GetByID(ctx, cmd.MovementID)
		if err != nil {
			return err
		}
		if orig == nil {
			return fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, cmd.MovementID)
		}
		if orig.Type != entity.MovementInbound {
			return domain.NewValidationError("movement_id", "inbound")
		}
		reception, err := st.r.Documents.GetByNumber(ctx, entity.DocumentReception, orig.DocumentNumber)
		if err != nil {
			return err
		}
		if reception != nil && reception.Status == entity.DocumentReversed {
			return fmt.Errorf("%w: la recepción %s fue anulada", domain.ErrInvalidTransition, orig.DocumentNumber)
		}
		if _, err := st.lockProduct(ctx, orig.ProductID); err != nil {
			return err
		}
		current, err := effectiveQuantity(ctx, st.r.Movements, orig)
		if err != nil {
			return err
		}
		delta := cmd.NewQuantity.Sub(current)
		if delta.IsZero() {
			return domain.NewValidationError("new_quantity", "ne")
		}

		m := &entity.Movement{
			ProductID:          orig.ProductID,
			WarehouseID:        orig.WarehouseID,
			ProjectID:          orig.ProjectID,
			ClientOwner:        orig.ClientOwner,
			Comments:           cmd.Reason,
			PONumber:           orig.PONumber,
			POLine:             orig.POLine,
			CorrectsMovementID: orig.ID,
		}
		if delta.IsPositive() {
			m.Type, m.Quantity = entity.MovementIncrease, delta
			if orig.PONumber != "" {
				line, err := st.r.PurchaseOrders.GetLineForUpdate(ctx, orig.PONumber, orig.POLine)
				if err != nil {
					return err
				}
				if line != nil && delta.GreaterThan(line.Pending()) {
					return fmt.Errorf("%w: línea %s pendiente %s", domain.ErrPOLineOverReceipt, orig.POLine, line.Pending())
				}
			}
		} else {
			m.Type, m.Quantity = entity.MovementDecrease, delta.Neg()
			pending, err := st.pending(ctx, orig.ProductID, orig.WarehouseID)
			if err != nil {
				return err
			}
			if m.Quantity.GreaterThan(pending) {
				return fmt.Errorf("%w: solo %s sin ubicar", domain.ErrInsufficientStock, pending)
			}
		}
		doc.WarehouseID = orig.WarehouseID
		if err := st.record(ctx, m); err != nil {
			return err
		}
		if orig.PONumber != "" {
			return st.r.PurchaseOrders.AddReceived(ctx, orig.PONumber, orig.POLine, delta)
		}
		return nil
	})
}

// effectiveQuantity cantidad del ingreso más sus correcciones previas.
func effectiveQuantity(ctx context.Context, movements repository.MovementRepository, orig *entity.Movement) (decimal.Decimal, error) {
	qty := orig.Quantity
	filter := repository.MovementFilter{CorrectsMovementID: orig.ID}
	for m, err := range movements.Stream(ctx, filter) {
		if err != nil {
			return decimal.Zero, err
		}
		qty = qty.Add(ledger.Signed(m))
	}
	return qty, nil
}
