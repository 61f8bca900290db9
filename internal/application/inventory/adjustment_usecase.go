package inventory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/validator"
)

// AdjustmentUseCase ajustes de inventario: INCREASE (sobrante) entra a una ubicación,
// DECREASE (merma) sale de una asignación existente.
type AdjustmentUseCase struct {
	op    operation
	blobs BlobStore
}

// NewAdjustmentUseCase construye el caso de uso.
func NewAdjustmentUseCase(tx TxRunner, movements repository.MovementRepository, blobs BlobStore, log zerolog.Logger) *AdjustmentUseCase {
	return &AdjustmentUseCase{
		op:    newOperation(tx, movements, log.With().Str("operation", "adjustment").Logger()),
		blobs: blobs,
	}
}

// Adjust aplica el ajuste. Sin evidencia exige ConfirmWithoutEvidence (ErrConfirmationRequired).
func (uc *AdjustmentUseCase) Adjust(ctx context.Context, cmd AdjustCommand) (*Result, error) {
	if err := validator.Struct(cmd); err != nil {
		return nil, err
	}
	if (cmd.Evidence == nil || len(cmd.Evidence.Data) == 0) && !cmd.ConfirmWithoutEvidence {
		return nil, domain.ErrConfirmationRequired
	}

	number := documentNumber(cmd.DocumentNumber, "AJU")
	key, url, err := upload(ctx, uc.blobs, "ajustes", number, cmd.Evidence)
	if err != nil {
		return nil, err
	}
	doc := &entity.Document{
		Type:          entity.DocumentAdjustment,
		Number:        number,
		WarehouseID:   cmd.WarehouseID,
		ProjectID:     cmd.ProjectID,
		AttachmentURL: url,
		PayloadHash:   payloadHash(cmd),
		UserEmail:     cmd.UserEmail,
		Comments:      cmd.Reason,
	}
	res, err := uc.op.commit(ctx, doc, func(ctx context.Context, st *stockTx) error {
		if _, err := findWarehouse(ctx, st.r, cmd.WarehouseID); err != nil {
			return err
		}
		if _, err := findLocation(ctx, st.r, cmd.WarehouseID, cmd.LocationID); err != nil {
			return err
		}
		if _, err := st.lockProduct(ctx, cmd.ProductID); err != nil {
			return err
		}
		apply := st.allocate
		if cmd.Type == entity.MovementDecrease {
			apply = st.deallocate
		}
		if err := apply(ctx, cmd.ProductID, cmd.WarehouseID, cmd.LocationID, cmd.Quantity); err != nil {
			return err
		}
		return st.record(ctx, &entity.Movement{
			Type:                 cmd.Type,
			ProductID:            cmd.ProductID,
			WarehouseID:          cmd.WarehouseID,
			LocationID:           cmd.LocationID,
			Quantity:             cmd.Quantity,
			ProjectID:            cmd.ProjectID,
			ClientOwner:          cmd.ClientOwner,
			Comments:             cmd.Reason,
			ReceptionDocumentURL: url,
		})
	})
	if err != nil || res.Replayed {
		discard(ctx, uc.blobs, uc.op.log, key)
	}
	return res, err
}
