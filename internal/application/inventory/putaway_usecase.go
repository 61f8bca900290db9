package inventory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/validator"
)

// PutAwayUseCase ubica en rack el stock recibido y pendiente.
type PutAwayUseCase struct {
	op operation
}

// NewPutAwayUseCase construye el caso de uso.
func NewPutAwayUseCase(tx TxRunner, movements repository.MovementRepository, log zerolog.Logger) *PutAwayUseCase {
	return &PutAwayUseCase{op: newOperation(tx, movements, log.With().Str("operation", "putaway").Logger())}
}

// Commit por cada línea asigna la cantidad a la ubicación y deja un PUTAWAY de auditoría.
// Ninguna línea puede superar lo pendiente por ubicar del producto.
func (uc *PutAwayUseCase) Commit(ctx context.Context, cmd PutAwayCommand) (*Result, error) {
	if err := validator.Struct(cmd); err != nil {
		return nil, err
	}
	doc := &entity.Document{
		Type:        entity.DocumentPutAway,
		Number:      documentNumber(cmd.DocumentNumber, "UBI"),
		WarehouseID: cmd.WarehouseID,
		PayloadHash: payloadHash(cmd),
		UserEmail:   cmd.UserEmail,
		Comments:    cmd.Comments,
	}
	return uc.op.commit(ctx, doc, func(ctx context.Context, st *stockTx) error {
		if _, err := findWarehouse(ctx, st.r, cmd.WarehouseID); err != nil {
			return err
		}
		ids := make([]string, len(cmd.Lines))
		for i, l := range cmd.Lines {
			ids[i] = l.ProductID
		}
		if err := st.lockProducts(ctx, ids...); err != nil {
			return err
		}
		for _, l := range cmd.Lines {
			if _, err := findLocation(ctx, st.r, cmd.WarehouseID, l.LocationID); err != nil {
				return err
			}
			pending, err := st.pending(ctx, l.ProductID, cmd.WarehouseID)
			if err != nil {
				return err
			}
			if l.Quantity.GreaterThan(pending) {
				return fmt.Errorf("%w: pendiente por ubicar %s, solicitado %s", domain.ErrAllocationExceedsStock, pending, l.Quantity)
			}
			if err := st.allocate(ctx, l.ProductID, cmd.WarehouseID, l.LocationID, l.Quantity); err != nil {
				return err
			}
			m := &entity.Movement{
				Type:        entity.MovementPutAway,
				ProductID:   l.ProductID,
				WarehouseID: cmd.WarehouseID,
				LocationID:  l.LocationID,
				Quantity:    l.Quantity,
				Comments:    cmd.Comments,
			}
			if err := st.record(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
}
