package inventory

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/validator"
)

// DispatchUseCase flujo de despacho: borrador, guía, confirmación y firma.
// Ningún stock sale de la bodega sin una guía generada para el carrito vigente.
type DispatchUseCase struct {
	op       operation
	renderer GuideRenderer
	blobs    BlobStore
}

// NewDispatchUseCase construye el caso de uso.
func NewDispatchUseCase(
	tx TxRunner,
	movements repository.MovementRepository,
	renderer GuideRenderer,
	blobs BlobStore,
	log zerolog.Logger,
) *DispatchUseCase {
	return &DispatchUseCase{
		op:       newOperation(tx, movements, log.With().Str("operation", "dispatch").Logger()),
		renderer: renderer,
		blobs:    blobs,
	}
}

// DispatchResult despacho confirmado con sus movimientos.
type DispatchResult struct {
	Result
	Dispatch *entity.Dispatch
}

// GuideResult guía generada: PDF y URL donde quedó almacenada.
type GuideResult struct {
	Dispatch *entity.Dispatch
	PDF      []byte
	URL      string
}

type dispatchLines struct {
	Lines []DispatchLineInput `json:"lines" validate:"min=1,dive"`
}

func toDispatchLines(in []DispatchLineInput) []entity.DispatchLine {
	out := make([]entity.DispatchLine, len(in))
	for i, l := range in {
		out[i] = entity.DispatchLine{ProductID: l.ProductID, LocationID: l.LocationID, Quantity: l.Quantity}
	}
	return out
}

// checkLines valida que productos y ubicaciones existan y pertenezcan a la bodega.
func checkLines(ctx context.Context, r TxRepos, warehouseID string, lines []entity.DispatchLine) error {
	for _, l := range lines {
		p, err := r.Products.GetByID(ctx, l.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, l.ProductID)
		}
		if _, err := findLocation(ctx, r, warehouseID, l.LocationID); err != nil {
			return err
		}
	}
	return nil
}

// CreateDraft crea el despacho en DRAFT con el carrito inicial (puede venir vacío).
func (uc *DispatchUseCase) CreateDraft(ctx context.Context, cmd DispatchDraftCommand) (*entity.Dispatch, error) {
	if err := validator.Struct(cmd); err != nil {
		return nil, err
	}
	now := uc.op.now()
	d := &entity.Dispatch{
		ID:                     uuid.New().String(),
		WarehouseID:            cmd.WarehouseID,
		Mode:                   cmd.Mode,
		ProjectID:              cmd.ProjectID,
		Contractor:             cmd.Contractor,
		Receiver:               cmd.Receiver,
		DestinationWarehouseID: cmd.DestinationWarehouseID,
		DocumentNumber:         documentNumber(cmd.DocumentNumber, "DSP"),
		State:                  entity.DispatchDraft,
		Lines:                  toDispatchLines(cmd.Lines),
		UserEmail:              cmd.UserEmail,
		Comments:               cmd.Comments,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := d.CheckMode(); err != nil {
		return nil, err
	}
	err := uc.op.tx.Run(ctx, func(r TxRepos) error {
		if _, err := findWarehouse(ctx, r, d.WarehouseID); err != nil {
			return err
		}
		if d.Mode == entity.DispatchTransfer {
			if _, err := findWarehouse(ctx, r, d.DestinationWarehouseID); err != nil {
				return err
			}
		}
		if err := checkLines(ctx, r, d.WarehouseID, d.Lines); err != nil {
			return err
		}
		return r.Dispatches.Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Get devuelve el despacho.
func (uc *DispatchUseCase) Get(ctx context.Context, id string) (*entity.Dispatch, error) {
	var d *entity.Dispatch
	err := uc.op.tx.Run(ctx, func(r TxRepos) error {
		var err error
		d, err = loadDispatch(ctx, r, id, false)
		return err
	})
	return d, err
}

func loadDispatch(ctx context.Context, r TxRepos, id string, forUpdate bool) (*entity.Dispatch, error) {
	var (
		d   *entity.Dispatch
		err error
	)
	if forUpdate {
		d, err = r.Dispatches.GetForUpdate(ctx, id)
	} else {
		d, err = r.Dispatches.GetByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("%w: despacho %s", domain.ErrNotFound, id)
	}
	return d, nil
}

// UpdateLines reemplaza el carrito. Si ya había guía, el despacho vuelve a DRAFT.
func (uc *DispatchUseCase) UpdateLines(ctx context.Context, id string, lines []DispatchLineInput) (*entity.Dispatch, error) {
	if err := validator.Struct(dispatchLines{Lines: lines}); err != nil {
		return nil, err
	}
	var d *entity.Dispatch
	err := uc.op.tx.Run(ctx, func(r TxRepos) error {
		var err error
		if d, err = loadDispatch(ctx, r, id, true); err != nil {
			return err
		}
		next := toDispatchLines(lines)
		if err := checkLines(ctx, r, d.WarehouseID, next); err != nil {
			return err
		}
		if err := d.SetLines(next); err != nil {
			return err
		}
		d.UpdatedAt = uc.op.now()
		return r.Dispatches.Update(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GenerateGuide genera el PDF de la guía para el carrito actual, lo almacena y deja
// el despacho en DOCUMENT_GENERATED. Si el carrito cambió mientras se generaba, falla.
func (uc *DispatchUseCase) GenerateGuide(ctx context.Context, id string) (*GuideResult, error) {
	if uc.renderer == nil || uc.blobs == nil {
		return nil, fmt.Errorf("generación de guías no configurada")
	}
	var data GuideData
	err := uc.op.tx.Run(ctx, func(r TxRepos) error {
		d, err := loadDispatch(ctx, r, id, false)
		if err != nil {
			return err
		}
		data, err = guideData(ctx, r, d)
		return err
	})
	if err != nil {
		return nil, err
	}
	d := data.Dispatch
	if d.State != entity.DispatchDraft && d.State != entity.DispatchDocumentGenerated {
		return nil, fmt.Errorf("%w: guía sobre despacho %s", domain.ErrInvalidTransition, d.State)
	}
	if len(d.Lines) == 0 {
		return nil, domain.NewValidationError("lines", "min")
	}
	fingerprint := d.Fingerprint()
	data.IssuedAt = uc.op.now()

	pdf, err := uc.renderer.RenderGuide(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("generar guía: %w", err)
	}
	key := fmt.Sprintf("guias/%s/%s.pdf", d.DocumentNumber, fingerprint[:12])
	url, err := uc.blobs.Put(ctx, key, "application/pdf", bytes.NewReader(pdf))
	if err != nil {
		return nil, fmt.Errorf("guardar guía: %w", err)
	}

	err = uc.op.tx.Run(context.WithoutCancel(ctx), func(r TxRepos) error {
		cur, err := loadDispatch(ctx, r, id, true)
		if err != nil {
			return err
		}
		if cur.Fingerprint() != fingerprint {
			return fmt.Errorf("%w: el carrito cambió durante la generación de la guía", domain.ErrInvalidTransition)
		}
		if err := cur.MarkGuideGenerated(url); err != nil {
			return err
		}
		cur.UpdatedAt = uc.op.now()
		d = cur
		return r.Dispatches.Update(ctx, cur)
	})
	if err != nil {
		discard(ctx, uc.blobs, uc.op.log, key)
		return nil, err
	}
	uc.op.log.Info().Str("document_number", d.DocumentNumber).Str("guide_url", url).Msg("guía de despacho generada")
	return &GuideResult{Dispatch: d, PDF: pdf, URL: url}, nil
}

func guideData(ctx context.Context, r TxRepos, d *entity.Dispatch) (GuideData, error) {
	data := GuideData{Dispatch: d}
	var err error
	if data.Warehouse, err = findWarehouse(ctx, r, d.WarehouseID); err != nil {
		return data, err
	}
	if d.Mode == entity.DispatchTransfer {
		if data.Destination, err = findWarehouse(ctx, r, d.DestinationWarehouseID); err != nil {
			return data, err
		}
	}
	for _, l := range d.Lines {
		p, err := r.Products.GetByID(ctx, l.ProductID)
		if err != nil {
			return data, err
		}
		if p == nil {
			return data, fmt.Errorf("%w: producto %s", domain.ErrNotFound, l.ProductID)
		}
		loc, err := findLocation(ctx, r, d.WarehouseID, l.LocationID)
		if err != nil {
			return data, err
		}
		data.Lines = append(data.Lines, GuideLine{
			ProductCode:  p.Code,
			ProductName:  p.Name,
			UnitMeasure:  p.UnitMeasure,
			LocationCode: loc.FullCode,
			Quantity:     l.Quantity,
		})
	}
	return data, nil
}

// Confirm ejecuta el despacho: por cada línea retira de la ubicación elegida y registra
// OUTBOUND (o TRANSFER_OUT + TRANSFER_IN en traslados). Todas las líneas o ninguna.
func (uc *DispatchUseCase) Confirm(ctx context.Context, id, userEmail string) (*DispatchResult, error) {
	d, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.State == entity.DispatchDraft || d.State == entity.DispatchDocumentGenerated {
		if err := d.CanConfirm(); err != nil {
			return nil, err
		}
	}
	if userEmail == "" {
		userEmail = d.UserEmail
	}
	doc := &entity.Document{
		Type:        entity.DocumentDispatch,
		Number:      d.DocumentNumber,
		WarehouseID: d.WarehouseID,
		Counterpart: counterpart(d),
		ProjectID:   d.ProjectID,
		PayloadHash: d.GuideFingerprint,
		UserEmail:   userEmail,
		Comments:    d.Comments,
	}
	res, err := uc.op.commit(ctx, doc, func(ctx context.Context, st *stockTx) error {
		cur, err := loadDispatch(ctx, st.r, id, true)
		if err != nil {
			return err
		}
		if cur.GuideFingerprint != doc.PayloadHash {
			return domain.ErrGuideRequired
		}
		if err := cur.MarkConfirmed(st.now); err != nil {
			return err
		}
		if cur.Mode == entity.DispatchTransfer {
			if _, err := findWarehouse(ctx, st.r, cur.DestinationWarehouseID); err != nil {
				return err
			}
		}
		ids := make([]string, len(cur.Lines))
		for i, l := range cur.Lines {
			ids[i] = l.ProductID
		}
		if err := st.lockProducts(ctx, ids...); err != nil {
			return err
		}
		outType := entity.MovementOutbound
		if cur.Mode == entity.DispatchTransfer {
			outType = entity.MovementTransferOut
		}
		for _, l := range cur.Lines {
			if _, err := findLocation(ctx, st.r, cur.WarehouseID, l.LocationID); err != nil {
				return err
			}
			if err := st.deallocate(ctx, l.ProductID, cur.WarehouseID, l.LocationID, l.Quantity); err != nil {
				return err
			}
			out := &entity.Movement{
				Type:        outType,
				ProductID:   l.ProductID,
				WarehouseID: cur.WarehouseID,
				LocationID:  l.LocationID,
				Quantity:    l.Quantity,
				ProjectID:   cur.ProjectID,
				Comments:    cur.Comments,
			}
			if err := st.record(ctx, out); err != nil {
				return err
			}
			if cur.Mode != entity.DispatchTransfer {
				continue
			}
			in := &entity.Movement{
				Type:        entity.MovementTransferIn,
				ProductID:   l.ProductID,
				WarehouseID: cur.DestinationWarehouseID,
				Quantity:    l.Quantity,
				ProjectID:   cur.ProjectID,
				Comments:    cur.Comments,
			}
			if err := st.record(ctx, in); err != nil {
				return err
			}
		}
		cur.UpdatedAt = st.now
		d = cur
		return st.r.Dispatches.Update(ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	if res.Replayed {
		if d, err = uc.Get(ctx, id); err != nil {
			return nil, err
		}
	}
	return &DispatchResult{Result: *res, Dispatch: d}, nil
}

// Sign adjunta el acta de entrega firmada a un despacho confirmado.
func (uc *DispatchUseCase) Sign(ctx context.Context, id string, proof *Attachment) (*entity.Dispatch, error) {
	if proof == nil || len(proof.Data) == 0 {
		return nil, domain.NewValidationError("proof_of_delivery", "required")
	}
	d, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.State != entity.DispatchConfirmed {
		return nil, fmt.Errorf("%w: solo se firma un despacho confirmado", domain.ErrInvalidTransition)
	}
	key, url, err := upload(ctx, uc.blobs, "entregas", d.DocumentNumber, proof)
	if err != nil {
		return nil, err
	}
	err = uc.op.tx.Run(context.WithoutCancel(ctx), func(r TxRepos) error {
		cur, err := loadDispatch(ctx, r, id, true)
		if err != nil {
			return err
		}
		if err := cur.MarkSigned(url); err != nil {
			return err
		}
		cur.UpdatedAt = uc.op.now()
		d = cur
		return r.Dispatches.Update(ctx, cur)
	})
	if err != nil {
		discard(ctx, uc.blobs, uc.op.log, key)
		return nil, err
	}
	uc.op.log.Info().Str("document_number", d.DocumentNumber).Msg("despacho firmado")
	return d, nil
}

func counterpart(d *entity.Dispatch) string {
	switch d.Mode {
	case entity.DispatchSubcontract:
		return d.Contractor
	case entity.DispatchExternal:
		return d.Receiver
	case entity.DispatchTransfer:
		return d.DestinationWarehouseID
	}
	return d.Receiver
}
