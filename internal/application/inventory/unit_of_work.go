package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/ledger"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

type stockKey struct {
	productID   string
	warehouseID string
}

// stockTx es la unidad de trabajo de una operación de stock: kardex, mapa de
// ubicaciones y caché current_stock se modifican solo a través de ella y dentro
// de la misma transacción.
type stockTx struct {
	r        TxRepos
	doc      *entity.Document
	now      time.Time
	locked   map[string]*entity.Product
	touched  map[stockKey]struct{}
	appended []*entity.Movement
}

func newStockTx(r TxRepos, doc *entity.Document, now time.Time) *stockTx {
	return &stockTx{
		r:       r,
		doc:     doc,
		now:     now,
		locked:  make(map[string]*entity.Product),
		touched: make(map[stockKey]struct{}),
	}
}

// lockProducts bloquea las filas de producto en orden de ID para no generar interbloqueos.
func (s *stockTx) lockProducts(ctx context.Context, ids ...string) error {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	for _, id := range slices.Compact(ids) {
		if _, err := s.lockProduct(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *stockTx) lockProduct(ctx context.Context, id string) (*entity.Product, error) {
	if p, ok := s.locked[id]; ok {
		return p, nil
	}
	p, err := s.r.Products.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	s.locked[id] = p
	return p, nil
}

// findLocation valida que la ubicación exista y pertenezca a la bodega.
func findLocation(ctx context.Context, r TxRepos, warehouseID, locationID string) (*entity.Location, error) {
	loc, err := r.Locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, locationID)
	}
	if loc.WarehouseID != warehouseID {
		return nil, domain.NewValidationError("location_id", "warehouse")
	}
	return loc, nil
}

func findWarehouse(ctx context.Context, r TxRepos, id string) (*entity.Warehouse, error) {
	w, err := r.Warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
	}
	return w, nil
}

// allocate suma qty a la fila (producto, bodega, ubicación), creándola si no existe.
func (s *stockTx) allocate(ctx context.Context, productID, warehouseID, locationID string, qty decimal.Decimal) error {
	row, err := s.r.Allocations.GetForUpdate(ctx, productID, warehouseID, locationID)
	if err != nil {
		return err
	}
	row.Quantity = row.Quantity.Add(qty)
	row.UpdatedAt = s.now
	s.touched[stockKey{productID, warehouseID}] = struct{}{}
	return s.r.Allocations.Save(ctx, row)
}

// deallocate resta qty de la fila bloqueada; la fila se elimina al llegar a cero.
func (s *stockTx) deallocate(ctx context.Context, productID, warehouseID, locationID string, qty decimal.Decimal) error {
	row, err := s.r.Allocations.GetForUpdate(ctx, productID, warehouseID, locationID)
	if err != nil {
		return err
	}
	if row.Quantity.LessThan(qty) {
		return fmt.Errorf("%w: disponible %s, solicitado %s", domain.ErrInsufficientAllocatedStock, row.Quantity, qty)
	}
	row.Quantity = row.Quantity.Sub(qty)
	row.UpdatedAt = s.now
	s.touched[stockKey{productID, warehouseID}] = struct{}{}
	return s.r.Allocations.Save(ctx, row)
}

// pending cantidad sin ubicar vista desde dentro de la transacción.
func (s *stockTx) pending(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	net, err := s.r.Movements.NetStock(ctx, productID, warehouseID)
	if err != nil {
		return decimal.Zero, err
	}
	allocated, err := s.r.Allocations.SumByProduct(ctx, productID, warehouseID)
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.PendingToShelve(net, allocated), nil
}

// record agrega el movimiento al kardex y ajusta la caché del producto con su signo.
// El producto debe estar bloqueado.
func (s *stockTx) record(ctx context.Context, m *entity.Movement) error {
	if !m.Type.Valid() {
		return domain.NewValidationError("type", "oneof")
	}
	if !m.Quantity.IsPositive() {
		return domain.NewValidationError("quantity", "dpos")
	}
	if _, ok := s.locked[m.ProductID]; !ok {
		if _, err := s.lockProduct(ctx, m.ProductID); err != nil {
			return err
		}
	}
	m.ID = uuid.New().String()
	m.DocumentNumber = s.doc.Number
	if m.UserEmail == "" {
		m.UserEmail = s.doc.UserEmail
	}
	m.CreatedAt = s.now
	if err := s.r.Movements.Append(ctx, m); err != nil {
		return err
	}
	if delta := ledger.Signed(m); !delta.IsZero() {
		if err := s.r.Products.AddStock(ctx, m.ProductID, delta); err != nil {
			return err
		}
		p := s.locked[m.ProductID]
		p.CurrentStock = p.CurrentStock.Add(delta)
		s.touched[stockKey{m.ProductID, m.WarehouseID}] = struct{}{}
	}
	s.appended = append(s.appended, m)
	return nil
}

// revalue recalcula el costo promedio ponderado del producto bloqueado antes de una entrada.
func (s *stockTx) revalue(ctx context.Context, productID string, qty, cost decimal.Decimal) error {
	if !cost.IsPositive() {
		return nil
	}
	p, err := s.lockProduct(ctx, productID)
	if err != nil {
		return err
	}
	avg := ledger.WeightedAverageCost(p.CurrentStock, p.UnitPrice, qty, cost)
	if avg.Equal(p.UnitPrice) {
		return nil
	}
	p.UnitPrice = avg
	p.UpdatedAt = s.now
	return s.r.Products.Update(ctx, p)
}

// verify comprueba, para cada (producto, bodega) tocado, que el neto no sea
// negativo y que lo ubicado no supere el neto.
func (s *stockTx) verify(ctx context.Context) error {
	for k := range s.touched {
		net, err := s.r.Movements.NetStock(ctx, k.productID, k.warehouseID)
		if err != nil {
			return err
		}
		if net.IsNegative() {
			return fmt.Errorf("%w: el neto de %s quedaría en %s", domain.ErrInsufficientStock, k.productID, net)
		}
		allocated, err := s.r.Allocations.SumByProduct(ctx, k.productID, k.warehouseID)
		if err != nil {
			return err
		}
		if allocated.GreaterThan(net) {
			return fmt.Errorf("%w: ubicado %s, neto %s", domain.ErrAllocationExceedsStock, allocated, net)
		}
	}
	return nil
}

// operation agrupa lo común a los procesadores: transacción, reloj, log y relectura de movimientos.
type operation struct {
	tx        TxRunner
	movements repository.MovementRepository
	log       zerolog.Logger
	now       func() time.Time
}

func newOperation(tx TxRunner, movements repository.MovementRepository, log zerolog.Logger) operation {
	return operation{tx: tx, movements: movements, log: log, now: time.Now}
}

// commit registra el encabezado doc y ejecuta fn en una única transacción.
//
// La transacción se desacopla de la cancelación del request: una vez emitida,
// termina completa o falla completa. Si el documento (tipo, número) ya existe con
// el mismo PayloadHash se devuelve como repetición sin escribir nada; con otro
// contenido falla con ErrDuplicateReference.
func (o operation) commit(ctx context.Context, doc *entity.Document, fn func(ctx context.Context, st *stockTx) error) (*Result, error) {
	ctx = context.WithoutCancel(ctx)
	now := o.now()
	doc.ID = uuid.New().String()
	doc.CreatedAt, doc.UpdatedAt = now, now
	if doc.Status == "" {
		doc.Status = entity.DocumentCompleted
	}

	var res *Result
	err := o.tx.Run(ctx, func(r TxRepos) error {
		existing, err := r.Documents.GetByNumber(ctx, doc.Type, doc.Number)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.PayloadHash != doc.PayloadHash {
				return fmt.Errorf("%w: documento %s %s", domain.ErrDuplicateReference, doc.Type, doc.Number)
			}
			res = &Result{Document: existing, Replayed: true}
			return nil
		}
		if err := r.Documents.Create(ctx, doc); err != nil {
			return err
		}
		st := newStockTx(r, doc, now)
		if err := fn(ctx, st); err != nil {
			return err
		}
		if err := st.verify(ctx); err != nil {
			return err
		}
		res = &Result{Document: doc, Movements: st.appended}
		return nil
	})
	if err != nil && errors.Is(err, domain.ErrDuplicateReference) && !errors.Is(err, domain.ErrPOLineOverReceipt) {
		// Dos envíos simultáneos del mismo documento: el perdedor choca con el índice único.
		if existing, lerr := o.document(ctx, doc.Type, doc.Number); lerr == nil && existing != nil && existing.PayloadHash == doc.PayloadHash {
			res, err = &Result{Document: existing, Replayed: true}, nil
		}
	}
	if err != nil {
		o.log.Warn().Err(err).
			Str("document_type", string(doc.Type)).
			Str("document_number", doc.Number).
			Str("warehouse_id", doc.WarehouseID).
			Msg("operación rechazada")
		return nil, err
	}
	if res.Replayed {
		movs, err := o.documentMovements(ctx, res.Document.Number)
		if err != nil {
			return nil, err
		}
		res.Movements = movs
		o.log.Info().
			Str("document_type", string(doc.Type)).
			Str("document_number", doc.Number).
			Msg("documento repetido, sin cambios")
		return res, nil
	}
	o.log.Info().
		Str("document_type", string(doc.Type)).
		Str("document_number", doc.Number).
		Str("warehouse_id", doc.WarehouseID).
		Int("movements", len(res.Movements)).
		Msg("operación confirmada")
	return res, nil
}

func (o operation) document(ctx context.Context, t entity.DocumentType, number string) (*entity.Document, error) {
	var doc *entity.Document
	err := o.tx.Run(ctx, func(r TxRepos) error {
		var err error
		doc, err = r.Documents.GetByNumber(ctx, t, number)
		return err
	})
	return doc, err
}

func (o operation) documentMovements(ctx context.Context, number string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for m, err := range o.movements.Stream(ctx, repository.MovementFilter{DocumentNumber: number}) {
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// upload sube el adjunto si existe; devuelve la clave para poder borrarlo si la operación falla.
func upload(ctx context.Context, blobs BlobStore, folder, number string, a *Attachment) (key, url string, err error) {
	if a == nil || len(a.Data) == 0 {
		return "", "", nil
	}
	if blobs == nil {
		return "", "", fmt.Errorf("almacenamiento de adjuntos no configurado")
	}
	key = fmt.Sprintf("%s/%s/%s-%s", folder, number, uuid.New().String()[:8], sanitizeFilename(a.Filename))
	url, err = blobs.Put(ctx, key, a.ContentType, bytes.NewReader(a.Data))
	if err != nil {
		return "", "", fmt.Errorf("subir adjunto: %w", err)
	}
	return key, url, nil
}

// discard elimina un adjunto huérfano; el error solo se registra.
func discard(ctx context.Context, blobs BlobStore, log zerolog.Logger, key string) {
	if key == "" || blobs == nil {
		return
	}
	if err := blobs.Delete(context.WithoutCancel(ctx), key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("no se pudo eliminar adjunto huérfano")
	}
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "adjunto"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}

// documentNumber devuelve el número indicado o genera uno con el prefijo dado.
func documentNumber(given, prefix string) string {
	if n := strings.TrimSpace(given); n != "" {
		return n
	}
	return prefix + "-" + strings.ToUpper(uuid.New().String()[:8])
}
