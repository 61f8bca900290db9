package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ repository.DocumentRepository      = (*DocumentRepo)(nil)
	_ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
	_ repository.DispatchRepository      = (*DispatchRepo)(nil)
)

// DocumentRepo encabezados de documento; (tipo, número) único.
type DocumentRepo struct {
	h handle
}

func (r *DocumentRepo) Create(_ context.Context, doc *entity.Document) error {
	return r.h.write("documents.create", func(st *state) error {
		k := docKey{doc.Type, doc.Number}
		if _, ok := st.documents[k]; ok {
			return fmt.Errorf("%w: documento %s %s", domain.ErrDuplicateReference, doc.Type, doc.Number)
		}
		st.documents[k] = ptr(*doc)
		return nil
	})
}

func (r *DocumentRepo) GetByNumber(_ context.Context, t entity.DocumentType, number string) (*entity.Document, error) {
	var out *entity.Document
	err := r.h.read(func(st *state) error {
		if d, ok := st.documents[docKey{t, number}]; ok {
			out = ptr(*d)
		}
		return nil
	})
	return out, err
}

func (r *DocumentRepo) UpdateStatus(_ context.Context, id string, status entity.DocumentStatus) error {
	return r.h.write("documents.update_status", func(st *state) error {
		for _, d := range st.documents {
			if d.ID == id {
				d.Status = status
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

// PurchaseOrderRepo líneas de OC (se cargan con Store.SeedPurchaseOrderLine).
type PurchaseOrderRepo struct {
	h handle
}

func (r *PurchaseOrderRepo) ListLines(_ context.Context, po string) ([]*entity.PurchaseOrderLine, error) {
	var out []*entity.PurchaseOrderLine
	err := r.h.read(func(st *state) error {
		for k, l := range st.poLines {
			if k.po == po {
				out = append(out, ptr(*l))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ArtCorr < out[j].ArtCorr })
	return out, err
}

func (r *PurchaseOrderRepo) GetLineForUpdate(_ context.Context, po, artCorr string) (*entity.PurchaseOrderLine, error) {
	var out *entity.PurchaseOrderLine
	err := r.h.read(func(st *state) error {
		if l, ok := st.poLines[poKey{po, artCorr}]; ok {
			out = ptr(*l)
		}
		return nil
	})
	return out, err
}

func (r *PurchaseOrderRepo) AddReceived(_ context.Context, po, artCorr string, delta decimal.Decimal) error {
	return r.h.write("purchase_orders.add_received", func(st *state) error {
		l, ok := st.poLines[poKey{po, artCorr}]
		if !ok {
			return domain.ErrNotFound
		}
		next := l.ReceivedQty.Add(delta)
		if next.IsNegative() {
			return domain.NewValidationError("received_qty", "dnonneg")
		}
		l.ReceivedQty = next
		return nil
	})
}

// DispatchRepo despachos en memoria.
type DispatchRepo struct {
	h handle
}

func (r *DispatchRepo) Create(_ context.Context, d *entity.Dispatch) error {
	return r.h.write("dispatches.create", func(st *state) error {
		if _, ok := st.dispatches[d.ID]; ok {
			return fmt.Errorf("%w: despacho %s", domain.ErrDuplicateReference, d.ID)
		}
		st.dispatches[d.ID] = copyDispatch(d)
		return nil
	})
}

func (r *DispatchRepo) GetByID(_ context.Context, id string) (*entity.Dispatch, error) {
	var out *entity.Dispatch
	err := r.h.read(func(st *state) error {
		if d, ok := st.dispatches[id]; ok {
			out = copyDispatch(d)
		}
		return nil
	})
	return out, err
}

func (r *DispatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Dispatch, error) {
	return r.GetByID(ctx, id)
}

func (r *DispatchRepo) Update(_ context.Context, d *entity.Dispatch) error {
	return r.h.write("dispatches.update", func(st *state) error {
		if _, ok := st.dispatches[d.ID]; !ok {
			return domain.ErrNotFound
		}
		st.dispatches[d.ID] = copyDispatch(d)
		return nil
	})
}
