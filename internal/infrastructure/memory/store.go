// Package memory implementa todos los puertos de almacenamiento en proceso.
// Las transacciones se serializan con un mutex y trabajan sobre una copia del
// estado que solo reemplaza al original si fn termina sin error.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

var _ inventory.TxStore = (*Store)(nil)

type allocKey struct{ product, warehouse, location string }

type docKey struct {
	t      entity.DocumentType
	number string
}

type poKey struct{ po, artCorr string }

type state struct {
	products    map[string]*entity.Product
	warehouses  map[string]*entity.Warehouse
	locations   map[string]*entity.Location
	movements   []*entity.Movement
	allocations map[allocKey]*entity.ProductLocation
	documents   map[docKey]*entity.Document
	poLines     map[poKey]*entity.PurchaseOrderLine
	dispatches  map[string]*entity.Dispatch
	projects    map[string]*entity.Project
	suppliers   []*entity.Supplier
}

func newState() *state {
	return &state{
		products:    make(map[string]*entity.Product),
		warehouses:  make(map[string]*entity.Warehouse),
		locations:   make(map[string]*entity.Location),
		allocations: make(map[allocKey]*entity.ProductLocation),
		documents:   make(map[docKey]*entity.Document),
		poLines:     make(map[poKey]*entity.PurchaseOrderLine),
		dispatches:  make(map[string]*entity.Dispatch),
		projects:    make(map[string]*entity.Project),
	}
}

// clone copia mapas y filas mutables; los movimientos son inmutables y se comparten.
func (s *state) clone() *state {
	c := &state{
		products:    cloneRows(s.products),
		warehouses:  cloneRows(s.warehouses),
		locations:   cloneRows(s.locations),
		movements:   slices.Clone(s.movements),
		allocations: cloneRows(s.allocations),
		documents:   cloneRows(s.documents),
		poLines:     cloneRows(s.poLines),
		dispatches:  make(map[string]*entity.Dispatch, len(s.dispatches)),
		projects:    maps.Clone(s.projects),
		suppliers:   slices.Clone(s.suppliers),
	}
	for k, d := range s.dispatches {
		c.dispatches[k] = copyDispatch(d)
	}
	return c
}

func cloneRows[K comparable, V any](m map[K]*V) map[K]*V {
	out := make(map[K]*V, len(m))
	for k, v := range m {
		out[k] = ptr(*v)
	}
	return out
}

func ptr[V any](v V) *V { return &v }

func copyDispatch(d *entity.Dispatch) *entity.Dispatch {
	c := *d
	c.Lines = slices.Clone(d.Lines)
	return &c
}

// Store almacenamiento en memoria. Usar New.
type Store struct {
	mu   sync.Mutex
	data *state
	hook func(op string) error
}

// New crea un store vacío.
func New() *Store {
	return &Store{data: newState()}
}

// SetHook instala una función llamada antes de cada escritura; si devuelve error
// la escritura falla y la transacción en curso se descarta.
func (s *Store) SetHook(hook func(op string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = hook
}

// fire se llama con mu tomado.
func (s *Store) fire(op string) error {
	if s.hook == nil {
		return nil
	}
	if err := s.hook(op); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrTransactionFailure, op, err)
	}
	return nil
}

// Run ejecuta fn con repositorios sobre una copia del estado; Commit = reemplazar, Rollback = descartar.
func (s *Store) Run(ctx context.Context, fn func(r inventory.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrTransactionFailure, err)
	}
	work := s.data.clone()
	if err := fn(s.repos(handle{store: s, tx: work})); err != nil {
		return err
	}
	s.data = work
	return nil
}

// ReadOnly ejecuta fn sobre el estado actual con el mutex tomado; cualquier escritura falla.
func (s *Store) ReadOnly(ctx context.Context, fn func(r inventory.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrTransactionFailure, err)
	}
	return fn(s.repos(handle{store: s, tx: s.data, readOnly: true}))
}

func (s *Store) repos(h handle) inventory.TxRepos {
	return inventory.TxRepos{
		Movements:      &MovementRepo{h: h},
		Allocations:    &AllocationRepo{h: h},
		Products:       &ProductRepo{h: h},
		Documents:      &DocumentRepo{h: h},
		PurchaseOrders: &PurchaseOrderRepo{h: h},
		Dispatches:     &DispatchRepo{h: h},
		Locations:      &LocationRepo{h: h},
		Warehouses:     &WarehouseRepo{h: h},
	}
}

// Repositorios fuera de transacción (cada escritura es atómica por sí sola).
func (s *Store) Movements() *MovementRepo           { return &MovementRepo{h: handle{store: s}} }
func (s *Store) Allocations() *AllocationRepo       { return &AllocationRepo{h: handle{store: s}} }
func (s *Store) Products() *ProductRepo             { return &ProductRepo{h: handle{store: s}} }
func (s *Store) Documents() *DocumentRepo           { return &DocumentRepo{h: handle{store: s}} }
func (s *Store) PurchaseOrders() *PurchaseOrderRepo { return &PurchaseOrderRepo{h: handle{store: s}} }
func (s *Store) Dispatches() *DispatchRepo          { return &DispatchRepo{h: handle{store: s}} }
func (s *Store) Locations() *LocationRepo           { return &LocationRepo{h: handle{store: s}} }
func (s *Store) Warehouses() *WarehouseRepo         { return &WarehouseRepo{h: handle{store: s}} }
func (s *Store) Projects() *ProjectRepo             { return &ProjectRepo{h: handle{store: s}} }
func (s *Store) Suppliers() *SupplierRepo           { return &SupplierRepo{h: handle{store: s}} }

// SeedPurchaseOrderLine carga una línea de OC (fuente externa).
func (s *Store) SeedPurchaseOrderLine(l entity.PurchaseOrderLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.poLines[poKey{l.PONumber, l.ArtCorr}] = &l
}

// SeedProject carga un proyecto (fuente externa).
func (s *Store) SeedProject(p entity.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.projects[p.ID] = &p
}

// SeedSupplier carga un proveedor (fuente externa).
func (s *Store) SeedSupplier(sp entity.Supplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.suppliers = append(s.data.suppliers, &sp)
}

// handle da acceso al estado: directo dentro de una transacción o bajo el mutex fuera de ella.
type handle struct {
	store    *Store
	tx       *state
	readOnly bool
}

func (h handle) read(fn func(st *state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return fn(h.store.data)
}

func (h handle) write(op string, fn func(st *state) error) error {
	if h.readOnly {
		return fmt.Errorf("%w: %s en transacción de solo lectura", domain.ErrTransactionFailure, op)
	}
	if h.tx != nil {
		if err := h.store.fire(op); err != nil {
			return err
		}
		return fn(h.tx)
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	if err := h.store.fire(op); err != nil {
		return err
	}
	work := h.store.data.clone()
	if err := fn(work); err != nil {
		return err
	}
	h.store.data = work
	return nil
}
