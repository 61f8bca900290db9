package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.LocationRepository  = (*LocationRepo)(nil)
	_ repository.ProjectRepository   = (*ProjectRepo)(nil)
	_ repository.SupplierRepository  = (*SupplierRepo)(nil)
)

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct {
	h handle
}

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.h.write("warehouses.create", func(st *state) error {
		for _, cur := range st.warehouses {
			if strings.EqualFold(cur.Code, w.Code) {
				return fmt.Errorf("%w: bodega %s", domain.ErrDuplicateReference, w.Code)
			}
		}
		st.warehouses[w.ID] = ptr(*w)
		return nil
	})
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.h.read(func(st *state) error {
		if w, ok := st.warehouses[id]; ok {
			out = ptr(*w)
		}
		return nil
	})
	return out, err
}

func (r *WarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	return r.h.write("warehouses.update", func(st *state) error {
		if _, ok := st.warehouses[w.ID]; !ok {
			return domain.ErrNotFound
		}
		st.warehouses[w.ID] = ptr(*w)
		return nil
	})
}

func (r *WarehouseRepo) List(_ context.Context, onlyActive bool) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	err := r.h.read(func(st *state) error {
		for _, w := range st.warehouses {
			if !onlyActive || w.Active {
				out = append(out, ptr(*w))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

// LocationRepo ubicaciones en memoria; (bodega, full_code) es único.
type LocationRepo struct {
	h handle
}

func (r *LocationRepo) Create(_ context.Context, l *entity.Location) error {
	return r.h.write("locations.create", func(st *state) error {
		for _, cur := range st.locations {
			if cur.WarehouseID == l.WarehouseID && cur.FullCode == l.FullCode {
				return fmt.Errorf("%w: ubicación %s", domain.ErrDuplicateReference, l.FullCode)
			}
		}
		st.locations[l.ID] = ptr(*l)
		return nil
	})
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	err := r.h.read(func(st *state) error {
		if l, ok := st.locations[id]; ok {
			out = ptr(*l)
		}
		return nil
	})
	return out, err
}

func (r *LocationRepo) GetByCode(_ context.Context, warehouseID, fullCode string) (*entity.Location, error) {
	var out *entity.Location
	err := r.h.read(func(st *state) error {
		for _, l := range st.locations {
			if l.WarehouseID == warehouseID && l.FullCode == fullCode {
				out = ptr(*l)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *LocationRepo) ListByWarehouse(_ context.Context, warehouseID, search string) ([]*entity.Location, error) {
	search = strings.ToLower(strings.TrimSpace(search))
	var out []*entity.Location
	err := r.h.read(func(st *state) error {
		for _, l := range st.locations {
			if l.WarehouseID != warehouseID {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(l.FullCode), search) {
				continue
			}
			out = append(out, ptr(*l))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].FullCode < out[j].FullCode })
	return out, err
}

func (r *LocationRepo) Delete(_ context.Context, id string) error {
	return r.h.write("locations.delete", func(st *state) error {
		if _, ok := st.locations[id]; !ok {
			return domain.ErrNotFound
		}
		for k := range st.allocations {
			if k.location == id {
				return domain.ErrLocationNotEmpty
			}
		}
		delete(st.locations, id)
		return nil
	})
}

// ProjectRepo proyectos externos (solo lectura, se cargan con Store.SeedProject).
type ProjectRepo struct {
	h handle
}

func (r *ProjectRepo) GetByID(_ context.Context, id string) (*entity.Project, error) {
	var out *entity.Project
	err := r.h.read(func(st *state) error {
		if p, ok := st.projects[id]; ok {
			out = ptr(*p)
		}
		return nil
	})
	return out, err
}

func (r *ProjectRepo) ListByClient(_ context.Context, client string) ([]*entity.Project, error) {
	var out []*entity.Project
	err := r.h.read(func(st *state) error {
		for _, p := range st.projects {
			if p.Client == client {
				out = append(out, ptr(*p))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

func (r *ProjectRepo) Search(_ context.Context, search string, limit int) ([]*entity.Project, error) {
	search = strings.ToLower(strings.TrimSpace(search))
	var out []*entity.Project
	err := r.h.read(func(st *state) error {
		for _, p := range st.projects {
			if search == "" ||
				strings.Contains(strings.ToLower(p.Code), search) ||
				strings.Contains(strings.ToLower(p.Name), search) {
				out = append(out, ptr(*p))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

// SupplierRepo proveedores externos (solo lectura).
type SupplierRepo struct {
	h handle
}

func (r *SupplierRepo) Search(_ context.Context, search string, limit int) ([]*entity.Supplier, error) {
	search = strings.ToLower(strings.TrimSpace(search))
	var out []*entity.Supplier
	err := r.h.read(func(st *state) error {
		for _, s := range st.suppliers {
			if search == "" ||
				strings.Contains(strings.ToLower(s.Name), search) ||
				strings.Contains(strings.ToLower(s.TaxID), search) {
				out = append(out, ptr(*s))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}
