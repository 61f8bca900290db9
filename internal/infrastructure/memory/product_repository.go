package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria; Code es único.
type ProductRepo struct {
	h handle
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.h.write("products.create", func(st *state) error {
		for _, p := range st.products {
			if strings.EqualFold(p.Code, product.Code) {
				return fmt.Errorf("%w: producto %s", domain.ErrDuplicateReference, product.Code)
			}
		}
		st.products[product.ID] = ptr(*product)
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.h.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = ptr(*p)
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	var out *entity.Product
	err := r.h.read(func(st *state) error {
		for _, p := range st.products {
			if strings.EqualFold(p.Code, code) {
				out = ptr(*p)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// Update modifica nombre, unidad y precio; current_stock solo cambia con AddStock/SetStock.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.h.write("products.update", func(st *state) error {
		p, ok := st.products[product.ID]
		if !ok {
			return domain.ErrNotFound
		}
		p.Name = product.Name
		p.UnitMeasure = product.UnitMeasure
		p.UnitPrice = product.UnitPrice
		p.UpdatedAt = product.UpdatedAt
		return nil
	})
}

func (r *ProductRepo) AddStock(_ context.Context, id string, delta decimal.Decimal) error {
	return r.h.write("products.add_stock", func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.CurrentStock = p.CurrentStock.Add(delta)
		return nil
	})
}

func (r *ProductRepo) SetStock(_ context.Context, id string, value decimal.Decimal) error {
	return r.h.write("products.set_stock", func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.CurrentStock = value
		return nil
	})
}

func (r *ProductRepo) filter(search string) ([]*entity.Product, error) {
	search = strings.ToLower(strings.TrimSpace(search))
	var out []*entity.Product
	err := r.h.read(func(st *state) error {
		for _, p := range st.products {
			if search == "" ||
				strings.Contains(strings.ToLower(p.Code), search) ||
				strings.Contains(strings.ToLower(p.Name), search) {
				out = append(out, ptr(*p))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

// List con limit <= 0 devuelve todos.
func (r *ProductRepo) List(_ context.Context, search string, limit, offset int) ([]*entity.Product, error) {
	all, err := r.filter(search)
	if err != nil {
		return nil, err
	}
	if offset > len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *ProductRepo) Count(_ context.Context, search string) (int, error) {
	all, err := r.filter(search)
	return len(all), err
}
