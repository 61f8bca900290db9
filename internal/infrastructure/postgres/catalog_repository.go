package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

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

// WarehouseRepo bodegas.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO warehouses (id, code, name, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		w.ID, w.Code, w.Name, w.Active, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: bodega %s", domain.ErrDuplicateReference, w.Code)
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, `
		SELECT id, code, name, active, created_at, updated_at FROM warehouses WHERE id = $1`, id).
		Scan(&w.ID, &w.Code, &w.Name, &w.Active, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	tag, err := r.q.Exec(ctx, `UPDATE warehouses SET name = $2, active = $3, updated_at = $4 WHERE id = $1`,
		w.ID, w.Name, w.Active, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update warehouse: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *WarehouseRepo) List(ctx context.Context, onlyActive bool) ([]*entity.Warehouse, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, code, name, active, created_at, updated_at FROM warehouses
		WHERE ($1 = FALSE OR active) ORDER BY code`, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Warehouse
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(&w.ID, &w.Code, &w.Name, &w.Active, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}

// LocationRepo ubicaciones; (warehouse_id, full_code) es único.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

const locationColumns = `id, warehouse_id, zone, aisle, rack, level, position, full_code, created_at`

func scanLocation(row pgx.Row) (*entity.Location, error) {
	var l entity.Location
	if err := row.Scan(&l.ID, &l.WarehouseID, &l.Zone, &l.Aisle, &l.Rack, &l.Level, &l.Position, &l.FullCode, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO locations (`+locationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.WarehouseID, l.Zone, l.Aisle, l.Rack, l.Level, l.Position, l.FullCode, l.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("%w: ubicación %s", domain.ErrDuplicateReference, l.FullCode)
		case isForeignKeyViolation(err):
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, l.WarehouseID)
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

func (r *LocationRepo) one(ctx context.Context, query string, args ...any) (*entity.Location, error) {
	l, err := scanLocation(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	return r.one(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id)
}

func (r *LocationRepo) GetByCode(ctx context.Context, warehouseID, fullCode string) (*entity.Location, error) {
	return r.one(ctx, `SELECT `+locationColumns+` FROM locations WHERE warehouse_id = $1 AND full_code = $2`, warehouseID, fullCode)
}

func (r *LocationRepo) ListByWarehouse(ctx context.Context, warehouseID, search string) ([]*entity.Location, error) {
	w := &where{}
	w.add("warehouse_id = ?", warehouseID)
	if search != "" {
		w.add("full_code ILIKE ?", likePattern(search))
	}
	rows, err := r.q.Query(ctx, `SELECT `+locationColumns+` FROM locations`+w.String()+` ORDER BY full_code`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// Delete falla con ErrLocationNotEmpty si la ubicación tiene stock asignado (FK de product_locations).
func (r *LocationRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrLocationNotEmpty
		}
		return fmt.Errorf("delete location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ProjectRepo proyectos (tabla administrada por otro sistema).
type ProjectRepo struct {
	q Querier
}

// NewProjectRepository construye el adaptador.
func NewProjectRepository(q Querier) *ProjectRepo {
	return &ProjectRepo{q: q}
}

func (r *ProjectRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Project, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	var list []*entity.Project
	for rows.Next() {
		var p entity.Project
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Client, &p.Active); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	list, err := r.list(ctx, `SELECT id, code, name, client, active FROM projects WHERE id = $1`, id)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r *ProjectRepo) ListByClient(ctx context.Context, client string) ([]*entity.Project, error) {
	return r.list(ctx, `SELECT id, code, name, client, active FROM projects WHERE client = $1 ORDER BY code`, client)
}

func (r *ProjectRepo) Search(ctx context.Context, search string, limit int) ([]*entity.Project, error) {
	return r.list(ctx, `
		SELECT id, code, name, client, active FROM projects
		WHERE ($1 = '' OR code ILIKE $2 OR name ILIKE $2)
		ORDER BY code LIMIT $3`, search, likePattern(search), limitOrAll(limit))
}

// SupplierRepo proveedores (solo lectura).
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

func (r *SupplierRepo) Search(ctx context.Context, search string, limit int) ([]*entity.Supplier, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, tax_id, name FROM suppliers
		WHERE ($1 = '' OR name ILIKE $2 OR tax_id ILIKE $2)
		ORDER BY name LIMIT $3`, search, likePattern(search), limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("search suppliers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Supplier
	for rows.Next() {
		var s entity.Supplier
		if err := rows.Scan(&s.ID, &s.TaxID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// limitOrAll traduce limit <= 0 a NULL (LIMIT NULL = sin límite).
func limitOrAll(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}
