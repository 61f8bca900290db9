package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/validator"
)

// LocationUseCase ubicaciones de rack por bodega.
type LocationUseCase struct {
	repo        repository.LocationRepository
	warehouses  repository.WarehouseRepository
	allocations repository.AllocationRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(
	repo repository.LocationRepository,
	warehouses repository.WarehouseRepository,
	allocations repository.AllocationRepository,
) *LocationUseCase {
	return &LocationUseCase{repo: repo, warehouses: warehouses, allocations: allocations}
}

// Create crea la ubicación; el código completo debe ser único en la bodega.
func (uc *LocationUseCase) Create(ctx context.Context, warehouseID string, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	w, err := uc.warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, warehouseID)
	}
	loc := &entity.Location{
		ID:          uuid.New().String(),
		WarehouseID: warehouseID,
		Zone:        strings.ToUpper(strings.TrimSpace(in.Zone)),
		Aisle:       strings.ToUpper(strings.TrimSpace(in.Aisle)),
		Rack:        strings.ToUpper(strings.TrimSpace(in.Rack)),
		Level:       strings.ToUpper(strings.TrimSpace(in.Level)),
		Position:    strings.ToUpper(strings.TrimSpace(in.Position)),
		CreatedAt:   time.Now(),
	}
	loc.FullCode = loc.Code()
	existing, err := uc.repo.GetByCode(ctx, warehouseID, loc.FullCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: ubicación %s", domain.ErrDuplicateReference, loc.FullCode)
	}
	if err := uc.repo.Create(ctx, loc); err != nil {
		return nil, err
	}
	return toLocationResponse(loc), nil
}

// List ubicaciones de la bodega; search filtra por código (ilike).
func (uc *LocationUseCase) List(ctx context.Context, warehouseID, search string) (*dto.LocationListResponse, error) {
	list, err := uc.repo.ListByWarehouse(ctx, warehouseID, search)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{Items: items}, nil
}

// Delete elimina la ubicación solo si no tiene stock asignado.
func (uc *LocationUseCase) Delete(ctx context.Context, id string) error {
	loc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if loc == nil {
		return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, id)
	}
	n, err := uc.allocations.CountByLocation(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrLocationNotEmpty
	}
	return uc.repo.Delete(ctx, id)
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:          l.ID,
		WarehouseID: l.WarehouseID,
		Zone:        l.Zone,
		Aisle:       l.Aisle,
		Rack:        l.Rack,
		Level:       l.Level,
		Position:    l.Position,
		FullCode:    l.FullCode,
		CreatedAt:   l.CreatedAt,
	}
}
