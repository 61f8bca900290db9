package usecase

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

const lookupLimit = 20

// LookupUseCase búsquedas sobre las fuentes externas de proyectos y proveedores.
type LookupUseCase struct {
	projects  repository.ProjectRepository
	suppliers repository.SupplierRepository
}

// NewLookupUseCase construye el caso de uso.
func NewLookupUseCase(projects repository.ProjectRepository, suppliers repository.SupplierRepository) *LookupUseCase {
	return &LookupUseCase{projects: projects, suppliers: suppliers}
}

// Projects busca proyectos por código o nombre.
func (uc *LookupUseCase) Projects(ctx context.Context, search string) ([]dto.ProjectResponse, error) {
	list, err := uc.projects.Search(ctx, search, lookupLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProjectResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.ProjectResponse{ID: p.ID, Code: p.Code, Name: p.Name, Client: p.Client, Active: p.Active})
	}
	return out, nil
}

// Suppliers busca proveedores por nombre o NIT.
func (uc *LookupUseCase) Suppliers(ctx context.Context, search string) ([]dto.SupplierResponse, error) {
	list, err := uc.suppliers.Search(ctx, search, lookupLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.SupplierResponse{ID: s.ID, TaxID: s.TaxID, Name: s.Name})
	}
	return out, nil
}
