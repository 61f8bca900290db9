package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// DocumentRepository encabezados de documentos; (Type, Number) es único.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByNumber(ctx context.Context, docType entity.DocumentType, number string) (*entity.Document, error)
	UpdateStatus(ctx context.Context, id string, status entity.DocumentStatus) error
}
