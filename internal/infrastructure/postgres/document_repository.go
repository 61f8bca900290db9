package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ repository.DocumentRepository      = (*DocumentRepo)(nil)
	_ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
)

// DocumentRepo encabezados de documento. El índice único (type, number) es la llave de idempotencia.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

func (r *DocumentRepo) Create(ctx context.Context, d *entity.Document) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO documents (id, type, number, warehouse_id, counterpart, project_id, status,
			attachment_url, payload_hash, user_email, comments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		d.ID, d.Type, d.Number, d.WarehouseID, d.Counterpart, d.ProjectID, d.Status,
		d.AttachmentURL, d.PayloadHash, d.UserEmail, d.Comments, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: documento %s %s", domain.ErrDuplicateReference, d.Type, d.Number)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepo) GetByNumber(ctx context.Context, t entity.DocumentType, number string) (*entity.Document, error) {
	var d entity.Document
	err := r.q.QueryRow(ctx, `
		SELECT id, type, number, warehouse_id, counterpart, project_id, status,
			attachment_url, payload_hash, user_email, comments, created_at, updated_at
		FROM documents WHERE type = $1 AND number = $2`, t, number).Scan(
		&d.ID, &d.Type, &d.Number, &d.WarehouseID, &d.Counterpart, &d.ProjectID, &d.Status,
		&d.AttachmentURL, &d.PayloadHash, &d.UserEmail, &d.Comments, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &d, nil
}

func (r *DocumentRepo) UpdateStatus(ctx context.Context, id string, status entity.DocumentStatus) error {
	tag, err := r.q.Exec(ctx, `UPDATE documents SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PurchaseOrderRepo líneas de OC; solo received_qty se escribe desde aquí.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const poLineColumns = `po_number, art_corr, product_code, description, unit_measure, unit_price,
	ordered_qty, received_qty, supplier`

func scanPOLine(row pgx.Row) (*entity.PurchaseOrderLine, error) {
	var l entity.PurchaseOrderLine
	err := row.Scan(&l.PONumber, &l.ArtCorr, &l.ProductCode, &l.Description, &l.UnitMeasure, &l.UnitPrice,
		&l.OrderedQty, &l.ReceivedQty, &l.Supplier)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *PurchaseOrderRepo) ListLines(ctx context.Context, po string) ([]*entity.PurchaseOrderLine, error) {
	rows, err := r.q.Query(ctx, `SELECT `+poLineColumns+` FROM purchase_order_lines WHERE po_number = $1 ORDER BY art_corr`, po)
	if err != nil {
		return nil, fmt.Errorf("list po lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrderLine
	for rows.Next() {
		l, err := scanPOLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan po line: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// GetLineForUpdate bloquea la línea: dos recepciones de la misma línea se serializan.
func (r *PurchaseOrderRepo) GetLineForUpdate(ctx context.Context, po, artCorr string) (*entity.PurchaseOrderLine, error) {
	l, err := scanPOLine(r.q.QueryRow(ctx, `
		SELECT `+poLineColumns+` FROM purchase_order_lines
		WHERE po_number = $1 AND art_corr = $2 FOR UPDATE`, po, artCorr))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock po line: %w", err)
	}
	return l, nil
}

// AddReceived suma delta (puede ser negativo en anulaciones); el CHECK impide quedar bajo cero.
func (r *PurchaseOrderRepo) AddReceived(ctx context.Context, po, artCorr string, delta decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_order_lines SET received_qty = received_qty + $3
		WHERE po_number = $1 AND art_corr = $2 AND received_qty + $3 >= 0`, po, artCorr, delta)
	if err != nil {
		return fmt.Errorf("update received_qty: %w", err)
	}
	if tag.RowsAffected() == 0 {
		l, err := r.GetLineForUpdate(ctx, po, artCorr)
		if err != nil {
			return err
		}
		if l == nil {
			return domain.ErrNotFound
		}
		return domain.NewValidationError("received_qty", "dnonneg")
	}
	return nil
}
