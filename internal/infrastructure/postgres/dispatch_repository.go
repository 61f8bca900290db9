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

var _ repository.DispatchRepository = (*DispatchRepo)(nil)

// DispatchRepo despachos con sus líneas (dispatch_lines).
type DispatchRepo struct {
	q Querier
}

// NewDispatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDispatchRepository(q Querier) *DispatchRepo {
	return &DispatchRepo{q: q}
}

const dispatchColumns = `id, warehouse_id, mode, project_id, contractor, receiver, destination_warehouse_id,
	document_number, state, guide_fingerprint, guide_url, proof_of_delivery_url, user_email, comments,
	created_at, updated_at, confirmed_at`

func (r *DispatchRepo) Create(ctx context.Context, d *entity.Dispatch) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO dispatches (`+dispatchColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		d.ID, d.WarehouseID, d.Mode, d.ProjectID, d.Contractor, d.Receiver, d.DestinationWarehouseID,
		d.DocumentNumber, d.State, d.GuideFingerprint, d.GuideURL, d.ProofOfDeliveryURL, d.UserEmail, d.Comments,
		d.CreatedAt, d.UpdatedAt, d.ConfirmedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: despacho %s", domain.ErrDuplicateReference, d.DocumentNumber)
		}
		return fmt.Errorf("insert dispatch: %w", err)
	}
	return r.saveLines(ctx, d)
}

func (r *DispatchRepo) saveLines(ctx context.Context, d *entity.Dispatch) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM dispatch_lines WHERE dispatch_id = $1`, d.ID); err != nil {
		return fmt.Errorf("delete dispatch lines: %w", err)
	}
	for i, l := range d.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO dispatch_lines (dispatch_id, line_no, product_id, location_id, quantity)
			VALUES ($1, $2, $3, $4, $5)`, d.ID, i+1, l.ProductID, l.LocationID, l.Quantity)
		if err != nil {
			return fmt.Errorf("insert dispatch line: %w", err)
		}
	}
	return nil
}

func (r *DispatchRepo) get(ctx context.Context, query, id string) (*entity.Dispatch, error) {
	var d entity.Dispatch
	err := r.q.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.WarehouseID, &d.Mode, &d.ProjectID, &d.Contractor, &d.Receiver, &d.DestinationWarehouseID,
		&d.DocumentNumber, &d.State, &d.GuideFingerprint, &d.GuideURL, &d.ProofOfDeliveryURL, &d.UserEmail, &d.Comments,
		&d.CreatedAt, &d.UpdatedAt, &d.ConfirmedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dispatch: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT product_id, location_id, quantity FROM dispatch_lines
		WHERE dispatch_id = $1 ORDER BY line_no`, id)
	if err != nil {
		return nil, fmt.Errorf("get dispatch lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.DispatchLine
		if err := rows.Scan(&l.ProductID, &l.LocationID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan dispatch line: %w", err)
		}
		d.Lines = append(d.Lines, l)
	}
	return &d, rows.Err()
}

func (r *DispatchRepo) GetByID(ctx context.Context, id string) (*entity.Dispatch, error) {
	return r.get(ctx, `SELECT `+dispatchColumns+` FROM dispatches WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera; las líneas solo se modifican con la cabecera bloqueada.
func (r *DispatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Dispatch, error) {
	return r.get(ctx, `SELECT `+dispatchColumns+` FROM dispatches WHERE id = $1 FOR UPDATE`, id)
}

func (r *DispatchRepo) Update(ctx context.Context, d *entity.Dispatch) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE dispatches SET state = $2, guide_fingerprint = $3, guide_url = $4, proof_of_delivery_url = $5,
			comments = $6, updated_at = $7, confirmed_at = $8
		WHERE id = $1`,
		d.ID, d.State, d.GuideFingerprint, d.GuideURL, d.ProofOfDeliveryURL, d.Comments, d.UpdatedAt, d.ConfirmedAt)
	if err != nil {
		return fmt.Errorf("update dispatch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return r.saveLines(ctx, d)
}
