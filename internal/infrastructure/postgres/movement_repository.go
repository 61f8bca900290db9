package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo kardex sobre la tabla movements (solo INSERT).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, type, product_id, warehouse_id, location_id, quantity, document_number,
	project_id, client_owner, user_email, comments, reception_document_url, po_number, po_line,
	corrects_movement_id, created_at`

// signedQuantity expresión SQL equivalente a ledger.Signed.
const signedQuantity = `CASE
	WHEN type IN ('INBOUND','TRANSFER_IN','INCREASE') THEN quantity
	WHEN type IN ('OUTBOUND','TRANSFER_OUT','DECREASE') THEN -quantity
	ELSE 0 END`

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(
		&m.ID, &m.Type, &m.ProductID, &m.WarehouseID, &m.LocationID, &m.Quantity, &m.DocumentNumber,
		&m.ProjectID, &m.ClientOwner, &m.UserEmail, &m.Comments, &m.ReceptionDocumentURL, &m.PONumber, &m.POLine,
		&m.CorrectsMovementID, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Append inserta el movimiento; las FK rechazan producto o bodega inexistentes.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	if !m.Type.Valid() {
		return domain.NewValidationError("type", "oneof")
	}
	if !m.Quantity.IsPositive() {
		return domain.NewValidationError("quantity", "dpos")
	}
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Type, m.ProductID, m.WarehouseID, m.LocationID, m.Quantity, m.DocumentNumber,
		m.ProjectID, m.ClientOwner, m.UserEmail, m.Comments, m.ReceptionDocumentURL, m.PONumber, m.POLine,
		m.CorrectsMovementID, m.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: producto o bodega del movimiento", domain.ErrNotFound)
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

func movementWhere(f repository.MovementFilter) *where {
	w := &where{}
	if f.ProductID != "" {
		w.add("product_id = ?", f.ProductID)
	}
	if f.WarehouseID != "" {
		w.add("warehouse_id = ?", f.WarehouseID)
	}
	if f.DocumentNumber != "" {
		w.add("document_number = ?", f.DocumentNumber)
	}
	if f.CorrectsMovementID != "" {
		w.add("corrects_movement_id = ?", f.CorrectsMovementID)
	}
	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		w.add("type = ANY(?)", types)
	}
	if f.From != nil {
		w.add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("created_at < ?", *f.To)
	}
	if f.Scope != nil {
		// proyecto del cliente O client_owner = cliente
		w.add("((project_id <> '' AND project_id = ANY(?)) OR (? <> '' AND client_owner = ?))",
			f.Scope.ProjectIDList(), f.Scope.Client, f.Scope.Client)
	}
	return w
}

// Stream consulta al iniciar cada range; el cursor se cierra al terminar o al cortar el range.
func (r *MovementRepo) Stream(ctx context.Context, filter repository.MovementFilter) iter.Seq2[*entity.Movement, error] {
	return func(yield func(*entity.Movement, error) bool) {
		w := movementWhere(filter)
		order := " ORDER BY seq ASC"
		if filter.Order == repository.NewestFirst {
			order = " ORDER BY seq DESC"
		}
		rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM movements`+w.String()+order, w.args...)
		if err != nil {
			yield(nil, fmt.Errorf("stream movements: %w", err))
			return
		}
		defer rows.Close()
		for rows.Next() {
			m, err := scanMovement(rows)
			if err != nil {
				yield(nil, fmt.Errorf("scan movement: %w", err))
				return
			}
			if !yield(m, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("stream movements: %w", err))
		}
	}
}

func (r *MovementRepo) sum(ctx context.Context, w *where) (decimal.Decimal, error) {
	var net decimal.Decimal
	query := `SELECT COALESCE(SUM(` + strings.ReplaceAll(signedQuantity, "\n", " ") + `), 0) FROM movements` + w.String()
	if err := r.q.QueryRow(ctx, query, w.args...).Scan(&net); err != nil {
		return decimal.Zero, fmt.Errorf("net stock: %w", err)
	}
	return net, nil
}

// NetStock suma con signo para (producto, bodega).
func (r *MovementRepo) NetStock(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	w := &where{}
	w.add("product_id = ?", productID)
	w.add("warehouse_id = ?", warehouseID)
	return r.sum(ctx, w)
}

// NetStockByProduct suma con signo en todas las bodegas.
func (r *MovementRepo) NetStockByProduct(ctx context.Context, productID string) (decimal.Decimal, error) {
	w := &where{}
	w.add("product_id = ?", productID)
	return r.sum(ctx, w)
}
