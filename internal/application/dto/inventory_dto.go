package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementResponse movimiento del kardex.
type MovementResponse struct {
	ID                   string          `json:"id"`
	Type                 string          `json:"type"`
	ProductID            string          `json:"product_id"`
	WarehouseID          string          `json:"warehouse_id"`
	LocationID           string          `json:"location_id,omitempty"`
	Quantity             decimal.Decimal `json:"quantity"`
	DocumentNumber       string          `json:"document_number"`
	ProjectID            string          `json:"project_id,omitempty"`
	ClientOwner          string          `json:"client_owner,omitempty"`
	UserEmail            string          `json:"user_email"`
	Comments             string          `json:"comments,omitempty"`
	ReceptionDocumentURL string          `json:"reception_document_url,omitempty"`
	PONumber             string          `json:"po_number,omitempty"`
	POLine               string          `json:"po_line,omitempty"`
	CorrectsMovementID   string          `json:"corrects_movement_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// OperationResponse resultado de una operación de stock.
type OperationResponse struct {
	DocumentType   string             `json:"document_type"`
	DocumentNumber string             `json:"document_number"`
	Status         string             `json:"status"`
	AttachmentURL  string             `json:"attachment_url,omitempty"`
	Replayed       bool               `json:"replayed"`
	Movements      []MovementResponse `json:"movements"`
}

// ReverseReceptionRequest anulación de recepción.
type ReverseReceptionRequest struct {
	Reason string `json:"reason"`
}

// DispatchLinesRequest carrito de despacho.
type DispatchLinesRequest struct {
	Lines []DispatchLineDTO `json:"lines"`
}

// DispatchLineDTO línea del carrito.
type DispatchLineDTO struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// DispatchResponse despacho con su estado.
type DispatchResponse struct {
	ID                     string            `json:"id"`
	WarehouseID            string            `json:"warehouse_id"`
	Mode                   string            `json:"mode"`
	ProjectID              string            `json:"project_id,omitempty"`
	Contractor             string            `json:"contractor,omitempty"`
	Receiver               string            `json:"receiver,omitempty"`
	DestinationWarehouseID string            `json:"destination_warehouse_id,omitempty"`
	DocumentNumber         string            `json:"document_number"`
	State                  string            `json:"state"`
	Lines                  []DispatchLineDTO `json:"lines"`
	GuideURL               string            `json:"guide_url,omitempty"`
	ProofOfDeliveryURL     string            `json:"proof_of_delivery_url,omitempty"`
	UserEmail              string            `json:"user_email"`
	Comments               string            `json:"comments,omitempty"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
	ConfirmedAt            *time.Time        `json:"confirmed_at,omitempty"`
}

// DispatchConfirmResponse despacho confirmado y su operación.
type DispatchConfirmResponse struct {
	Dispatch  DispatchResponse  `json:"dispatch"`
	Operation OperationResponse `json:"operation"`
}

// KardexEntryResponse fila del kardex.
type KardexEntryResponse struct {
	Movement MovementResponse `json:"movement"`
	In       decimal.Decimal  `json:"in"`
	Out      decimal.Decimal  `json:"out"`
	Balance  decimal.Decimal  `json:"balance"`
}

// KardexResponse kardex de un producto.
type KardexResponse struct {
	Product  ProductResponse       `json:"product"`
	Entries  []KardexEntryResponse `json:"entries"`
	TotalIn  decimal.Decimal       `json:"total_in"`
	TotalOut decimal.Decimal       `json:"total_out"`
	Balance  decimal.Decimal       `json:"balance"`
}

// StockRowResponse saldo de un producto en una bodega.
type StockRowResponse struct {
	ProductID   string          `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	UnitMeasure string          `json:"unit_measure"`
	Net         decimal.Decimal `json:"net"`
	Allocated   decimal.Decimal `json:"allocated"`
	Pending     decimal.Decimal `json:"pending"`
}

// LocationStockResponse contenido de una ubicación.
type LocationStockResponse struct {
	LocationID   string          `json:"location_id"`
	LocationCode string          `json:"location_code"`
	ProductID    string          `json:"product_id"`
	ProductCode  string          `json:"product_code"`
	ProductName  string          `json:"product_name"`
	UnitMeasure  string          `json:"unit_measure"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// ClientStockResponse saldo por proyecto del cliente.
type ClientStockResponse struct {
	ProjectID   string          `json:"project_id,omitempty"`
	ClientOwner string          `json:"client_owner,omitempty"`
	WarehouseID string          `json:"warehouse_id"`
	ProductID   string          `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Net         decimal.Decimal `json:"net"`
}

// PendingToShelveResponse pendiente por ubicar de (producto, bodega).
type PendingToShelveResponse struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Pending     decimal.Decimal `json:"pending"`
}

// PurchaseOrderLineResponse estado de una línea de OC.
type PurchaseOrderLineResponse struct {
	ArtCorr     string          `json:"art_corr"`
	ProductCode string          `json:"product_code"`
	Description string          `json:"description"`
	UnitMeasure string          `json:"unit_measure"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Ordered     decimal.Decimal `json:"ordered"`
	Received    decimal.Decimal `json:"received"`
	Pending     decimal.Decimal `json:"pending"`
	Supplier    string          `json:"supplier"`
}

// CacheDriftResponse desviación de la caché de stock.
type CacheDriftResponse struct {
	ProductID   string          `json:"product_id"`
	ProductCode string          `json:"product_code"`
	Cached      decimal.Decimal `json:"cached"`
	Ledger      decimal.Decimal `json:"ledger"`
}

// BoundViolationResponse violación de la cota de ubicaciones.
type BoundViolationResponse struct {
	WarehouseID string          `json:"warehouse_id"`
	ProductID   string          `json:"product_id"`
	Net         decimal.Decimal `json:"net"`
	Allocated   decimal.Decimal `json:"allocated"`
}

// AuditResponse resultado de la auditoría.
type AuditResponse struct {
	CheckedProducts int                      `json:"checked_products"`
	Drifts          []CacheDriftResponse     `json:"drifts"`
	Violations      []BoundViolationResponse `json:"violations"`
}
