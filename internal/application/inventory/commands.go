package inventory

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// Attachment archivo adjunto (comprobante, evidencia, acta firmada).
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReceiveLine línea de recepción. Con OC se identifica por ArtCorr; sin OC por ProductCode.
type ReceiveLine struct {
	ArtCorr     string          `json:"art_corr"`
	ProductCode string          `json:"product_code"`
	Name        string          `json:"name"`
	UnitMeasure string          `json:"unit_measure"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"dnonneg"`
	Quantity    decimal.Decimal `json:"quantity" validate:"dpos"`
}

// ReceiveCommand recepción de mercancía (con o sin orden de compra).
type ReceiveCommand struct {
	WarehouseID    string        `json:"warehouse_id" validate:"required"`
	PONumber       string        `json:"po_number"`
	DocumentNumber string        `json:"document_number"`
	Supplier       string        `json:"supplier"`
	ProjectID      string        `json:"project_id"`
	ClientOwner    string        `json:"client_owner"`
	UserEmail      string        `json:"user_email" validate:"required"`
	Comments       string        `json:"comments"`
	Lines          []ReceiveLine `json:"lines" validate:"min=1,dive"`
	Attachment     *Attachment   `json:"-"`
}

// ReverseReceptionCommand anula una recepción aún no ubicada.
type ReverseReceptionCommand struct {
	DocumentNumber string `json:"document_number" validate:"required"`
	Reason         string `json:"reason" validate:"required"`
	UserEmail      string `json:"user_email" validate:"required"`
}

// PutAwayLine producto pendiente → ubicación destino.
type PutAwayLine struct {
	ProductID  string          `json:"product_id" validate:"required"`
	LocationID string          `json:"location_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity" validate:"dpos"`
}

// PutAwayCommand ubicación en rack de stock recibido.
type PutAwayCommand struct {
	WarehouseID    string        `json:"warehouse_id" validate:"required"`
	DocumentNumber string        `json:"document_number"`
	UserEmail      string        `json:"user_email" validate:"required"`
	Comments       string        `json:"comments"`
	Lines          []PutAwayLine `json:"lines" validate:"min=1,dive"`
}

// DispatchLineInput línea del carrito de despacho.
type DispatchLineInput struct {
	ProductID  string          `json:"product_id" validate:"required"`
	LocationID string          `json:"location_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity" validate:"dpos"`
}

// DispatchDraftCommand crea un despacho en borrador.
type DispatchDraftCommand struct {
	WarehouseID            string              `json:"warehouse_id" validate:"required"`
	Mode                   entity.DispatchMode `json:"mode" validate:"required,oneof=DIRECT SUBCONTRACT EXTERNAL TRANSFER"`
	ProjectID              string              `json:"project_id"`
	Contractor             string              `json:"contractor"`
	Receiver               string              `json:"receiver"`
	DestinationWarehouseID string              `json:"destination_warehouse_id"`
	DocumentNumber         string              `json:"document_number"`
	UserEmail              string              `json:"user_email" validate:"required"`
	Comments               string              `json:"comments"`
	Lines                  []DispatchLineInput `json:"lines" validate:"dive"`
}

// AdjustCommand ajuste de inventario (sobrante o merma) sobre una ubicación.
type AdjustCommand struct {
	WarehouseID            string              `json:"warehouse_id" validate:"required"`
	ProductID              string              `json:"product_id" validate:"required"`
	Type                   entity.MovementType `json:"type" validate:"required,oneof=INCREASE DECREASE"`
	Quantity               decimal.Decimal     `json:"quantity" validate:"dpos"`
	Reason                 string              `json:"reason" validate:"required"`
	LocationID             string              `json:"location_id" validate:"required"`
	ProjectID              string              `json:"project_id" validate:"required"`
	ClientOwner            string              `json:"client_owner"`
	DocumentNumber         string              `json:"document_number"`
	UserEmail              string              `json:"user_email" validate:"required"`
	ConfirmWithoutEvidence bool                `json:"confirm_without_evidence"`
	Evidence               *Attachment         `json:"-"`
}

// CorrectInboundCommand corrige la cantidad de un ingreso con un movimiento compensatorio.
type CorrectInboundCommand struct {
	MovementID     string          `json:"movement_id" validate:"required"`
	NewQuantity    decimal.Decimal `json:"new_quantity" validate:"dnonneg"`
	Reason         string          `json:"reason" validate:"required"`
	DocumentNumber string          `json:"document_number"`
	UserEmail      string          `json:"user_email" validate:"required"`
}

// Result resultado de una operación de stock confirmada.
// Replayed indica que el documento ya existía con el mismo contenido y no se escribió nada.
type Result struct {
	Document  *entity.Document
	Movements []*entity.Movement
	Replayed  bool
}

// payloadHash SHA-256 de la forma JSON del comando; identifica reintentos del mismo documento.
func payloadHash(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
