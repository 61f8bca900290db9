package entity

import "time"

// DocumentType agrupa los movimientos creados atómicamente por una operación.
type DocumentType string

const (
	DocumentReception  DocumentType = "RECEPTION"
	DocumentDispatch   DocumentType = "DISPATCH"
	DocumentAdjustment DocumentType = "ADJUSTMENT"
	DocumentPutAway    DocumentType = "PUTAWAY"
	DocumentCorrection DocumentType = "CORRECTION"
	DocumentReversal   DocumentType = "REVERSAL"
)

// DocumentStatus estado del encabezado.
type DocumentStatus string

const (
	DocumentPending   DocumentStatus = "PENDING"
	DocumentCompleted DocumentStatus = "COMPLETED"
	DocumentReversed  DocumentStatus = "REVERSED"
)

// Document encabezado (recepción, despacho, ajuste...) 1-a-N con Movement por DocumentNumber.
// PayloadHash es el SHA-256 del comando que lo creó; permite reintentos idempotentes.
type Document struct {
	ID            string
	Type          DocumentType
	Number        string
	WarehouseID   string
	Counterpart   string
	ProjectID     string
	Status        DocumentStatus
	AttachmentURL string
	PayloadHash   string
	UserEmail     string
	Comments      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
