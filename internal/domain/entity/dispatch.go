package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
)

// DispatchState estado del flujo de despacho.
//
//	DRAFT ──guía──▶ DOCUMENT_GENERATED ──confirmar──▶ CONFIRMED ──firma──▶ SIGNED
//	  ▲                    │
//	  └──editar carrito────┘
type DispatchState string

const (
	DispatchDraft             DispatchState = "DRAFT"
	DispatchDocumentGenerated DispatchState = "DOCUMENT_GENERATED"
	DispatchConfirmed         DispatchState = "CONFIRMED"
	DispatchSigned            DispatchState = "SIGNED"
)

// DispatchMode modalidad del despacho.
type DispatchMode string

const (
	// DispatchDirect consumo directo de un proyecto.
	DispatchDirect DispatchMode = "DIRECT"
	// DispatchSubcontract entrega a la cuenta corriente de un contratista del proyecto.
	DispatchSubcontract DispatchMode = "SUBCONTRACT"
	// DispatchExternal entrega a un receptor externo.
	DispatchExternal DispatchMode = "EXTERNAL"
	// DispatchTransfer traslado a otra bodega (TRANSFER_OUT + TRANSFER_IN).
	DispatchTransfer DispatchMode = "TRANSFER"
)

// Valid indica si el modo es conocido.
func (m DispatchMode) Valid() bool {
	switch m {
	case DispatchDirect, DispatchSubcontract, DispatchExternal, DispatchTransfer:
		return true
	}
	return false
}

// DispatchLine línea del carrito; el picking es por ubicación.
type DispatchLine struct {
	ProductID  string
	LocationID string
	Quantity   decimal.Decimal
}

// Dispatch transacción de salida con su máquina de estados.
type Dispatch struct {
	ID                     string
	WarehouseID            string
	Mode                   DispatchMode
	ProjectID              string
	Contractor             string
	Receiver               string
	DestinationWarehouseID string
	DocumentNumber         string
	State                  DispatchState
	Lines                  []DispatchLine
	GuideFingerprint       string
	GuideURL               string
	ProofOfDeliveryURL     string
	UserEmail              string
	Comments               string
	CreatedAt              time.Time
	UpdatedAt              time.Time
	ConfirmedAt            *time.Time
}

// CheckMode valida los datos requeridos por cada modalidad.
func (d *Dispatch) CheckMode() error {
	switch d.Mode {
	case DispatchDirect:
		if d.ProjectID == "" {
			return domain.NewValidationError("project_id", "required")
		}
	case DispatchSubcontract:
		if d.ProjectID == "" {
			return domain.NewValidationError("project_id", "required")
		}
		if d.Contractor == "" {
			return domain.NewValidationError("contractor", "required")
		}
	case DispatchExternal:
		if d.Receiver == "" {
			return domain.NewValidationError("receiver", "required")
		}
	case DispatchTransfer:
		if d.DestinationWarehouseID == "" {
			return domain.NewValidationError("destination_warehouse_id", "required")
		}
		if d.DestinationWarehouseID == d.WarehouseID {
			return domain.NewValidationError("destination_warehouse_id", "nefield")
		}
	default:
		return domain.NewValidationError("mode", "oneof")
	}
	return nil
}

// SetLines reemplaza el carrito. Si ya había guía, el despacho vuelve a DRAFT.
func (d *Dispatch) SetLines(lines []DispatchLine) error {
	if d.State != DispatchDraft && d.State != DispatchDocumentGenerated {
		return fmt.Errorf("%w: no se puede editar un despacho %s", domain.ErrInvalidTransition, d.State)
	}
	d.Lines = lines
	d.State = DispatchDraft
	d.GuideFingerprint = ""
	d.GuideURL = ""
	return nil
}

// MarkGuideGenerated registra la guía generada para el contenido actual del carrito.
func (d *Dispatch) MarkGuideGenerated(guideURL string) error {
	if d.State != DispatchDraft && d.State != DispatchDocumentGenerated {
		return fmt.Errorf("%w: guía sobre despacho %s", domain.ErrInvalidTransition, d.State)
	}
	if len(d.Lines) == 0 {
		return domain.NewValidationError("lines", "min")
	}
	d.GuideFingerprint = d.Fingerprint()
	d.GuideURL = guideURL
	d.State = DispatchDocumentGenerated
	return nil
}

// CanConfirm exige una guía generada para exactamente el carrito actual.
func (d *Dispatch) CanConfirm() error {
	switch d.State {
	case DispatchDocumentGenerated:
	case DispatchDraft:
		return domain.ErrGuideRequired
	default:
		return fmt.Errorf("%w: el despacho ya está %s", domain.ErrInvalidTransition, d.State)
	}
	if d.GuideFingerprint == "" || d.GuideFingerprint != d.Fingerprint() {
		return domain.ErrGuideRequired
	}
	return nil
}

// MarkConfirmed pasa a CONFIRMED.
func (d *Dispatch) MarkConfirmed(at time.Time) error {
	if err := d.CanConfirm(); err != nil {
		return err
	}
	d.State = DispatchConfirmed
	d.ConfirmedAt = &at
	d.UpdatedAt = at
	return nil
}

// MarkSigned adjunta el comprobante de entrega firmado.
func (d *Dispatch) MarkSigned(proofURL string) error {
	if d.State != DispatchConfirmed {
		return fmt.Errorf("%w: solo se firma un despacho confirmado", domain.ErrInvalidTransition)
	}
	if proofURL == "" {
		return domain.NewValidationError("proof_of_delivery", "required")
	}
	d.ProofOfDeliveryURL = proofURL
	d.State = DispatchSigned
	return nil
}

// Fingerprint SHA-256 del contenido que la guía respalda (cabecera + líneas ordenadas).
func (d *Dispatch) Fingerprint() string {
	lines := make([]string, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, fmt.Sprintf("%s|%s|%s", l.ProductID, l.LocationID, l.Quantity.String()))
	}
	sort.Strings(lines)
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s|%s\n",
		d.WarehouseID, d.Mode, d.ProjectID, d.Contractor, d.Receiver, d.DestinationWarehouseID, d.DocumentNumber)
	h.Write([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(h.Sum(nil))
}
