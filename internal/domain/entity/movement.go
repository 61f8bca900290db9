package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del kardex.
type MovementType string

// Tipos de movimiento. PUTAWAY solo registra el traslado a ubicación, no altera stock.
const (
	MovementInbound     MovementType = "INBOUND"
	MovementOutbound    MovementType = "OUTBOUND"
	MovementTransferIn  MovementType = "TRANSFER_IN"
	MovementTransferOut MovementType = "TRANSFER_OUT"
	MovementPutAway     MovementType = "PUTAWAY"
	MovementIncrease    MovementType = "INCREASE"
	MovementDecrease    MovementType = "DECREASE"
)

// MovementTypes lista todos los tipos válidos.
var MovementTypes = []MovementType{
	MovementInbound, MovementOutbound, MovementTransferIn, MovementTransferOut,
	MovementPutAway, MovementIncrease, MovementDecrease,
}

// Valid indica si el tipo pertenece al enum.
func (t MovementType) Valid() bool {
	for _, v := range MovementTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Movement es un hecho inmutable del kardex. Quantity siempre es positiva;
// el signo lo da el tipo (ver ledger.Sign). Las correcciones se hacen con
// movimientos compensatorios que referencian CorrectsMovementID.
type Movement struct {
	ID                   string
	Type                 MovementType
	ProductID            string
	WarehouseID          string
	LocationID           string // destino de PUTAWAY/INCREASE, origen de OUTBOUND/TRANSFER_OUT/DECREASE
	Quantity             decimal.Decimal
	DocumentNumber       string
	ProjectID            string
	ClientOwner          string
	UserEmail            string
	Comments             string
	ReceptionDocumentURL string
	PONumber             string
	POLine               string // art_corr
	CorrectsMovementID   string
	CreatedAt            time.Time
}
