package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrValidation        = errors.New("datos inválidos")
	ErrInvalidInput      = ErrValidation
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrInsufficientAllocatedStock: se intentó retirar de una ubicación más de lo que contiene.
	ErrInsufficientAllocatedStock = fmt.Errorf("%w: cantidad ubicada insuficiente", ErrInsufficientStock)
	// ErrAllocationExceedsStock: ubicar más de lo recibido menos lo despachado en la bodega.
	ErrAllocationExceedsStock = errors.New("la cantidad ubicada supera el stock de la bodega")
	ErrDuplicateReference     = errors.New("referencia duplicada")
	// ErrPOLineOverReceipt: recibir más que lo pendiente de una línea de orden de compra.
	ErrPOLineOverReceipt    = fmt.Errorf("%w: la cantidad supera lo pendiente de la línea de la OC", ErrDuplicateReference)
	ErrLocationNotEmpty     = errors.New("la ubicación tiene stock asignado")
	ErrGuideRequired        = errors.New("debe generarse la guía de despacho antes de confirmar")
	ErrInvalidTransition    = errors.New("transición de estado no permitida")
	ErrConfirmationRequired = errors.New("se requiere confirmación explícita")
	ErrTransactionFailure   = errors.New("fallo de transacción")
)

// FieldError describe una validación fallida sobre un campo.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

// ValidationError agrupa errores de campo; errors.Is(err, ErrValidation) es verdadero.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError construye un ValidationError de un solo campo.
func NewValidationError(field, tag string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Tag: tag}}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Param != "" {
			parts = append(parts, fmt.Sprintf("%s (%s=%s)", f.Field, f.Tag, f.Param))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Field, f.Tag))
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
