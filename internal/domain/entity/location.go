package entity

import (
	"strings"
	"time"
)

// Location es una posición física en rack dentro de una bodega.
// FullCode es único por bodega: zona-pasillo-rack-nivel-posición o zona-fila-repisa.
type Location struct {
	ID          string
	WarehouseID string
	Zone        string
	Aisle       string
	Rack        string
	Level       string
	Position    string
	FullCode    string
	CreatedAt   time.Time
}

// BuildFullCode une los segmentos no vacíos con "-" en mayúsculas.
// Ej: ("a", "01", "", "02") → "A-01-02".
func BuildFullCode(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		parts = append(parts, strings.ToUpper(s))
	}
	return strings.Join(parts, "-")
}

// Code devuelve el código completo a partir de los segmentos de la ubicación.
func (l *Location) Code() string {
	return BuildFullCode(l.Zone, l.Aisle, l.Rack, l.Level, l.Position)
}
