package entity

import "time"

// Warehouse representa una bodega física; agrupa cero o más ubicaciones.
type Warehouse struct {
	ID        string
	Code      string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
