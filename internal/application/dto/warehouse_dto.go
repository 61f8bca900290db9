package dto

import "time"

// CreateWarehouseRequest entrada para crear una bodega.
type CreateWarehouseRequest struct {
	Code string `json:"code" validate:"required,min=1,max=50"`
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// UpdateWarehouseRequest entrada para actualizar una bodega.
type UpdateWarehouseRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=200"`
	Active *bool   `json:"active"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseListResponse lista de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
}

// CreateLocationRequest entrada para crear una ubicación.
// Variante rack: zone-aisle-rack-level-position; variante estantería: zone-row-shelf (Aisle=fila, Rack=repisa).
type CreateLocationRequest struct {
	Zone     string `json:"zone" validate:"required,max=20"`
	Aisle    string `json:"aisle" validate:"max=20"`
	Rack     string `json:"rack" validate:"max=20"`
	Level    string `json:"level" validate:"max=20"`
	Position string `json:"position" validate:"max=20"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID          string    `json:"id"`
	WarehouseID string    `json:"warehouse_id"`
	Zone        string    `json:"zone"`
	Aisle       string    `json:"aisle,omitempty"`
	Rack        string    `json:"rack,omitempty"`
	Level       string    `json:"level,omitempty"`
	Position    string    `json:"position,omitempty"`
	FullCode    string    `json:"full_code"`
	CreatedAt   time.Time `json:"created_at"`
}

// LocationListResponse lista de ubicaciones de una bodega.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
}
