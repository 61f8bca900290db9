package entity

// Project proyecto (fuente externa de solo lectura). Client identifica al cliente dueño.
type Project struct {
	ID     string
	Code   string
	Name   string
	Client string
	Active bool
}

// Supplier proveedor (fuente externa de solo lectura).
type Supplier struct {
	ID    string
	TaxID string
	Name  string
}
