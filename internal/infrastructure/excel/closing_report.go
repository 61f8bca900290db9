// Package excel exporta el cierre de inventario de una bodega a .xlsx.
package excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
)

const (
	SheetStock     = "Stock"
	SheetLocations = "Ubicaciones"
	SheetPending   = "Pendiente por ubicar"
)

var _ inventory.ClosingReportExporter = (*ClosingReportExporter)(nil)

// ClosingReportExporter genera el libro del cierre.
type ClosingReportExporter struct{}

func NewClosingReportExporter() *ClosingReportExporter {
	return &ClosingReportExporter{}
}

// Export arma las tres hojas y devuelve el archivo serializado.
func (e *ClosingReportExporter) Export(ctx context.Context, report inventory.ClosingReport) ([]byte, error) {
	if report.Warehouse == nil {
		return nil, fmt.Errorf("cierre sin bodega")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetStock); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetLocations, SheetPending} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	title := fmt.Sprintf("Cierre %s (%s) %s",
		report.Warehouse.Name, report.Warehouse.Code, report.GeneratedAt.Format("2006-01-02 15:04"))

	stock := make([][]any, 0, len(report.Stock))
	for _, r := range report.Stock {
		stock = append(stock, []any{r.ProductCode, r.ProductName, r.UnitMeasure,
			r.Net.InexactFloat64(), r.Allocated.InexactFloat64(), r.Pending.InexactFloat64()})
	}
	if err := writeSheet(f, SheetStock, title,
		[]string{"Código", "Producto", "Unidad", "Stock", "Ubicado", "Pendiente"}, stock); err != nil {
		return nil, err
	}

	locs := make([][]any, 0, len(report.Locations))
	for _, r := range report.Locations {
		locs = append(locs, []any{r.LocationCode, r.ProductCode, r.ProductName, r.UnitMeasure, r.Quantity.InexactFloat64()})
	}
	if err := writeSheet(f, SheetLocations, title,
		[]string{"Ubicación", "Código", "Producto", "Unidad", "Cantidad"}, locs); err != nil {
		return nil, err
	}

	pending := make([][]any, 0, len(report.Pending))
	for _, r := range report.Pending {
		pending = append(pending, []any{r.ProductCode, r.ProductName, r.UnitMeasure, r.Pending.InexactFloat64()})
	}
	if err := writeSheet(f, SheetPending, title,
		[]string{"Código", "Producto", "Unidad", "Pendiente"}, pending); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializar xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSheet: fila 1 título, fila 2 encabezados, datos desde la fila 3.
func writeSheet(f *excelize.File, sheet, title string, headers []string, rows [][]any) error {
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return err
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+3)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
