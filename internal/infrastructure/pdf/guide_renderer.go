// Package pdf genera la guía de despacho que respalda la salida de mercancía.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Bodega              │  N° Guía + Fecha             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DESTINO: modalidad, proyecto, contratista/receptor/bodega  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Código | Descripción | Ubicación | Unidad | Cant.   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FIRMAS: entrega / recibe          QR del número de guía    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ inventory.GuideRenderer = (*GuideRenderer)(nil)

// GuideRenderer implementa inventory.GuideRenderer con Maroto v2.
type GuideRenderer struct {
	company string
}

// NewGuideRenderer construye el generador; company aparece en el encabezado.
func NewGuideRenderer(company string) *GuideRenderer {
	return &GuideRenderer{company: company}
}

// RenderGuide genera el PDF de la guía y devuelve sus bytes.
func (g *GuideRenderer) RenderGuide(_ context.Context, data inventory.GuideData) ([]byte, error) {
	if data.Dispatch == nil || data.Warehouse == nil {
		return nil, fmt.Errorf("pdf: guía sin despacho o bodega")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Guía de despacho "+data.Dispatch.DocumentNumber, true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(g.headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(destinationRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(data.Lines)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(line.NewRow(6))
	m.AddRows(footerRow(data.Dispatch))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar guía: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *GuideRenderer) headerRow(data inventory.GuideData) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(g.company, data.Warehouse.Name), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Bodega %s - %s", data.Warehouse.Code, data.Warehouse.Name), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("GUÍA DE DESPACHO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(data.Dispatch.DocumentNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+data.IssuedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

var modeLabels = map[entity.DispatchMode]string{
	entity.DispatchDirect:      "Consumo directo de proyecto",
	entity.DispatchSubcontract: "Entrega a subcontratista",
	entity.DispatchExternal:    "Entrega externa",
	entity.DispatchTransfer:    "Traslado entre bodegas",
}

func destinationRow(data inventory.GuideData) core.Row {
	d := data.Dispatch
	detail := fmt.Sprintf("Proyecto: %s", nonEmpty(d.ProjectID, "-"))
	switch d.Mode {
	case entity.DispatchSubcontract:
		detail += "   |   Contratista: " + d.Contractor
	case entity.DispatchExternal:
		detail += "   |   Receptor: " + d.Receiver
	case entity.DispatchTransfer:
		dest := d.DestinationWarehouseID
		if data.Destination != nil {
			dest = data.Destination.Code + " - " + data.Destination.Name
		}
		detail += "   |   Bodega destino: " + dest
	}
	return row.New(16).Add(
		col.New(12).Add(
			text.New("DESTINO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(modeLabels[d.Mode], props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(detail, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Código", 2, align.Left),
		h("Descripción", 5, align.Left),
		h("Ubicación", 2, align.Center),
		h("Unidad", 1, align.Center),
		h("Cantidad", 2, align.Right),
	)
}

func tableRows(lines []inventory.GuideLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		out = append(out, row.New(7).Add(
			col.New(2).Add(text.New(l.ProductCode, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(5).Add(text.New(l.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(l.LocationCode, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(l.UnitMeasure, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(l.Quantity.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

// footerRow firmas de entrega y recibo, y QR con el número de guía.
func footerRow(d *entity.Dispatch) core.Row {
	signature := func(label string) core.Col {
		return col.New(4).Add(
			text.New("______________________________", props.Text{Size: 8, Align: align.Center, Top: 24}),
			text.New(label, props.Text{Size: 8, Align: align.Center, Top: 29, Color: colorGray}),
		)
	}
	return row.New(40).Add(
		signature("Entrega: "+d.UserEmail),
		signature("Recibe"),
		col.New(4).Add(code.NewQr(d.DocumentNumber, props.Rect{Percent: 80, Center: true})),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
