package http

import (
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:                   m.ID,
		Type:                 string(m.Type),
		ProductID:            m.ProductID,
		WarehouseID:          m.WarehouseID,
		LocationID:           m.LocationID,
		Quantity:             m.Quantity,
		DocumentNumber:       m.DocumentNumber,
		ProjectID:            m.ProjectID,
		ClientOwner:          m.ClientOwner,
		UserEmail:            m.UserEmail,
		Comments:             m.Comments,
		ReceptionDocumentURL: m.ReceptionDocumentURL,
		PONumber:             m.PONumber,
		POLine:               m.POLine,
		CorrectsMovementID:   m.CorrectsMovementID,
		CreatedAt:            m.CreatedAt,
	}
}

func toOperationResponse(r *inventory.Result) dto.OperationResponse {
	out := dto.OperationResponse{Replayed: r.Replayed, Movements: make([]dto.MovementResponse, 0, len(r.Movements))}
	if r.Document != nil {
		out.DocumentType = string(r.Document.Type)
		out.DocumentNumber = r.Document.Number
		out.Status = string(r.Document.Status)
		out.AttachmentURL = r.Document.AttachmentURL
	}
	for _, m := range r.Movements {
		out.Movements = append(out.Movements, toMovementResponse(m))
	}
	return out
}

func toDispatchResponse(d *entity.Dispatch) dto.DispatchResponse {
	lines := make([]dto.DispatchLineDTO, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, dto.DispatchLineDTO{ProductID: l.ProductID, LocationID: l.LocationID, Quantity: l.Quantity})
	}
	return dto.DispatchResponse{
		ID:                     d.ID,
		WarehouseID:            d.WarehouseID,
		Mode:                   string(d.Mode),
		ProjectID:              d.ProjectID,
		Contractor:             d.Contractor,
		Receiver:               d.Receiver,
		DestinationWarehouseID: d.DestinationWarehouseID,
		DocumentNumber:         d.DocumentNumber,
		State:                  string(d.State),
		Lines:                  lines,
		GuideURL:               d.GuideURL,
		ProofOfDeliveryURL:     d.ProofOfDeliveryURL,
		UserEmail:              d.UserEmail,
		Comments:               d.Comments,
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
		ConfirmedAt:            d.ConfirmedAt,
	}
}

func toDispatchLineInputs(in []dto.DispatchLineDTO) []inventory.DispatchLineInput {
	out := make([]inventory.DispatchLineInput, len(in))
	for i, l := range in {
		out[i] = inventory.DispatchLineInput{ProductID: l.ProductID, LocationID: l.LocationID, Quantity: l.Quantity}
	}
	return out
}

func toKardexResponse(v *inventory.KardexView) dto.KardexResponse {
	out := dto.KardexResponse{
		Product:  productResponse(v.Product),
		Entries:  make([]dto.KardexEntryResponse, 0, len(v.Entries)),
		TotalIn:  v.Totals.In,
		TotalOut: v.Totals.Out,
		Balance:  v.Balance,
	}
	for _, e := range v.Entries {
		out.Entries = append(out.Entries, dto.KardexEntryResponse{
			Movement: toMovementResponse(e.Movement),
			In:       e.In,
			Out:      e.Out,
			Balance:  e.Balance,
		})
	}
	return out
}

func productResponse(p *entity.Product) dto.ProductResponse {
	if p == nil {
		return dto.ProductResponse{}
	}
	return dto.ProductResponse{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		UnitMeasure:  p.UnitMeasure,
		UnitPrice:    p.UnitPrice,
		CurrentStock: p.CurrentStock,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toStockRows(rows []inventory.StockRow) []dto.StockRowResponse {
	out := make([]dto.StockRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.StockRowResponse{
			ProductID:   r.ProductID,
			ProductCode: r.ProductCode,
			ProductName: r.ProductName,
			UnitMeasure: r.UnitMeasure,
			Net:         r.Net,
			Allocated:   r.Allocated,
			Pending:     r.Pending,
		})
	}
	return out
}

func toLocationStockRows(rows []inventory.LocationStockRow) []dto.LocationStockResponse {
	out := make([]dto.LocationStockResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.LocationStockResponse{
			LocationID:   r.LocationID,
			LocationCode: r.LocationCode,
			ProductID:    r.ProductID,
			ProductCode:  r.ProductCode,
			ProductName:  r.ProductName,
			UnitMeasure:  r.UnitMeasure,
			Quantity:     r.Quantity,
		})
	}
	return out
}

func toClientStockRows(rows []inventory.ClientStockRow) []dto.ClientStockResponse {
	out := make([]dto.ClientStockResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ClientStockResponse{
			ProjectID:   r.ProjectID,
			ClientOwner: r.ClientOwner,
			WarehouseID: r.WarehouseID,
			ProductID:   r.ProductID,
			ProductCode: r.ProductCode,
			ProductName: r.ProductName,
			Net:         r.Net,
		})
	}
	return out
}

func toPurchaseOrderLines(lines []*entity.PurchaseOrderLine) []dto.PurchaseOrderLineResponse {
	out := make([]dto.PurchaseOrderLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.PurchaseOrderLineResponse{
			ArtCorr:     l.ArtCorr,
			ProductCode: l.ProductCode,
			Description: l.Description,
			UnitMeasure: l.UnitMeasure,
			UnitPrice:   l.UnitPrice,
			Ordered:     l.OrderedQty,
			Received:    l.ReceivedQty,
			Pending:     l.Pending(),
			Supplier:    l.Supplier,
		})
	}
	return out
}

func toAuditResponse(r *inventory.AuditReport) dto.AuditResponse {
	out := dto.AuditResponse{
		CheckedProducts: r.CheckedProducts,
		Drifts:          toDriftResponses(r.Drifts),
		Violations:      make([]dto.BoundViolationResponse, 0, len(r.Violations)),
	}
	for _, v := range r.Violations {
		out.Violations = append(out.Violations, dto.BoundViolationResponse{
			WarehouseID: v.WarehouseID,
			ProductID:   v.ProductID,
			Net:         v.Net,
			Allocated:   v.Allocated,
		})
	}
	return out
}

func toDriftResponses(drifts []inventory.CacheDrift) []dto.CacheDriftResponse {
	out := make([]dto.CacheDriftResponse, 0, len(drifts))
	for _, d := range drifts {
		out = append(out, dto.CacheDriftResponse{ProductID: d.ProductID, ProductCode: d.ProductCode, Cached: d.Cached, Ledger: d.Ledger})
	}
	return out
}
