package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"returns-service/internal/models"
)

const exportSheet = "Solicitações"

var exportColumns = []struct {
	Header string
	Width  float64
}{
	{"Pedido", 12},
	{"Cliente", 28},
	{"E-mail", 32},
	{"Status", 14},
	{"Resolução", 16},
	{"Valor", 12},
	{"Crédito", 12},
	{"Rastreio", 20},
	{"Etiqueta", 40},
	{"Criado em", 20},
}

var statusLabels = map[models.ReturnStatus]string{
	models.ReturnStatusPending:   "Pendente",
	models.ReturnStatusApproved:  "Aprovada",
	models.ReturnStatusRejected:  "Rejeitada",
	models.ReturnStatusCompleted: "Concluída",
}

var resolutionLabels = map[models.ResolutionType]string{
	models.ResolutionRefund:      "Reembolso",
	models.ResolutionStoreCredit: "Crédito na loja",
}

// ExportService renders a store's return requests as a spreadsheet
type ExportService struct {
	returns *ReturnService
}

// NewExportService creates a new ExportService
func NewExportService(returns *ReturnService) *ExportService {
	return &ExportService{returns: returns}
}

// ExportReturns builds the XLSX workbook of the store's requests
func (s *ExportService) ExportReturns(ctx context.Context, ownerID string, storeID uuid.UUID, status models.ReturnStatus) ([]byte, error) {
	requests, err := s.returns.ListByStore(ctx, ownerID, storeID, status)
	if err != nil {
		return nil, err
	}
	return BuildReturnsWorkbook(requests)
}

// BuildReturnsWorkbook writes one row per request under a styled header
func BuildReturnsWorkbook(requests []models.ReturnRequest) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("failed to create money style: %w", err)
	}

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, col.Header)
		f.SetCellStyle(exportSheet, cell, cell, headerStyle)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(exportSheet, colName, colName, col.Width)
	}

	for i, r := range requests {
		row := i + 2
		values := []interface{}{
			r.OrderNumber,
			r.CustomerName,
			r.CustomerEmail,
			statusLabels[r.Status],
			resolutionLabels[r.ResolutionType],
			r.TotalValue,
			optionalFloat(r.CreditValue),
			optionalString(r.TrackingCode),
			optionalString(r.LabelURL),
			r.CreatedAt.Format("02/01/2006 15:04"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(exportSheet, cell, value)
		}
		from, _ := excelize.CoordinatesToCellName(6, row)
		to, _ := excelize.CoordinatesToCellName(7, row)
		f.SetCellStyle(exportSheet, from, to, moneyStyle)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func optionalFloat(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func optionalString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
