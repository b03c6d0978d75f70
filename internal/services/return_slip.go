package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"returns-service/internal/models"
)

// ReturnSlip renders the printable PDF slip of a single request
func (s *ExportService) ReturnSlip(ctx context.Context, ownerID string, id uuid.UUID) ([]byte, *models.ReturnRequest, error) {
	owned, err := s.returns.loadOwned(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if owned.OwnerID != ownerID {
		return nil, nil, ErrReturnRequestNotFound
	}

	data, err := BuildReturnSlip(owned.StoreName, &owned.Request, time.Now())
	if err != nil {
		return nil, nil, err
	}
	return data, &owned.Request, nil
}

// BuildReturnSlip lays out the request header, the customer block, the items
// table and the totals on a single A4 page
func BuildReturnSlip(storeName string, request *models.ReturnRequest, generatedAt time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)

	addSlipHeader(m, storeName, request)
	addSlipCustomer(m, request)
	addSlipItems(m, request)
	addSlipTotals(m, request)

	m.AddRow(10,
		col.New(12).Add(
			text.New(fmt.Sprintf("Gerado em %s", generatedAt.Format("02/01/2006 15:04")), props.Text{
				Size:  8,
				Align: align.Center,
				Color: &props.Color{Red: 128, Green: 128, Blue: 128},
			}),
		),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addSlipHeader(m core.Maroto, storeName string, request *models.ReturnRequest) {
	m.AddRow(24,
		col.New(7).Add(
			text.New(storeName, props.Text{
				Size:  16,
				Style: fontstyle.Bold,
				Align: align.Left,
			}),
			text.New(fmt.Sprintf("Pedido #%s", request.OrderNumber), props.Text{
				Size:  10,
				Top:   8,
				Align: align.Left,
			}),
		),
		col.New(5).Add(
			text.New("TROCA / DEVOLUÇÃO", props.Text{
				Size:  14,
				Style: fontstyle.Bold,
				Align: align.Right,
			}),
			text.New(fmt.Sprintf("Status: %s", statusLabels[request.Status]), props.Text{
				Size:  10,
				Top:   8,
				Align: align.Right,
			}),
		),
	)
	m.AddRow(5, line.NewCol(12))
}

func addSlipCustomer(m core.Maroto, request *models.ReturnRequest) {
	street := request.CustomerAddress
	if request.CustomerAddressNumber != "" {
		street = strings.TrimSpace(street + ", " + request.CustomerAddressNumber)
	}
	address := strings.Join(nonEmpty(
		street,
		request.CustomerDistrict,
		strings.TrimSpace(request.CustomerCity+" "+request.CustomerState),
		request.CustomerPostalCode,
	), " - ")

	m.AddRow(26,
		col.New(6).Add(
			text.New("CLIENTE", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.New(request.CustomerName, props.Text{Size: 10, Top: 5}),
			text.New(request.CustomerEmail, props.Text{Size: 9, Top: 10}),
			text.New(address, props.Text{Size: 8, Top: 15}),
		),
		col.New(6).Add(
			text.New("SOLICITAÇÃO", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
			text.New(resolutionLabels[request.ResolutionType], props.Text{Size: 10, Top: 5, Align: align.Right}),
			text.New(request.CreatedAt.Format("02/01/2006 15:04"), props.Text{Size: 9, Top: 10, Align: align.Right}),
			text.New(optionalString(request.TrackingCode), props.Text{Size: 8, Top: 15, Align: align.Right}),
		),
	)

	if request.Reason != "" {
		m.AddRow(10,
			col.New(12).Add(
				text.New("Motivo: "+request.Reason, props.Text{Size: 9}),
			),
		)
	}
	m.AddRow(5, line.NewCol(12))
}

func addSlipItems(m core.Maroto, request *models.ReturnRequest) {
	header := props.Text{Size: 10, Style: fontstyle.Bold}
	m.AddRow(8,
		col.New(7).Add(text.New("Item", header)),
		col.New(1).Add(text.New("Qtd", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Center})),
		col.New(2).Add(text.New("Preço", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right})),
		col.New(2).Add(text.New("Total", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right})),
	)
	m.AddRow(2, line.NewCol(12))

	for _, item := range request.Items {
		name := item.Name
		if item.Reason != "" {
			name = fmt.Sprintf("%s (%s)", item.Name, item.Reason)
		}
		m.AddRow(8,
			col.New(7).Add(text.New(name, props.Text{Size: 9})),
			col.New(1).Add(text.New(fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Center})),
			col.New(2).Add(text.New(formatBRL(item.Price), props.Text{Size: 9, Align: align.Right})),
			col.New(2).Add(text.New(formatBRL(Round2(item.Price*float64(item.Quantity))), props.Text{Size: 9, Align: align.Right})),
		)
	}
	m.AddRow(2, line.NewCol(12))
}

func addSlipTotals(m core.Maroto, request *models.ReturnRequest) {
	m.AddRow(8,
		col.New(8),
		col.New(2).Add(text.New("Total:", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right})),
		col.New(2).Add(text.New(formatBRL(request.TotalValue), props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right})),
	)
	if request.CreditValue != nil {
		m.AddRow(8,
			col.New(8),
			col.New(2).Add(text.New("Crédito:", props.Text{Size: 10, Align: align.Right})),
			col.New(2).Add(text.New(formatBRL(*request.CreditValue), props.Text{Size: 10, Align: align.Right})),
		)
	}
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// formatBRL renders a value as "R$ 1.234,56"
func formatBRL(value float64) string {
	raw := fmt.Sprintf("%.2f", Round2(value))
	sign := ""
	if strings.HasPrefix(raw, "-") {
		sign, raw = "-", raw[1:]
	}
	intPart, decPart := raw[:len(raw)-3], raw[len(raw)-2:]

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}
	return fmt.Sprintf("%sR$ %s,%s", sign, grouped.String(), decPart)
}
