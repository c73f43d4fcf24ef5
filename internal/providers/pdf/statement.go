package pdf

import (
	"context"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const statementDateLayout = "2006-01-02"

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateStatement(ctx context.Context, data StatementData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Settlement Statement", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(24,
		col.New(6).Add(
			text.New(data.PartnerName, props.Text{Style: fontstyle.Bold}),
			text.New("Partner code: "+data.PartnerCode, props.Text{Top: 5}),
		),
		col.New(6).Add(
			text.New("Period: "+data.PeriodStart.Format(statementDateLayout)+" to "+data.PeriodEnd.Format(statementDateLayout), props.Text{}),
			text.New("Generated: "+data.GeneratedAt.Format(statementDateLayout), props.Text{Top: 4}),
			text.New("Currency: "+data.Currency, props.Text{Top: 8}),
		),
	)

	m.AddRow(10,
		text.NewCol(4, "Organization", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Type", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Revenue", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Share %", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Settlement", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, line := range data.Lines {
		m.AddRow(8,
			text.NewCol(4, line.OrganizationID, props.Text{Size: 9}),
			text.NewCol(2, line.EntryType, props.Text{Size: 9}),
			text.NewCol(2, line.RevenueAmount, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, line.SharePercent, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, line.SettlementAmount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total revenue", props.Text{Size: 9}),
		text.NewCol(2, data.TotalRevenue, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total due", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, data.TotalSettlement, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}
