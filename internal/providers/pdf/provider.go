package pdf

import (
	"context"
	"time"
)

// StatementData is everything the statement renderer needs; amounts arrive
// pre-formatted so the renderer stays display-only.
type StatementData struct {
	PartnerName string
	PartnerCode string

	PeriodStart time.Time
	PeriodEnd   time.Time
	GeneratedAt time.Time

	Currency string

	Lines []StatementLine

	TotalRevenue    string
	TotalSettlement string
}

type StatementLine struct {
	OrganizationID   string
	EntryType        string
	RevenueAmount    string
	SharePercent     string
	SettlementAmount string
}

type Provider interface {
	GenerateStatement(ctx context.Context, data StatementData) ([]byte, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateStatement(ctx context.Context, data StatementData) ([]byte, error) {
	return nil, nil
}
