package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	partnerdomain "github.com/smallbiznis/revshare/internal/partner/domain"
	perioddomain "github.com/smallbiznis/revshare/internal/period/domain"
)

// CalculationResult summarizes one calculation run. SettlementCount counts the
// NORMAL items emitted by the run; the totals reflect the period's refreshed
// aggregates, adjustments included.
type CalculationResult struct {
	SettlementCount  int   `json:"settlement_count"`
	PartnerCount     int   `json:"partner_count"`
	TotalRevenue     int64 `json:"total_revenue"`
	TotalSettlements int64 `json:"total_settlements"`
}

type CreateAdjustmentRequest struct {
	OriginalLineItemID snowflake.ID
	TargetPeriodID     snowflake.ID
	AmountMinor        int64
	Reason             string
	ActorID            string
}

type PartnerSummary struct {
	LineItemCount    int   `json:"line_item_count"`
	TotalRevenue     int64 `json:"total_revenue"`
	TotalSettlements int64 `json:"total_settlements"`
}

type PartnerReport struct {
	Partner   *partnerdomain.Partner         `json:"partner"`
	Period    *perioddomain.SettlementPeriod `json:"period"`
	Summary   PartnerSummary                 `json:"summary"`
	LineItems []LineItem                     `json:"line_items"`
}

// PartnerPeriodSummary is one row of a partner's lifetime settlement history.
type PartnerPeriodSummary struct {
	Period           *perioddomain.SettlementPeriod `json:"period"`
	LineItemCount    int                            `json:"line_item_count"`
	TotalRevenue     int64                          `json:"total_revenue"`
	TotalSettlements int64                          `json:"total_settlements"`
}

type ExportFormat string

const (
	ExportFormatStructured ExportFormat = "structured"
	ExportFormatDelimited  ExportFormat = "delimited"
)

// ExportFile is a rendered export of a period's line items.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

type Service interface {
	Calculate(ctx context.Context, periodID snowflake.ID, actorID string) (CalculationResult, error)
	CreateAdjustment(ctx context.Context, req CreateAdjustmentRequest) (*LineItem, error)
	ListPeriodLineItems(ctx context.Context, periodID snowflake.ID) ([]LineItem, error)
	PartnerReport(ctx context.Context, partnerID, periodID snowflake.ID) (*PartnerReport, error)
	PartnerHistory(ctx context.Context, partnerID snowflake.ID) ([]PartnerPeriodSummary, error)
	Export(ctx context.Context, periodID snowflake.ID, format ExportFormat) (*ExportFile, error)
	PartnerStatement(ctx context.Context, partnerID, periodID snowflake.ID) (*ExportFile, error)
}

var (
	ErrNotFound          = errors.New("not_found")
	ErrMissingRequired   = errors.New("missing_required")
	ErrSamePeriod        = errors.New("same_period")
	ErrUnsupportedFormat = errors.New("invalid_export_format")
	ErrStatementDisabled = errors.New("statement_disabled")
)
