package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	perioddomain "github.com/smallbiznis/revshare/internal/period/domain"
	"github.com/smallbiznis/revshare/internal/providers/pdf"
	settlementdomain "github.com/smallbiznis/revshare/internal/settlement/domain"
	"go.uber.org/zap"
)

// exportColumns is the contractual column order. Downstream reconciliation
// parses exports positionally, so this order never changes.
var exportColumns = []string{
	"period_start",
	"period_end",
	"partner_name",
	"partner_id",
	"organization_id",
	"source_attribution_id",
	"revenue_amount",
	"currency",
	"revenue_share_percent",
	"settlement_amount",
	"agreement_id",
	"entry_type",
	"created_at",
}

type exportRow struct {
	PeriodStart         string `json:"period_start"`
	PeriodEnd           string `json:"period_end"`
	PartnerName         string `json:"partner_name"`
	PartnerID           string `json:"partner_id"`
	OrganizationID      string `json:"organization_id"`
	SourceAttributionID string `json:"source_attribution_id"`
	RevenueAmount       string `json:"revenue_amount"`
	Currency            string `json:"currency"`
	SharePercent        string `json:"revenue_share_percent"`
	SettlementAmount    string `json:"settlement_amount"`
	AgreementID         string `json:"agreement_id"`
	EntryType           string `json:"entry_type"`
	CreatedAt           string `json:"created_at"`
}

func (row exportRow) fields() []string {
	return []string{
		row.PeriodStart,
		row.PeriodEnd,
		row.PartnerName,
		row.PartnerID,
		row.OrganizationID,
		row.SourceAttributionID,
		row.RevenueAmount,
		row.Currency,
		row.SharePercent,
		row.SettlementAmount,
		row.AgreementID,
		row.EntryType,
		row.CreatedAt,
	}
}

// Export renders every line item of the period in the requested format. Both
// formats share the same row builder so their values are byte-identical.
func (s *Service) Export(ctx context.Context, periodID snowflake.ID, format settlementdomain.ExportFormat) (*settlementdomain.ExportFile, error) {
	if format != settlementdomain.ExportFormatStructured && format != settlementdomain.ExportFormatDelimited {
		return nil, settlementdomain.ErrUnsupportedFormat
	}

	period, err := s.periods.FindByID(ctx, s.db, periodID)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, perioddomain.ErrNotFound
	}

	items, err := s.items.ListByPeriod(ctx, s.db, periodID)
	if err != nil {
		return nil, err
	}
	if s.exportLimit > 0 && len(items) > s.exportLimit {
		s.log.Warn("export truncated at row cap",
			zap.String("period_id", periodID.String()),
			zap.Int("line_items", len(items)),
			zap.Int("limit", s.exportLimit),
		)
		items = items[:s.exportLimit]
	}

	names, err := s.partnerNames(ctx, items)
	if err != nil {
		return nil, err
	}

	rows := make([]exportRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, exportRow{
			PeriodStart:         period.PeriodStart.UTC().Format("2006-01-02"),
			PeriodEnd:           period.PeriodEnd.UTC().Format("2006-01-02"),
			PartnerName:         names[item.PartnerID],
			PartnerID:           item.PartnerID.String(),
			OrganizationID:      item.OrganizationID.String(),
			SourceAttributionID: idOrEmpty(item.SourceAttributionID),
			RevenueAmount:       strconv.FormatInt(item.RevenueAmount, 10),
			Currency:            item.Currency,
			SharePercent:        strconv.FormatFloat(item.SharePercent, 'f', -1, 64),
			SettlementAmount:    strconv.FormatInt(item.SettlementAmount, 10),
			AgreementID:         idOrEmpty(item.AgreementID),
			EntryType:           string(item.EntryType),
			CreatedAt:           item.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	switch format {
	case settlementdomain.ExportFormatDelimited:
		return renderDelimited(periodID, rows)
	default:
		return renderStructured(periodID, rows)
	}
}

func renderDelimited(periodID snowflake.ID, rows []exportRow) (*settlementdomain.ExportFile, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportColumns); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row.fields()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return &settlementdomain.ExportFile{
		Filename:    fmt.Sprintf("settlements_%s.csv", periodID),
		ContentType: "text/csv",
		Body:        buf.Bytes(),
	}, nil
}

func renderStructured(periodID snowflake.ID, rows []exportRow) (*settlementdomain.ExportFile, error) {
	body, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, err
	}
	return &settlementdomain.ExportFile{
		Filename:    fmt.Sprintf("settlements_%s.json", periodID),
		ContentType: "application/json",
		Body:        body,
	}, nil
}

// PartnerStatement renders a PDF statement for one partner and period.
func (s *Service) PartnerStatement(ctx context.Context, partnerID, periodID snowflake.ID) (*settlementdomain.ExportFile, error) {
	if s.pdf == nil {
		return nil, settlementdomain.ErrStatementDisabled
	}

	report, err := s.PartnerReport(ctx, partnerID, periodID)
	if err != nil {
		return nil, err
	}

	currency := ""
	lines := make([]pdf.StatementLine, 0, len(report.LineItems))
	for _, item := range report.LineItems {
		if currency == "" {
			currency = item.Currency
		}
		lines = append(lines, pdf.StatementLine{
			OrganizationID:   item.OrganizationID.String(),
			EntryType:        string(item.EntryType),
			RevenueAmount:    formatMinor(item.RevenueAmount),
			SharePercent:     strconv.FormatFloat(item.SharePercent, 'f', -1, 64) + "%",
			SettlementAmount: formatMinor(item.SettlementAmount),
		})
	}

	body, err := s.pdf.GenerateStatement(ctx, pdf.StatementData{
		PartnerName:     report.Partner.Name,
		PartnerCode:     report.Partner.Code,
		PeriodStart:     report.Period.PeriodStart,
		PeriodEnd:       report.Period.PeriodEnd,
		GeneratedAt:     s.clock.Now(),
		Currency:        currency,
		Lines:           lines,
		TotalRevenue:    formatMinor(report.Summary.TotalRevenue),
		TotalSettlement: formatMinor(report.Summary.TotalSettlements),
	})
	if err != nil {
		return nil, err
	}

	return &settlementdomain.ExportFile{
		Filename:    fmt.Sprintf("statement_%s_%s.pdf", partnerID, periodID),
		ContentType: "application/pdf",
		Body:        body,
	}, nil
}

func (s *Service) partnerNames(ctx context.Context, items []settlementdomain.LineItem) (map[snowflake.ID]string, error) {
	names := make(map[snowflake.ID]string)
	for _, item := range items {
		if _, ok := names[item.PartnerID]; ok {
			continue
		}
		partner, err := s.partners.FindByID(ctx, item.PartnerID)
		if err != nil {
			return nil, err
		}
		if partner == nil {
			names[item.PartnerID] = ""
			continue
		}
		names[item.PartnerID] = partner.Name
	}
	return names, nil
}

func idOrEmpty(id *snowflake.ID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

// formatMinor renders a minor-unit amount with two decimal places for display.
func formatMinor(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
