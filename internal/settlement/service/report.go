package service

import (
	"context"
	"sort"

	"github.com/bwmarrin/snowflake"
	partnerdomain "github.com/smallbiznis/revshare/internal/partner/domain"
	perioddomain "github.com/smallbiznis/revshare/internal/period/domain"
	settlementdomain "github.com/smallbiznis/revshare/internal/settlement/domain"
)

func (s *Service) ListPeriodLineItems(ctx context.Context, periodID snowflake.ID) ([]settlementdomain.LineItem, error) {
	period, err := s.periods.FindByID(ctx, s.db, periodID)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, perioddomain.ErrNotFound
	}
	return s.items.ListByPeriod(ctx, s.db, periodID)
}

// PartnerReport returns a partner's line items for one period with summed
// totals. Adjustments carry zero revenue so the revenue total reflects NORMAL
// rows while the settlement total includes corrections.
func (s *Service) PartnerReport(ctx context.Context, partnerID, periodID snowflake.ID) (*settlementdomain.PartnerReport, error) {
	partner, err := s.partners.FindByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, partnerdomain.ErrNotFound
	}

	period, err := s.periods.FindByID(ctx, s.db, periodID)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, perioddomain.ErrNotFound
	}

	items, err := s.items.ListByPartnerAndPeriod(ctx, s.db, partnerID, periodID)
	if err != nil {
		return nil, err
	}

	summary := settlementdomain.PartnerSummary{LineItemCount: len(items)}
	for _, item := range items {
		summary.TotalRevenue += item.RevenueAmount
		summary.TotalSettlements += item.SettlementAmount
	}

	return &settlementdomain.PartnerReport{
		Partner:   partner,
		Period:    period,
		Summary:   summary,
		LineItems: items,
	}, nil
}

// PartnerHistory returns per-period rollups for every period the partner has
// settlements in, most recent period first.
func (s *Service) PartnerHistory(ctx context.Context, partnerID snowflake.ID) ([]settlementdomain.PartnerPeriodSummary, error) {
	partner, err := s.partners.FindByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, partnerdomain.ErrNotFound
	}

	rows, err := s.items.SummarizeByPartner(ctx, s.db, partnerID)
	if err != nil {
		return nil, err
	}

	history := make([]settlementdomain.PartnerPeriodSummary, 0, len(rows))
	for _, row := range rows {
		period, err := s.periods.FindByID(ctx, s.db, row.SettlementPeriodID)
		if err != nil {
			return nil, err
		}
		if period == nil {
			continue
		}
		history = append(history, settlementdomain.PartnerPeriodSummary{
			Period:           period,
			LineItemCount:    row.LineItemCount,
			TotalRevenue:     row.TotalRevenue,
			TotalSettlements: row.TotalSettlementAmount,
		})
	}

	sort.Slice(history, func(i, j int) bool {
		return history[i].Period.PeriodStart.After(history[j].Period.PeriodStart)
	})
	return history, nil
}
