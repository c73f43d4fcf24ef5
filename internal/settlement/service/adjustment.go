package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	perioddomain "github.com/smallbiznis/revshare/internal/period/domain"
	settlementdomain "github.com/smallbiznis/revshare/internal/settlement/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateAdjustment appends a signed ADJUSTMENT line item in the target period
// referencing the original. Nothing is ever edited in place: the correction
// trail stays auditable because the original row is untouched.
func (s *Service) CreateAdjustment(ctx context.Context, req settlementdomain.CreateAdjustmentRequest) (*settlementdomain.LineItem, error) {
	if req.OriginalLineItemID == 0 || req.TargetPeriodID == 0 {
		return nil, settlementdomain.ErrMissingRequired
	}
	if req.AmountMinor == 0 || strings.TrimSpace(req.Reason) == "" {
		return nil, settlementdomain.ErrMissingRequired
	}

	original, err := s.items.FindByID(ctx, s.db, req.OriginalLineItemID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, settlementdomain.ErrNotFound
	}
	if req.TargetPeriodID == original.SettlementPeriodID {
		return nil, settlementdomain.ErrSamePeriod
	}

	// The adjustment carries the original's agreement reference so the
	// correction stays traceable to the terms it corrects.
	var agreementID *snowflake.ID
	if original.AgreementID != nil {
		id := *original.AgreementID
		agreementID = &id
	}

	now := s.clock.Now()
	item := &settlementdomain.LineItem{
		ID:                  s.genID.Generate(),
		SettlementPeriodID:  req.TargetPeriodID,
		PartnerID:           original.PartnerID,
		OrganizationID:      original.OrganizationID,
		RevenueAmount:       0,
		SharePercent:        0,
		SettlementAmount:    req.AmountMinor,
		Currency:            original.Currency,
		AgreementID:         agreementID,
		EntryType:           settlementdomain.EntryTypeAdjustment,
		AdjustsSettlementID: &original.ID,
		AdjustmentReason:    strings.TrimSpace(req.Reason),
		Metadata: map[string]any{
			settlementdomain.MetaAdjustedBy: req.ActorID,
			"original_period_id":            original.SettlementPeriodID.String(),
		},
		CreatedAt: now,
	}

	// Same key as recalculation so an adjustment and a calculation of the
	// target period never interleave their totals refresh.
	release := s.guard.Acquire("revshare:period:calc:" + req.TargetPeriodID.String())
	defer release()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		target, err := s.periods.FindByID(ctx, tx, req.TargetPeriodID)
		if err != nil {
			return err
		}
		if target == nil {
			return perioddomain.ErrNotFound
		}
		if target.Status == perioddomain.StatusLocked {
			return perioddomain.ErrPeriodLocked
		}

		if err := s.items.Insert(ctx, tx, item); err != nil {
			return err
		}

		totals, err := s.items.AggregateByPeriod(ctx, tx, req.TargetPeriodID)
		if err != nil {
			return err
		}
		return s.periods.UpdateTotals(ctx, tx, req.TargetPeriodID, totals)
	})
	if err != nil {
		return nil, err
	}

	s.obs.AdjustmentCreated(ctx)
	if s.audit != nil {
		_ = s.audit.Record(ctx, req.ActorID, "settlement.adjustment.create", "settlement_line_item", item.ID.String(), map[string]any{
			"original_line_item_id": original.ID.String(),
			"target_period_id":      req.TargetPeriodID.String(),
			"amount":                req.AmountMinor,
		})
	}

	s.log.Info("adjustment recorded",
		zap.String("line_item_id", item.ID.String()),
		zap.String("original_line_item_id", original.ID.String()),
		zap.String("target_period_id", req.TargetPeriodID.String()),
		zap.Int64("amount", req.AmountMinor),
	)
	return item, nil
}
