package service

import (
	"context"
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
	attributiondomain "github.com/smallbiznis/revshare/internal/attribution/domain"
	auditdomain "github.com/smallbiznis/revshare/internal/audit/domain"
	"github.com/smallbiznis/revshare/internal/clock"
	"github.com/smallbiznis/revshare/internal/config"
	"github.com/smallbiznis/revshare/internal/locking"
	"github.com/smallbiznis/revshare/internal/observability/metrics"
	partnerdomain "github.com/smallbiznis/revshare/internal/partner/domain"
	perioddomain "github.com/smallbiznis/revshare/internal/period/domain"
	"github.com/smallbiznis/revshare/internal/providers/pdf"
	revenuedomain "github.com/smallbiznis/revshare/internal/revenue/domain"
	settlementdomain "github.com/smallbiznis/revshare/internal/settlement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const calcLeaseTTL = 30 * time.Second

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	guard *locking.Guard
	lease *locking.Lease

	periods  perioddomain.Repository
	items    settlementdomain.Repository
	partners partnerdomain.Directory
	events   attributiondomain.Stream
	revenue  revenuedomain.Lookup

	audit auditdomain.Service
	obs   *metrics.Metrics
	pdf   pdf.Provider

	exportLimit int
}

type ServiceParam struct {
	fx.In

	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Guard *locking.Guard
	Lease *locking.Lease `optional:"true"`

	Periods  perioddomain.Repository
	Items    settlementdomain.Repository
	Partners partnerdomain.Directory
	Events   attributiondomain.Stream
	Revenue  revenuedomain.Lookup

	Audit auditdomain.Service `optional:"true"`
	Obs   *metrics.Metrics    `optional:"true"`
	PDF   pdf.Provider        `optional:"true"`
}

func NewService(p ServiceParam) settlementdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("settlement.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		guard:    p.Guard,
		lease:    p.Lease,
		periods:  p.Periods,
		items:    p.Items,
		partners: p.Partners,
		events:   p.Events,
		revenue:  p.Revenue,
		audit:    p.Audit,
		obs:      p.Obs,
		pdf:      p.PDF,

		exportLimit: p.Cfg.ExportBatchLimit,
	}
}

// Calculate runs settlement for the period: it resolves every attributed
// event to a NORMAL line item, then atomically replaces the period's previous
// NORMAL batch and refreshes the cached totals. Recalculation is idempotent
// under identical inputs. Partner, rate and revenue lookups all happen before
// the per-period critical section so no lock is held across them.
func (s *Service) Calculate(ctx context.Context, periodID snowflake.ID, actorID string) (settlementdomain.CalculationResult, error) {
	period, err := s.periods.FindByID(ctx, s.db, periodID)
	if err != nil {
		return settlementdomain.CalculationResult{}, err
	}
	if period == nil {
		return settlementdomain.CalculationResult{}, perioddomain.ErrNotFound
	}
	if period.Status == perioddomain.StatusLocked {
		return settlementdomain.CalculationResult{}, perioddomain.ErrPeriodLocked
	}

	events, err := s.events.ListAttributed(ctx, period.PeriodStart, period.PeriodEnd)
	if err != nil {
		return settlementdomain.CalculationResult{}, err
	}

	now := s.clock.Now()
	items := make([]*settlementdomain.LineItem, 0, len(events))
	for _, event := range events {
		item, skip, err := s.buildLineItem(ctx, period, event, now)
		if err != nil {
			return settlementdomain.CalculationResult{}, err
		}
		if skip {
			continue
		}
		items = append(items, item)
	}

	lockKey := "revshare:period:calc:" + periodID.String()
	release := s.guard.Acquire(lockKey)
	defer release()

	token, acquired, err := s.lease.TryAcquire(ctx, lockKey, calcLeaseTTL)
	if err != nil {
		return settlementdomain.CalculationResult{}, err
	}
	if !acquired {
		return settlementdomain.CalculationResult{}, perioddomain.ErrConcurrentUpdate
	}
	defer func() { _ = s.lease.Release(ctx, lockKey, token) }()

	var totals perioddomain.Aggregates
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.periods.FindByID(ctx, tx, periodID)
		if err != nil {
			return err
		}
		if current == nil {
			return perioddomain.ErrNotFound
		}
		if current.Status == perioddomain.StatusLocked {
			return perioddomain.ErrPeriodLocked
		}

		// Replace-not-append: discard the previous NORMAL batch. Adjustments
		// recorded against this period survive.
		if err := s.items.DeleteNormalByPeriod(ctx, tx, periodID); err != nil {
			return err
		}
		if err := s.items.BatchInsert(ctx, tx, items); err != nil {
			return err
		}

		totals, err = s.items.AggregateByPeriod(ctx, tx, periodID)
		if err != nil {
			return err
		}
		return s.periods.MarkCalculated(ctx, tx, periodID, now, actorID, totals)
	})
	if err != nil {
		return settlementdomain.CalculationResult{}, err
	}

	s.obs.LineItemsWritten(ctx, len(items), string(settlementdomain.EntryTypeNormal))
	if s.audit != nil {
		_ = s.audit.Record(ctx, actorID, "settlement.calculate", "settlement_period", periodID.String(), map[string]any{
			"settlement_count": len(items),
			"total_revenue":    totals.TotalRevenue,
		})
	}

	s.log.Info("settlement calculation complete",
		zap.String("period_id", periodID.String()),
		zap.Int("events", len(events)),
		zap.Int("line_items", len(items)),
		zap.Int64("total_settlements", totals.TotalSettlementAmount),
	)

	return settlementdomain.CalculationResult{
		SettlementCount:  len(items),
		PartnerCount:     totals.PartnerCount,
		TotalRevenue:     totals.TotalRevenue,
		TotalSettlements: totals.TotalSettlementAmount,
	}, nil
}

// buildLineItem resolves one attribution event. skip=true means the event is
// not settleable; a single bad attribution never aborts the whole run.
func (s *Service) buildLineItem(
	ctx context.Context,
	period *perioddomain.SettlementPeriod,
	event attributiondomain.Event,
	now time.Time,
) (*settlementdomain.LineItem, bool, error) {
	partner, err := s.partners.FindByCode(ctx, event.PartnerCode)
	if err != nil {
		return nil, false, err
	}
	if partner == nil {
		s.obs.EventSkipped(ctx, "unknown_partner")
		s.log.Warn("skipping attribution for unknown partner",
			zap.String("partner_code", event.PartnerCode),
			zap.String("attribution_id", event.ID.String()),
		)
		return nil, true, nil
	}
	if !partner.IsActive {
		s.obs.EventSkipped(ctx, "inactive_partner")
		s.log.Warn("skipping attribution for inactive partner",
			zap.String("partner_code", event.PartnerCode),
			zap.String("attribution_id", event.ID.String()),
		)
		return nil, true, nil
	}

	rate, err := s.resolveRate(ctx, partner, event.AttributedAt)
	if err != nil {
		return nil, false, err
	}

	amount, err := s.revenue.AmountAt(ctx, event.OrganizationID, event.AttributedAt)
	if err != nil {
		return nil, false, err
	}
	if amount.AmountMinor <= 0 {
		s.obs.EventSkipped(ctx, "no_revenue")
		return nil, true, nil
	}

	sourceID := event.ID
	item := &settlementdomain.LineItem{
		ID:                  s.genID.Generate(),
		SettlementPeriodID:  period.ID,
		PartnerID:           partner.ID,
		OrganizationID:      event.OrganizationID,
		SourceAttributionID: &sourceID,
		RevenueAmount:       amount.AmountMinor,
		SharePercent:        rate.Percent,
		SettlementAmount:    roundMinor(float64(amount.AmountMinor) * rate.Percent / 100),
		Currency:            amount.Currency,
		AgreementID:         rate.AgreementID,
		EntryType:           settlementdomain.EntryTypeNormal,
		Metadata: map[string]any{
			settlementdomain.MetaCalculatedAt: now.Format(time.RFC3339),
			settlementdomain.MetaRateSource:   rate.Source,
			settlementdomain.MetaAttributedAt: event.AttributedAt.UTC().Format(time.RFC3339),
		},
		CreatedAt: now,
	}
	return item, false, nil
}

// roundMinor rounds half away from zero to the nearest minor unit.
func roundMinor(raw float64) int64 {
	if raw < 0 {
		return -int64(math.Floor(-raw + 0.5))
	}
	return int64(math.Floor(raw + 0.5))
}
