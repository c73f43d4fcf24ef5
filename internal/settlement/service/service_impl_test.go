package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	attributiondomain "github.com/smallbiznis/revshare/internal/attribution/domain"
	attributionrepo "github.com/smallbiznis/revshare/internal/attribution/repository"
	"github.com/smallbiznis/revshare/internal/clock"
	"github.com/smallbiznis/revshare/internal/config"
	"github.com/smallbiznis/revshare/internal/locking"
	partnerdomain "github.com/smallbiznis/revshare/internal/partner/domain"
	partnerrepo "github.com/smallbiznis/revshare/internal/partner/repository"
	perioddomain "github.com/smallbiznis/revshare/internal/period/domain"
	periodrepo "github.com/smallbiznis/revshare/internal/period/repository"
	revenuedomain "github.com/smallbiznis/revshare/internal/revenue/domain"
	revenuerepo "github.com/smallbiznis/revshare/internal/revenue/repository"
	"github.com/smallbiznis/revshare/internal/settlement/domain"
	settlementrepo "github.com/smallbiznis/revshare/internal/settlement/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc     domain.Service
	db      *gorm.DB
	node    *snowflake.Node
	fake    *clock.FakeClock
	periods perioddomain.Repository
	items   domain.Repository
}

func setupSettlementService(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(
		&partnerdomain.Partner{},
		&partnerdomain.Agreement{},
		&attributiondomain.Event{},
		&revenuedomain.Entry{},
		&perioddomain.SettlementPeriod{},
		&domain.LineItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))

	periods := periodrepo.Provide()
	items := settlementrepo.Provide()

	svc := NewService(ServiceParam{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fake,
		Guard:    locking.NewGuard(),
		Periods:  periods,
		Items:    items,
		Partners: partnerrepo.Provide(db),
		Events:   attributionrepo.Provide(db),
		Revenue:  revenuerepo.Provide(db),
	})

	return &fixture{
		svc:     svc,
		db:      db,
		node:    node,
		fake:    fake,
		periods: periods,
		items:   items,
	}
}

// newServiceWithConfig builds a second service over the fixture's database
// for tests that exercise config-driven behavior.
func (f *fixture) newServiceWithConfig(cfg config.Config) domain.Service {
	return NewService(ServiceParam{
		Cfg:      cfg,
		DB:       f.db,
		Log:      zap.NewNop(),
		GenID:    f.node,
		Clock:    f.fake,
		Guard:    locking.NewGuard(),
		Periods:  f.periods,
		Items:    f.items,
		Partners: partnerrepo.Provide(f.db),
		Events:   attributionrepo.Provide(f.db),
		Revenue:  revenuerepo.Provide(f.db),
	})
}

func (f *fixture) seedPartner(t *testing.T, code, name string, active bool, defaultPct float64) snowflake.ID {
	t.Helper()
	partner := &partnerdomain.Partner{
		ID:                  f.node.Generate(),
		Code:                code,
		Name:                name,
		IsActive:            active,
		DefaultSharePercent: defaultPct,
		CreatedAt:           f.fake.Now(),
	}
	require.NoError(t, f.db.Create(partner).Error)
	return partner.ID
}

func (f *fixture) seedAgreement(t *testing.T, partnerID snowflake.ID, pct float64, from time.Time, to *time.Time) snowflake.ID {
	t.Helper()
	agreement := &partnerdomain.Agreement{
		ID:            f.node.Generate(),
		PartnerID:     partnerID,
		SharePercent:  pct,
		EffectiveFrom: from,
		EffectiveTo:   to,
		CreatedAt:     f.fake.Now(),
	}
	require.NoError(t, f.db.Create(agreement).Error)
	return agreement.ID
}

func (f *fixture) seedEvent(t *testing.T, partnerCode string, orgID snowflake.ID, at time.Time) snowflake.ID {
	t.Helper()
	event := &attributiondomain.Event{
		ID:             f.node.Generate(),
		PartnerCode:    partnerCode,
		OrganizationID: orgID,
		AttributedAt:   at,
		CreatedAt:      f.fake.Now(),
	}
	require.NoError(t, f.db.Create(event).Error)
	return event.ID
}

func (f *fixture) seedRevenue(t *testing.T, orgID snowflake.ID, amountMinor int64, currency string, from time.Time) {
	t.Helper()
	entry := &revenuedomain.Entry{
		ID:             f.node.Generate(),
		OrganizationID: orgID,
		AmountMinor:    amountMinor,
		Currency:       currency,
		EffectiveFrom:  from,
		CreatedAt:      f.fake.Now(),
	}
	require.NoError(t, f.db.Create(entry).Error)
}

func (f *fixture) seedPeriod(t *testing.T, start, end time.Time, status perioddomain.Status) *perioddomain.SettlementPeriod {
	t.Helper()
	period := &perioddomain.SettlementPeriod{
		ID:          f.node.Generate(),
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      status,
		CreatedAt:   f.fake.Now(),
	}
	require.NoError(t, f.db.Create(period).Error)
	return period
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateDefaultRate(t *testing.T) {
	f := setupSettlementService(t)
	ctx := context.Background()

	orgID := f.node.Generate()
	f.seedPartner(t, "acme", "Acme", true, 12.5)
	f.seedRevenue(t, orgID, 1000, "USD", date(2023, 12, 1))
	f.seedEvent(t, "acme", orgID, date(2024, 1, 10))
	period := f.seedPeriod(t, date(2024, 1, 1), date(2024, 2, 1), perioddomain.StatusOpen)

	result, err := f.svc.Calculate(ctx, period.ID, "tester")
	require.NoError(t, err)
	require.Equal(t, 1, result.SettlementCount)
	require.Equal(t, 1, result.PartnerCount)
	require.Equal(t, int64(1000), result.TotalRevenue)
	require.Equal(t, int64(125), result.TotalSettlements)

	items, err := f.items.ListByPeriod(ctx, f.db, period.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, int64(125), items[0].SettlementAmount)
	require.Equal(t, 12.5, items[0].SharePercent)
	require.Equal(t, "USD", items[0].Currency)
	require.Equal(t, domain.EntryTypeNormal, items[0].EntryType)
	require.Nil(t, items[0].AgreementID)
	require.Equal(t, domain.RateSourceDefault, items[0].Metadata[domain.MetaRateSource])
}

func TestCalculateAgreementRatePrecedence(t *testing.T) {
	f := setupSettlementService(t)
	ctx := context.Background()

	orgID := f.node.Generate()
	partnerID := f.seedPartner(t, "acme", "Acme", true, 10)
	f.seedRevenue(t, orgID, 1000, "USD", date(2023, 12, 1))

	// Two overlapping windows; the later start wins for instants both cover.
	f.seedAgreement(t, partnerID, 20, date(2024, 1, 1), nil)
	laterID := f.seedAgreement(t, partnerID, 25, date(2024, 1, 10), nil)

	f.seedEvent(t, "acme", orgID, date(2024, 1, 5))  // only the 20% window
	f.seedEvent(t, "acme", orgID, date(2024, 1, 15)) // both windows, 25% wins
	period := f.seedPeriod(t, date(2024, 1, 1), date(2024, 2, 1), perioddomain.StatusOpen)

	_, err := f.svc.Calculate(ctx, period.ID, "tester")
	require.NoError(t, err)

	items, err := f.items.ListByPeriod(ctx, f.db, period.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.Equal(t, 20.0, items[0].SharePercent)
	require.Equal(t, int64(200), items[0].SettlementAmount)

	require.Equal(t, 25.0, items[1].SharePercent)
	require.Equal(t, int64(250), items[1].SettlementAmount)
	require.NotNil(t, items[1].AgreementID)
	require.Equal(t, laterID, *items[1].AgreementID)
	require.Equal(t, domain.RateSourceAgreement, items[1].Metadata[domain.MetaRateSource])
}

func TestCalculateExpiredAgreementFallsBack(t *testing.T) {
	f := setupSettlementService(t)
	ctx := context.Background()

	orgID := f.node.Generate()
	partnerID := f.seedPartner(t, "acme", "Acme", true, 10)
	f.seedRevenue(t, orgID, 1000, "USD", date(2023, 12, 1))

	expiry := date(2024, 1, 10)
	f.seedAgreement(t, partnerID, 30, date(2023, 6, 1), &expiry)
	f.seedEvent(t, "acme", orgID, date(2024, 1, 20))
	period := f.seedPeriod(t, date(2024, 1, 1), date(2024, 2, 1), perioddomain.StatusOpen)

	_, err := f.svc.Calculate(ctx, period.ID, "tester")
	require.NoError(t, err)

	items, err := f.items.ListByPeriod(ctx, f.db, period.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 10.0, items[0].SharePercent)
	require.Equal(t, int64(100), items[0].SettlementAmount)
	require.Equal(t, domain.RateSourceDefault, items[0].Metadata[domain.MetaRateSource])
}

func TestCalculateSkipsBadPartners(t *testing.T) {
	f := setupSettlementService(t)
	ctx := context.Background()

	orgID := f.node.Generate()
	f.seedPartner(t, "good", "Good Partner", true, 10)
	f.seedPartner(t, "dormant", "Dormant Partner", false, 10)
	f.seedRevenue(t, orgID, 1000, "USD", date(2023, 12, 1))

	f.seedEvent(t, "good", orgID, date(2024, 1, 5))
	f.seedEvent(t, "dormant", orgID, date(2024, 1, 6))
	f.seedEvent(t, "ghost", orgID, date(2024, 1, 7))
	period := f.seedPeriod(t, date(2024, 1, 1), date(2024, 2, 1), perioddomain.StatusOpen)

	result, err := f.svc.Calculate(ctx, period.ID, "tester")
	require.NoError(t, err)
	require.Equal(t, 1, result.SettlementCount)
	require.Equal(t, 1, result.PartnerCount)
}

func TestCalculateLockedPeriod(t *testing.T) {
	f := setupSettlementService(t)

	period := f.seedPeriod(t, date(2024, 1, 1), date(2024, 2, 1), perioddomain.StatusLocked)

	_, err := f.svc.Calculate(context.Background(), period.ID, "tester")
	require.ErrorIs(t, err, perioddomain.ErrPeriodLocked)
}

func TestCalculateUnknownPeriod(t *testing.T) {
	f := setupSettlementService(t)

	_, err := f.svc.Calculate(context.Background(), f.node.Generate(), "tester")
	require.ErrorIs(t, err, perioddomain.ErrNotFound)
}

func TestRecalculateReplacesNormalKeepsAdjustments(t *testing.T) {
	f := setupSettlementService(t)
	ctx := context.Background()

	orgID := f.node.Generate()
	partnerID := f.seedPartner(t, "acme", "Acme", true, 10)
	f.seedRevenue(t, orgID, 1000, "USD", date(2023, 12, 1))
	f.seedEvent(t, "acme", orgID, date(2024, 1, 10))
	period := f.seedPeriod(t, date(2024, 1, 1), date(2024, 2, 1), perioddomain.StatusOpen)

	first, err := f.svc.Calculate(ctx, period.ID, "tester")
	require.NoError(t, err)
	require.Equal(t, 1, first.SettlementCount)

	// An adjustment recorded against this period must survive recalculation.
	originalID := f.node.Generate()
	adjustment := &domain.LineItem{
		ID:                  f.node.Generate(),
		SettlementPeriodID:  period.ID,
		PartnerID:           partnerID,
		OrganizationID:      orgID,
		SettlementAmount:    -25,
		Currency:            "USD",
		EntryType:           domain.EntryTypeAdjustment,
		AdjustsSettlementID: &originalID,
		AdjustmentReason:    "rate correction",
		CreatedAt:           f.fake.Now(),
	}
	require.NoError(t, f.items.Insert(ctx, f.db, adjustment))

	second, err := f.svc.Calculate(ctx, period.ID, "tester")
	require.NoError(t, err)
	require.Equal(t, 1, second.SettlementCount)
	require.Equal(t, int64(100-25), second.TotalSettlements)

	items, err := f.items.ListByPeriod(ctx, f.db, period.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	var normals, adjustments int
	for _, item := range items {
		switch item.EntryType {
		case domain.EntryTypeNormal:
			normals++
		case domain.EntryTypeAdjustment:
			adjustments++
			require.Equal(t, adjustment.ID, item.ID)
		}
	}
	require.Equal(t, 1, normals)
	require.Equal(t, 1, adjustments)
}

func TestCalculateAggregatesAcrossPartners(t *testing.T) {
	f := setupSettlementService(t)
	ctx := context.Background()

	orgA := f.node.Generate()
	orgB := f.node.Generate()
	f.seedPartner(t, "alpha", "Alpha", true, 10)
	f.seedPartner(t, "beta", "Beta", true, 20)
	f.seedRevenue(t, orgA, 500, "USD", date(2023, 12, 1))
	f.seedRevenue(t, orgB, 200, "USD", date(2023, 12, 1))
	f.seedEvent(t, "alpha", orgA, date(2024, 1, 5))
	f.seedEvent(t, "beta", orgB, date(2024, 1, 6))
	period := f.seedPeriod(t, date(2024, 1, 1), date(2024, 2, 1), perioddomain.StatusOpen)

	result, err := f.svc.Calculate(ctx, period.ID, "tester")
	require.NoError(t, err)
	require.Equal(t, 2, result.SettlementCount)
	require.Equal(t, 2, result.PartnerCount)
	require.Equal(t, int64(700), result.TotalRevenue)
	require.Equal(t, int64(90), result.TotalSettlements)

	stored, err := f.periods.FindByID(ctx, f.db, period.ID)
	require.NoError(t, err)
	require.Equal(t, perioddomain.StatusCalculated, stored.Status)
	require.Equal(t, int64(700), stored.TotalRevenue)
	require.Equal(t, int64(90), stored.TotalSettlementAmount)
	require.Equal(t, 2, stored.PartnerCount)
	require.NotNil(t, stored.CalculatedAt)
	require.Equal(t, "tester", stored.CalculatedBy)
}

func TestRoundMinor(t *testing.T) {
	cases := []struct {
		raw  float64
		want int64
	}{
		{0, 0},
		{124.4, 124},
		{124.5, 125},
		{125.0, 125},
		{-124.4, -124},
		{-124.5, -125},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, roundMinor(tc.raw), "raw=%v", tc.raw)
	}
}
